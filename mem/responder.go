package mem

import (
	"github.com/sarchlab/buslink/bus"
)

// Responder adapts a Memory to the bus responder contract.
//
// Writes honor the request's byte-enable mask: lanes with a clear bit are
// left untouched. AckLatency delays every acknowledge by a fixed number of
// cycles; zero models a combinational memory that acknowledges on the same
// edge the request is presented.
type Responder struct {
	mem        *Memory
	ackLatency uint64
	waited     uint64
}

// NewResponder creates a responder over mem acknowledging each transfer
// after ackLatency wait cycles.
func NewResponder(mem *Memory, ackLatency uint64) *Responder {
	return &Responder{
		mem:        mem,
		ackLatency: ackLatency,
	}
}

// Memory returns the backing store.
func (r *Responder) Memory() *Memory {
	return r.mem
}

// Respond evaluates one clock edge of the responder.
func (r *Responder) Respond(req bus.Request) bus.Response {
	if !req.Issued() {
		r.waited = 0
		return bus.Response{}
	}

	if r.waited < r.ackLatency {
		r.waited++
		return bus.Response{}
	}
	r.waited = 0

	if req.IsWrite {
		storeLanes(r.mem, req.Address, req.ByteEnable, req.WriteData)
		return bus.Response{Acknowledge: true}
	}
	return bus.Response{
		ReadData:    r.mem.Read32(req.Address),
		Acknowledge: true,
	}
}

// storeLanes writes the byte lanes of data selected by the enable mask.
func storeLanes(m *Memory, addr uint32, byteEnable uint8, data uint32) {
	for lane := uint32(0); lane < 4; lane++ {
		if byteEnable&(1<<lane) == 0 {
			continue
		}
		m.Write8(addr+lane, uint8(data>>(8*lane)))
	}
}
