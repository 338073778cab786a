// Package bus models the single-master request/acknowledge handshake shared
// by the instruction-fetch and data-access channels.
//
// A transfer is presented by asserting both CycleActive and StrobeActive.
// The responder completes it by asserting Acknowledge; until then the master
// must hold the request fields stable. There is no retry, pipelining, or
// burst support: each bus carries at most one outstanding transfer.
package bus

import (
	"errors"
	"fmt"
)

// ByteEnableAll selects all four byte lanes of a 32-bit transfer.
const ByteEnableAll uint8 = 0x0F

// Request carries the master-driven signals of one bus transfer.
type Request struct {
	// CycleActive marks the bus cycle as in progress.
	CycleActive bool
	// StrobeActive qualifies the transfer within the cycle.
	StrobeActive bool
	// IsWrite selects the transfer direction.
	IsWrite bool
	// ByteEnable identifies the valid lanes of WriteData (low 4 bits).
	// Lanes with a clear bit must not be written by the responder.
	ByteEnable uint8
	// Address is the word-aligned target of the transfer.
	Address uint32
	// WriteData is the data driven by the master on a write.
	WriteData uint32
}

// Issued reports whether the request is presented on the bus this cycle.
func (r Request) Issued() bool {
	return r.CycleActive && r.StrobeActive
}

// sameTransfer reports whether two samples describe the same transfer.
// These are the fields a master must hold while an acknowledge is pending.
func (r Request) sameTransfer(o Request) bool {
	return r.IsWrite == o.IsWrite &&
		r.ByteEnable == o.ByteEnable &&
		r.Address == o.Address &&
		r.WriteData == o.WriteData
}

// Response carries the responder-driven signals of one bus transfer.
type Response struct {
	// ReadData is the data returned on a read; valid only with Acknowledge.
	ReadData uint32
	// Acknowledge marks completion of the outstanding transfer.
	Acknowledge bool
}

// Master is a request source bound to one bus instance. Request is a pure
// function of the master's present state and is resampled every clock edge,
// so a master never stores the signals it drives.
type Master interface {
	// Request returns the channel's current request signals.
	Request() Request
	// PutResponse delivers the responder's signals for the current edge.
	PutResponse(Response)
}

// Responder is the slave side of one bus instance. Respond is evaluated
// exactly once per clock edge with the sampled request.
type Responder interface {
	Respond(Request) Response
}

// Protocol violations detected while ticking a bus. The handshake itself has
// no error signal; these surface master misbehavior to the simulation harness.
var (
	// ErrUnstableRequest reports that a master changed the transfer fields
	// between issuing a request and observing its acknowledge.
	ErrUnstableRequest = errors.New("request fields changed while transfer outstanding")

	// ErrWithdrawnRequest reports that a master dropped CycleActive or
	// StrobeActive before its transfer was acknowledged.
	ErrWithdrawnRequest = errors.New("request withdrawn before acknowledge")

	// ErrUnalignedAddress reports a transfer whose address is not word
	// aligned. The channel has no sub-word addressing: ByteEnable selects
	// the lanes, so the low two address bits must be zero.
	ErrUnalignedAddress = errors.New("transfer address not word aligned")
)

// Statistics holds per-bus transfer counts.
type Statistics struct {
	// Transfers is the number of transfers started.
	Transfers uint64
	// Reads is the number of read transfers started.
	Reads uint64
	// Writes is the number of write transfers started.
	Writes uint64
	// Acks is the number of acknowledged transfers.
	Acks uint64
	// StallCycles counts edges where a transfer was presented but
	// not acknowledged.
	StallCycles uint64
	// IdleCycles counts edges with no transfer presented.
	IdleCycles uint64
}

// Bus couples exactly one master to one responder. It is stateless except
// for the bookkeeping needed to detect protocol violations and to keep
// statistics; the outstanding transfer itself lives in the master's held
// request fields.
type Bus struct {
	name      string
	master    Master
	responder Responder

	outstanding bool
	held        Request

	stats Statistics
}

// New creates a bus instance joining the given master and responder.
// The name labels protocol errors and statistics output.
func New(name string, master Master, responder Responder) *Bus {
	return &Bus{
		name:      name,
		master:    master,
		responder: responder,
	}
}

// Name returns the bus instance label.
func (b *Bus) Name() string {
	return b.name
}

// Stats returns the accumulated transfer statistics.
func (b *Bus) Stats() Statistics {
	return b.stats
}

// Outstanding reports whether a transfer is presented but not yet
// acknowledged.
func (b *Bus) Outstanding() bool {
	return b.outstanding
}

// Tick evaluates one clock edge: it samples the master's request, lets the
// responder answer, and delivers the response back to the master. A
// responder that never acknowledges stalls the channel indefinitely; that is
// the contract's only backpressure mechanism and is not treated as an error.
func (b *Bus) Tick() error {
	req := b.master.Request()

	if !req.Issued() {
		if b.outstanding {
			return fmt.Errorf("%s: %w", b.name, ErrWithdrawnRequest)
		}
		b.stats.IdleCycles++
		b.master.PutResponse(Response{})
		return nil
	}

	if b.outstanding {
		if !req.sameTransfer(b.held) {
			return fmt.Errorf("%s: %w", b.name, ErrUnstableRequest)
		}
	} else {
		if req.Address%4 != 0 {
			return fmt.Errorf("%s: %w: %#x", b.name, ErrUnalignedAddress, req.Address)
		}
		b.outstanding = true
		b.held = req
		b.stats.Transfers++
		if req.IsWrite {
			b.stats.Writes++
		} else {
			b.stats.Reads++
		}
	}

	resp := b.responder.Respond(req)
	if resp.Acknowledge {
		b.stats.Acks++
		b.outstanding = false
	} else {
		b.stats.StallCycles++
	}

	b.master.PutResponse(resp)
	return nil
}
