package core

import (
	"github.com/sarchlab/buslink/bus"
)

// Op describes one scripted data-channel operation.
type Op struct {
	// Delay is the number of idle cycles before the operation is issued.
	Delay int
	// IsWrite selects the transfer direction.
	IsWrite bool
	// Address is the target of the transfer.
	Address uint32
	// ByteEnable identifies the valid lanes on a write.
	ByteEnable uint8
	// WriteData is driven on a write.
	WriteData uint32
}

// Read builds a scripted full-word read operation.
func Read(addr uint32) Op {
	return Op{Address: addr, ByteEnable: bus.ByteEnableAll}
}

// Write builds a scripted write operation with the given lane mask.
func Write(addr uint32, byteEnable uint8, data uint32) Op {
	return Op{
		IsWrite:    true,
		Address:    addr,
		ByteEnable: byteEnable,
		WriteData:  data,
	}
}

// ScriptedCore is a reference core implementation for simulation and tests.
// It fetches continuously from an incrementing address and plays a fixed
// sequence of data operations, issuing each one only after the previous
// acknowledge has been observed. All request fields are held stable while a
// transfer is outstanding.
type ScriptedCore struct {
	pc uint32

	ops       []Op
	opIndex   int
	delayLeft int

	fetchResp bus.Response
	dataResp  bus.Response

	fetchCount uint64
	readValues []uint32
}

// NewScriptedCore creates a scripted core fetching from resetVector and
// playing ops in order on the data channel.
func NewScriptedCore(resetVector uint32, ops []Op) *ScriptedCore {
	c := &ScriptedCore{
		pc:  resetVector,
		ops: ops,
	}
	if len(ops) > 0 {
		c.delayLeft = ops[0].Delay
	}
	return c
}

// FetchAddress returns the current fetch target.
func (c *ScriptedCore) FetchAddress() uint32 {
	return c.pc
}

// PutFetchResponse latches the instruction bus response for this edge.
func (c *ScriptedCore) PutFetchResponse(r bus.Response) {
	c.fetchResp = r
}

// DataRequest returns the current scripted operation, or an idle request
// when the script is exhausted or the next operation is still delayed.
func (c *ScriptedCore) DataRequest() DataRequest {
	if c.opIndex >= len(c.ops) || c.delayLeft > 0 {
		return DataRequest{}
	}
	op := c.ops[c.opIndex]
	return DataRequest{
		Strobe:     true,
		IsWrite:    op.IsWrite,
		ByteEnable: op.ByteEnable,
		Address:    op.Address,
		WriteData:  op.WriteData,
	}
}

// PutDataResponse latches the data bus response for this edge.
func (c *ScriptedCore) PutDataResponse(r bus.Response) {
	c.dataResp = r
}

// Tick advances the core: an acknowledged fetch moves to the next word, an
// acknowledged data operation retires and arms the next one.
func (c *ScriptedCore) Tick() {
	if c.fetchResp.Acknowledge {
		c.pc += 4
		c.fetchCount++
	}
	c.fetchResp = bus.Response{}

	switch {
	case c.opIndex >= len(c.ops):
		// script exhausted
	case c.delayLeft > 0:
		c.delayLeft--
	case c.dataResp.Acknowledge:
		if !c.ops[c.opIndex].IsWrite {
			c.readValues = append(c.readValues, c.dataResp.ReadData)
		}
		c.opIndex++
		if c.opIndex < len(c.ops) {
			c.delayLeft = c.ops[c.opIndex].Delay
		}
	}
	c.dataResp = bus.Response{}
}

// PC returns the current fetch address.
func (c *ScriptedCore) PC() uint32 {
	return c.pc
}

// FetchCount returns the number of acknowledged fetches.
func (c *ScriptedCore) FetchCount() uint64 {
	return c.fetchCount
}

// ReadValues returns the data returned by acknowledged reads, in script
// order.
func (c *ScriptedCore) ReadValues() []uint32 {
	return c.readValues
}

// Done reports whether every scripted operation has retired.
func (c *ScriptedCore) Done() bool {
	return c.opIndex >= len(c.ops)
}
