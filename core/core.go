// Package core defines the bus-facing surface of the CPU core collaborator.
//
// The interconnect never looks inside a core; it samples the outputs below,
// delivers bus responses, and advances the core in lockstep with the rest of
// the system. Pipeline structure, decoding, and execution are the core's own
// business.
package core

import (
	"github.com/sarchlab/buslink/bus"
)

// DataRequest carries the raw data-channel outputs a core drives. There is
// no CycleActive here: the interconnect derives it from Strobe, so a core
// cannot hold the data cycle open without a strobe.
type DataRequest struct {
	// Strobe requests a data transfer this cycle.
	Strobe bool
	// IsWrite selects the transfer direction.
	IsWrite bool
	// ByteEnable identifies the valid lanes of WriteData (low 4 bits).
	ByteEnable uint8
	// Address is the target of the transfer.
	Address uint32
	// WriteData is driven on writes.
	WriteData uint32
}

// Core is the contract between a CPU core model and the interconnect.
type Core interface {
	// FetchAddress returns the address the instruction channel presents
	// this cycle. The channel itself is always hot; only the address is
	// core-driven.
	FetchAddress() uint32

	// PutFetchResponse delivers the instruction bus response for this edge.
	PutFetchResponse(bus.Response)

	// DataRequest returns the core's raw data-channel outputs for this
	// cycle. The returned fields must stay stable while a transfer is
	// outstanding.
	DataRequest() DataRequest

	// PutDataResponse delivers the data bus response for this edge.
	PutDataResponse(bus.Response)

	// Tick advances the core one clock edge, after responses for the edge
	// have been delivered.
	Tick()
}
