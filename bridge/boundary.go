package bridge

import (
	"github.com/sarchlab/buslink/bus"
	"github.com/sarchlab/buslink/host"
)

// Boundary is the bus boundary provider: the mode-dependent far side of the
// interconnect. A boundary supplies the responder behind each bus instance
// and the clock and reset signals the core runs on. The bridge's wiring is
// written once against this interface; the deployment mode only decides
// which implementation is constructed.
type Boundary interface {
	// InstructionResponder returns the endpoint behind the instruction bus.
	InstructionResponder() bus.Responder

	// DataResponder returns the endpoint behind the data bus, or nil when
	// the deployment provides none.
	DataResponder() bus.Responder

	// CoreClockEnable reports whether the core advances this system edge.
	CoreClockEnable() bool

	// CoreReset returns the core's active-high reset for this edge.
	CoreReset() bool

	// Tick advances boundary-side state one system clock edge.
	Tick()
}

// StandaloneBoundary exposes the bus wires directly: the harness supplies
// the responders, the core runs on every system clock edge, and the
// external active-low reset is inverted combinationally, with no
// synchronizer.
type StandaloneBoundary struct {
	instruction bus.Responder
	data        bus.Responder
	resetN      bool
}

// NewStandaloneBoundary creates a standalone boundary over the given
// responders, with reset deasserted. The data responder may be nil when the
// build has no data bus.
func NewStandaloneBoundary(instruction, data bus.Responder) *StandaloneBoundary {
	return &StandaloneBoundary{
		instruction: instruction,
		data:        data,
		resetN:      true,
	}
}

// SetResetN drives the external active-low reset line.
func (b *StandaloneBoundary) SetResetN(level bool) {
	b.resetN = level
}

// InstructionResponder returns the directly attached instruction endpoint.
func (b *StandaloneBoundary) InstructionResponder() bus.Responder {
	return b.instruction
}

// DataResponder returns the directly attached data endpoint, if any.
func (b *StandaloneBoundary) DataResponder() bus.Responder {
	return b.data
}

// CoreClockEnable always holds: the core runs on the system clock.
func (b *StandaloneBoundary) CoreClockEnable() bool {
	return true
}

// CoreReset inverts the external active-low line.
func (b *StandaloneBoundary) CoreReset() bool {
	return !b.resetN
}

// Tick is a no-op; a standalone boundary holds no clocked state.
func (b *StandaloneBoundary) Tick() {}

// HostedBoundary routes every boundary signal through a host controller.
type HostedBoundary struct {
	controller *host.Controller
}

// NewHostedBoundary creates a boundary backed by the given controller.
func NewHostedBoundary(controller *host.Controller) *HostedBoundary {
	return &HostedBoundary{controller: controller}
}

// Controller returns the mediating host controller.
func (b *HostedBoundary) Controller() *host.Controller {
	return b.controller
}

// InstructionResponder returns the controller's instruction endpoint.
func (b *HostedBoundary) InstructionResponder() bus.Responder {
	return b.controller.InstructionResponder()
}

// DataResponder returns the controller's data endpoint, if any.
func (b *HostedBoundary) DataResponder() bus.Responder {
	return b.controller.DataResponder()
}

// CoreClockEnable comes exclusively from the controller's divider.
func (b *HostedBoundary) CoreClockEnable() bool {
	return b.controller.CoreClockEnable()
}

// CoreReset comes exclusively from the controller's synchronizer.
func (b *HostedBoundary) CoreReset() bool {
	return b.controller.CoreReset()
}

// Tick advances the controller.
func (b *HostedBoundary) Tick() {
	b.controller.Tick()
}
