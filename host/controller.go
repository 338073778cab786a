// Package host models the host controller collaborator used in hosted
// deployments. The controller mediates the core's bus access and supplies
// the derived core clock and the normalized reset. Its peripheral-control
// link is exposed as raw pins only; the command protocol spoken over it is
// not modeled here.
package host

import (
	"github.com/sarchlab/buslink/bus"
)

// PeripheralPins is the controller's secondary interface at the deployment
// boundary: a clocked serial control link plus an interrupt line. The
// interconnect never interprets these.
type PeripheralPins struct {
	Clock      bool
	ChipSelect bool
	DataIn     bool
	DataOut    bool
	Direction  bool
	Interrupt  bool
}

// Controller is a simulated host controller. It owns the responders behind
// the instruction and data buses, divides the system clock down to the core
// clock, and carries the external active-low reset through a two-flop
// synchronizer before inverting it to the core's active-high convention.
type Controller struct {
	instruction bus.Responder
	data        bus.Responder

	divider uint
	phase   uint

	// resetN is the external active-low reset line. The synchronizer flops
	// start asserted so the core comes up in reset.
	resetN bool
	sync   [2]bool

	pins PeripheralPins
}

// NewController creates a controller fronting the given responders with the
// given core clock divider. A divider of 0 or 1 runs the core on every
// system clock edge. The data responder may be nil when the deployment has
// no data bus.
func NewController(instruction, data bus.Responder, divider uint) *Controller {
	if divider == 0 {
		divider = 1
	}
	return &Controller{
		instruction: instruction,
		data:        data,
		divider:     divider,
	}
}

// InstructionResponder returns the mediated instruction bus endpoint.
func (c *Controller) InstructionResponder() bus.Responder {
	return c.instruction
}

// DataResponder returns the mediated data bus endpoint, or nil when the
// deployment has none.
func (c *Controller) DataResponder() bus.Responder {
	return c.data
}

// SetResetN drives the external active-low reset line. The new level
// reaches the core only after passing the synchronizer, two system clock
// edges later.
func (c *Controller) SetResetN(level bool) {
	c.resetN = level
}

// CoreReset returns the synchronized reset in the core's active-high
// convention.
func (c *Controller) CoreReset() bool {
	return !c.sync[1]
}

// CoreClockEnable reports whether the core advances on the current system
// clock edge.
func (c *Controller) CoreClockEnable() bool {
	return c.phase == 0
}

// Pins exposes the peripheral-control link.
func (c *Controller) Pins() *PeripheralPins {
	return &c.pins
}

// Tick advances the controller one system clock edge: the reset
// synchronizer shifts and the clock divider steps.
func (c *Controller) Tick() {
	c.sync[1] = c.sync[0]
	c.sync[0] = c.resetN

	c.phase++
	if c.phase == c.divider {
		c.phase = 0
	}
}
