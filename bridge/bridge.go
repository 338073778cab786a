// Package bridge wires a CPU core's instruction-fetch and data-access
// channels onto independent bus instances and selects the deployment
// boundary they face. The bridge itself is pure wiring: it holds no
// registers and recomputes every signal it drives from the core's current
// outputs on each clock edge.
package bridge

import (
	"errors"
	"fmt"

	"github.com/sarchlab/buslink/bus"
	"github.com/sarchlab/buslink/core"
	"github.com/sarchlab/buslink/host"
)

// Configuration errors surfaced at system construction. Referencing a
// channel the build flags exclude is a build failure, never a runtime one.
var (
	// ErrInvalidMode reports an unknown deployment mode selector.
	ErrInvalidMode = errors.New("bridge: invalid mode")

	// ErrDataBusDisabled reports a data-channel connection while the
	// dual-bus flag is off.
	ErrDataBusDisabled = errors.New("bridge: data bus disabled by configuration")

	// ErrDataBusUnconnected reports a dual-bus build whose boundary
	// supplies no data responder.
	ErrDataBusUnconnected = errors.New("bridge: dual-bus build has no data responder")
)

// instructionMaster presents the always-hot instruction channel. The cycle
// and strobe lines are forced high and the channel never writes; only the
// address is core-driven.
type instructionMaster struct {
	core core.Core
}

func (m *instructionMaster) Request() bus.Request {
	return bus.Request{
		CycleActive:  true,
		StrobeActive: true,
		IsWrite:      false,
		ByteEnable:   bus.ByteEnableAll,
		Address:      m.core.FetchAddress(),
		WriteData:    0,
	}
}

func (m *instructionMaster) PutResponse(r bus.Response) {
	m.core.PutFetchResponse(r)
}

// dataMaster presents the core's raw data-channel outputs. CycleActive is
// derived from the strobe; the core cannot drive it independently, so no
// cycle-hold period exists on this channel.
type dataMaster struct {
	core core.Core
}

func (m *dataMaster) Request() bus.Request {
	d := m.core.DataRequest()
	return bus.Request{
		CycleActive:  d.Strobe,
		StrobeActive: d.Strobe,
		IsWrite:      d.IsWrite,
		ByteEnable:   d.ByteEnable,
		Address:      d.Address,
		WriteData:    d.WriteData,
	}
}

func (m *dataMaster) PutResponse(r bus.Response) {
	m.core.PutDataResponse(r)
}

// ConnectInstructionChannel binds a core's fetch port to a responder as a
// new bus instance.
func ConnectInstructionChannel(c core.Core, r bus.Responder) *bus.Bus {
	return bus.New("ibus", &instructionMaster{core: c}, r)
}

// ConnectDataChannel binds a core's data port to a responder as a new bus
// instance.
func ConnectDataChannel(c core.Core, r bus.Responder) *bus.Bus {
	return bus.New("dbus", &dataMaster{core: c}, r)
}

// System is one assembled deployment: a core, its boundary, and the bus
// instance(s) between them, advancing in lockstep on the system clock.
type System struct {
	config   Config
	core     core.Core
	boundary Boundary

	ibus *bus.Bus
	dbus *bus.Bus // nil unless dual-bus

	cycles uint64
}

// New assembles a system from a core, a boundary, and a configuration. The
// dual-bus flag must agree with the boundary: a disabled data bus with a
// connected data responder, or an enabled one without, is a configuration
// error.
func New(c core.Core, b Boundary, config *Config) (*System, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dataResponder := b.DataResponder()
	if !config.DualBus && dataResponder != nil {
		return nil, ErrDataBusDisabled
	}
	if config.DualBus && dataResponder == nil {
		return nil, ErrDataBusUnconnected
	}

	s := &System{
		config:   *config,
		core:     c,
		boundary: b,
		ibus:     ConnectInstructionChannel(c, b.InstructionResponder()),
	}
	if config.DualBus {
		s.dbus = ConnectDataChannel(c, dataResponder)
	}
	return s, nil
}

// NewStandalone assembles a standalone system: the given responders are the
// direct bus boundary and no host controller exists anywhere in the build.
func NewStandalone(c core.Core, instruction, data bus.Responder, config *Config) (*System, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Mode != ModeStandalone {
		return nil, fmt.Errorf("%w: %q selected for a standalone build",
			ErrInvalidMode, config.Mode)
	}
	return New(c, NewStandaloneBoundary(instruction, data), config)
}

// NewHosted assembles a hosted system around the given controller, which
// exclusively supplies the core clock, the reset, and the bus endpoints.
func NewHosted(c core.Core, controller *host.Controller, config *Config) (*System, error) {
	if config == nil {
		config = DefaultConfig()
		config.Mode = ModeHosted
	}
	if config.Mode != ModeHosted {
		return nil, fmt.Errorf("%w: %q selected for a hosted build",
			ErrInvalidMode, config.Mode)
	}
	return New(c, NewHostedBoundary(controller), config)
}

// Config returns the build configuration.
func (s *System) Config() Config {
	return s.config
}

// Boundary returns the deployment boundary.
func (s *System) Boundary() Boundary {
	return s.boundary
}

// InstructionBus returns the instruction bus instance.
func (s *System) InstructionBus() *bus.Bus {
	return s.ibus
}

// DataBus returns the data bus instance, or nil when the dual-bus flag is
// off.
func (s *System) DataBus() *bus.Bus {
	return s.dbus
}

// Cycles returns the number of system clock edges stepped.
func (s *System) Cycles() uint64 {
	return s.cycles
}

// Step advances the system one system clock edge. The boundary ticks first;
// while the core is held in reset nothing else advances. On a core-clock
// edge each bus samples, responds, and delivers, then the core ticks.
func (s *System) Step() error {
	s.cycles++
	s.boundary.Tick()

	if s.boundary.CoreReset() || !s.boundary.CoreClockEnable() {
		return nil
	}

	if err := s.ibus.Tick(); err != nil {
		return err
	}
	if s.dbus != nil {
		if err := s.dbus.Tick(); err != nil {
			return err
		}
	}
	s.core.Tick()
	return nil
}

// Run steps the system n system clock edges, stopping at the first
// protocol error.
func (s *System) Run(n uint64) error {
	for i := uint64(0); i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}
