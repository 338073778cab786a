package bridge

import (
	"encoding/json"
	"fmt"
	"os"
)

// Mode selects the deployment wiring. Exactly one mode is active per
// system; there is no runtime switching.
type Mode string

const (
	// ModeStandalone exposes the bus wires directly at the system
	// boundary; the harness supplies the responders and the core runs on
	// the system clock.
	ModeStandalone Mode = "standalone"

	// ModeHosted routes the bus wires, the derived core clock, and the
	// synchronized reset through a host controller.
	ModeHosted Mode = "hosted"
)

// Config holds the build-time selections of the interconnect.
type Config struct {
	// Mode selects standalone or hosted wiring.
	Mode Mode `json:"mode"`

	// DualBus gives the data channel its own bus instance. When false,
	// only the instruction bus exists and connecting anything to the data
	// channel is a configuration error.
	DualBus bool `json:"dual_bus"`

	// ClockDivider is the hosted-mode system-to-core clock ratio.
	// Ignored in standalone mode. Default: 1.
	ClockDivider uint `json:"clock_divider"`

	// ResetVector is the first fetch address after reset.
	ResetVector uint32 `json:"reset_vector"`
}

// DefaultConfig returns the modeled build: standalone, dual-bus, core on
// the system clock, fetching from address zero.
func DefaultConfig() *Config {
	return &Config{
		Mode:         ModeStandalone,
		DualBus:      true,
		ClockDivider: 1,
	}
}

// Validate checks the configuration for values no build could realize.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeStandalone, ModeHosted:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.ClockDivider == 0 {
		return fmt.Errorf("clock divider must be at least 1")
	}
	if c.ResetVector%4 != 0 {
		return fmt.Errorf("reset vector %#x is not word aligned", c.ResetVector)
	}
	return nil
}

// LoadConfig loads a Config from a JSON file. Absent fields keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interconnect config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse interconnect config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal interconnect config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write interconnect config file: %w", err)
	}

	return nil
}
