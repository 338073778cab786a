// Package main provides the buslink CLI. It assembles a core against the
// interconnect in the selected deployment mode, runs a scripted bus
// workload, and reports per-bus statistics.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/buslink/bridge"
	"github.com/sarchlab/buslink/bus"
	"github.com/sarchlab/buslink/core"
	"github.com/sarchlab/buslink/host"
	"github.com/sarchlab/buslink/mem"
)

var (
	mode       = flag.String("mode", "standalone", "Deployment mode: standalone or hosted")
	configPath = flag.String("config", "", "Path to interconnect configuration JSON file")
	cycles     = flag.Uint64("cycles", 100, "Number of system clock cycles to simulate")
	divider    = flag.Uint("divider", 0, "Hosted-mode core clock divider (overrides config)")
	latency    = flag.Uint64("latency", 1, "Memory acknowledge latency in cycles")
	cached     = flag.Bool("cache", false, "Put a cache model in front of the data memory")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	memory := mem.NewMemory()
	c := core.NewScriptedCore(config.ResetVector, workload())

	system, cache, err := assemble(c, memory, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error assembling system: %v\n", err)
		os.Exit(1)
	}

	if err := system.Run(*cycles); err != nil {
		fmt.Fprintf(os.Stderr, "Protocol error: %v\n", err)
		os.Exit(1)
	}

	if cache != nil {
		cache.Flush()
	}
	report(system, c, memory, cache)
}

// loadConfig merges the config file, if any, with the command line.
func loadConfig() (*bridge.Config, error) {
	config := bridge.DefaultConfig()
	if *configPath != "" {
		loaded, err := bridge.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	config.Mode = bridge.Mode(*mode)
	if *divider != 0 {
		config.ClockDivider = *divider
	}
	return config, config.Validate()
}

// workload is the demonstration script: a masked write, full-word traffic,
// and reads verifying the stored values.
func workload() []core.Op {
	return []core.Op{
		core.Write(0x1000, bus.ByteEnableAll, 0x11223344),
		core.Write(0x1000, 0x03, 0xCAFEBABE),
		core.Read(0x1000),
		{Delay: 5, IsWrite: true, Address: 0x2000, ByteEnable: bus.ByteEnableAll, WriteData: 0xA5A5A5A5},
		core.Read(0x2000),
	}
}

// assemble builds the system for the selected deployment mode. The cache
// reference, when enabled, lets the caller flush before inspecting memory.
func assemble(c core.Core, memory *mem.Memory, config *bridge.Config) (*bridge.System, *mem.CachedResponder, error) {
	iresp := mem.NewResponder(memory, *latency)

	var dresp bus.Responder
	var cache *mem.CachedResponder
	if config.DualBus {
		if *cached {
			cache = mem.NewCachedResponder(mem.DefaultCacheConfig(), memory)
			dresp = cache
		} else {
			dresp = mem.NewResponder(memory, *latency)
		}
	}

	if config.Mode == bridge.ModeHosted {
		controller := host.NewController(iresp, dresp, config.ClockDivider)
		controller.SetResetN(true)
		system, err := bridge.NewHosted(c, controller, config)
		return system, cache, err
	}
	system, err := bridge.NewStandalone(c, iresp, dresp, config)
	return system, cache, err
}

// report prints run statistics.
func report(system *bridge.System, c *core.ScriptedCore, memory *mem.Memory, cache *mem.CachedResponder) {
	fmt.Printf("Mode: %s\n", system.Config().Mode)
	fmt.Printf("Cycles: %d\n", system.Cycles())
	fmt.Printf("Fetches: %d (pc=%#x)\n", c.FetchCount(), c.PC())
	fmt.Printf("Script done: %v\n", c.Done())

	printBusStats("ibus", system.InstructionBus().Stats())
	if dbus := system.DataBus(); dbus != nil {
		printBusStats("dbus", dbus.Stats())
	}

	if cache != nil {
		cs := cache.Stats()
		fmt.Printf("cache: hits=%d misses=%d evictions=%d writebacks=%d\n",
			cs.Hits, cs.Misses, cs.Evictions, cs.Writebacks)
	}

	if *verbose {
		fmt.Printf("\nRead values: %#x\n", c.ReadValues())
		fmt.Printf("mem[0x1000] = %#08x\n", memory.Read32(0x1000))
		fmt.Printf("mem[0x2000] = %#08x\n", memory.Read32(0x2000))
	}
}

func printBusStats(name string, stats bus.Statistics) {
	fmt.Printf("%s: transfers=%d (r=%d w=%d) acks=%d stalls=%d idle=%d\n",
		name, stats.Transfers, stats.Reads, stats.Writes,
		stats.Acks, stats.StallCycles, stats.IdleCycles)
}
