// Package main provides the entry point for buslink.
// buslink is a cycle-level simulator of a CPU bus interconnect.
//
// For the full CLI, use: go run ./cmd/buslink
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("buslink - CPU bus interconnect simulator")
	fmt.Println("")
	fmt.Println("Usage: buslink [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -mode      Deployment mode: standalone or hosted")
	fmt.Println("  -config    Path to interconnect configuration JSON file")
	fmt.Println("  -cycles    Number of system clock cycles to simulate")
	fmt.Println("  -divider   Hosted-mode core clock divider")
	fmt.Println("  -latency   Memory acknowledge latency in cycles")
	fmt.Println("  -cache     Put a cache model in front of the data memory")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/buslink' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/buslink' instead.")
	}
}
