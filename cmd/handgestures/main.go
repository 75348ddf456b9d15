// Package main provides the hand gesture viewer.
//
// Usage:
//
//	handgestures [flags]
//	handgestures photos [--limit N]
//	handgestures discover [--timeout D]
//	handgestures version
//
// Configuration:
//
//	Settings are read from the --config YAML file, a .env file in the
//	working directory and HANDGESTURES_* environment variables.
package main

import (
	"fmt"
	"os"

	"github.com/PhilippeFerreiraDeSousa/hand-gestures/cmd/handgestures/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
