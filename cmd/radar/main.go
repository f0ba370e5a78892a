package main

import (
	"os"

	"github.com/wonny/radar/cmd/radar/commands"
)

// main is the entry point for the radar CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
