// Package main provides the entry point for the smh CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/sampledmh/cmd/smh/commands"
	"github.com/Sumatoshi-tech/sampledmh/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
