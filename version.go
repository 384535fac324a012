package main

import (
	"fmt"
)

// Version of localconf
const Version = "v0.3"

// VersionCommand prints the version
type VersionCommand struct {
}

var versionCommand VersionCommand

// Execute executes the version command
func (v VersionCommand) Execute(args []string) error {
	fmt.Fprintln(out, Version)
	return nil
}

func init() {
	parser.AddCommand("version",
		"show the version of localconf",
		"display the localconf version",
		&versionCommand)
}
