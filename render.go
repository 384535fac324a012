package main

import (
	"fmt"

	"github.com/devstack-tools/localconf/metaconfig"
)

// RenderCommand groups the render subcommands
type RenderCommand struct {
}

// RenderLocalrcCommand writes the localrc part of the configuration
type RenderLocalrcCommand struct {
	OutFile string `short:"o" long:"output" description:"the output file name" required:"true"`
}

// RenderConfigCommand merges the meta-sections of a phase into files below a root
type RenderConfigCommand struct {
	Phase string `short:"p" long:"phase" description:"the phase to render" default:"post-config"`
	Root  string `short:"r" long:"root" description:"directory the target files are written below" required:"true"`
}

var renderCommand RenderCommand
var renderLocalrcCommand RenderLocalrcCommand
var renderConfigCommand RenderConfigCommand

// Execute writes the localrc
func (x *RenderLocalrcCommand) Execute(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	return metaconfig.WriteLocalrc(c, x.OutFile)
}

// Execute merges the sections of the phase and prints each target file
func (x *RenderConfigCommand) Execute(args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	results, err := metaconfig.Apply(c, x.Phase, x.Root)
	if err != nil {
		return err
	}
	for _, r := range results {
		state := "unchanged"
		if r.Changed {
			state = "written"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", r.Name, r.FullPath, state)
	}
	return nil
}

func init() {
	renderCmd, _ := parser.AddCommand("render",
		"render files",
		"The render subcommand writes the files DevStack derives from local.conf",
		&renderCommand)
	renderCmd.AddCommand("localrc",
		"write the localrc",
		"write the concatenated [[local|localrc]] sections as written",
		&renderLocalrcCommand)
	renderCmd.AddCommand("config",
		"merge meta-sections",
		"merge the INI payload of each meta-section of a phase into its target file below a root directory",
		&renderConfigCommand)
}
