package main

import (
	"io"

	"github.com/devstack-tools/localconf/config"
	"github.com/google/renameio/v2"
)

// InitTemplateCommand implements flags.Commander interface
type InitTemplateCommand struct {
	OutFile string `short:"o" long:"output" description:"the output file name" required:"true"`
}

var initTemplateCommand InitTemplateCommand

// Execute execute the init command
func (x *InitTemplateCommand) Execute(args []string) error {
	f, err := renameio.NewPendingFile(x.OutFile, renameio.WithPermissions(0o644))
	if err != nil {
		return err
	}
	defer f.Cleanup()
	if err := GenTemplate(f); err != nil {
		return err
	}
	return f.CloseAtomicallyReplace()
}

// GenTemplate writes the sample Ironic local.conf
func GenTemplate(writer io.Writer) error {
	_, err := writer.Write([]byte(config.Sample))
	return err
}

func init() {
	parser.AddCommand("init",
		"initialize a template",
		"The init subcommand writes a sample local.conf for an Ironic development environment to the specified file",
		&initTemplateCommand)
}
