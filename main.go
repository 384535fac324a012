package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/devstack-tools/localconf/config"
	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

// Options are the flags shared by every command
type Options struct {
	Configuration string   `short:"c" long:"configuration" description:"the local.conf file" default:"local.conf"`
	EnvFile       []string `long:"env-file" description:"KEY=value file seeding the variables, may be repeated"`
	UseEnviron    bool     `long:"use-environ" description:"seed the variables from the process environment"`
	Lenient       bool     `long:"lenient" description:"expand unresolved references to the empty string"`
	Verbose       bool     `short:"v" long:"verbose" description:"show debug logs"`
}

func init() {
	log.SetOutput(os.Stderr)
	if runtime.GOOS == "windows" {
		log.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	} else {
		log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true})
	}
	log.SetLevel(log.WarnLevel)
}

var options Options
var parser = flags.NewParser(&options, flags.Default & ^flags.PrintErrors)

// out receives command output
var out io.Writer = os.Stdout

func init() {
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if options.Verbose {
			log.SetLevel(log.DebugLevel)
		}
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}
}

func loadOptions() []config.Option {
	opts := make([]config.Option, 0)
	if options.UseEnviron {
		opts = append(opts, config.WithEnviron())
	}
	for _, f := range options.EnvFile {
		opts = append(opts, config.WithEnvFile(f))
	}
	if options.Lenient {
		opts = append(opts, config.WithLenient())
	}
	return opts
}

func loadConfig() (*config.Config, error) {
	return config.Load(options.Configuration, loadOptions()...)
}

func main() {
	if _, err := parser.Parse(); err != nil {
		flagsErr, ok := err.(*flags.Error)
		if ok {
			switch flagsErr.Type {
			case flags.ErrHelp:
				fmt.Fprintln(os.Stdout, err)
				os.Exit(0)
			case flags.ErrCommandRequired:
				parser.WriteHelp(os.Stderr)
				os.Exit(2)
			}
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
