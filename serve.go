package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/devstack-tools/localconf/server"
	log "github.com/sirupsen/logrus"
)

// ServeCommand serves the configuration over HTTP
type ServeCommand struct {
	Listen string `short:"l" long:"listen" description:"address to listen on" default:"127.0.0.1:9010"`
}

var serveCommand ServeCommand

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		log.Info("receive a signal to stop serving")
	}()
	return ctx, cancel
}

// Execute loads the configuration and serves it until a signal arrives
func (x *ServeCommand) Execute(args []string) error {
	if !options.Verbose {
		log.SetLevel(log.InfoLevel)
	}
	h, err := server.NewHolder(options.Configuration, loadOptions()...)
	if err != nil {
		return err
	}

	s := server.NewHTTPServer(h)
	if err := s.Listen(x.Listen); err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return s.Serve(ctx)
}

func init() {
	parser.AddCommand("serve",
		"serve the configuration over HTTP",
		"The serve subcommand exposes the resolved configuration, check report and metrics, and reloads on change",
		&serveCommand)
}
