// Package server exposes a loaded local.conf as a read-only HTTP API and
// reloads it when the file changes.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer serves the REST handler of a Holder
type HTTPServer struct {
	holder *Holder
	ln     net.Listener
	srv    *http.Server
}

// NewHTTPServer creates a server for h
func NewHTTPServer(h *Holder) *HTTPServer {
	return &HTTPServer{holder: h}
}

// Addr returns the listening address, or nil before Listen
func (p *HTTPServer) Addr() net.Addr {
	if p.ln == nil {
		return nil
	}
	return p.ln.Addr()
}

// Listen opens the tcp listener on listenAddr
func (p *HTTPServer) Listen(listenAddr string) error {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	p.ln = ln
	p.srv = &http.Server{
		Handler:           NewConfigRestful(p.holder).CreateHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithFields(log.Fields{"addr": ln.Addr().String()}).Info("start http server")
	return nil
}

// Serve serves requests and watches the configuration until ctx is done
func (p *HTTPServer) Serve(ctx context.Context) error {
	if p.ln == nil {
		return errors.New("server is not listening")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := p.holder.Watch(watchCtx); err != nil {
			log.Error("configuration watcher stopped: ", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.srv.Serve(p.ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return p.Stop()
	}
}

// Stop stops network listening
func (p *HTTPServer) Stop() error {
	if p.srv == nil {
		return nil
	}
	log.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return p.srv.Shutdown(ctx)
}
