package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"odata_batch/internal/batch/statusline"
	"odata_batch/internal/config"
	"odata_batch/internal/dispatch"
	"odata_batch/internal/transport"
	"odata_batch/internal/version"
)

const shutdownTimeout = 10 * time.Second

type Bootstrap struct {
	Config     config.Config
	Dispatcher dispatch.Dispatcher
	HTTPServer transport.Transport
	ServiceURI string
	ErrChan    chan error
	SignalChan chan os.Signal
}

func New(config config.Config, dispatcher dispatch.Dispatcher) (*Bootstrap, error) {
	resolver, err := statusline.NewResolver(config.BaseURI(), config.PathPrefix())
	if err != nil {
		return nil, fmt.Errorf("invalid service root: %w", err)
	}

	errChan := make(chan error, 5)
	signalChan := make(chan os.Signal, 1)

	return &Bootstrap{
		Config:     config,
		Dispatcher: dispatcher,
		HTTPServer: transport.NewHTTPServer(config, dispatcher),
		ServiceURI: resolver.BaseURI(),
		ErrChan:    errChan,
		SignalChan: signalChan,
	}, nil
}

func startHTTPServer(httpserver transport.Transport, errChan chan<- error) {
	ln, err := httpserver.Listen()
	if err != nil {
		errChan <- fmt.Errorf("failed to start http server: %w", err)
		return
	}
	if err = httpserver.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errChan <- fmt.Errorf("error when serving http server: %w", err)
	}
}

func (b *Bootstrap) Run() error {
	signal.Notify(b.SignalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(b.SignalChan)

	go startHTTPServer(b.HTTPServer, b.ErrChan)

	log.Printf("%s serving batches for %s (strict=%t)", version.GetVersion(), b.ServiceURI, b.Config.Strict())

	select {
	case err := <-b.ErrChan:
		return fmt.Errorf("service error: %w", err)
	case sig := <-b.SignalChan:
		log.Printf("Received signal %s, initiating graceful shutdown", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := b.HTTPServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	}
}
