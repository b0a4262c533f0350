package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

type cargoAPIOpts struct {
	httpAddr    string
	swaggerPath string

	onListen func(httpAddr string)
}

// drainer is satisfied by the lifecycle coordinator: Wait blocks until
// background side effects have finished.
type drainer interface {
	Wait()
}

func runCargoAPI(ctx context.Context, opts cargoAPIOpts, handler http.Handler, sideEffects drainer) error {
	if opts.swaggerPath != "" {
		if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
			return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
		}
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown", "err", err)
			_ = srv.Close()
		}
	}()

	slog.Info("HTTP API listening", "addr", lis.Addr().String())
	err = srv.Serve(lis)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	// запросы завершены, дожидаемся фоновых событий и писем
	if sideEffects != nil {
		sideEffects.Wait()
	}
	return ctx.Err()
}
