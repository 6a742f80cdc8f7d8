package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dhmun/mediapack/internal/server"
)

// Serve starts the HTTP API server for catalog and pack endpoints.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureEngines(); err != nil {
		return err
	}

	host := r.config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := r.config.Server.Port
	if cmd.Int("port") != 0 {
		port = int(cmd.Int("port"))
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.RequestLogger(r.logger))
	router.Handler(server.NewCatalogHandler(r.catalog, r.logger))
	router.Handler(server.NewPackHandler(r.engine, r.logger))
	router.Handler(&server.HealthHandler{})

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	}
}
