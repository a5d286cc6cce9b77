package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httptransport "github.com/example/od-mailer/internal/http"
)

const maxRequestBytes = 10 << 20

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the OD API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				opts.cfg.HTTPPort = port
			}
			return opts.withApp(cmd, func(a *app) error {
				return serve(cmd.Context(), a)
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides OD_HTTP_PORT)")
	return cmd
}

func newHandler(a *app) http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		OD:        httptransport.NewODHandler(a.service, maxRequestBytes, a.logger),
		Timetable: httptransport.NewTimetableHandler(a.service, a.logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(a.logger),
			httptransport.Recoverer(a.logger),
		},
	})
}

func serve(ctx context.Context, a *app) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:           newHandler(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	// Warm the cache so the first request does not pay for every source fetch.
	if _, err := a.repo.Load(ctx); err != nil {
		a.logger.Warn("timetable unavailable at startup", "error", err)
	}

	a.logger.Info("OD API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	return nil
}
