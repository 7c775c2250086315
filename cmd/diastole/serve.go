package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httpAdapter "github.com/aretw0/diastole/pkg/adapters/http"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the stateless HTTP server",
		Long:  `Exposes the algorithms as a JSON API over HTTP. Clients carry their own history between requests.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}

			opts := httpAdapter.Options{
				Logger:           a.logger,
				ValidateRequests: a.cfg.HTTP.ValidateRequests,
			}
			if a.cfg.HTTP.Metrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				opts.Registry = reg
			}

			handler, err := httpAdapter.NewHandler(a.engine, opts)
			if err != nil {
				return fmt.Errorf("failed to build handler: %w", err)
			}

			srv := &http.Server{
				Addr:              a.cfg.Listen,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("Starting Diastole Server", "address", srv.Addr, "metrics", opts.Registry != nil)
				serverErrors <- srv.ListenAndServe()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				a.logger.Info("Start shutdown")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("Graceful shutdown did not complete", "error", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				a.logger.Info("Diastole Server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (overrides the config)")
	return cmd
}
