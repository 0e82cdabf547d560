package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/gcbaptista/go-lsh-search/api"
	"github.com/gcbaptista/go-lsh-search/internal/engine"
	"github.com/gcbaptista/go-lsh-search/internal/metrics"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Start the HTTP API. Indexes live in memory and are built by POST /indexes.

Examples:
  lshsearch serve
  lshsearch serve --port 9090
  LSH_LOGGING_FORMAT=json lshsearch serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(os.Stdout)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if cfg.Logging.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			eng := engine.FromConfig(cfg, m)
			defer eng.Close()

			server := &http.Server{
				Addr:         cfg.Server.Addr(),
				Handler:      api.NewRouter(eng, m, cfg.Server),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("starting lshsearch server",
					"addr", server.Addr,
					"job_workers", cfg.Jobs.MaxWorkers,
					"build_workers", cfg.Build.EffectiveWorkers(),
				)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					slog.Error("server failed", "error", err)
					return err
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("shutting down server", "timeout", cfg.Server.ShutdownTimeout)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("graceful shutdown failed", "error", err)
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (0 = config value)")
	return cmd
}
