package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bracecheck/internal/api"
	"github.com/dgallion1/bracecheck/internal/balance"
	"github.com/dgallion1/bracecheck/internal/parser"
	"github.com/dgallion1/bracecheck/internal/pipeline"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
	cmd.Flags().String("port", "", "Listen port (overrides config)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if p, _ := cmd.Flags().GetString("port"); p != "" {
			a.cfg.Port = p
		}
	}
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	cfg := a.cfg
	log := a.log

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	kinds, err := balance.ParseKinds(cfg.Kinds)
	if err != nil {
		return err
	}
	metrics, err := pipeline.DefaultMetrics()
	if err != nil {
		log.Warn("metrics disabled", "error", err)
	}

	checker := pipeline.NewChecker(pipeline.Options{
		Extract: parser.Options{
			IncludeTags: cfg.IncludeTags,
			Strategy:    parser.Strategy(cfg.Strategy),
			Languages:   cfg.MarkdownLanguages,
		},
		Kinds:         kinds,
		MaxConcurrent: cfg.MaxConcurrentChecks,
		Hints:         true,
		Deltas:        true,
	}, metrics, pipeline.NewScanStats(time.Hour), log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, checker, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, checker, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting bracecheck", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		cancel()
		<-done
		return err
	}
	<-done
	return nil
}
