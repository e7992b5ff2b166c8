package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fishing-diary-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/fishing-diary-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Process the diary once, then serve health, metrics, and /parse",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	logger := a.logger

	srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.pipeline, a.parser, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Run the pipeline once; /readyz reports ready after it succeeds.
	done := runPipeline(ctx, a.pipeline.Run, a.finish, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// The run sees the cancelled ctx; wait so sinks are finished before exit.
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Error("pipeline did not stop before shutdown timeout")
	}

	logger.Info("shutdown complete")
	return nil
}

// runPipeline runs the pipeline in the background and finishes its sinks.
// The returned channel is closed once both are done.
func runPipeline(
	ctx context.Context,
	run func(context.Context) (pipeline.Summary, error),
	finish func(error) error,
	logger *slog.Logger,
) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, runErr := run(ctx)
		if runErr != nil {
			logger.Error("pipeline error", "error", runErr)
		}
		if err := finish(runErr); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}()
	return done
}
