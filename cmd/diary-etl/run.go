package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one pass over the diary and write the outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runOnce(ctx)
		},
	}
}

func runOnce(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	summary, runErr := a.pipeline.Run(ctx)
	if err := a.finish(runErr); err != nil {
		a.logger.Error("sink close error", "error", err)
		if runErr == nil {
			return fmt.Errorf("finish outputs: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	a.logger.Info("outputs written",
		"output", a.cfg.OutputPath,
		"records", summary.Records,
		"water_readings", summary.WaterReadings,
	)
	return nil
}
