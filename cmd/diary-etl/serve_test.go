package main

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/fishing-diary-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPipeline_FinishesBeforeDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var finishedWith atomic.Value
	run := func(ctx context.Context) (pipeline.Summary, error) {
		<-ctx.Done()
		return pipeline.Summary{}, ctx.Err()
	}
	finish := func(err error) error {
		finishedWith.Store(err)
		return nil
	}

	done := runPipeline(ctx, run, finish, slog.New(slog.NewTextHandler(io.Discard, nil)))

	select {
	case <-done:
		t.Fatal("done closed while the run was still in progress")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed after cancellation")
	}

	got, ok := finishedWith.Load().(error)
	require.True(t, ok, "finish must run before done closes")
	assert.ErrorIs(t, got, context.Canceled)
}

func TestRunPipeline_SuccessPassesNilToFinish(t *testing.T) {
	finished := make(chan error, 1)
	run := func(context.Context) (pipeline.Summary, error) { return pipeline.Summary{Records: 2}, nil }
	finish := func(err error) error {
		finished <- err
		return nil
	}

	<-runPipeline(context.Background(), run, finish, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.Len(t, finished, 1)
	assert.NoError(t, <-finished)
}
