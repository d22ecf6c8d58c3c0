package task

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/examples"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/mocks"
	"github.com/phrazzld/ankigen/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunner(t *testing.T, client generation.ModelClient) *Runner {
	t.Helper()

	outDir := t.TempDir()
	loader, err := examples.NewLoader(testLogger(), t.TempDir())
	require.NoError(t, err)

	svc, err := service.NewGenerationService(testLogger(), client, loader, nil, config.GenerationConfig{
		MaxCards:          100,
		MaxIterations:     5,
		CardsPerIteration: 5,
		ExamplesDir:       t.TempDir(),
		DeckOutputDir:     outDir,
		PreviewOutputDir:  outDir,
	})
	require.NoError(t, err)

	runner, err := NewRunner(testLogger(), svc)
	require.NoError(t, err)
	t.Cleanup(runner.Stop)
	return runner
}

func validRequest() service.GenerationRequest {
	return service.GenerationRequest{
		Topic:    "Addition",
		NumCards: 1,
		Workflow: service.WorkflowTopic,
	}
}

// blockingClient parks every model call until release is closed.
func blockingClient(release <-chan struct{}) *mocks.FuncModelClient {
	return &mocks.FuncModelClient{
		Fn: func(ctx context.Context, prompt string) (string, error) {
			select {
			case <-release:
			case <-ctx.Done():
				return "", ctx.Err()
			}
			if strings.Contains(prompt, "Generate an Anki flashcard for concept") {
				return `{"front_question_text": "Q", "back_answer": "A"}`, nil
			}
			return `["c1"]`, nil
		},
	}
}

func waitForStatus(t *testing.T, runner *Runner, id uuid.UUID, want RunStatus) Run {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		run, ok := runner.Get(id)
		if ok && run.Status == want {
			return run
		}
		select {
		case <-deadline:
			t.Fatalf("run %s never reached status %s (last: %+v)", id, want, run)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartRejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	runner := newTestRunner(t, blockingClient(release))

	first, err := runner.Start(validRequest(), service.OutputConfig{Kind: service.OutputPreview})
	require.NoError(t, err)
	assert.True(t, runner.Active())

	_, err = runner.Start(validRequest(), service.OutputConfig{})
	assert.ErrorIs(t, err, ErrRunActive)

	close(release)
	run := waitForStatus(t, runner, first, RunStatusCompleted)
	require.NotNil(t, run.Result)
	assert.Len(t, run.Result.Cards, 1)

	// Slot is free again.
	assert.False(t, runner.Active())
}

func TestRunFailureIsRecorded(t *testing.T) {
	t.Parallel()

	// Every call fails: no concepts, no cards, zero-card sentinel.
	runner := newTestRunner(t, &mocks.StaticModelClient{Err: assert.AnError})

	id, err := runner.Start(validRequest(), service.OutputConfig{})
	require.NoError(t, err)

	run := waitForStatus(t, runner, id, RunStatusFailed)
	assert.Contains(t, run.Error, "no cards")
	assert.Nil(t, run.Result)
	assert.False(t, run.FinishedAt.IsZero())
}

func TestGetUnknownRun(t *testing.T) {
	t.Parallel()

	runner := newTestRunner(t, &mocks.StaticModelClient{})

	_, ok := runner.Get(uuid.New())
	assert.False(t, ok)
}

func TestStopCancelsActiveRun(t *testing.T) {
	t.Parallel()

	// Never released: the run only ends via context cancellation.
	runner := newTestRunner(t, blockingClient(make(chan struct{})))

	id, err := runner.Start(validRequest(), service.OutputConfig{})
	require.NoError(t, err)

	runner.Stop()

	run, ok := runner.Get(id)
	require.True(t, ok)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.False(t, runner.Active())
}
