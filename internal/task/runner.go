// Package task runs generation in the background for the HTTP surface.
// Generation is model-call heavy and inherently serial per machine, so the
// runner holds a single slot: starting a run while one is active is
// rejected rather than queued.
package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/service"
)

// ErrRunActive is returned by Start while a run is already in flight.
var ErrRunActive = errors.New("a generation run is already active")

// RunStatus represents the current state of a run.
type RunStatus string

// Possible run status values.
const (
	RunStatusPending    RunStatus = "pending"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Run is a snapshot of one generation run's state.
type Run struct {
	ID         uuid.UUID
	Status     RunStatus
	Request    service.GenerationRequest
	Result     *service.GenerationResult
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Runner executes generation runs one at a time in the background.
type Runner struct {
	logger *slog.Logger
	svc    *service.GenerationService

	mu     sync.Mutex
	runs   map[uuid.UUID]*Run
	active bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner backed by the generation service.
func NewRunner(logger *slog.Logger, svc *service.GenerationService) (*Runner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if svc == nil {
		return nil, errors.New("generation service cannot be nil")
	}
	return &Runner{
		logger: logger,
		svc:    svc,
		runs:   make(map[uuid.UUID]*Run),
	}, nil
}

// Start launches a generation run in the background and returns its id.
// Returns ErrRunActive while another run is in flight.
func (r *Runner) Start(req service.GenerationRequest, out service.OutputConfig) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return uuid.Nil, ErrRunActive
	}

	id := uuid.New()
	run := &Run{
		ID:        id,
		Status:    RunStatusPending,
		Request:   req,
		StartedAt: time.Now().UTC(),
	}
	r.runs[id] = run
	r.active = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go r.execute(ctx, id, req, out)

	r.logger.Info("generation run started",
		"run_id", id.String(),
		"topic", req.Topic,
		"workflow", req.Workflow)
	return id, nil
}

// execute performs the run and records the outcome.
func (r *Runner) execute(ctx context.Context, id uuid.UUID, req service.GenerationRequest, out service.OutputConfig) {
	defer r.wg.Done()

	r.setStatus(id, RunStatusProcessing)

	result, err := r.svc.Generate(ctx, req, out)

	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.runs[id]
	run.FinishedAt = time.Now().UTC()
	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
		r.logger.Error("generation run failed",
			"run_id", id.String(),
			"error", err)
	} else {
		run.Status = RunStatusCompleted
		run.Result = &result
		r.logger.Info("generation run completed",
			"run_id", id.String(),
			"cards", len(result.Cards))
	}
	r.active = false
	r.cancel = nil
}

func (r *Runner) setStatus(id uuid.UUID, status RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok {
		run.Status = status
	}
}

// Get returns a snapshot of the run with the given id.
func (r *Runner) Get(id uuid.UUID) (Run, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

// Active reports whether a run is currently in flight.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Stop cancels the active run, if any, and waits for it to finish. The
// cancellation is cooperative: the run stops at its next model call or
// retry delay.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}
