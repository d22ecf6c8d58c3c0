package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/store"
)

// AmbiguousCoveragePolicy decides what happens when the coverage evaluation
// returns an answer that is neither COMPLETE nor MORE_NEEDED (including
// unparseable output). The historical behavior of treating ambiguity as
// completion can mask real model errors as success, so the policy is an
// explicit constructor argument and every ambiguous answer is logged.
type AmbiguousCoveragePolicy string

const (
	// PolicyTerminate stops the run on an ambiguous answer. Fail-safe
	// default: never loops on a misbehaving model.
	PolicyTerminate AmbiguousCoveragePolicy = "terminate"

	// PolicyContinue retries evaluation on the next pass, still bounded by
	// the iteration ceiling.
	PolicyContinue AmbiguousCoveragePolicy = "continue"
)

// IterationController drives the bounded generation loop:
//
//	collectConcepts -> generateBatch -> evaluateCoverage -> {generateBatch | terminate}
//
// It alternates between synthesizing cards for pending concepts and asking
// the model whether topic coverage is sufficient, stopping on an explicit
// complete signal, the card ceiling, or the iteration ceiling. The loop
// owns its state exclusively for the duration of a run.
type IterationController struct {
	logger      *slog.Logger
	client      ModelClient
	enumerator  *ConceptEnumerator
	synthesizer *CardSynthesizer
	checkpoints store.CheckpointStore
	policy      AmbiguousCoveragePolicy
}

// NewIterationController creates a controller. checkpoints may be nil, in
// which case runs are never persisted and session resumption is disabled.
func NewIterationController(
	logger *slog.Logger,
	client ModelClient,
	enumerator *ConceptEnumerator,
	synthesizer *CardSynthesizer,
	checkpoints store.CheckpointStore,
	policy AmbiguousCoveragePolicy,
) (*IterationController, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if client == nil {
		return nil, errors.New("model client cannot be nil")
	}
	if enumerator == nil {
		return nil, errors.New("enumerator cannot be nil")
	}
	if synthesizer == nil {
		return nil, errors.New("synthesizer cannot be nil")
	}
	if policy == "" {
		policy = PolicyTerminate
	}
	return &IterationController{
		logger:      logger,
		client:      client,
		enumerator:  enumerator,
		synthesizer: synthesizer,
		checkpoints: checkpoints,
		policy:      policy,
	}, nil
}

// Run executes the iteration loop to completion and returns the final
// state. When a checkpoint exists for sessionID the run resumes from it
// instead of starting over. Ceiling breaches terminate the run with the
// cards accumulated so far; they are never an error.
func (c *IterationController) Run(ctx context.Context, sessionID string, seed IterationState) IterationState {
	state := c.resume(ctx, sessionID, seed)

	c.logger.InfoContext(ctx, "starting iterative generation",
		"topic", state.Topic,
		"session_id", sessionID,
		"max_cards", state.MaxCards,
		"max_iterations", state.MaxIterations)

	state = c.collectConcepts(ctx, state)
	c.checkpoint(ctx, sessionID, state)

	for !state.Complete {
		state = c.generateBatch(ctx, state)
		c.checkpoint(ctx, sessionID, state)
		if state.Complete {
			break
		}

		state = c.evaluateCoverage(ctx, state)
		c.checkpoint(ctx, sessionID, state)
	}

	c.logger.InfoContext(ctx, "iterative generation finished",
		"topic", state.Topic,
		"cards", len(state.Cards),
		"iterations", state.Iteration)
	return state
}

// resume loads a prior checkpoint for the session when one exists and the
// topic matches; otherwise it returns the seed unchanged.
func (c *IterationController) resume(ctx context.Context, sessionID string, seed IterationState) IterationState {
	if c.checkpoints == nil || sessionID == "" {
		return seed
	}

	blob, err := c.checkpoints.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.WarnContext(ctx, "failed to load checkpoint, starting fresh",
				"session_id", sessionID,
				"error", err)
		}
		return seed
	}

	var saved IterationState
	if err := json.Unmarshal(blob, &saved); err != nil {
		c.logger.WarnContext(ctx, "corrupt checkpoint, starting fresh",
			"session_id", sessionID,
			"error", err)
		return seed
	}

	if saved.Topic != seed.Topic {
		c.logger.WarnContext(ctx, "checkpoint topic mismatch, starting fresh",
			"session_id", sessionID,
			"checkpoint_topic", saved.Topic,
			"requested_topic", seed.Topic)
		return seed
	}

	c.logger.InfoContext(ctx, "resuming from checkpoint",
		"session_id", sessionID,
		"cards", len(saved.Cards),
		"iteration", saved.Iteration)
	return saved
}

// checkpoint saves the state best-effort. Failures are logged and ignored;
// no invariant depends on the store working.
func (c *IterationController) checkpoint(ctx context.Context, sessionID string, state IterationState) {
	if c.checkpoints == nil || sessionID == "" {
		return
	}

	blob, err := json.Marshal(state)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode checkpoint", "error", err)
		return
	}
	if err := c.checkpoints.Save(ctx, sessionID, blob); err != nil {
		c.logger.WarnContext(ctx, "failed to save checkpoint",
			"session_id", sessionID,
			"error", err)
	}
}

// collectConcepts populates the pending list once. Entering with concepts
// already pending (a resumed run) is a no-op.
func (c *IterationController) collectConcepts(ctx context.Context, state IterationState) IterationState {
	if len(state.Pending) > 0 {
		c.logger.InfoContext(ctx, "concepts already loaded, skipping initial collection",
			"pending", len(state.Pending))
		return state
	}
	if state.Complete {
		return state
	}

	concepts := c.enumerator.FlatConcepts(ctx, state.Topic, state.CardsPerIteration)
	return state.withCards(state.Cards, concepts)
}

// generateBatch pops up to CardsPerIteration pending concepts, synthesizes
// cards for them, and appends the results. Hitting the card ceiling
// truncates the accumulated list to MaxCards (first cards win, the
// remainder is discarded) and terminates regardless of remaining pending
// concepts.
func (c *IterationController) generateBatch(ctx context.Context, state IterationState) IterationState {
	if len(state.Pending) == 0 {
		c.logger.InfoContext(ctx, "no pending concepts to process")
		return state
	}

	batchSize := state.CardsPerIteration
	if batchSize > len(state.Pending) {
		batchSize = len(state.Pending)
	}
	batch := state.Pending[:batchSize]
	remaining := state.Pending[batchSize:]

	generated := c.synthesizer.SynthesizeBatch(ctx, state.Topic, batch)

	accumulated := make([]domain.Card, 0, len(state.Cards)+len(generated))
	accumulated = append(accumulated, state.Cards...)
	accumulated = append(accumulated, generated...)

	if len(accumulated) >= state.MaxCards {
		discarded := len(accumulated) - state.MaxCards
		if discarded > 0 {
			// Generated cards beyond the ceiling are paid for and thrown
			// away; keep that visible.
			c.logger.WarnContext(ctx, "card ceiling reached, truncating batch",
				"max_cards", state.MaxCards,
				"discarded", discarded)
		} else {
			c.logger.InfoContext(ctx, "card ceiling reached",
				"max_cards", state.MaxCards)
		}
		next := state.withCards(accumulated[:state.MaxCards], nil)
		return next.terminated(next.Iteration)
	}

	return state.withCards(accumulated, remaining)
}

// evaluateCoverage decides whether to loop or stop. Ceiling checks come
// first and force termination. Pending work from the last batch skips the
// model call entirely: processing known concepts takes priority over
// asking for more. The iteration counter increments once per pass through
// this transition.
func (c *IterationController) evaluateCoverage(ctx context.Context, state IterationState) IterationState {
	if len(state.Cards) >= state.MaxCards {
		c.logger.InfoContext(ctx, "card ceiling already reached, terminating",
			"max_cards", state.MaxCards)
		return state.terminated(state.Iteration)
	}

	if state.Iteration >= state.MaxIterations {
		c.logger.InfoContext(ctx, "iteration ceiling reached, forcing termination",
			"max_iterations", state.MaxIterations)
		return state.terminated(state.Iteration)
	}

	if len(state.Pending) > 0 {
		c.logger.InfoContext(ctx, "pending concepts remain, skipping coverage evaluation",
			"pending", len(state.Pending))
		return state.withIteration(state.Iteration+1, state.Pending)
	}

	c.logger.InfoContext(ctx, "evaluating topic coverage",
		"topic", state.Topic,
		"iteration", state.Iteration+1)

	prompt, err := renderPrompt("coverage.tmpl", struct {
		Topic           string
		ExistingContext string
	}{Topic: state.Topic, ExistingContext: summarizeCards(state.Cards)})
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to build coverage prompt", "error", err)
		return state.terminated(state.Iteration + 1)
	}

	raw, err := c.client.Generate(ctx, prompt)
	if err != nil {
		c.logger.ErrorContext(ctx, "coverage evaluation call failed, terminating",
			"error", err)
		return state.terminated(state.Iteration + 1)
	}

	decision := decodeCoverage(raw)
	c.logger.InfoContext(ctx, "coverage evaluation decided",
		"status", string(decision.Status),
		"new_concepts", len(decision.NewConcepts))

	switch decision.Status {
	case CoverageComplete:
		return state.terminated(state.Iteration + 1)
	case CoverageMoreNeeded:
		return state.withIteration(state.Iteration+1, decision.NewConcepts)
	default:
		c.logger.WarnContext(ctx, "ambiguous coverage status from model",
			"policy", string(c.policy),
			"raw_length", len(raw))
		if c.policy == PolicyContinue {
			return state.withIteration(state.Iteration+1, nil)
		}
		return state.terminated(state.Iteration + 1)
	}
}

// summarizeCards renders a short context of accumulated cards for the
// coverage prompt, capped to stay inside context limits.
func summarizeCards(cards []domain.Card) string {
	if len(cards) == 0 {
		return "No cards generated yet."
	}

	const maxSummaries = 10
	const maxQuestionLen = 50

	var b strings.Builder
	for i, card := range cards {
		if i >= maxSummaries {
			break
		}
		question := card.Content.Question
		if len(question) > maxQuestionLen {
			question = question[:maxQuestionLen] + "..."
		}
		fmt.Fprintf(&b, "- %s\n", question)
	}
	if len(cards) > maxSummaries {
		fmt.Fprintf(&b, "... (and %d more cards)\n", len(cards)-maxSummaries)
	}
	return strings.TrimRight(b.String(), "\n")
}
