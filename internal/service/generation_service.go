// Package service orchestrates card generation end to end: request
// validation, workflow selection, and deck packaging.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/ankigen/internal/config"
	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/examples"
	"github.com/phrazzld/ankigen/internal/generation"
	"github.com/phrazzld/ankigen/internal/packager"
	"github.com/phrazzld/ankigen/internal/store"
	"github.com/phrazzld/ankigen/internal/workflow"
)

// ErrNoCards is returned when a run completes without producing a single
// card. An empty result is a distinguishable outcome, not a crash: callers
// decide whether to surface it as a failure.
var ErrNoCards = errors.New("generation produced no cards")

// Workflow names accepted in a GenerationRequest.
const (
	WorkflowTopic     = "topic"
	WorkflowModule    = "module"
	WorkflowSubject   = "subject"
	WorkflowIterative = "iterative"
)

// GenerationRequest describes one generation run.
type GenerationRequest struct {
	// Topic is the subject matter: a subtopic, module, or subject name
	// depending on the workflow.
	Topic string `validate:"required"`

	// NumCards is the requested card count (interpretation varies by
	// workflow: per-topic for module, total ceiling for iterative).
	NumCards int `validate:"required,gte=1,lte=50"`

	// Workflow selects the generation strategy.
	Workflow string `validate:"required,oneof=topic module subject iterative"`

	// DeckName defaults to "Generated Flashcards: <topic>".
	DeckName string

	// SessionID keys checkpoint resumption; defaults to a fresh UUID.
	SessionID string

	// Domain selects a few-shot example set; empty means zero-shot.
	Domain string

	// Template selects the card template set; empty means the default.
	Template string
}

// Output kinds.
const (
	OutputAPKG    = "apkg"
	OutputPreview = "preview"
)

// OutputConfig describes where and how the result is written.
type OutputConfig struct {
	// Kind is "apkg" or "preview"; empty means "apkg".
	Kind string

	// Filename is the output file name; extension is normalized to the
	// kind. Empty derives the name from the deck name.
	Filename string

	// Dir overrides the configured output directory for the kind.
	Dir string
}

// GenerationResult is the outcome of one successful run.
type GenerationResult struct {
	Cards      []domain.Card
	SessionID  string
	OutputPath string
	DeckName   string
	Workflow   string
}

// GenerationService wires the generation pipeline together.
type GenerationService struct {
	logger      *slog.Logger
	client      generation.ModelClient
	loader      *examples.Loader
	checkpoints store.CheckpointStore
	cfg         config.GenerationConfig
	validate    *validator.Validate
}

// NewGenerationService creates the service. checkpoints may be nil, which
// disables session resumption.
func NewGenerationService(
	logger *slog.Logger,
	client generation.ModelClient,
	loader *examples.Loader,
	checkpoints store.CheckpointStore,
	cfg config.GenerationConfig,
) (*GenerationService, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if client == nil {
		return nil, errors.New("model client cannot be nil")
	}
	if loader == nil {
		return nil, errors.New("example loader cannot be nil")
	}
	return &GenerationService{
		logger:      logger,
		client:      client,
		loader:      loader,
		checkpoints: checkpoints,
		cfg:         cfg,
		validate:    validator.New(),
	}, nil
}

// Domains lists the available few-shot example domains.
func (s *GenerationService) Domains() []string {
	return s.loader.ListDomains()
}

// Generate runs the requested workflow and packages the result.
func (s *GenerationService) Generate(
	ctx context.Context,
	req GenerationRequest,
	out OutputConfig,
) (GenerationResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return GenerationResult{}, fmt.Errorf("invalid generation request: %w", err)
	}
	if req.Template != "" && !packager.IsValidTemplate(req.Template) {
		return GenerationResult{}, fmt.Errorf("invalid generation request: unknown template %q", req.Template)
	}

	if req.DeckName == "" {
		req.DeckName = "Generated Flashcards: " + req.Topic
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	s.logger.InfoContext(ctx, "starting generation run",
		"topic", req.Topic,
		"workflow", req.Workflow,
		"num_cards", req.NumCards,
		"session_id", req.SessionID,
		"domain", req.Domain)

	cards, err := s.runWorkflow(ctx, req)
	if err != nil {
		return GenerationResult{}, err
	}
	if len(cards) == 0 {
		return GenerationResult{}, fmt.Errorf("%w: topic %q", ErrNoCards, req.Topic)
	}

	dest, err := s.resolveOutputPath(req, out)
	if err != nil {
		return GenerationResult{}, err
	}

	pkg, err := s.buildPackager(req, out)
	if err != nil {
		return GenerationResult{}, err
	}
	if err := pkg.Package(ctx, cards, dest); err != nil {
		return GenerationResult{}, fmt.Errorf("failed to package deck: %w", err)
	}

	s.logger.InfoContext(ctx, "generation run complete",
		"topic", req.Topic,
		"cards", len(cards),
		"output", dest)

	return GenerationResult{
		Cards:      cards,
		SessionID:  req.SessionID,
		OutputPath: dest,
		DeckName:   req.DeckName,
		Workflow:   req.Workflow,
	}, nil
}

// runWorkflow builds the generation components for this run and dispatches
// to the selected workflow.
func (s *GenerationService) runWorkflow(ctx context.Context, req GenerationRequest) ([]domain.Card, error) {
	exampleRecords := s.loader.Load(ctx, req.Domain)

	enumerator, err := generation.NewConceptEnumerator(s.logger, s.client)
	if err != nil {
		return nil, err
	}
	synthesizer, err := generation.NewCardSynthesizer(s.logger, s.client, req.Domain, exampleRecords)
	if err != nil {
		return nil, err
	}
	topicWF, err := workflow.NewTopic(s.logger, enumerator, synthesizer)
	if err != nil {
		return nil, err
	}

	switch req.Workflow {
	case WorkflowTopic:
		return topicWF.Generate(ctx, "General", req.Topic, req.NumCards)

	case WorkflowModule:
		moduleWF, err := workflow.NewModule(s.logger, enumerator, topicWF)
		if err != nil {
			return nil, err
		}
		cardsPerTopic := req.NumCards / 3
		if cardsPerTopic < 2 {
			cardsPerTopic = 2
		}
		return moduleWF.Generate(ctx, req.Topic, cardsPerTopic)

	case WorkflowSubject:
		moduleWF, err := workflow.NewModule(s.logger, enumerator, topicWF)
		if err != nil {
			return nil, err
		}
		subjectWF, err := workflow.NewSubject(s.logger, enumerator, moduleWF)
		if err != nil {
			return nil, err
		}
		return subjectWF.Generate(ctx, req.Topic, req.NumCards)

	case WorkflowIterative:
		controller, err := generation.NewIterationController(
			s.logger, s.client, enumerator, synthesizer, s.checkpoints, generation.PolicyTerminate)
		if err != nil {
			return nil, err
		}
		iterativeWF, err := workflow.NewIterative(s.logger, controller)
		if err != nil {
			return nil, err
		}
		return iterativeWF.Generate(ctx, req.SessionID, req.Topic,
			req.NumCards, s.cfg.MaxIterations, s.cfg.CardsPerIteration)

	default:
		// Unreachable: the validator pins Workflow to the known set.
		return nil, fmt.Errorf("unknown workflow %q", req.Workflow)
	}
}

// resolveOutputPath combines directory, filename, and kind-appropriate
// extension into the destination path.
func (s *GenerationService) resolveOutputPath(req GenerationRequest, out OutputConfig) (string, error) {
	kind := out.Kind
	if kind == "" {
		kind = OutputAPKG
	}

	var ext, dir string
	switch kind {
	case OutputAPKG:
		ext = ".apkg"
		dir = s.cfg.DeckOutputDir
	case OutputPreview:
		ext = ".html"
		dir = s.cfg.PreviewOutputDir
	default:
		return "", fmt.Errorf("unknown output kind %q", kind)
	}
	if out.Dir != "" {
		dir = out.Dir
	}

	filename := out.Filename
	if filename == "" {
		filename = slugify(req.DeckName)
	}
	filename = strings.TrimSuffix(strings.TrimSuffix(filename, ".apkg"), ".html") + ext

	return filepath.Join(dir, filename), nil
}

// buildPackager creates the packager matching the output kind.
func (s *GenerationService) buildPackager(req GenerationRequest, out OutputConfig) (packager.Packager, error) {
	kind := out.Kind
	if kind == "" {
		kind = OutputAPKG
	}

	switch kind {
	case OutputAPKG:
		return packager.NewAPKG(s.logger, req.DeckName, req.Template)
	case OutputPreview:
		return packager.NewPreview(s.logger, req.DeckName, req.Template)
	default:
		return nil, fmt.Errorf("unknown output kind %q", kind)
	}
}

// slugify reduces a deck name to a safe file name.
func slugify(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ', r == '-', r == '_', r == ':', r == '/':
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "deck"
	}
	return slug
}
