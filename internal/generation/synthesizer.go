package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/ankigen/internal/domain"
)

// maxPromptExamples caps how many few-shot example records are embedded in
// a prompt, to keep prompt length bounded.
const maxPromptExamples = 3

// CardSynthesizer turns concepts into card records through the model.
// With example records present it prompts few-shot, embedding the examples
// verbatim and instructing the model to follow their structure and style;
// without examples it falls back to explicit schema instructions.
type CardSynthesizer struct {
	logger     *slog.Logger
	client     ModelClient
	domainName string
	examples   []domain.CardContent
}

// NewCardSynthesizer creates a CardSynthesizer. domainName and examples may
// be empty, in which case the synthesizer operates zero-shot.
func NewCardSynthesizer(
	logger *slog.Logger,
	client ModelClient,
	domainName string,
	examples []domain.CardContent,
) (*CardSynthesizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if client == nil {
		return nil, errors.New("model client cannot be nil")
	}
	return &CardSynthesizer{
		logger:     logger,
		client:     client,
		domainName: domainName,
		examples:   examples,
	}, nil
}

// FewShot reports whether the synthesizer has example records to prompt with.
func (s *CardSynthesizer) FewShot() bool {
	return len(s.examples) > 0
}

// SynthesizeBatch generates cards for a batch of concepts in one model
// call. The returned cards follow the order the model emitted them, which
// the prompt pins to the supplied concept order. Malformed records are
// dropped individually; a completely unusable response yields an empty
// slice, never an error.
func (s *CardSynthesizer) SynthesizeBatch(ctx context.Context, topic string, concepts []string) []domain.Card {
	if len(concepts) == 0 {
		return nil
	}

	conceptsJSON, err := json.Marshal(concepts)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode concept batch", "error", err)
		return nil
	}

	s.logger.InfoContext(ctx, "generating cards for concept batch",
		"topic", topic,
		"batch_size", len(concepts))

	prompt, err := renderPrompt("cards_batch.tmpl", struct {
		Topic              string
		ConceptsJSON       string
		SchemaInstructions string
	}{Topic: topic, ConceptsJSON: string(conceptsJSON), SchemaInstructions: cardSchemaInstructions})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build batch prompt", "error", err)
		return nil
	}

	raw, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.ErrorContext(ctx, "batch generation call failed",
			"topic", topic,
			"error", err)
		return nil
	}

	contents := decodeCardList(ctx, s.logger, raw)
	cards := make([]domain.Card, 0, len(contents))
	for _, content := range contents {
		card, err := domain.NewCard(content)
		if err != nil {
			s.logger.WarnContext(ctx, "dropping card that failed validation", "error", err)
			continue
		}
		cards = append(cards, card)
	}

	s.logger.InfoContext(ctx, "batch generation complete",
		"topic", topic,
		"requested_concepts", len(concepts),
		"cards_created", len(cards))
	return cards
}

// SynthesizeOne generates a single card for one concept. Unlike the batch
// path this returns an error on failure so callers can decide to skip the
// concept.
func (s *CardSynthesizer) SynthesizeOne(ctx context.Context, topic, subtopic, concept string) (domain.Card, error) {
	if concept == "" {
		return domain.Card{}, ErrEmptyPrompt
	}

	var prompt string
	var err error
	if s.FewShot() {
		prompt, err = s.fewShotPrompt(topic, subtopic, concept)
	} else {
		prompt, err = renderPrompt("card_zeroshot.tmpl", struct {
			Topic              string
			Subtopic           string
			Concept            string
			SchemaInstructions string
		}{Topic: topic, Subtopic: subtopic, Concept: concept, SchemaInstructions: cardSchemaInstructions})
	}
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to build card prompt: %w", err)
	}

	raw, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return domain.Card{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	content, err := decodeCard(raw)
	if err != nil {
		return domain.Card{}, fmt.Errorf("%w: card for concept %q", ErrInvalidResponse, concept)
	}

	return domain.NewCard(content)
}

// fewShotPrompt embeds the example records verbatim as indented JSON.
func (s *CardSynthesizer) fewShotPrompt(topic, subtopic, concept string) (string, error) {
	selected := s.examples
	if len(selected) > maxPromptExamples {
		selected = selected[:maxPromptExamples]
	}

	examplesJSON, err := json.MarshalIndent(selected, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode examples: %w", err)
	}

	return renderPrompt("card_fewshot.tmpl", struct {
		Domain       string
		ExamplesJSON string
		Topic        string
		Subtopic     string
		Concept      string
	}{
		Domain:       s.domainName,
		ExamplesJSON: string(examplesJSON),
		Topic:        topic,
		Subtopic:     subtopic,
		Concept:      concept,
	})
}
