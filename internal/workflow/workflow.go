// Package workflow composes the generation primitives into the four card
// production strategies: topic, module, subject, and iterative. Unit
// failures inside a composition (one concept, one topic, one module) never
// abort the composition; the failing unit just contributes zero cards.
package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/generation"
)

// Topic generates one card per concept inside a single subtopic.
type Topic struct {
	logger      *slog.Logger
	enumerator  *generation.ConceptEnumerator
	synthesizer *generation.CardSynthesizer
}

// NewTopic creates the topic workflow.
func NewTopic(
	logger *slog.Logger,
	enumerator *generation.ConceptEnumerator,
	synthesizer *generation.CardSynthesizer,
) (*Topic, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if enumerator == nil {
		return nil, errors.New("enumerator cannot be nil")
	}
	if synthesizer == nil {
		return nil, errors.New("synthesizer cannot be nil")
	}
	return &Topic{logger: logger, enumerator: enumerator, synthesizer: synthesizer}, nil
}

// Generate enumerates up to numCards concepts for the subtopic and
// synthesizes one card per concept. Concepts whose synthesis fails are
// skipped and logged.
func (w *Topic) Generate(ctx context.Context, topic, subtopic string, numCards int) ([]domain.Card, error) {
	w.logger.InfoContext(ctx, "starting topic workflow",
		"topic", topic,
		"subtopic", subtopic,
		"num_cards", numCards)

	concepts := w.enumerator.SubtopicConcepts(ctx, topic, subtopic, numCards)
	if len(concepts) == 0 {
		w.logger.WarnContext(ctx, "no concepts identified for subtopic",
			"subtopic", subtopic)
		return []domain.Card{}, nil
	}

	cards := make([]domain.Card, 0, len(concepts))
	for _, concept := range concepts {
		card, err := w.synthesizer.SynthesizeOne(ctx, topic, subtopic, concept)
		if err != nil {
			w.logger.WarnContext(ctx, "skipping concept after synthesis failure",
				"concept", concept,
				"error", err)
			continue
		}
		cards = append(cards, card)
	}

	w.logger.InfoContext(ctx, "topic workflow complete",
		"subtopic", subtopic,
		"concepts", len(concepts),
		"cards", len(cards))
	return cards, nil
}

// maxModuleTopics bounds how many topics a module split is allowed to yield.
const maxModuleTopics = 5

// Module splits a learning module into topics and runs the topic workflow
// for each.
type Module struct {
	logger     *slog.Logger
	enumerator *generation.ConceptEnumerator
	topic      *Topic
}

// NewModule creates the module workflow.
func NewModule(logger *slog.Logger, enumerator *generation.ConceptEnumerator, topic *Topic) (*Module, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if enumerator == nil {
		return nil, errors.New("enumerator cannot be nil")
	}
	if topic == nil {
		return nil, errors.New("topic workflow cannot be nil")
	}
	return &Module{logger: logger, enumerator: enumerator, topic: topic}, nil
}

// Generate splits the module into topics (falling back to the module itself
// as a single topic when the split fails) and concatenates the per-topic
// results. A topic that yields no cards is still counted as processed.
func (w *Module) Generate(ctx context.Context, module string, cardsPerTopic int) ([]domain.Card, error) {
	w.logger.InfoContext(ctx, "starting module workflow",
		"module", module,
		"cards_per_topic", cardsPerTopic)

	topics := w.enumerator.ModuleTopics(ctx, module)
	if len(topics) == 0 {
		w.logger.WarnContext(ctx, "module split failed, treating module as a single topic",
			"module", module)
		topics = []string{module}
	}
	if len(topics) > maxModuleTopics {
		topics = topics[:maxModuleTopics]
	}

	var cards []domain.Card
	for _, topic := range topics {
		topicCards, err := w.topic.Generate(ctx, module, topic, cardsPerTopic)
		if err != nil {
			w.logger.WarnContext(ctx, "topic produced no cards",
				"module", module,
				"topic", topic,
				"error", err)
			continue
		}
		cards = append(cards, topicCards...)
	}

	w.logger.InfoContext(ctx, "module workflow complete",
		"module", module,
		"topics", len(topics),
		"cards", len(cards))
	return cards, nil
}

// maxSubjectModules bounds how many modules a subject plan is allowed to
// yield.
const maxSubjectModules = 4

// Subject plans the modules of a subject and runs the module workflow for
// each.
type Subject struct {
	logger     *slog.Logger
	enumerator *generation.ConceptEnumerator
	module     *Module
}

// NewSubject creates the subject workflow.
func NewSubject(logger *slog.Logger, enumerator *generation.ConceptEnumerator, module *Module) (*Subject, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if enumerator == nil {
		return nil, errors.New("enumerator cannot be nil")
	}
	if module == nil {
		return nil, errors.New("module workflow cannot be nil")
	}
	return &Subject{logger: logger, enumerator: enumerator, module: module}, nil
}

// Generate plans the subject into modules (falling back to the subject as a
// single module) and concatenates the per-module results. Cards are
// distributed across each module's topics.
func (w *Subject) Generate(ctx context.Context, subject string, cardsPerModule int) ([]domain.Card, error) {
	w.logger.InfoContext(ctx, "starting subject workflow",
		"subject", subject,
		"cards_per_module", cardsPerModule)

	modules := w.enumerator.SubjectModules(ctx, subject)
	if len(modules) == 0 {
		w.logger.WarnContext(ctx, "subject planning failed, treating subject as a single module",
			"subject", subject)
		modules = []string{subject}
	}
	if len(modules) > maxSubjectModules {
		modules = modules[:maxSubjectModules]
	}

	cardsPerTopic := cardsPerModule / 3
	if cardsPerTopic < 1 {
		cardsPerTopic = 1
	}

	var cards []domain.Card
	for _, module := range modules {
		moduleCards, err := w.module.Generate(ctx, module, cardsPerTopic)
		if err != nil {
			w.logger.WarnContext(ctx, "module produced no cards",
				"subject", subject,
				"module", module,
				"error", err)
			continue
		}
		cards = append(cards, moduleCards...)
	}

	w.logger.InfoContext(ctx, "subject workflow complete",
		"subject", subject,
		"modules", len(modules),
		"cards", len(cards))
	return cards, nil
}

// Iterative wraps the bounded iteration controller as a workflow.
type Iterative struct {
	logger     *slog.Logger
	controller *generation.IterationController
}

// NewIterative creates the iterative workflow.
func NewIterative(logger *slog.Logger, controller *generation.IterationController) (*Iterative, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if controller == nil {
		return nil, errors.New("controller cannot be nil")
	}
	return &Iterative{logger: logger, controller: controller}, nil
}

// Generate runs the iteration loop for the topic under the given session id
// and returns the accumulated cards.
func (w *Iterative) Generate(
	ctx context.Context,
	sessionID, topic string,
	maxCards, maxIterations, cardsPerIteration int,
) ([]domain.Card, error) {
	seed := generation.NewIterationState(topic, maxCards, maxIterations, cardsPerIteration)
	final := w.controller.Run(ctx, sessionID, seed)
	return final.Cards, nil
}
