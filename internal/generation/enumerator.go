package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ConceptEnumerator asks the model to name the learning units of a topic.
// All methods degrade to empty results on unparseable model output; callers
// treat an empty list as "no concepts identified", not as a failure.
type ConceptEnumerator struct {
	logger *slog.Logger
	client ModelClient
}

// NewConceptEnumerator creates a ConceptEnumerator with the provided
// dependencies.
func NewConceptEnumerator(logger *slog.Logger, client ModelClient) (*ConceptEnumerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if client == nil {
		return nil, errors.New("model client cannot be nil")
	}
	return &ConceptEnumerator{logger: logger, client: client}, nil
}

// FlatConcepts returns up to count distinct concept names for the topic.
// A model call failure or unparseable response yields an empty list.
func (e *ConceptEnumerator) FlatConcepts(ctx context.Context, topic string, count int) []string {
	e.logger.InfoContext(ctx, "identifying concepts for topic",
		"topic", topic,
		"count", count)

	prompt, err := renderPrompt("concepts.tmpl", struct {
		Topic string
		Count int
	}{Topic: topic, Count: count})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to build concept prompt", "error", err)
		return []string{}
	}

	raw, err := e.client.Generate(ctx, prompt)
	if err != nil {
		e.logger.ErrorContext(ctx, "concept identification call failed",
			"topic", topic,
			"error", err)
		return []string{}
	}

	concepts := decodeStringList(ctx, e.logger, raw)
	e.logger.InfoContext(ctx, "concepts identified",
		"topic", topic,
		"concept_count", len(concepts))
	return concepts
}

// SubtopicConcepts returns up to count concepts for a subtopic within its
// enclosing topic. The result is truncated to count; the model tends to
// over-deliver.
func (e *ConceptEnumerator) SubtopicConcepts(ctx context.Context, topic, subtopic string, count int) []string {
	prompt, err := renderPrompt("subtopic_concepts.tmpl", struct {
		Topic    string
		Subtopic string
		Count    int
	}{Topic: topic, Subtopic: subtopic, Count: count})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to build subtopic concept prompt", "error", err)
		return []string{}
	}

	raw, err := e.client.Generate(ctx, prompt)
	if err != nil {
		e.logger.ErrorContext(ctx, "subtopic concept call failed",
			"subtopic", subtopic,
			"error", err)
		return []string{}
	}

	concepts := decodeStringList(ctx, e.logger, raw)
	if len(concepts) > count {
		concepts = concepts[:count]
	}
	return concepts
}

// HierarchicalSubtopics groups concepts under subtopic keys. There is no
// guaranteed depth beyond what the model returns. On parse failure it falls
// back to the flat form under a single "General Concepts" key.
func (e *ConceptEnumerator) HierarchicalSubtopics(ctx context.Context, topic string, maxDepth int) map[string][]string {
	e.logger.InfoContext(ctx, "generating hierarchical subtopics",
		"topic", topic,
		"max_depth", maxDepth)

	prompt, err := renderPrompt("hierarchical.tmpl", struct {
		Topic    string
		MaxDepth int
	}{Topic: topic, MaxDepth: maxDepth})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to build hierarchical prompt", "error", err)
		return map[string][]string{"General Concepts": e.FlatConcepts(ctx, topic, 5)}
	}

	raw, err := e.client.Generate(ctx, prompt)
	if err == nil {
		if structure, ok := decodeStringListMap(raw); ok {
			e.logger.InfoContext(ctx, "subtopic structure generated",
				"topic", topic,
				"subtopic_count", len(structure))
			return structure
		}
	} else {
		e.logger.ErrorContext(ctx, "hierarchical subtopic call failed",
			"topic", topic,
			"error", err)
	}

	e.logger.WarnContext(ctx, "falling back to flat concept structure", "topic", topic)
	return map[string][]string{"General Concepts": e.FlatConcepts(ctx, topic, 5)}
}

// SuggestAdditional asks for concepts missing from the existing set.
// Returns an empty list on any failure.
func (e *ConceptEnumerator) SuggestAdditional(ctx context.Context, topic string, existing []string, count int) []string {
	prompt, err := renderPrompt("suggest.tmpl", struct {
		Topic    string
		Existing string
		Count    int
	}{Topic: topic, Existing: summarizeExisting(existing), Count: count})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to build suggestion prompt", "error", err)
		return []string{}
	}

	raw, err := e.client.Generate(ctx, prompt)
	if err != nil {
		e.logger.ErrorContext(ctx, "concept suggestion call failed",
			"topic", topic,
			"error", err)
		return []string{}
	}

	return decodeStringList(ctx, e.logger, raw)
}

// ModuleTopics asks the model to split a learning module into key topics.
// Returns an empty list on any failure; callers fall back to treating the
// module as a single topic.
func (e *ConceptEnumerator) ModuleTopics(ctx context.Context, module string) []string {
	prompt, err := renderPrompt("module_topics.tmpl", struct {
		Module string
	}{Module: module})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to build module topics prompt", "error", err)
		return []string{}
	}

	raw, err := e.client.Generate(ctx, prompt)
	if err != nil {
		e.logger.ErrorContext(ctx, "module topic split call failed",
			"module", module,
			"error", err)
		return []string{}
	}

	topics := decodeStringList(ctx, e.logger, raw)
	e.logger.InfoContext(ctx, "module split into topics",
		"module", module,
		"topic_count", len(topics))
	return topics
}

// SubjectModules asks the model to plan the main modules of a subject.
// Returns an empty list on any failure; callers fall back to a single module.
func (e *ConceptEnumerator) SubjectModules(ctx context.Context, subject string) []string {
	prompt, err := renderPrompt("subject_modules.tmpl", struct {
		Subject string
	}{Subject: subject})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to build subject modules prompt", "error", err)
		return []string{}
	}

	raw, err := e.client.Generate(ctx, prompt)
	if err != nil {
		e.logger.ErrorContext(ctx, "subject module planning call failed",
			"subject", subject,
			"error", err)
		return []string{}
	}

	modules := decodeStringList(ctx, e.logger, raw)
	e.logger.InfoContext(ctx, "subject planned into modules",
		"subject", subject,
		"module_count", len(modules))
	return modules
}

// summarizeExisting caps the covered-concept context to keep prompts short.
func summarizeExisting(existing []string) string {
	const limit = 10
	if len(existing) <= limit {
		return strings.Join(existing, ", ")
	}
	head := strings.Join(existing[:limit], ", ")
	return head + " (and more)"
}
