package generation

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/phrazzld/ankigen/internal/domain"
)

// Models routinely wrap JSON in markdown code fences despite being told not
// to. Strip the wrappers before attempting a structured parse.
var (
	leadingFence  = regexp.MustCompile("(?s)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("(?s)\\s*```\\s*$")
)

// stripFences removes markdown code fences and surrounding whitespace from
// raw model output.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// salvageJSON slices the text from the first opening bracket of the given
// kind to its last closing counterpart. It rescues payloads the model
// surrounded with prose ("Here are your cards: [...]. Let me know...").
func salvageJSON(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// decodeStringList parses model output expected to be a list of short
// strings. It tries, in order: a JSON array of strings, a JSON array
// salvaged from surrounding prose, and a comma-separated fallback. On
// total failure it returns an empty list; callers treat that as "no
// concepts identified", never as an exception path.
func decodeStringList(ctx context.Context, logger *slog.Logger, raw string) []string {
	cleaned := stripFences(raw)

	var items []string
	if err := json.Unmarshal([]byte(cleaned), &items); err == nil {
		return compactStrings(items)
	}

	if arr, ok := salvageJSON(cleaned, '[', ']'); ok {
		if err := json.Unmarshal([]byte(arr), &items); err == nil {
			return compactStrings(items)
		}
	}

	// Comma-separated fallback for prompts that ask for a plain list.
	if !strings.ContainsAny(cleaned, "{}[]") && cleaned != "" {
		parts := strings.Split(cleaned, ",")
		return compactStrings(parts)
	}

	logger.WarnContext(ctx, "unparseable list in model output, treating as empty",
		"output_length", len(raw))
	return []string{}
}

// compactStrings trims each entry and drops empties.
func compactStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// decodeStringListMap parses the hierarchical subtopic shape: a JSON object
// of subtopic name to concept list. Returns ok=false when the output does
// not parse, so the caller can fall back to the flat form.
func decodeStringListMap(raw string) (map[string][]string, bool) {
	cleaned := stripFences(raw)

	var m map[string][]string
	if err := json.Unmarshal([]byte(cleaned), &m); err == nil && len(m) > 0 {
		return m, true
	}

	if obj, ok := salvageJSON(cleaned, '{', '}'); ok {
		if err := json.Unmarshal([]byte(obj), &m); err == nil && len(m) > 0 {
			return m, true
		}
	}

	return nil, false
}

// decodeCardList parses model output expected to be a JSON array of card
// records. Each element is decoded independently: a single malformed
// record is logged and dropped, never fatal to the batch. Output order
// follows the array order.
func decodeCardList(ctx context.Context, logger *slog.Logger, raw string) []domain.CardContent {
	cleaned := stripFences(raw)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		arr, ok := salvageJSON(cleaned, '[', ']')
		if !ok {
			logger.WarnContext(ctx, "model output is not a JSON array of cards",
				"output_length", len(raw))
			return nil
		}
		if err := json.Unmarshal([]byte(arr), &elements); err != nil {
			logger.WarnContext(ctx, "salvaged output still not a JSON array of cards",
				"error", err)
			return nil
		}
	}

	cards := make([]domain.CardContent, 0, len(elements))
	for i, element := range elements {
		var content domain.CardContent
		if err := json.Unmarshal(element, &content); err != nil {
			logger.WarnContext(ctx, "dropping malformed card record",
				"index", i,
				"error", err)
			continue
		}
		if content.Question == "" || content.Answer == "" {
			logger.WarnContext(ctx, "dropping card record missing required fields",
				"index", i,
				"has_question", content.Question != "",
				"has_answer", content.Answer != "")
			continue
		}
		cards = append(cards, content)
	}
	return cards
}

// decodeCard parses model output expected to be a single card record.
func decodeCard(raw string) (domain.CardContent, error) {
	cleaned := stripFences(raw)

	var content domain.CardContent
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		obj, ok := salvageJSON(cleaned, '{', '}')
		if !ok {
			return domain.CardContent{}, ErrInvalidResponse
		}
		if err := json.Unmarshal([]byte(obj), &content); err != nil {
			return domain.CardContent{}, ErrInvalidResponse
		}
	}
	if content.Question == "" || content.Answer == "" {
		return domain.CardContent{}, ErrInvalidResponse
	}
	return content, nil
}

// CoverageStatus is the model's verdict on whether a topic has enough cards.
type CoverageStatus string

// Coverage verdicts. CoverageUnknown covers every shape the model returns
// that is neither of the two expected answers.
const (
	CoverageComplete   CoverageStatus = "COMPLETE"
	CoverageMoreNeeded CoverageStatus = "MORE_NEEDED"
	CoverageUnknown    CoverageStatus = "UNKNOWN"
)

// CoverageDecision is the parsed coverage-evaluation answer.
type CoverageDecision struct {
	Status      CoverageStatus
	NewConcepts []string
}

// decodeCoverage parses the coverage-evaluation answer. Any unparseable or
// unexpected shape yields CoverageUnknown; the controller maps that to its
// configured termination policy rather than looping on it.
func decodeCoverage(raw string) CoverageDecision {
	cleaned := stripFences(raw)

	var payload struct {
		Status      string   `json:"status"`
		NewConcepts []string `json:"new_concepts"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		obj, ok := salvageJSON(cleaned, '{', '}')
		if !ok {
			return CoverageDecision{Status: CoverageUnknown}
		}
		if err := json.Unmarshal([]byte(obj), &payload); err != nil {
			return CoverageDecision{Status: CoverageUnknown}
		}
	}

	switch CoverageStatus(strings.ToUpper(strings.TrimSpace(payload.Status))) {
	case CoverageComplete:
		return CoverageDecision{Status: CoverageComplete}
	case CoverageMoreNeeded:
		return CoverageDecision{
			Status:      CoverageMoreNeeded,
			NewConcepts: compactStrings(payload.NewConcepts),
		}
	default:
		return CoverageDecision{Status: CoverageUnknown}
	}
}
