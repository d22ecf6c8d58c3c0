package generation

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `["a"]`, `["a"]`},
		{"json fence", "```json\n[\"a\"]\n```", `["a"]`},
		{"bare fence", "```\n[\"a\"]\n```", `["a"]`},
		{"whitespace", "  \n[\"a\"]\n  ", `["a"]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripFences(tc.in))
		})
	}
}

func TestDecodeStringList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logger := testLogger()

	// JSON array
	assert.Equal(t, []string{"A", "B"}, decodeStringList(ctx, logger, `["A", "B"]`))

	// Fenced JSON array
	assert.Equal(t, []string{"A"}, decodeStringList(ctx, logger, "```json\n[\"A\"]\n```"))

	// Array wrapped in prose
	got := decodeStringList(ctx, logger, `Sure! Here you go: ["A", "B"] Hope that helps.`)
	assert.Equal(t, []string{"A", "B"}, got)

	// Comma-separated fallback
	assert.Equal(t, []string{"Concept A", "Concept B"}, decodeStringList(ctx, logger, "Concept A, Concept B"))

	// Garbage degrades to empty, never an error
	assert.Empty(t, decodeStringList(ctx, logger, `{"oops": true}`))

	// Blank entries are dropped
	assert.Equal(t, []string{"A"}, decodeStringList(ctx, logger, `["A", "  ", ""]`))
}

func TestDecodeStringListMap(t *testing.T) {
	t.Parallel()

	m, ok := decodeStringListMap(`{"Basics": ["a", "b"], "Advanced": ["c"]}`)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, m["Basics"])

	_, ok = decodeStringListMap(`just text`)
	assert.False(t, ok)

	// Wrong value shape must not pass
	_, ok = decodeStringListMap(`{"Basics": "not a list"}`)
	assert.False(t, ok)
}

func TestDecodeCardListDropsMalformed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	raw := `[
		{"front_question_text": "Q1", "back_answer": "A1"},
		{"front_question_text": "Q2"},
		{"front_question_text": "Q3", "back_answer": "A3"}
	]`

	cards := decodeCardList(ctx, testLogger(), raw)
	require.Len(t, cards, 2)
	assert.Equal(t, "Q1", cards[0].Question)
	assert.Equal(t, "Q3", cards[1].Question)
}

func TestDecodeCardListPreservesOrder(t *testing.T) {
	t.Parallel()

	raw := "```json\n" + `[
		{"front_question_text": "first", "back_answer": "1"},
		{"front_question_text": "second", "back_answer": "2"},
		{"front_question_text": "third", "back_answer": "3"}
	]` + "\n```"

	cards := decodeCardList(context.Background(), testLogger(), raw)
	require.Len(t, cards, 3)
	assert.Equal(t, "first", cards[0].Question)
	assert.Equal(t, "second", cards[1].Question)
	assert.Equal(t, "third", cards[2].Question)
}

func TestDecodeCardListTotalGarbage(t *testing.T) {
	t.Parallel()

	cards := decodeCardList(context.Background(), testLogger(), "I can't help with that.")
	assert.Empty(t, cards)
}

func TestDecodeCoverage(t *testing.T) {
	t.Parallel()

	d := decodeCoverage(`{"status": "COMPLETE"}`)
	assert.Equal(t, CoverageComplete, d.Status)

	d = decodeCoverage(`{"status": "MORE_NEEDED", "new_concepts": ["X", "Y"]}`)
	assert.Equal(t, CoverageMoreNeeded, d.Status)
	assert.Equal(t, []string{"X", "Y"}, d.NewConcepts)

	// Fenced
	d = decodeCoverage("```json\n{\"status\": \"COMPLETE\"}\n```")
	assert.Equal(t, CoverageComplete, d.Status)

	// Lowercase status is tolerated
	d = decodeCoverage(`{"status": "complete"}`)
	assert.Equal(t, CoverageComplete, d.Status)

	// Unexpected status and garbage both map to unknown
	assert.Equal(t, CoverageUnknown, decodeCoverage(`{"status": "MAYBE"}`).Status)
	assert.Equal(t, CoverageUnknown, decodeCoverage(`no json here`).Status)
}
