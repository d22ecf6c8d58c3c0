package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer(t *testing.T, client ModelClient, examples []domain.CardContent) *CardSynthesizer {
	t.Helper()
	domainName := ""
	if len(examples) > 0 {
		domainName = "language"
	}
	synth, err := NewCardSynthesizer(testLogger(), client, domainName, examples)
	require.NoError(t, err)
	return synth
}

func TestSynthesizeBatchAllWellFormed(t *testing.T) {
	t.Parallel()

	client := mocks.Texts(`[
		{"front_question_text": "Q1", "back_answer": "A1"},
		{"front_question_text": "Q2", "back_answer": "A2"},
		{"front_question_text": "Q3", "back_answer": "A3"}
	]`)
	synth := newTestSynthesizer(t, client, nil)

	cards := synth.SynthesizeBatch(context.Background(), "Math", []string{"c1", "c2", "c3"})
	require.Len(t, cards, 3)

	// Input order is preserved in the output.
	assert.Equal(t, "Q1", cards[0].Content.Question)
	assert.Equal(t, "Q2", cards[1].Content.Question)
	assert.Equal(t, "Q3", cards[2].Content.Question)

	// The batch is a single model call.
	assert.Equal(t, 1, client.Calls())
}

func TestSynthesizeBatchDropsOneMalformed(t *testing.T) {
	t.Parallel()

	client := mocks.Texts(`[
		{"front_question_text": "Q1", "back_answer": "A1"},
		{"bogus": true},
		{"front_question_text": "Q3", "back_answer": "A3"}
	]`)
	synth := newTestSynthesizer(t, client, nil)

	cards := synth.SynthesizeBatch(context.Background(), "Math", []string{"c1", "c2", "c3"})
	assert.Len(t, cards, 2)
}

func TestSynthesizeBatchEmptyConcepts(t *testing.T) {
	t.Parallel()

	client := &mocks.StaticModelClient{Response: "[]"}
	synth := newTestSynthesizer(t, client, nil)

	cards := synth.SynthesizeBatch(context.Background(), "Math", nil)
	assert.Empty(t, cards)
	assert.Zero(t, client.Calls(), "no model call for an empty batch")
}

func TestSynthesizeBatchClientError(t *testing.T) {
	t.Parallel()

	client := &mocks.StaticModelClient{Err: errors.New("quota exceeded")}
	synth := newTestSynthesizer(t, client, nil)

	cards := synth.SynthesizeBatch(context.Background(), "Math", []string{"c1"})
	assert.Empty(t, cards)
}

func TestSynthesizeOneZeroShotEmbedsSchema(t *testing.T) {
	t.Parallel()

	client := mocks.Texts(`{"front_question_text": "Q", "back_answer": "A"}`)
	synth := newTestSynthesizer(t, client, nil)

	card, err := synth.SynthesizeOne(context.Background(), "Math", "Addition", "carrying")
	require.NoError(t, err)
	assert.Equal(t, "Q", card.Content.Question)

	// Zero-shot prompts carry the explicit schema instructions.
	assert.True(t, client.PromptContaining("front_question_text"))
	assert.True(t, client.PromptContaining("REQUIRED"))
}

func TestSynthesizeOneFewShotEmbedsExamplesVerbatim(t *testing.T) {
	t.Parallel()

	examples := []domain.CardContent{
		{Question: "Was ist ein Haus?", Answer: "A house"},
	}
	client := mocks.Texts(`{"front_question_text": "Was ist ein Auto?", "back_answer": "A car"}`)
	synth := newTestSynthesizer(t, client, examples)

	require.True(t, synth.FewShot())

	card, err := synth.SynthesizeOne(context.Background(), "German", "Vocabulary", "Auto")
	require.NoError(t, err)
	assert.Equal(t, "Was ist ein Auto?", card.Content.Question)

	// The example record appears verbatim and the model is told to follow it.
	assert.True(t, client.PromptContaining("Was ist ein Haus?"))
	assert.True(t, client.PromptContaining("same style and format"))
	assert.True(t, client.PromptContaining("language domain"))
}

func TestSynthesizeOneMalformedResponse(t *testing.T) {
	t.Parallel()

	client := mocks.Texts(`not a card`)
	synth := newTestSynthesizer(t, client, nil)

	_, err := synth.SynthesizeOne(context.Background(), "Math", "Addition", "carrying")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestSynthesizeOneEmptyConcept(t *testing.T) {
	t.Parallel()

	synth := newTestSynthesizer(t, &mocks.StaticModelClient{}, nil)

	_, err := synth.SynthesizeOne(context.Background(), "Math", "Addition", "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}
