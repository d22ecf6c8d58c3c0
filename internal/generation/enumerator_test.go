package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/ankigen/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConceptEnumeratorValidation(t *testing.T) {
	t.Parallel()

	_, err := NewConceptEnumerator(nil, &mocks.StaticModelClient{})
	assert.Error(t, err)

	_, err = NewConceptEnumerator(testLogger(), nil)
	assert.Error(t, err)
}

func TestFlatConcepts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := mocks.Texts(`["Addition basics", "Carrying", "Number lines"]`)
	enum, err := NewConceptEnumerator(testLogger(), client)
	require.NoError(t, err)

	concepts := enum.FlatConcepts(ctx, "Addition", 3)
	assert.Equal(t, []string{"Addition basics", "Carrying", "Number lines"}, concepts)
	assert.True(t, client.PromptContaining("Addition"))
}

func TestFlatConceptsUnparseableReturnsEmpty(t *testing.T) {
	t.Parallel()

	client := mocks.Texts(`{"not": "a list"}`)
	enum, err := NewConceptEnumerator(testLogger(), client)
	require.NoError(t, err)

	concepts := enum.FlatConcepts(context.Background(), "Addition", 3)
	assert.NotNil(t, concepts)
	assert.Empty(t, concepts)
}

func TestFlatConceptsClientErrorReturnsEmpty(t *testing.T) {
	t.Parallel()

	client := &mocks.StaticModelClient{Err: errors.New("api down")}
	enum, err := NewConceptEnumerator(testLogger(), client)
	require.NoError(t, err)

	assert.Empty(t, enum.FlatConcepts(context.Background(), "Addition", 3))
}

func TestSubtopicConceptsTruncates(t *testing.T) {
	t.Parallel()

	client := mocks.Texts(`["a", "b", "c", "d", "e"]`)
	enum, err := NewConceptEnumerator(testLogger(), client)
	require.NoError(t, err)

	concepts := enum.SubtopicConcepts(context.Background(), "Math", "Addition", 3)
	assert.Len(t, concepts, 3)
}

func TestHierarchicalSubtopics(t *testing.T) {
	t.Parallel()

	client := mocks.Texts(`{"Basics": ["counting"], "Advanced": ["carrying", "borrowing"]}`)
	enum, err := NewConceptEnumerator(testLogger(), client)
	require.NoError(t, err)

	structure := enum.HierarchicalSubtopics(context.Background(), "Addition", 2)
	require.Len(t, structure, 2)
	assert.Equal(t, []string{"carrying", "borrowing"}, structure["Advanced"])
}

func TestHierarchicalSubtopicsFallsBackToFlat(t *testing.T) {
	t.Parallel()

	// First call (hierarchical) returns garbage, second call (flat
	// fallback) returns a list.
	client := mocks.Texts(
		`not json at all`,
		`["counting", "carrying"]`,
	)
	enum, err := NewConceptEnumerator(testLogger(), client)
	require.NoError(t, err)

	structure := enum.HierarchicalSubtopics(context.Background(), "Addition", 2)
	require.Contains(t, structure, "General Concepts")
	assert.Equal(t, []string{"counting", "carrying"}, structure["General Concepts"])
	assert.Equal(t, 2, client.Calls())
}

func TestSuggestAdditionalCapsContext(t *testing.T) {
	t.Parallel()

	client := mocks.Texts(`["New 1", "New 2"]`)
	enum, err := NewConceptEnumerator(testLogger(), client)
	require.NoError(t, err)

	existing := make([]string, 15)
	for i := range existing {
		existing[i] = "concept"
	}

	suggestions := enum.SuggestAdditional(context.Background(), "Addition", existing, 2)
	assert.Equal(t, []string{"New 1", "New 2"}, suggestions)
	assert.True(t, client.PromptContaining("(and more)"))
}
