package redact

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringRedactsGoogleAPIKey(t *testing.T) {
	t.Parallel()

	in := "request failed: key AIzaSyA1234567890abcdefghijklmnopqrstu rejected"
	out := String(in)
	assert.NotContains(t, out, "AIzaSy")
	assert.Contains(t, out, KeyPlaceholder)
}

func TestStringRedactsKeyAssignments(t *testing.T) {
	t.Parallel()

	out := String(`api_key="sk-abcdef1234567890"`)
	assert.NotContains(t, out, "sk-abcdef1234567890")
}

func TestStringRedactsPaths(t *testing.T) {
	t.Parallel()

	out := String("open /home/alex/.config/ankigen/creds.yaml: permission denied")
	assert.NotContains(t, out, "/home/alex")
	assert.Contains(t, out, PathPlaceholder)
}

func TestStringLeavesPlainTextAlone(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "generation produced no cards", String("generation produced no cards"))
}

func TestError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Error(nil))

	err := fmt.Errorf("wrap: %w", errors.New("bearer abcdefgh12345678 expired"))
	assert.NotContains(t, Error(err), "abcdefgh12345678")
}
