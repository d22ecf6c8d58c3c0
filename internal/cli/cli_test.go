package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestTemplatesCommand(t *testing.T) {
	out, err := execute(t, "templates")
	require.NoError(t, err)

	assert.Contains(t, out, "basic (default)")
	assert.Contains(t, out, "minimal")
}

func TestDomainsCommandEmptyDirectory(t *testing.T) {
	out, err := execute(t, "domains", "--examples-dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "No example domains found")
}

func TestGenerateRequiresTopic(t *testing.T) {
	_, err := execute(t, "generate")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "topic"))
}
