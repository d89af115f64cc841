package ignore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykawataki/c2c/internal/ignore"
)

func writeRules(t *testing.T, directory string, content string) string {
	t.Helper()
	rulePath := filepath.Join(directory, ".gitignore")
	require.NoError(t, os.WriteFile(rulePath, []byte(content), 0o600))
	return rulePath
}

func TestLoadMissingFileYieldsEmptySet(t *testing.T) {
	set, loadError := ignore.Load(filepath.Join(t.TempDir(), ".gitignore"))
	require.NoError(t, loadError)
	assert.True(t, set.Empty())
}

func TestLoadMalformedFileYieldsEmptySetAndError(t *testing.T) {
	directory := t.TempDir()
	rulePath := filepath.Join(directory, ".gitignore")
	require.NoError(t, os.WriteFile(rulePath, []byte{'a', 0x00, 'b'}, 0o600))

	set, loadError := ignore.Load(rulePath)
	require.ErrorIs(t, loadError, ignore.ErrMalformedRules)
	assert.True(t, set.Empty())
}

func TestLoadParsesPatternsInFileOrder(t *testing.T) {
	directory := t.TempDir()
	rulePath := writeRules(t, directory, "# comment\n*.log\n\n!keep.log\nbuild/\n")

	set, loadError := ignore.Load(rulePath)
	require.NoError(t, loadError)
	require.Len(t, set.Patterns, 3)
	assert.Equal(t, "*.log", set.Patterns[0].Raw)
	assert.Equal(t, "!keep.log", set.Patterns[1].Raw)
	assert.Equal(t, "build/", set.Patterns[2].Raw)
	assert.Equal(t, directory, set.BaseDir)
}

func TestEvaluateLastMatchWins(t *testing.T) {
	set := ignore.FromList(t.TempDir(), []string{"*.log", "!keep.log"})

	decision, winner := set.Evaluate("debug.log", false)
	assert.Equal(t, ignore.DecisionIgnore, decision)
	require.NotNil(t, winner)
	assert.Equal(t, "*.log", winner.Raw)

	decision, winner = set.Evaluate("keep.log", false)
	assert.Equal(t, ignore.DecisionInclude, decision)
	require.NotNil(t, winner)
	assert.Equal(t, "!keep.log", winner.Raw)

	decision, winner = set.Evaluate("main.go", false)
	assert.Equal(t, ignore.DecisionNoMatch, decision)
	assert.Nil(t, winner)
}

func TestEvaluateOrderIsSignificant(t *testing.T) {
	// Reversed order: the ignore rule comes after the negation and wins.
	set := ignore.FromList(t.TempDir(), []string{"!keep.log", "*.log"})
	decision, _ := set.Evaluate("keep.log", false)
	assert.Equal(t, ignore.DecisionIgnore, decision)
}

func TestFromListDropsUnparsableLines(t *testing.T) {
	set := ignore.FromList(t.TempDir(), []string{"", "# note", "build"})
	require.Len(t, set.Patterns, 1)
	assert.Equal(t, "build", set.Patterns[0].Raw)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "ignore", ignore.DecisionIgnore.String())
	assert.Equal(t, "include", ignore.DecisionInclude.String())
	assert.Equal(t, "no-match", ignore.DecisionNoMatch.String())
}
