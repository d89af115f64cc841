package ignore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykawataki/c2c/internal/ignore"
)

func TestStackDefaultKeep(t *testing.T) {
	stack := &ignore.Stack{}
	ignored, trace := stack.IsIgnored("src/main.go", false)
	assert.False(t, ignored)
	assert.Equal(t, ignore.DecisionNoMatch, trace.Decision)
}

func TestStackDeeperSetOverridesShallower(t *testing.T) {
	stack := &ignore.Stack{}
	stack.Push(ignore.FromList("/root", []string{"*.log"}), "")
	stack.Push(ignore.FromList("/root/sub", []string{"!important.log"}), "sub")

	ignored, trace := stack.IsIgnored("sub/important.log", false)
	assert.False(t, ignored)
	assert.Equal(t, ignore.DecisionInclude, trace.Decision)

	ignored, _ = stack.IsIgnored("sub/other.log", false)
	assert.True(t, ignored)

	// Outside the deeper set's subtree, only the root rules apply.
	ignored, _ = stack.IsIgnored("important.log", false)
	assert.True(t, ignored)
}

func TestStackOuterDecisionSurvivesWhenInnerDoesNotMatch(t *testing.T) {
	stack := &ignore.Stack{}
	stack.Push(ignore.FromList("/root", []string{"build/"}), "")
	stack.Push(ignore.FromList("/root/sub", []string{"*.tmp"}), "sub")

	ignored, trace := stack.IsIgnored("sub/build", true)
	assert.True(t, ignored)
	require.NotNil(t, trace.Pattern)
	assert.Equal(t, "build/", trace.Pattern.Raw)
}

func TestStackPrefixTrimming(t *testing.T) {
	// A rule file in sub/ sees paths relative to sub/, so its anchored rule
	// matches sub/dist but not dist at the root.
	stack := &ignore.Stack{}
	stack.Push(ignore.FromList("/root/sub", []string{"/dist"}), "sub")

	ignored, _ := stack.IsIgnored("sub/dist", true)
	assert.True(t, ignored)

	ignored, _ = stack.IsIgnored("dist", true)
	assert.False(t, ignored)

	ignored, _ = stack.IsIgnored("other/sub/dist", true)
	assert.False(t, ignored)
}

func TestStackRuleSetDoesNotApplyToOwnDirectoryName(t *testing.T) {
	// Rules from sub/.gitignore never decide the fate of sub itself.
	stack := &ignore.Stack{}
	stack.Push(ignore.FromList("/root/sub", []string{"sub"}), "sub")

	ignored, trace := stack.IsIgnored("sub", true)
	assert.False(t, ignored)
	assert.Equal(t, ignore.DecisionNoMatch, trace.Decision)
}

func TestStackPushPopDepth(t *testing.T) {
	stack := &ignore.Stack{}
	assert.Equal(t, 0, stack.Depth())
	stack.Push(ignore.FromList("/root", []string{"a"}), "")
	stack.Push(ignore.FromList("/root/b", []string{"c"}), "b")
	assert.Equal(t, 2, stack.Depth())
	stack.Pop()
	assert.Equal(t, 1, stack.Depth())
	stack.Pop()
	stack.Pop()
	assert.Equal(t, 0, stack.Depth())
}

func TestStackTraceReportsWinningRuleSet(t *testing.T) {
	rootSet := ignore.FromList("/root", []string{"*.log"})
	subSet := ignore.FromList("/root/sub", []string{"!keep.log"})
	stack := &ignore.Stack{}
	stack.Push(rootSet, "")
	stack.Push(subSet, "sub")

	_, trace := stack.IsIgnored("sub/keep.log", false)
	assert.Same(t, subSet, trace.RuleSet)

	_, trace = stack.IsIgnored("sub/drop.log", false)
	assert.Same(t, rootSet, trace.RuleSet)
}
