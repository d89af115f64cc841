package ignore

import "strings"

// Frame is one RuleSet active during traversal together with the path of its
// base directory relative to the scan root ("" for the root itself).
type Frame struct {
	Set    *RuleSet
	Prefix string
}

// Stack is the ordered collection of RuleSets in effect for the directory
// currently being traversed, outermost (root or command-line supplied) first
// and innermost (closest ancestor) last. It is owned exclusively by one
// traversal and is never accessed concurrently.
type Stack struct {
	frames []Frame
}

// Trace records which pattern from which RuleSet produced the final decision
// for a path. It feeds the debug channel only and is not part of the scan
// result.
type Trace struct {
	Decision Decision
	Pattern  *Pattern
	RuleSet  *RuleSet
}

// Push appends a RuleSet scoped to the directory at prefix (relative to the
// scan root, slash separated).
func (stack *Stack) Push(set *RuleSet, prefix string) {
	stack.frames = append(stack.frames, Frame{Set: set, Prefix: prefix})
}

// Pop removes the innermost RuleSet. Pops on an empty stack are ignored.
func (stack *Stack) Pop() {
	if len(stack.frames) > 0 {
		stack.frames = stack.frames[:len(stack.frames)-1]
	}
}

// Depth returns the number of active RuleSets.
func (stack *Stack) Depth() int {
	return len(stack.frames)
}

// IsIgnored evaluates relativePath (slash separated, relative to the scan
// root) against every RuleSet from outermost to innermost. Each set sees the
// path re-expressed relative to its own base directory. A deeper set's
// decision overrides an outer one only when it actually matched; when nothing
// matched anywhere the path is kept.
//
// A directory excluded by a non-negated rule is pruned by the traversal, so
// paths beneath it are never evaluated here; negation cannot reach into an
// excluded directory.
func (stack *Stack) IsIgnored(relativePath string, isDirectory bool) (bool, Trace) {
	trace := Trace{Decision: DecisionNoMatch}
	for index := range stack.frames {
		frame := stack.frames[index]
		candidate := relativePath
		if frame.Prefix != "" {
			// A rule file applies to paths beneath its directory, never to
			// the directory's own name as seen by the parent.
			if relativePath == frame.Prefix {
				continue
			}
			prefix := frame.Prefix + "/"
			if !strings.HasPrefix(relativePath, prefix) {
				continue
			}
			candidate = relativePath[len(prefix):]
		}
		decision, pattern := frame.Set.Evaluate(candidate, isDirectory)
		if decision == DecisionNoMatch {
			continue
		}
		trace = Trace{Decision: decision, Pattern: pattern, RuleSet: frame.Set}
	}
	return trace.Decision == DecisionIgnore, trace
}
