package ignore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// ErrMalformedRules indicates a rule file whose content cannot be decoded as
// text. Callers recover by using the accompanying empty RuleSet.
var ErrMalformedRules = errors.New("malformed rules file")

// Decision is the outcome of evaluating a path against a RuleSet.
type Decision int

const (
	// DecisionNoMatch means no pattern in the set matched the path.
	DecisionNoMatch Decision = iota
	// DecisionIgnore means the last matching pattern excludes the path.
	DecisionIgnore
	// DecisionInclude means the last matching pattern re-includes the path.
	DecisionInclude
)

// String returns a diagnostic label for the decision.
func (decision Decision) String() string {
	switch decision {
	case DecisionIgnore:
		return "ignore"
	case DecisionInclude:
		return "include"
	default:
		return "no-match"
	}
}

// RuleSet is an ordered collection of Patterns scoped to a base directory.
// Paths are evaluated relative to BaseDir, not the traversal root. A RuleSet
// is never mutated after creation.
type RuleSet struct {
	// BaseDir is the absolute directory the patterns are scoped to.
	BaseDir string
	// Patterns preserves file order; later entries override earlier ones.
	Patterns []*Pattern
	// Origin describes where the patterns came from, for diagnostics.
	Origin string
}

// Load reads a rule file and compiles its patterns in file order. A missing
// file yields an empty RuleSet and no error; content that is not valid text
// yields an empty RuleSet and ErrMalformedRules; any other I/O failure is
// propagated.
func Load(ruleFilePath string) (*RuleSet, error) {
	baseDir := filepath.Dir(ruleFilePath)
	content, readError := os.ReadFile(ruleFilePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return &RuleSet{BaseDir: baseDir, Origin: ruleFilePath}, nil
		}
		return nil, fmt.Errorf("reading rules from %s: %w", ruleFilePath, readError)
	}
	if bytes.IndexByte(content, 0) >= 0 || !utf8.Valid(content) {
		return &RuleSet{BaseDir: baseDir, Origin: ruleFilePath}, fmt.Errorf("%w: %s", ErrMalformedRules, ruleFilePath)
	}

	set := &RuleSet{BaseDir: baseDir, Origin: ruleFilePath}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if pattern, ok := ParsePattern(scanner.Text()); ok {
			set.Patterns = append(set.Patterns, pattern)
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("scanning rules from %s: %w", ruleFilePath, scanError)
	}
	return set, nil
}

// FromList builds a RuleSet from command-line style pattern strings using the
// same parsing rules as Load. Lines that parse to nothing are dropped.
func FromList(baseDir string, patternLines []string) *RuleSet {
	set := &RuleSet{BaseDir: baseDir, Origin: "command line"}
	for _, line := range patternLines {
		if pattern, ok := ParsePattern(line); ok {
			set.Patterns = append(set.Patterns, pattern)
		}
	}
	return set
}

// Empty reports whether the set carries no patterns.
func (set *RuleSet) Empty() bool {
	return set == nil || len(set.Patterns) == 0
}

// Evaluate folds the ordered patterns over relativeToBase: each matching
// pattern overwrites the running decision, so the last match in file order
// wins. The winning pattern is returned for diagnostics, nil on NoMatch.
func (set *RuleSet) Evaluate(relativeToBase string, isDirectory bool) (Decision, *Pattern) {
	decision := DecisionNoMatch
	var winner *Pattern
	for _, pattern := range set.Patterns {
		if !pattern.Matches(relativeToBase, isDirectory) {
			continue
		}
		winner = pattern
		if pattern.Negated {
			decision = DecisionInclude
		} else {
			decision = DecisionIgnore
		}
	}
	return decision, winner
}
