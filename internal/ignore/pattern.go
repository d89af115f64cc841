// Package ignore implements gitignore-style rule matching: parsing single
// patterns, evaluating ordered rule sets, and resolving decisions across the
// stack of rule files discovered during traversal.
package ignore

import (
	"strings"
)

// Pattern is one compiled ignore/include rule parsed from a rule-file line or
// a command-line exclude value. A Pattern is immutable once parsed.
type Pattern struct {
	// Raw preserves the original rule text as written.
	Raw string
	// Negated reports whether the rule re-includes matching paths ("!" prefix).
	Negated bool
	// DirectoryOnly reports whether the rule only matches directories and
	// their descendants (trailing "/").
	DirectoryOnly bool
	// Anchored reports whether the rule is matched from the start of the path
	// relative to its defining directory rather than against any suffix.
	Anchored bool

	segments []patternSegment
}

// patternSegment is one slash-delimited component of a pattern. A doubleStar
// segment matches zero or more path segments; a literal segment carries no
// glob metacharacters and compares byte-wise.
type patternSegment struct {
	text       string
	doubleStar bool
	literal    bool
}

// ParsePattern compiles one rule-file line into a Pattern. Blank lines and
// unescaped comment lines produce no Pattern (ok is false).
func ParsePattern(line string) (*Pattern, bool) {
	raw := strings.TrimSuffix(line, "\r")
	body := trimTrailingSpaces(raw)
	if body == "" {
		return nil, false
	}
	if strings.HasPrefix(body, "#") {
		return nil, false
	}
	if strings.HasPrefix(body, `\#`) {
		body = body[1:]
	}

	negated := false
	if strings.HasPrefix(body, "!") {
		negated = true
		body = body[1:]
	} else if strings.HasPrefix(body, `\!`) {
		body = body[1:]
	}

	directoryOnly := false
	if strings.HasSuffix(body, "/") {
		directoryOnly = true
		body = strings.TrimRight(body, "/")
	}

	anchored := false
	if strings.HasPrefix(body, "/") {
		anchored = true
		body = strings.TrimLeft(body, "/")
	}
	if body == "" {
		return nil, false
	}
	// Any remaining slash anchors the pattern to its defining directory, the
	// same as an explicit leading slash.
	if strings.Contains(body, "/") {
		anchored = true
	}

	segments := splitPatternSegments(body)
	if len(segments) == 0 {
		return nil, false
	}

	return &Pattern{
		Raw:           raw,
		Negated:       negated,
		DirectoryOnly: directoryOnly,
		Anchored:      anchored,
		segments:      segments,
	}, true
}

// Matches reports whether the pattern's shape matches relativePath. Negation
// is not resolved here; callers interpret it when folding decisions.
// Directory-only patterns match directories and any path beneath a matching
// directory, never a plain file itself.
func (pattern *Pattern) Matches(relativePath string, isDirectory bool) bool {
	normalized := normalizeRelativePath(relativePath)
	if normalized == "" {
		return false
	}
	pathSegments := strings.Split(normalized, "/")

	if pattern.Anchored {
		return pattern.matchFrom(pathSegments, isDirectory)
	}
	for start := 0; start < len(pathSegments); start++ {
		if pattern.matchFrom(pathSegments[start:], isDirectory) {
			return true
		}
	}
	return false
}

// matchFrom attempts a full match of the pattern against the given segment run.
func (pattern *Pattern) matchFrom(pathSegments []string, isDirectory bool) bool {
	return matchSegments(pattern.segments, pathSegments, pattern.DirectoryOnly, isDirectory)
}

// matchSegments matches pattern segments against path segments from their
// respective starts. Directory-only patterns are also satisfied when the
// pattern consumes a proper prefix of the path, because everything beneath a
// matched directory is covered by the rule.
func matchSegments(patternSegments []patternSegment, pathSegments []string, directoryOnly bool, isDirectory bool) bool {
	if len(patternSegments) == 0 {
		if len(pathSegments) == 0 {
			return !directoryOnly || isDirectory
		}
		return directoryOnly
	}

	head := patternSegments[0]
	if head.doubleStar {
		// "**" consumes zero or more path segments.
		for consumed := 0; consumed <= len(pathSegments); consumed++ {
			if matchSegments(patternSegments[1:], pathSegments[consumed:], directoryOnly, isDirectory) {
				return true
			}
		}
		return false
	}

	if len(pathSegments) == 0 {
		return false
	}
	if !matchOneSegment(head, pathSegments[0]) {
		return false
	}
	return matchSegments(patternSegments[1:], pathSegments[1:], directoryOnly, isDirectory)
}

// matchOneSegment matches one pattern segment against one path segment.
func matchOneSegment(segment patternSegment, candidate string) bool {
	if segment.literal {
		return segment.text == candidate
	}
	return matchGlobSegment(segment.text, candidate)
}

// matchGlobSegment matches "*", "?", "[...]" and "\" escapes against a single
// path segment using iterative star backtracking.
func matchGlobSegment(pattern string, input string) bool {
	patternIndex := 0
	inputIndex := 0
	starPattern := -1
	starInput := 0

	for inputIndex < len(input) {
		if patternIndex < len(pattern) {
			switch pattern[patternIndex] {
			case '*':
				starPattern = patternIndex
				starInput = inputIndex
				patternIndex++
				continue
			case '?':
				patternIndex++
				inputIndex++
				continue
			case '[':
				if classEnd := findCharClassEnd(pattern, patternIndex); classEnd >= 0 {
					if matchCharClass(pattern[patternIndex+1:classEnd], input[inputIndex]) {
						patternIndex = classEnd + 1
						inputIndex++
						continue
					}
					break
				}
				// Unterminated class: treat "[" as a literal byte.
				if input[inputIndex] == '[' {
					patternIndex++
					inputIndex++
					continue
				}
			case '\\':
				if patternIndex+1 < len(pattern) {
					if pattern[patternIndex+1] == input[inputIndex] {
						patternIndex += 2
						inputIndex++
						continue
					}
					break
				}
				if input[inputIndex] == '\\' {
					patternIndex++
					inputIndex++
					continue
				}
			default:
				if pattern[patternIndex] == input[inputIndex] {
					patternIndex++
					inputIndex++
					continue
				}
			}
		}

		if starPattern < 0 {
			return false
		}
		// Backtrack: let the most recent "*" consume one more input byte.
		starInput++
		inputIndex = starInput
		patternIndex = starPattern + 1
	}

	for patternIndex < len(pattern) && pattern[patternIndex] == '*' {
		patternIndex++
	}
	return patternIndex == len(pattern)
}

// matchCharClass matches one byte against the body of a "[...]" class,
// supporting "!" or "^" negation, ranges, and backslash escapes.
func matchCharClass(body string, candidate byte) bool {
	negated := false
	index := 0
	if index < len(body) && (body[index] == '!' || body[index] == '^') {
		negated = true
		index++
	}

	matched := false
	for index < len(body) {
		low := body[index]
		if low == '\\' && index+1 < len(body) {
			index++
			low = body[index]
		}
		if index+2 < len(body) && body[index+1] == '-' {
			high := body[index+2]
			advance := 3
			if high == '\\' && index+3 < len(body) {
				high = body[index+3]
				advance = 4
			}
			if low <= candidate && candidate <= high {
				matched = true
			}
			index += advance
			continue
		}
		if candidate == low {
			matched = true
		}
		index++
	}
	return matched != negated
}

// findCharClassEnd locates the closing bracket of a "[...]" class starting at
// start, or -1 when the class is unterminated.
func findCharClassEnd(pattern string, start int) int {
	if start < 0 || start >= len(pattern) || pattern[start] != '[' {
		return -1
	}
	index := start + 1
	if index < len(pattern) && (pattern[index] == '!' || pattern[index] == '^') {
		index++
	}
	if index < len(pattern) && pattern[index] == ']' {
		index++
	}
	for ; index < len(pattern); index++ {
		if pattern[index] == '\\' {
			index++
			continue
		}
		if pattern[index] == ']' {
			return index
		}
	}
	return -1
}

// splitPatternSegments splits a pattern body into compiled segments, skipping
// empty components produced by doubled slashes.
func splitPatternSegments(body string) []patternSegment {
	parts := strings.Split(body, "/")
	segments := make([]patternSegment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, patternSegment{
			text:       part,
			doubleStar: part == "**",
			literal:    !strings.ContainsAny(part, `*?[\`),
		})
	}
	return segments
}

// trimTrailingSpaces removes trailing spaces and tabs unless the final one is
// backslash-escaped.
func trimTrailingSpaces(line string) string {
	for len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		if len(line) >= 2 && line[len(line)-2] == '\\' {
			return line[:len(line)-2] + line[len(line)-1:]
		}
		line = line[:len(line)-1]
	}
	return line
}

// normalizeRelativePath normalizes a candidate path to slash-separated
// relative form without leading "./".
func normalizeRelativePath(raw string) string {
	normalized := strings.ReplaceAll(raw, `\`, "/")
	normalized = strings.TrimPrefix(normalized, "./")
	normalized = strings.TrimPrefix(normalized, "/")
	normalized = strings.TrimSuffix(normalized, "/")
	if normalized == "." {
		return ""
	}
	return normalized
}
