// Package utils contains general helper functions used across the c2c tool.
package utils

import (
	"path/filepath"
)

// File and directory names the tool treats specially.
const (
	// GitIgnoreFileName is the name of the rule file discovered per directory.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the VCS metadata directory excluded by default.
	GitDirectoryName = ".git"
	// ConfigFileName is the local configuration file name.
	ConfigFileName = ".c2c.yaml"
	// GlobalConfigDirectoryName is the per-user configuration directory under $HOME.
	GlobalConfigDirectoryName = ".c2c"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving
// order. The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// RelativePathOrSelf calculates the slash-separated relative path from root to
// fullPath. Returns the cleaned fullPath if relative calculation fails and "."
// when both resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relativeError := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relativeError != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// JoinRelative joins a slash-separated relative directory and an entry name.
func JoinRelative(relativeDirectory, entryName string) string {
	if relativeDirectory == "" || relativeDirectory == "." {
		return entryName
	}
	return relativeDirectory + "/" + entryName
}
