// Package types defines shared data structures used across the c2c tool.
package types

// Command names.
const (
	CommandScan = "scan"
	CommandTree = "tree"
)

// Output format identifiers.
const (
	FormatText  = "text"
	FormatJSONL = "jsonl"
)

// Node type identifiers used in tree rendering.
const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
	NodeTypeBinary    = "binary"
)

// FileRecord is one emitted file in JSON-lines output. The record is
// intentionally limited to the file path and its full content.
type FileRecord struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// TreeNode represents a node in the filtered directory tree.
type TreeNode struct {
	Path     string      `json:"path"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Size     string      `json:"size,omitempty"`
	Tokens   int         `json:"tokens,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// OutputSummary aggregates run totals reported on stderr after a scan.
type OutputSummary struct {
	TotalFiles  int
	TotalSize   string
	TotalTokens int
	Model       string
}
