package output

import (
	"fmt"
	"io"

	"github.com/ykawataki/c2c/internal/services/stream"
	"github.com/ykawataki/c2c/internal/types"
	"github.com/ykawataki/c2c/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
)

type treeStreamRenderer struct {
	stdout         io.Writer
	stderr         io.Writer
	includeSummary bool
	summary        renderedSummary
	tree           *types.TreeNode
}

// NewTreeStreamRenderer collects the assembled tree event and renders it with
// box-drawing connectors on Flush.
func NewTreeStreamRenderer(stdout, stderr io.Writer, includeSummary bool) StreamRenderer {
	return &treeStreamRenderer{
		stdout:         stdout,
		stderr:         stderr,
		includeSummary: includeSummary,
	}
}

func (renderer *treeStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindTree:
		if event.Tree != nil {
			renderer.tree = event.Tree
		}
	case stream.EventKindSummary:
		renderer.summary.add(event.Summary)
	case stream.EventKindWarning:
		if event.Message != nil && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, event.Message.Message)
		}
	case stream.EventKindError:
		if event.Err != nil && renderer.stderr != nil {
			fmt.Fprintln(renderer.stderr, event.Err.Message)
		}
	}
	return nil
}

func (renderer *treeStreamRenderer) Flush() error {
	if renderer.tree != nil {
		WriteTreeRaw(renderer.stdout, renderer.tree)
	}
	if renderer.includeSummary && renderer.stderr != nil {
		fmt.Fprintln(renderer.stderr, FormatSummaryLine(&types.OutputSummary{
			TotalFiles:  renderer.summary.files,
			TotalSize:   utils.FormatFileSize(renderer.summary.bytes),
			TotalTokens: renderer.summary.tokens,
			Model:       renderer.summary.model,
		}))
	}
	return nil
}

// WriteTreeRaw renders a directory tree to the provided writer.
func WriteTreeRaw(writer io.Writer, node *types.TreeNode) {
	if node == nil {
		return
	}
	renderTreeNode(writer, node, "", true, true)
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderTreeNode(writer io.Writer, node *types.TreeNode, prefix string, isRoot bool, isLast bool) {
	if node == nil {
		return
	}
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	switch node.Type {
	case types.NodeTypeFile:
		if node.Tokens > 0 {
			fmt.Fprintf(writer, "%s%s (%s, %d tokens)\n", linePrefix, node.Name, node.Size, node.Tokens)
		} else {
			fmt.Fprintf(writer, "%s%s (%s)\n", linePrefix, node.Name, node.Size)
		}
		return
	case types.NodeTypeBinary:
		fmt.Fprintf(writer, "%s%s (%s, binary)\n", linePrefix, node.Name, node.Size)
		return
	}
	name := node.Name
	if isRoot {
		name = node.Path
	}
	fmt.Fprintf(writer, "%s%s/\n", linePrefix, name)
	for index, child := range node.Children {
		if child == nil {
			continue
		}
		renderTreeNode(writer, child, childPrefix, false, index == len(node.Children)-1)
	}
}
