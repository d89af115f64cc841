package stream

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ykawataki/c2c/internal/scan"
	"github.com/ykawataki/c2c/internal/tokenizer"
	"github.com/ykawataki/c2c/internal/types"
	"github.com/ykawataki/c2c/internal/utils"
)

// ScanOptions configures a content streaming run.
type ScanOptions struct {
	Root             string
	ExcludePatterns  []string
	RuleFileName     string
	DisableRuleFiles bool
	IncludeGit       bool
	TokenCounter     tokenizer.Counter
	TokenModel       string
	Logger           *zap.Logger
}

// TreeOptions configures a tree streaming run.
type TreeOptions struct {
	Root             string
	ExcludePatterns  []string
	RuleFileName     string
	DisableRuleFiles bool
	IncludeGit       bool
	TokenCounter     tokenizer.Counter
	TokenModel       string
	Logger           *zap.Logger
}

type emitter struct {
	ctx     context.Context
	out     chan<- Event
	command string
}

func newEmitter(ctx context.Context, out chan<- Event, command string) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out, command: command}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	event.Version = SchemaVersion
	if event.Command == "" {
		event.Command = e.command
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(path, message string) {
	trimmed := strings.TrimRight(message, "\n")
	if trimmed == "" {
		return
	}
	_ = e.send(Event{
		Kind:    EventKindWarning,
		Path:    path,
		Message: &LogEvent{Level: "warning", Message: trimmed},
	})
}

type summaryTracker struct {
	files  int
	bytes  int64
	tokens int
	model  string
}

func (tracker *summaryTracker) add(size int64, tokens int, model string) {
	tracker.files++
	tracker.bytes += size
	tracker.tokens += tokens
	if tracker.model == "" && model != "" && tokens > 0 {
		tracker.model = model
	}
}

func (tracker *summaryTracker) summary() *SummaryEvent {
	return &SummaryEvent{
		Files:  tracker.files,
		Bytes:  tracker.bytes,
		Tokens: tracker.tokens,
		Model:  tracker.model,
	}
}

// StreamScan walks the filtered tree and emits one file event followed by a
// single final content chunk per surviving text file. Binary files are
// skipped; files that cannot be read produce a warning event and the run
// continues.
func StreamScan(ctx context.Context, opts ScanOptions, out chan<- Event) error {
	if opts.Root == "" {
		return fmt.Errorf("stream: scan root path is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	scanner, scannerError := scan.NewScanner(scan.Options{
		Root:             opts.Root,
		ExcludePatterns:  opts.ExcludePatterns,
		RuleFileName:     opts.RuleFileName,
		DisableRuleFiles: opts.DisableRuleFiles,
		IncludeGit:       opts.IncludeGit,
		Logger:           logger,
	})
	if scannerError != nil {
		return scannerError
	}

	sender := newEmitter(ctx, out, types.CommandScan)
	if startError := sender.send(Event{Kind: EventKindStart, Path: scanner.Root()}); startError != nil {
		return startError
	}

	tracker := &summaryTracker{}
	visit := func(entry scan.Entry) error {
		fileBytes, readError := os.ReadFile(entry.AbsolutePath)
		if readError != nil {
			sender.warn(entry.RelativePath, fmt.Sprintf("cannot read %s: %v", entry.RelativePath, readError))
			return nil
		}
		if utils.IsBinary(fileBytes) {
			logger.Debug("skipping binary file", zap.String("path", entry.RelativePath))
			return nil
		}

		tokens := countTokens(sender, opts.TokenCounter, entry.RelativePath, fileBytes)
		tracker.add(entry.Info.Size(), tokens, opts.TokenModel)

		if fileError := sender.send(Event{
			Kind: EventKindFile,
			Path: entry.RelativePath,
			File: &FileEvent{
				Path:      entry.RelativePath,
				Name:      filepath.Base(entry.RelativePath),
				Depth:     pathDepth(entry.RelativePath),
				SizeBytes: entry.Info.Size(),
				MimeType:  utils.DetectMimeType(entry.AbsolutePath),
				IsBinary:  false,
				Tokens:    tokens,
				Model:     opts.TokenModel,
				Type:      types.NodeTypeFile,
			},
		}); fileError != nil {
			return fileError
		}
		return sender.send(Event{
			Kind: EventKindContentChunk,
			Path: entry.RelativePath,
			Chunk: &ChunkEvent{
				Path:    entry.RelativePath,
				Index:   0,
				Data:    string(fileBytes),
				IsFinal: true,
			},
		})
	}

	if runError := scanner.Run(visit); runError != nil {
		sender.warn(scanner.Root(), runError.Error())
		_ = sender.send(Event{Kind: EventKindError, Path: scanner.Root(), Err: &ErrorEvent{Message: runError.Error()}})
		return runError
	}

	if summaryError := sender.send(Event{Kind: EventKindSummary, Path: scanner.Root(), Summary: tracker.summary()}); summaryError != nil {
		return summaryError
	}
	return sender.send(Event{Kind: EventKindDone, Path: scanner.Root()})
}

type directoryStackEntry struct {
	node    *types.TreeNode
	depth   int
	tracker summaryTracker
}

// StreamTree walks the filtered tree and emits enter/leave directory events
// plus one file event per surviving entry, then a single assembled tree event.
func StreamTree(ctx context.Context, opts TreeOptions, out chan<- Event) error {
	if opts.Root == "" {
		return fmt.Errorf("stream: tree root path is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	scanner, scannerError := scan.NewScanner(scan.Options{
		Root:             opts.Root,
		ExcludePatterns:  opts.ExcludePatterns,
		RuleFileName:     opts.RuleFileName,
		DisableRuleFiles: opts.DisableRuleFiles,
		IncludeGit:       opts.IncludeGit,
		Logger:           logger,
	})
	if scannerError != nil {
		return scannerError
	}

	sender := newEmitter(ctx, out, types.CommandTree)
	if startError := sender.send(Event{Kind: EventKindStart, Path: scanner.Root()}); startError != nil {
		return startError
	}

	root := &types.TreeNode{
		Path: scanner.Root(),
		Name: filepath.Base(scanner.Root()),
		Type: types.NodeTypeDirectory,
	}
	stack := []*directoryStackEntry{{node: root}}
	totals := &summaryTracker{}

	handlers := scan.Handlers{
		EnterDirectory: func(entry scan.Entry) error {
			depth := pathDepth(entry.RelativePath) + 1
			if enterError := sender.send(Event{
				Kind: EventKindDirectory,
				Path: entry.RelativePath,
				Directory: &DirectoryEvent{
					Phase: DirectoryEnter,
					Path:  entry.RelativePath,
					Name:  entry.Info.Name(),
					Depth: depth,
				},
			}); enterError != nil {
				return enterError
			}
			node := &types.TreeNode{
				Path: entry.RelativePath,
				Name: entry.Info.Name(),
				Type: types.NodeTypeDirectory,
			}
			parent := stack[len(stack)-1]
			parent.node.Children = append(parent.node.Children, node)
			stack = append(stack, &directoryStackEntry{node: node, depth: depth})
			return nil
		},
		LeaveDirectory: func(entry scan.Entry) error {
			current := stack[len(stack)-1]
			if current.node.Path != entry.RelativePath {
				return fmt.Errorf("stream: directory stack mismatch for %s", entry.RelativePath)
			}
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.tracker.files += current.tracker.files
			parent.tracker.bytes += current.tracker.bytes
			parent.tracker.tokens += current.tracker.tokens
			return sender.send(Event{
				Kind: EventKindDirectory,
				Path: entry.RelativePath,
				Directory: &DirectoryEvent{
					Phase:   DirectoryLeave,
					Path:    entry.RelativePath,
					Name:    entry.Info.Name(),
					Depth:   current.depth,
					Summary: current.tracker.summary(),
				},
			})
		},
		File: func(entry scan.Entry) error {
			nodeType := types.NodeTypeFile
			isBinary := false
			tokens := 0
			if binary, binaryError := utils.IsFileBinary(entry.AbsolutePath); binaryError == nil && binary {
				nodeType = types.NodeTypeBinary
				isBinary = true
			} else if opts.TokenCounter != nil {
				if fileBytes, readError := os.ReadFile(entry.AbsolutePath); readError == nil {
					tokens = countTokens(sender, opts.TokenCounter, entry.RelativePath, fileBytes)
				}
			}

			current := stack[len(stack)-1]
			current.tracker.add(entry.Info.Size(), tokens, opts.TokenModel)
			totals.add(entry.Info.Size(), tokens, opts.TokenModel)
			current.node.Children = append(current.node.Children, &types.TreeNode{
				Path:   entry.RelativePath,
				Name:   entry.Info.Name(),
				Type:   nodeType,
				Size:   utils.FormatFileSize(entry.Info.Size()),
				Tokens: tokens,
			})

			return sender.send(Event{
				Kind: EventKindFile,
				Path: entry.RelativePath,
				File: &FileEvent{
					Path:      entry.RelativePath,
					Name:      entry.Info.Name(),
					Depth:     pathDepth(entry.RelativePath),
					SizeBytes: entry.Info.Size(),
					MimeType:  utils.DetectMimeType(entry.AbsolutePath),
					IsBinary:  isBinary,
					Tokens:    tokens,
					Model:     opts.TokenModel,
					Type:      nodeType,
				},
			})
		},
	}

	if walkError := scanner.Walk(handlers); walkError != nil {
		sender.warn(scanner.Root(), walkError.Error())
		_ = sender.send(Event{Kind: EventKindError, Path: scanner.Root(), Err: &ErrorEvent{Message: walkError.Error()}})
		return walkError
	}

	if treeError := sender.send(Event{Kind: EventKindTree, Path: root.Path, Tree: root}); treeError != nil {
		return treeError
	}
	if summaryError := sender.send(Event{Kind: EventKindSummary, Path: scanner.Root(), Summary: totals.summary()}); summaryError != nil {
		return summaryError
	}
	return sender.send(Event{Kind: EventKindDone, Path: scanner.Root()})
}

func countTokens(sender *emitter, counter tokenizer.Counter, path string, data []byte) int {
	if counter == nil {
		return 0
	}
	countResult, countError := tokenizer.CountBytes(counter, data)
	if countError != nil {
		sender.warn(path, countError.Error())
		return 0
	}
	if !countResult.Counted {
		return 0
	}
	return countResult.Tokens
}

func pathDepth(relativePath string) int {
	if relativePath == "" || relativePath == "." {
		return 0
	}
	return strings.Count(relativePath, "/")
}
