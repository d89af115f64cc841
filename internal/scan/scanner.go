// Package scan implements the filtered directory traversal: it walks a tree
// depth-first, discovers rule files per directory, maintains the active
// RuleSet stack, and yields the surviving entries in a deterministic order.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ykawataki/c2c/internal/ignore"
	"github.com/ykawataki/c2c/internal/utils"
)

// ErrNotADirectory indicates that the scan root does not exist or is not a
// directory. It aborts the scan before any output is produced.
var ErrNotADirectory = errors.New("scan root is not a directory")

// Options configures a Scanner. The value is treated as immutable once the
// Scanner is constructed.
type Options struct {
	// Root is the directory to scan.
	Root string
	// ExcludePatterns are command-line supplied rules scoped to Root.
	ExcludePatterns []string
	// RuleFileName is the per-directory rules file, defaulting to ".gitignore".
	RuleFileName string
	// DisableRuleFiles skips per-directory rule file discovery entirely.
	DisableRuleFiles bool
	// IncludeGit disables the implicit exclusion of the VCS metadata directory.
	IncludeGit bool
	// Logger receives per-path decision traces and non-fatal notices at debug
	// level. A nil logger disables the diagnostic channel.
	Logger *zap.Logger
}

// Entry is one surviving regular file or visited directory.
type Entry struct {
	// AbsolutePath is the cleaned absolute path of the entry.
	AbsolutePath string
	// RelativePath is slash separated and relative to the scan root.
	RelativePath string
	// Info holds the entry's file information.
	Info fs.FileInfo
}

// Handlers receives traversal callbacks. File is invoked for every kept
// regular file; EnterDirectory and LeaveDirectory bracket every descended
// directory (the root excluded). Nil handlers are skipped. Returning an error
// from any handler aborts the traversal.
type Handlers struct {
	EnterDirectory func(Entry) error
	LeaveDirectory func(Entry) error
	File           func(Entry) error
}

// Scanner walks one directory tree. It is single use per Run invocation; the
// RuleSet stack is owned by the running traversal and never shared.
type Scanner struct {
	options Options
	rootDir string
	logger  *zap.Logger
}

// NewScanner validates the root directory and prepares a Scanner. A missing
// or non-directory root is the one fatal condition and is reported
// immediately.
func NewScanner(options Options) (*Scanner, error) {
	absoluteRoot, absoluteError := filepath.Abs(options.Root)
	if absoluteError != nil {
		return nil, fmt.Errorf("resolving scan root %s: %w", options.Root, absoluteError)
	}
	cleanRoot := filepath.Clean(absoluteRoot)

	rootInfo, statError := os.Stat(cleanRoot)
	if statError != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotADirectory, options.Root, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, options.Root)
	}

	if options.RuleFileName == "" {
		options.RuleFileName = utils.GitIgnoreFileName
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scanner{options: options, rootDir: cleanRoot, logger: logger}, nil
}

// Root returns the cleaned absolute scan root.
func (scanner *Scanner) Root() string {
	return scanner.rootDir
}

// Run walks the tree and invokes visit for every kept regular file in
// deterministic (lexicographic, depth-first) order.
func (scanner *Scanner) Run(visit func(Entry) error) error {
	return scanner.Walk(Handlers{File: visit})
}

// Walk performs the traversal with full directory bracketing. The default
// exclude RuleSet (the VCS metadata directory) is always the outermost frame,
// followed by command-line excludes, followed by rule files discovered on the
// way down.
func (scanner *Scanner) Walk(handlers Handlers) error {
	stack := &ignore.Stack{}

	defaultPatterns := scanner.defaultExcludePatterns()
	if len(defaultPatterns) > 0 {
		stack.Push(ignore.FromList(scanner.rootDir, defaultPatterns), "")
	}
	if len(scanner.options.ExcludePatterns) > 0 {
		stack.Push(ignore.FromList(scanner.rootDir, scanner.options.ExcludePatterns), "")
	}

	return scanner.walkDirectory(scanner.rootDir, "", stack, handlers)
}

// defaultExcludePatterns returns the implicit rules active for every scan.
func (scanner *Scanner) defaultExcludePatterns() []string {
	if scanner.options.IncludeGit {
		return nil
	}
	return []string{utils.GitDirectoryName + "/"}
}

// walkDirectory processes one directory: it loads the directory's rule file
// (if any) onto the stack, evaluates each child against the active stack, and
// recurses into kept subdirectories. The directory's own RuleSet is popped on
// the way out.
func (scanner *Scanner) walkDirectory(directoryPath string, relativeDirectory string, stack *ignore.Stack, handlers Handlers) error {
	if !scanner.options.DisableRuleFiles {
		ruleSet, loadError := ignore.Load(filepath.Join(directoryPath, scanner.options.RuleFileName))
		if loadError != nil {
			// Malformed or unreadable rule files degrade to an empty set.
			scanner.logger.Debug("skipping rules file",
				zap.String("directory", directoryPath),
				zap.Error(loadError))
		}
		if !ruleSet.Empty() {
			stack.Push(ruleSet, relativeDirectory)
			defer stack.Pop()
		}
	}

	entries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		scanner.logger.Debug("unreadable directory",
			zap.String("directory", directoryPath),
			zap.Error(readError))
		return nil
	}

	for _, entry := range entries {
		entryPath := filepath.Join(directoryPath, entry.Name())
		relativePath := utils.JoinRelative(relativeDirectory, entry.Name())
		isDirectory := entry.IsDir()

		ignored, trace := stack.IsIgnored(relativePath, isDirectory)
		scanner.logDecision(relativePath, isDirectory, trace)
		if ignored {
			continue
		}

		if isDirectory {
			if walkError := scanner.descend(entryPath, relativePath, entry, stack, handlers); walkError != nil {
				return walkError
			}
			continue
		}

		// Rule files are not part of the output unless a rule explicitly
		// re-includes them.
		if !scanner.options.DisableRuleFiles &&
			entry.Name() == scanner.options.RuleFileName &&
			trace.Decision != ignore.DecisionInclude {
			continue
		}

		entryInfo, infoError := entry.Info()
		if infoError != nil {
			scanner.logger.Debug("unreadable entry",
				zap.String("path", entryPath),
				zap.Error(infoError))
			continue
		}
		if !entryInfo.Mode().IsRegular() {
			continue
		}

		if handlers.File != nil {
			if visitError := handlers.File(Entry{
				AbsolutePath: entryPath,
				RelativePath: relativePath,
				Info:         entryInfo,
			}); visitError != nil {
				return visitError
			}
		}
	}

	return nil
}

// descend brackets one subdirectory with enter/leave callbacks and recurses.
func (scanner *Scanner) descend(directoryPath string, relativePath string, entry fs.DirEntry, stack *ignore.Stack, handlers Handlers) error {
	entryInfo, infoError := entry.Info()
	if infoError != nil {
		scanner.logger.Debug("unreadable entry",
			zap.String("path", directoryPath),
			zap.Error(infoError))
		return nil
	}

	directoryEntry := Entry{
		AbsolutePath: directoryPath,
		RelativePath: relativePath,
		Info:         entryInfo,
	}
	if handlers.EnterDirectory != nil {
		if enterError := handlers.EnterDirectory(directoryEntry); enterError != nil {
			return enterError
		}
	}
	if walkError := scanner.walkDirectory(directoryPath, relativePath, stack, handlers); walkError != nil {
		return walkError
	}
	if handlers.LeaveDirectory != nil {
		if leaveError := handlers.LeaveDirectory(directoryEntry); leaveError != nil {
			return leaveError
		}
	}
	return nil
}

// logDecision reports which pattern from which rule file decided a path.
func (scanner *Scanner) logDecision(relativePath string, isDirectory bool, trace ignore.Trace) {
	if !scanner.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	fields := []zap.Field{
		zap.String("path", relativePath),
		zap.Bool("directory", isDirectory),
		zap.String("decision", trace.Decision.String()),
	}
	if trace.Pattern != nil {
		fields = append(fields, zap.String("pattern", trace.Pattern.Raw))
	}
	if trace.RuleSet != nil {
		fields = append(fields, zap.String("rules", trace.RuleSet.Origin))
	}
	scanner.logger.Debug("evaluated path", fields...)
}
