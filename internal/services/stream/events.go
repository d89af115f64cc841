// Package stream produces the ordered event sequence for a scan: one start
// event, the surviving files with their content, a summary, and a terminal
// done event. Renderers consume the sequence without ever touching the
// filesystem themselves.
package stream

import (
	"time"

	"github.com/ykawataki/c2c/internal/types"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindStart        EventKind = "start"
	EventKindDirectory    EventKind = "directory"
	EventKindFile         EventKind = "file"
	EventKindContentChunk EventKind = "content_chunk"
	EventKindSummary      EventKind = "summary"
	EventKindWarning      EventKind = "warning"
	EventKindError        EventKind = "error"
	EventKindTree         EventKind = "tree"
	EventKindDone         EventKind = "done"
)

type DirectoryPhase string

const (
	DirectoryEnter DirectoryPhase = "enter"
	DirectoryLeave DirectoryPhase = "leave"
)

type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	Command   string    `json:"command,omitempty"`
	Path      string    `json:"path,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	Directory *DirectoryEvent `json:"directory,omitempty"`
	File      *FileEvent      `json:"file,omitempty"`
	Chunk     *ChunkEvent     `json:"chunk,omitempty"`
	Summary   *SummaryEvent   `json:"summary,omitempty"`
	Message   *LogEvent       `json:"message,omitempty"`
	Err       *ErrorEvent     `json:"error,omitempty"`
	Tree      *types.TreeNode `json:"tree,omitempty"`
}

type DirectoryEvent struct {
	Phase   DirectoryPhase `json:"phase"`
	Path    string         `json:"path"`
	Name    string         `json:"name,omitempty"`
	Depth   int            `json:"depth,omitempty"`
	Summary *SummaryEvent  `json:"summary,omitempty"`
}

type FileEvent struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Depth     int    `json:"depth,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	IsBinary  bool   `json:"isBinary"`
	Tokens    int    `json:"tokens,omitempty"`
	Model     string `json:"model,omitempty"`
	Type      string `json:"type"`
}

type ChunkEvent struct {
	Path    string `json:"path"`
	Index   int    `json:"index"`
	Data    string `json:"data,omitempty"`
	IsFinal bool   `json:"isFinal"`
}

type SummaryEvent struct {
	Files  int    `json:"files"`
	Bytes  int64  `json:"bytes"`
	Tokens int    `json:"tokens,omitempty"`
	Model  string `json:"model,omitempty"`
}

type LogEvent struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
