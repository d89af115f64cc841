// Package output renders stream events into the supported output formats:
// the delimited text flattening, JSON lines, and the raw directory tree.
package output

import (
	"github.com/ykawataki/c2c/internal/services/stream"
)

// StreamRenderer consumes stream events and writes the rendered output.
// Flush is called once after the final event.
type StreamRenderer interface {
	Handle(event stream.Event) error
	Flush() error
}
