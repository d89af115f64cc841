package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ykawataki/c2c/internal/services/stream"
	"github.com/ykawataki/c2c/internal/types"
	"github.com/ykawataki/c2c/internal/utils"
)

type textStreamRenderer struct {
	stdout         io.Writer
	stderr         io.Writer
	delimiter      string
	includeSummary bool
	headerWritten  bool
	summary        renderedSummary
}

// NewTextStreamRenderer renders the delimited text flattening: a
// self-describing header, then one delimiter line plus content per file. The
// summary, when requested, goes to stderr so stdout stays machine-consumable.
func NewTextStreamRenderer(stdout, stderr io.Writer, delimiter string, includeSummary bool) StreamRenderer {
	return &textStreamRenderer{
		stdout:         stdout,
		stderr:         stderr,
		delimiter:      delimiter,
		includeSummary: includeSummary,
	}
}

func (renderer *textStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindStart:
		if !renderer.headerWritten {
			fmt.Fprintln(renderer.stdout, FormatHeader(renderer.delimiter))
			renderer.headerWritten = true
		}
	case stream.EventKindContentChunk:
		if event.Chunk != nil {
			renderer.writeFile(event.Chunk.Path, event.Chunk.Data)
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

func (renderer *textStreamRenderer) Flush() error {
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

func (renderer *textStreamRenderer) writeFile(path, content string) {
	if strings.Contains(content, strings.TrimSpace(renderer.delimiter)) && renderer.stderr != nil {
		fmt.Fprintf(renderer.stderr, "warning: %s contains the delimiter marker; output may not parse cleanly\n", path)
	}
	fmt.Fprintf(renderer.stdout, "%s%s\n", renderer.delimiter, path)
	fmt.Fprintln(renderer.stdout, content)
}
