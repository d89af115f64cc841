package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ykawataki/c2c/internal/services/stream"
	"github.com/ykawataki/c2c/internal/types"
	"github.com/ykawataki/c2c/internal/utils"
)

type jsonlStreamRenderer struct {
	encoder        *json.Encoder
	stderr         io.Writer
	includeSummary bool
	summary        renderedSummary
}

// NewJSONLStreamRenderer renders one JSON object per surviving file, each on
// its own line, carrying exactly the path and the full content.
func NewJSONLStreamRenderer(stdout, stderr io.Writer, includeSummary bool) StreamRenderer {
	return &jsonlStreamRenderer{
		encoder:        json.NewEncoder(stdout),
		stderr:         stderr,
		includeSummary: includeSummary,
	}
}

func (renderer *jsonlStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindContentChunk:
		if event.Chunk != nil {
			return renderer.encoder.Encode(types.FileRecord{
				Path:    event.Chunk.Path,
				Content: event.Chunk.Data,
			})
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

func (renderer *jsonlStreamRenderer) Flush() error {
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
