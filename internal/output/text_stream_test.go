package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ykawataki/c2c/internal/output"
	"github.com/ykawataki/c2c/internal/services/stream"
)

func chunkEvent(path, data string) stream.Event {
	return stream.Event{
		Kind:  stream.EventKindContentChunk,
		Path:  path,
		Chunk: &stream.ChunkEvent{Path: path, Index: 0, Data: data, IsFinal: true},
	}
}

func TestTextStreamRendererFramesFiles(t *testing.T) {
	var stdout, stderr bytes.Buffer
	delimiter := "### FILE_abc123 "
	renderer := output.NewTextStreamRenderer(&stdout, &stderr, delimiter, false)

	events := []stream.Event{
		{Kind: stream.EventKindStart, Path: "/project"},
		chunkEvent("main.go", "package main\n"),
		chunkEvent("docs/readme.md", "# Title"),
		{Kind: stream.EventKindSummary, Summary: &stream.SummaryEvent{Files: 2, Bytes: 20}},
		{Kind: stream.EventKindDone},
	}
	for _, event := range events {
		if err := renderer.Handle(event); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if err := renderer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	rendered := stdout.String()
	if !strings.HasPrefix(rendered, "# Project Directory Contents\n") {
		t.Fatalf("missing header, got %q", rendered[:40])
	}
	if !strings.Contains(rendered, "# DELIMITER=### FILE_abc123\n") {
		t.Fatalf("missing delimiter declaration:\n%s", rendered)
	}
	if !strings.Contains(rendered, delimiter+"main.go\npackage main\n") {
		t.Fatalf("missing framed main.go:\n%s", rendered)
	}
	if !strings.Contains(rendered, delimiter+"docs/readme.md\n# Title\n") {
		t.Fatalf("missing framed readme:\n%s", rendered)
	}
	if stderr.Len() != 0 {
		t.Fatalf("unexpected stderr output: %s", stderr.String())
	}
}

func TestTextStreamRendererHeaderPrecedesFirstFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	delimiter := "### FILE_aaaaaa "
	renderer := output.NewTextStreamRenderer(&stdout, &stderr, delimiter, false)

	_ = renderer.Handle(stream.Event{Kind: stream.EventKindStart})
	_ = renderer.Handle(chunkEvent("a.txt", "A"))
	_ = renderer.Flush()

	rendered := stdout.String()
	headerIndex := strings.Index(rendered, "# DELIMITER=")
	fileIndex := strings.Index(rendered, delimiter+"a.txt")
	if headerIndex < 0 || fileIndex < 0 || headerIndex > fileIndex {
		t.Fatalf("header must precede first delimiter:\n%s", rendered)
	}
}

func TestTextStreamRendererWarnsOnDelimiterCollision(t *testing.T) {
	var stdout, stderr bytes.Buffer
	delimiter := "### FILE_abc123 "
	renderer := output.NewTextStreamRenderer(&stdout, &stderr, delimiter, false)

	_ = renderer.Handle(stream.Event{Kind: stream.EventKindStart})
	_ = renderer.Handle(chunkEvent("notes.md", "the marker ### FILE_abc123 appears here"))
	_ = renderer.Flush()

	if !strings.Contains(stderr.String(), "notes.md") {
		t.Fatalf("expected collision warning on stderr, got %q", stderr.String())
	}
	// The file is still emitted despite the collision.
	if !strings.Contains(stdout.String(), delimiter+"notes.md\n") {
		t.Fatalf("file should still be rendered")
	}
}

func TestTextStreamRendererRoutesWarningsToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	renderer := output.NewTextStreamRenderer(&stdout, &stderr, output.NewDelimiter(), false)

	_ = renderer.Handle(stream.Event{
		Kind:    stream.EventKindWarning,
		Message: &stream.LogEvent{Level: "warning", Message: "cannot read secret.txt"},
	})

	if !strings.Contains(stderr.String(), "cannot read secret.txt") {
		t.Fatalf("warning not routed to stderr")
	}
	if strings.Contains(stdout.String(), "secret.txt") {
		t.Fatalf("warning leaked to stdout")
	}
}

func TestTextStreamRendererSummaryOnStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	renderer := output.NewTextStreamRenderer(&stdout, &stderr, output.NewDelimiter(), true)

	_ = renderer.Handle(stream.Event{Kind: stream.EventKindStart})
	_ = renderer.Handle(stream.Event{
		Kind:    stream.EventKindSummary,
		Summary: &stream.SummaryEvent{Files: 3, Bytes: 2048},
	})
	_ = renderer.Flush()

	if !strings.Contains(stderr.String(), "Summary: 3 files, 2kb") {
		t.Fatalf("unexpected summary line: %q", stderr.String())
	}
	if strings.Contains(stdout.String(), "Summary:") {
		t.Fatalf("summary leaked to stdout")
	}
}

func TestNewDelimiterShape(t *testing.T) {
	first := output.NewDelimiter()
	second := output.NewDelimiter()
	if !strings.HasPrefix(first, "### FILE_") || !strings.HasSuffix(first, " ") {
		t.Fatalf("unexpected delimiter shape %q", first)
	}
	if len(strings.TrimSpace(first)) != len("### FILE_")+6 {
		t.Fatalf("expected six id characters, got %q", first)
	}
	if first == second {
		t.Fatalf("delimiters should differ between runs")
	}
}
