package tokenizer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ykawataki/c2c/internal/tokenizer"
)

type runeCounter struct{}

func (runeCounter) Name() string { return "runes" }

func (runeCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestCountBytesCountsText(t *testing.T) {
	result, err := tokenizer.CountBytes(runeCounter{}, []byte("hello"))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if !result.Counted || result.Tokens != 5 {
		t.Fatalf("expected 5 counted tokens, got %+v", result)
	}
}

func TestCountBytesEmptyInputIsCounted(t *testing.T) {
	result, err := tokenizer.CountBytes(runeCounter{}, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if !result.Counted || result.Tokens != 0 {
		t.Fatalf("expected zero counted tokens, got %+v", result)
	}
}

func TestCountBytesSkipsBinaryData(t *testing.T) {
	result, err := tokenizer.CountBytes(runeCounter{}, []byte{0x00, 0x01})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if result.Counted {
		t.Fatalf("binary data must be uncounted, got %+v", result)
	}
}

func TestCountBytesNilCounterFails(t *testing.T) {
	if _, err := tokenizer.CountBytes(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestCountFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	result, err := tokenizer.CountFile(runeCounter{}, path)
	if err != nil {
		t.Fatalf("count file: %v", err)
	}
	if !result.Counted || result.Tokens != 3 {
		t.Fatalf("expected 3 tokens, got %+v", result)
	}

	if _, err := tokenizer.CountFile(runeCounter{}, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
