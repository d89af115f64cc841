package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ykawataki/c2c/internal/utils"
)

func writeProjectFile(t *testing.T, root string, relativePath string, content string) {
	t.Helper()
	fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", relativePath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", relativePath, err)
	}
}

func runCommand(t *testing.T, arguments ...string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	command := createRootCommand()
	command.SetArgs(arguments)
	if err := command.Execute(); err != nil {
		t.Fatalf("execute %v: %v", arguments, err)
	}
}

func TestScanCommandWritesDelimitedText(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, ".gitignore", "*.log\n")
	writeProjectFile(t, root, "main.go", "package main\n")
	writeProjectFile(t, root, "debug.log", "dropped")
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	runCommand(t, "scan", root, "--output", outputPath)

	rendered, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(rendered)
	if !strings.HasPrefix(text, "# Project Directory Contents\n") {
		t.Fatalf("missing header:\n%s", text)
	}
	if !strings.Contains(text, "main.go\npackage main\n") {
		t.Fatalf("main.go not framed:\n%s", text)
	}
	if strings.Contains(text, "debug.log") {
		t.Fatalf("ignored file leaked into output:\n%s", text)
	}
}

func TestScanCommandJSONLFormat(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "a.txt", "alpha")
	writeProjectFile(t, root, "b.txt", "beta")
	outputPath := filepath.Join(t.TempDir(), "out.jsonl")

	runCommand(t, "scan", root, "--format", "jsonl", "--output", outputPath)

	rendered, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(rendered), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d:\n%s", len(lines), rendered)
	}
	var record map[string]string
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if record["path"] != "a.txt" || record["content"] != "alpha" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestScanCommandExcludeFlag(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "keep.go", "kept")
	writeProjectFile(t, root, "vendor/dep.go", "dropped")
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	runCommand(t, "scan", root, "-e", "vendor/", "--output", outputPath)

	rendered, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(rendered), "vendor/dep.go") {
		t.Fatalf("excluded file leaked:\n%s", rendered)
	}
	if !strings.Contains(string(rendered), "keep.go") {
		t.Fatalf("kept file missing:\n%s", rendered)
	}
}

func TestScanCommandRejectsInvalidFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	command := createRootCommand()
	command.SetArgs([]string{"scan", t.TempDir(), "--format", "yaml"})
	if err := command.Execute(); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestTreeCommandRendersTree(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "sub/file.txt", "content")
	outputPath := filepath.Join(t.TempDir(), "tree.txt")

	runCommand(t, "tree", root, "--output", outputPath)

	rendered, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(rendered), "└── file.txt") {
		t.Fatalf("tree connector missing:\n%s", rendered)
	}
}

func TestConfigInitCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	originalDirectory, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(workingDirectory); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalDirectory) })

	command := createRootCommand()
	command.SetArgs([]string{"config", "init"})
	if err := command.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workingDirectory, utils.ConfigFileName)); err != nil {
		t.Fatalf("configuration file not created: %v", err)
	}
}

func TestResolveSettingsFlagOverridesConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	configPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	if err := os.WriteFile(configPath, []byte("scan:\n  format: jsonl\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := t.TempDir()
	writeProjectFile(t, root, "x.txt", "x")
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	// --format text on the command line wins over the jsonl config default.
	runCommand(t, "scan", root, "--config", configPath, "--format", "text", "--output", outputPath)

	rendered, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(rendered), "# Project Directory Contents\n") {
		t.Fatalf("expected text output, got:\n%s", rendered)
	}
}
