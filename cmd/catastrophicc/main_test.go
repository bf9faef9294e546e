package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelsleight/catastrophic-go/internal/backend"
)

func writeSource(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunCompilesToObjectContainer(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "add.cat", "2 3 + () .")

	code := run([]string{src})
	if code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	outPath := filepath.Join(dir, "add.cato")
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected %s to be written: %v", outPath, err)
	}
	if len(data) < 4 || data[0] != 0x41 || data[1] != 0x54 || data[2] != 0x41 || data[3] != 0x43 {
		t.Errorf("output does not start with the magic number bytes, got %x", data)
	}
	_ = backend.MagicNumber
}

func TestRunRespectsOutputFlag(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "add.cat", "2 3 + () .")
	outPath := filepath.Join(dir, "custom.bin")

	code := run([]string{"-o", outPath, src})
	if code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("expected %s to exist: %v", outPath, err)
	}
}

func TestRunReportsParseErrorsAndExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.cat", "5 :")

	code := run([]string{src})
	if code == 0 {
		t.Error("run() = 0 for a source file with a parse error, want non-zero")
	}
}

func TestRunMissingFileArgumentReturnsUsageError(t *testing.T) {
	if code := run(nil); code != 2 {
		t.Errorf("run(nil) = %d, want 2", code)
	}
}

func TestRunListPassesDoesNotRequireInputFile(t *testing.T) {
	if code := run([]string{"-list", "passes"}); code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}
}

func TestRunDebugASTCancelsCleanlyBeforeOptimising(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "add.cat", "2 3 + () .")

	code := run([]string{"-debug", "ast", src})
	if code != 0 {
		t.Errorf("run() with --debug ast = %d, want 0 (clean cancel)", code)
	}
	// No object file should be produced since the pipeline was cancelled
	// before the Emit stage.
	if _, err := os.Stat(filepath.Join(dir, "add.cato")); err == nil {
		t.Error("expected no .cato output when --debug cancels the pipeline")
	}
}
