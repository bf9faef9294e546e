package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunInterpretsSourceDirectly(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "add.cat", "2 3 + () .")

	if code := run([]string{src}); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
}

func TestRunMissingFileArgumentReturnsUsageError(t *testing.T) {
	if code := run(nil); code != 2 {
		t.Errorf("run(nil) = %d, want 2", code)
	}
}

func TestRunReportsAnalyseErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.cat", "foo")

	if code := run([]string{src}); code == 0 {
		t.Error("run() with an undefined symbol: want non-zero, got 0")
	}
}

func TestRunReportsMissingInputFile(t *testing.T) {
	if code := run([]string{filepath.Join(t.TempDir(), "nope.cat")}); code != 1 {
		t.Errorf("run() with a missing file = %d, want 1", code)
	}
}
