package runner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTempSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.ty")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunEvaluatesCleanSource(t *testing.T) {
	path := writeTempSource(t, "1 + 2\n")
	var out bytes.Buffer
	result, err := Run(path, &out, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Atoms) != 1 || result.Atoms[0] != "int" {
		t.Fatalf("got %+v", result.Atoms)
	}
}

func TestRunSurfacesAnalyzerDiagnostics(t *testing.T) {
	path := writeTempSource(t, "1 + \"a\"\n")
	var out bytes.Buffer
	result, err := Run(path, &out, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %+v", result.Errors)
	}
}

func TestRunReturnsErrorForMissingFile(t *testing.T) {
	var out bytes.Buffer
	if _, err := Run(filepath.Join(t.TempDir(), "missing.ty"), &out, false); err == nil {
		t.Fatal("expected an error reading a nonexistent file")
	}
}
