package interpreter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

type testEngine struct {
	*Engine
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEngine(t *testing.T, opts EngineOptions) *testEngine {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	opts.Stdout = stdout
	opts.Stderr = stderr
	engine, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &testEngine{Engine: engine, stdout: stdout, stderr: stderr}
}

// mustRun runs source through the full pipeline and returns its result and the
// printed lines.
func mustRun(t *testing.T, source string) (runtime.Value, []string) {
	t.Helper()
	engine := newTestEngine(t, EngineOptions{})
	val, err := engine.RunSource("test.lyra", source)
	if err != nil {
		t.Fatalf("RunSource: %v\nstderr:\n%s", err, engine.stderr.String())
	}
	return val, outputLines(engine.stdout.String())
}

// runExpectingError runs source and returns the error and what was written to
// stderr.
func runExpectingError(t *testing.T, source string) (error, string) {
	t.Helper()
	engine := newTestEngine(t, EngineOptions{})
	_, err := engine.RunSource("test.lyra", source)
	if err == nil {
		t.Fatalf("expected an error, stdout:\n%s", engine.stdout.String())
	}
	return err, engine.stderr.String()
}

func outputLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func expectLines(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("output = %q, want %q", got, want)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("output line %d = %q, want %q (all: %q)", idx+1, got[idx], want[idx], got)
		}
	}
}

func expectNumber(t *testing.T, val runtime.Value, want float64) {
	t.Helper()
	num, ok := val.(runtime.NumberValue)
	if !ok {
		t.Fatalf("expected number %v, got %s", want, runtime.TypeName(val))
	}
	if num.Val != want {
		t.Fatalf("value = %v, want %v", num.Val, want)
	}
}

func expectString(t *testing.T, val runtime.Value, want string) {
	t.Helper()
	str, ok := val.(runtime.StringValue)
	if !ok {
		t.Fatalf("expected string %q, got %s", want, runtime.TypeName(val))
	}
	if str.Val != want {
		t.Fatalf("value = %q, want %q", str.Val, want)
	}
}

// loadUnchecked links source without type checking, for tests that drive the
// evaluator directly.
func loadUnchecked(t *testing.T, source string) *driver.Program {
	t.Helper()
	loader, err := driver.NewLoader(driver.LoaderOptions{})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	program, err := loader.LoadSource("test.lyra", source)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	return program
}

func writeFile(t *testing.T, dir, rel, contents string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
