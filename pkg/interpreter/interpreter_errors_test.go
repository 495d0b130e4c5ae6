package interpreter

import (
	"errors"
	"strings"
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

func expectRuntimeError(t *testing.T, source, fragment string) string {
	t.Helper()
	err, stderr := runExpectingError(t, source)
	var diag *diagnostics.Error
	if !errors.As(err, &diag) {
		t.Fatalf("expected diagnostics error, got %T: %v", err, err)
	}
	if diag.Kind != diagnostics.KindRuntime {
		t.Fatalf("kind = %s, want RuntimeError (%v)", diag.Kind, err)
	}
	if !strings.Contains(diag.Message, fragment) {
		t.Fatalf("message %q does not contain %q", diag.Message, fragment)
	}
	return stderr
}

func TestDivisionByZero(t *testing.T) {
	stderr := expectRuntimeError(t, "let z = 0;\nprint(1 / z);", "division by zero")
	if !strings.Contains(stderr, "[RuntimeError] division by zero") || !strings.Contains(stderr, "at test.lyra:2:") {
		t.Fatalf("unexpected report:\n%s", stderr)
	}
	expectRuntimeError(t, "let z = 0;\nprint(5 % z);", "division by zero")
}

func TestCallDepthLimit(t *testing.T) {
	engine := newTestEngine(t, EngineOptions{MaxCallDepth: 64})
	_, err := engine.RunSource("test.lyra", `
class Rec {
    public down(n: number): number { return this.down(n + 1); }
}
new Rec().down(0);
`)
	if err == nil || !strings.Contains(err.Error(), "maximum call depth of 64 exceeded") {
		t.Fatalf("expected depth error, got %v", err)
	}
	if !diagnostics.IsKind(err, diagnostics.KindRuntime) {
		t.Fatalf("depth error kind: %v", err)
	}
}

func TestDefaultCallDepth(t *testing.T) {
	interp := New(Options{})
	if interp.maxDepth != DefaultMaxCallDepth {
		t.Fatalf("maxDepth = %d, want %d", interp.maxDepth, DefaultMaxCallDepth)
	}
}

func TestNullReceiver(t *testing.T) {
	program := loadUnchecked(t, `
let s: string? = null;
s.length();
`)
	_, err := New(Options{}).EvaluateProgram(program)
	if err == nil || !strings.Contains(err.Error(), "cannot call method 'length' on null") {
		t.Fatalf("expected null receiver error, got %v", err)
	}

	engine := newTestEngine(t, EngineOptions{})
	if _, err := engine.RunSource("test.lyra", "let s: string? = null;\ns.length();"); !diagnostics.IsKind(err, diagnostics.KindType) {
		t.Fatalf("checked run should reject the nullable receiver, got %v", err)
	}
}

func TestNativeErrorsBecomeRuntimeErrors(t *testing.T) {
	expectRuntimeError(t, "[1, 2].get(5);", "index 5 out of bounds for array of length 2")
	expectRuntimeError(t, "import Regex\nnew Regex(\"(\");", "Regex")
}

func TestNativeClassWithoutConstructor(t *testing.T) {
	program := loadUnchecked(t, "import Console\nnew Console();")
	_, err := New(Options{}).EvaluateProgram(program)
	if err == nil || !strings.Contains(err.Error(), "native class 'Console' cannot be instantiated") {
		t.Fatalf("expected instantiation error, got %v", err)
	}
}

func TestTypeErrorsPreventEvaluation(t *testing.T) {
	engine := newTestEngine(t, EngineOptions{})
	_, err := engine.RunSource("test.lyra", "print(\"ran\");\nlet y: number = \"s\";")
	if err == nil || !diagnostics.IsKind(err, diagnostics.KindType) {
		t.Fatalf("expected type error, got %v", err)
	}
	if engine.stdout.Len() != 0 {
		t.Fatalf("program ran despite type errors: %q", engine.stdout.String())
	}
	if !strings.Contains(engine.stderr.String(), "[TypeError] cannot assign string to variable 'y' of type number") {
		t.Fatalf("unexpected report:\n%s", engine.stderr.String())
	}
}

func TestSkipTypecheckRunsAnyway(t *testing.T) {
	engine := newTestEngine(t, EngineOptions{SkipTypecheck: true})
	if _, err := engine.RunSource("test.lyra", "let y: number = \"s\";\nprint(y);"); err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	expectLines(t, outputLines(engine.stdout.String()), "s")
}

func TestParseErrorsAreReported(t *testing.T) {
	err, stderr := runExpectingError(t, "let = 5;")
	if !diagnostics.IsKind(err, diagnostics.KindParser) {
		t.Fatalf("expected parser error, got %v", err)
	}
	if !strings.Contains(stderr, "[ParserError]") || !strings.Contains(stderr, "let = 5;") {
		t.Fatalf("unexpected report:\n%s", stderr)
	}
}

func TestGuardRecoversPanics(t *testing.T) {
	_, err := guard(func() (runtime.Value, error) {
		panic("boom")
	})
	var diag *diagnostics.Error
	if !errors.As(err, &diag) || diag.Kind != diagnostics.KindInternal || !strings.Contains(diag.Message, "boom") {
		t.Fatalf("expected internal error, got %v", err)
	}
}
