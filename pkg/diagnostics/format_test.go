package diagnostics

import (
	"errors"
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

func TestPosition(t *testing.T) {
	src := "let a = 1;\nlet b = c;\n"
	cases := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{11, 2, 1},
		{19, 2, 9},
		{999, 3, 1},
	}
	for _, tc := range cases {
		line, col := Position(src, tc.offset)
		if line != tc.line || col != tc.col {
			t.Fatalf("Position(%d) = %d:%d, want %d:%d", tc.offset, line, col, tc.line, tc.col)
		}
	}
}

func TestFormatWithSpan(t *testing.T) {
	src := "let a = 1;\nlet b = missing;\n"
	err := New(KindType, ast.Span{Source: "main.lyra", Start: 19, End: 26}, "undefined identifier '%s'", "missing")
	got := Format(err, Sources{"main.lyra": src})
	want := "[TypeError] undefined identifier 'missing'\n" +
		"  at main.lyra:2:9\n" +
		"\n" +
		"let b = missing;\n" +
		"        ^^^^^^^"
	if got != want {
		t.Fatalf("unexpected format:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatWithoutSpan(t *testing.T) {
	err := New(KindRuntime, ast.Span{}, "boom")
	if got := Format(err, nil); got != "[RuntimeError] boom" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestWrapUnknownErrorIsInternal(t *testing.T) {
	cause := errors.New("host exploded")
	diag := Wrap(cause)
	if diag.Kind != KindInternal {
		t.Fatalf("expected internal kind, got %s", diag.Kind)
	}
	if !errors.Is(diag, cause) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if Wrap(diag) != diag {
		t.Fatalf("expected diagnostics to pass through Wrap unchanged")
	}
}

func TestFormatAllJoinsList(t *testing.T) {
	list := List{
		New(KindType, ast.Span{}, "first"),
		New(KindType, ast.Span{}, "second"),
	}
	got := FormatAll(list, nil)
	if got != "[TypeError] first\n\n[TypeError] second" {
		t.Fatalf("unexpected output %q", got)
	}
	if !IsKind(list, KindType) || IsKind(list, KindRuntime) {
		t.Fatalf("IsKind mismatch")
	}
}
