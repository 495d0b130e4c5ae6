package diagnostics

import (
	"fmt"
	"strings"
)

// Sources maps a source name to its text.
type Sources map[string]string

// Position converts a byte offset into a 1-based line and column, clamped to the
// bounds of src.
func Position(src string, offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line = 1 + strings.Count(src[:offset], "\n")
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	return line, offset - lineStart + 1
}

// Format renders one error:
//
//	[Kind] message
//	  at <source>:<line>:<column>
//
//	<offending line>
//	<caret underline>
//
// Errors without a usable span render as the header line alone.
func Format(err *Error, sources Sources) string {
	if err == nil {
		return ""
	}
	header := err.Error()
	span := err.Span
	if span.IsZero() {
		return header
	}
	src, ok := sources[span.Source]
	if !ok {
		if span.Source == "" {
			return header
		}
		return fmt.Sprintf("%s\n  at %s", header, span.Source)
	}
	line, col := Position(src, span.Start)
	lines := strings.Split(src, "\n")
	lineText := strings.TrimRight(lines[line-1], "\r")

	width := span.End - span.Start
	if remaining := len(lineText) - (col - 1); width > remaining {
		width = remaining
	}
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n  at %s:%d:%d\n\n", header, span.Source, line, col)
	b.WriteString(lineText)
	b.WriteByte('\n')
	b.WriteString(caretPadding(lineText, col-1))
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}

// FormatAll renders every error carried by err, separated by blank lines.
func FormatAll(err error, sources Sources) string {
	parts := make([]string, 0, 1)
	for _, diag := range Flatten(err) {
		parts = append(parts, Format(diag, sources))
	}
	return strings.Join(parts, "\n\n")
}

// caretPadding keeps tabs so the caret lines up under tab-indented code.
func caretPadding(line string, n int) string {
	if n > len(line) {
		n = len(line)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
