package reliq

import (
	"errors"
	"fmt"
	"strings"
)

// The three error kinds of spec.md §7, modeled on the teacher's
// chtml/err.go ComponentError: a wrapped error plus a captured Source
// span, rendered as a one-shot message containing the offending offset.

// SystemError wraps a file I/O or allocation failure (exit code 5).
type SystemError struct {
	Path string
	Err  error
}

func (e *SystemError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *SystemError) Unwrap() error { return e.Err }

// HTMLError reports a hard parser limit breach (exit code 10): currently
// only tree-depth overflow, per spec.md §3 "Maximum tree depth ... Exceeding
// this is a fatal parse error."
type HTMLError struct {
	Source
	Msg string
}

func (e *HTMLError) Error() string {
	return formatSourceError(e.Source, e.Msg)
}

// ScriptError reports any compile-time failure in the query language, the
// pattern language, or the output-field syntax (exit code 15).
type ScriptError struct {
	Source
	Msg string
}

func (e *ScriptError) Error() string {
	return formatSourceError(e.Source, e.Msg)
}

func formatSourceError(src Source, msg string) string {
	var b strings.Builder
	if src.File != "" {
		b.WriteString(src.File)
		b.WriteByte(':')
	}
	if !src.Span.IsZero() || src.Span.Offset > 0 {
		fmt.Fprintf(&b, "%d:%d: ", src.Span.Line, src.Span.Column)
	}
	b.WriteString(msg)
	if src.Span.Offset > 0 || !src.Span.IsZero() {
		fmt.Fprintf(&b, " (offset %d)", src.Span.Offset)
	}
	return b.String()
}

// newScriptError builds a ScriptError located at offset within src, computing
// line/column lazily from data.
func newScriptError(data []byte, offset, length int, format string, args ...any) *ScriptError {
	return &ScriptError{
		Source: Source{Span: spanFromOffset(data, offset, length)},
		Msg:    fmt.Sprintf(format, args...),
	}
}

func newHTMLError(data []byte, offset int, format string, args ...any) *HTMLError {
	return &HTMLError{
		Source: Source{Span: spanFromOffset(data, offset, 0)},
		Msg:    fmt.Sprintf(format, args...),
	}
}

// ErrDepthExceeded is the parser's error when its recursion depth limit
// (spec.md §3: 8192, or 256 in small-stack mode) is exceeded. HTMLError
// does not wrap it; only its message text is used.
var ErrDepthExceeded = errors.New("maximum tree depth exceeded")

// SourceContext is the rendering-agnostic payload used to print a caret
// diagnostic pointing at the offending line, modeled on the teacher's
// chtml/err.go ComponentError.SourceCodeContext / source_code.go.
type SourceContext struct {
	Lines       []SourceLine
	ErrorLine   int
	ErrorColumn int
}

type SourceLine struct {
	Number  int
	Text    string
	IsError bool
}

// BuildSourceContext extracts contextLines before/after the error location
// out of the raw query or document text, for CLI diagnostics.
func BuildSourceContext(data []byte, span Span, contextLines int) *SourceContext {
	if span.Line <= 0 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	start := span.Line - contextLines
	if start < 1 {
		start = 1
	}
	end := span.Line + contextLines
	if end > len(lines) {
		end = len(lines)
	}
	ctx := &SourceContext{ErrorLine: span.Line, ErrorColumn: span.Column}
	for i := start; i <= end; i++ {
		if i-1 >= len(lines) {
			break
		}
		ctx.Lines = append(ctx.Lines, SourceLine{Number: i, Text: lines[i-1], IsError: i == span.Line})
	}
	return ctx
}
