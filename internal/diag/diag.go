// Package diag renders stage errors as source-located diagnostics: a
// message, the offending line, and a caret underline spanning the
// error's extent, following the reference ErrorWriter's span-based
// reporting (§4.6) and the teacher's own SentraError line/caret
// rendering (internal/errors in the teacher repo).
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/samuelsleight/catastrophic-go/internal/span"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Reporter keeps the source text's lines and reuses them to underline every
// diagnostic raised against it, mirroring the reference implementation
// keeping the source file open for the lifetime of its ErrorContext.
type Reporter struct {
	path  string
	lines []string
	out   io.Writer
	color bool
}

// NewReporter reads source (already loaded by the lexer's caller) and
// splits it into lines for later underlining. color is auto-detected
// from out via isatty, unless CATASTROPHIC_NO_COLOR is set.
func NewReporter(path string, source []byte, out io.Writer) *Reporter {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if os.Getenv("CATASTROPHIC_NO_COLOR") != "" {
		color = false
	}

	return &Reporter{
		path:  path,
		lines: strings.Split(string(source), "\n"),
		out:   out,
		color: color,
	}
}

// Spanned is implemented by every stage error kind (lexer.Error,
// parser.Error, analyser.UndefinedSymbolError, interp.RuntimeError) so
// the driver can underline it without a type switch per package.
type Spanned interface {
	error
	Span() span.Span[struct{}]
}

// ReportAll writes every error in errs, underlining it when it
// implements Spanned and falling back to a bare message otherwise.
func (r *Reporter) ReportAll(errs []error) {
	for _, err := range errs {
		if sp, ok := err.(Spanned); ok {
			r.Error(sp.Span(), err.Error())
			if dup, ok := err.(interface {
				FirstSpan() (span.Span[struct{}], bool)
			}); ok {
				if first, has := dup.FirstSpan(); has {
					r.Note(first, "first declared here")
				}
			}
			continue
		}
		fmt.Fprintf(r.out, "error: %s\n", err.Error())
	}
}

// Error reports a located error: the message, then the source line and
// a caret underline covering the span's extent on that line.
func (r *Reporter) Error(at span.Span[struct{}], message string) {
	r.write("error", at, message)
}

// Note reports supplementary context for a prior Error, e.g. the
// location of an earlier conflicting declaration.
func (r *Reporter) Note(at span.Span[struct{}], message string) {
	r.write("note", at, message)
}

func (r *Reporter) write(kind string, at span.Span[struct{}], message string) {
	label := kind
	if r.color {
		label = ansiBold + ansiRed + kind + ansiReset
	}
	fmt.Fprintf(r.out, "%s: %s\n", label, message)
	fmt.Fprintf(r.out, "  --> %s:%s\n", r.path, at.Start)

	line := r.sourceLine(at.Start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(r.out, "   | %s\n", line)

	underline := caretLine(line, at)
	fmt.Fprintf(r.out, "   | %s\n", underline)
}

func (r *Reporter) sourceLine(n int) string {
	if n < 0 || n >= len(r.lines) {
		return ""
	}
	return r.lines[n]
}

// caretLine builds a "    ^~~~" underline under the portion of line
// covered by at, clamping to a single caret when the span doesn't end
// on the same line (e.g. an unterminated string).
func caretLine(line string, at span.Span[struct{}]) string {
	start := at.Start.Column
	if start < 0 {
		start = 0
	}
	if start > len(line) {
		start = len(line)
	}

	width := 1
	if at.End.Line == at.Start.Line && at.End.Column > at.Start.Column {
		width = at.End.Column - at.Start.Column
	}

	return strings.Repeat(" ", start) + "^" + strings.Repeat("~", width-1)
}

// StageError wraps a stage's collected errors with that stage's
// context string, so the driver can report "Unable to parse input: N
// errors" alongside each underlined diagnostic.
type StageError struct {
	Context string
	Errors  []error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %d error(s)", e.Context, len(e.Errors))
}

func (e *StageError) Unwrap() []error { return e.Errors }

// Wrap builds a StageError, or nil if errs is empty.
func Wrap(context string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &StageError{Context: context, Errors: errs}
}
