// Package diag implements the error-reporter collaborator described in
// spec.md §6: a sink that accepts a printf-style template and zero or more
// string arguments, counts how many diagnostics have been reported, and
// prints them to a writer (normally os.Stderr).
package diag

import (
	"fmt"
	"io"

	"github.com/mattn/go-isatty"
)

// Reporter counts and prints diagnostics for a single compilation. It is
// owned by the top-level driver and reset per translation unit, matching
// the process-wide mutable state inventory in spec.md §5.
type Reporter struct {
	w       io.Writer
	color   bool
	count   int
	prog    string // program name, prefixed to every message
}

// New creates a Reporter writing to w. When w is an *os.File connected to
// a terminal, diagnostics are prefixed with a colored "error:" tag; when
// it is redirected to a file or pipe, they are plain text. This is purely
// cosmetic and never affects the compiler's exit code or stdout.
func New(w io.Writer, prog string) *Reporter {
	color := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{w: w, color: color, prog: prog}
}

// Errorf reports a diagnostic built from a template containing %s
// placeholders and increments the error count. It never panics or exits;
// callers decide how to react to a non-zero Count.
func (r *Reporter) Errorf(format string, args ...string) {
	r.count++
	anyArgs := make([]any, len(args))
	for i, a := range args {
		anyArgs[i] = a
	}
	msg := fmt.Sprintf(format, anyArgs...)
	if r.color {
		fmt.Fprintf(r.w, "%s: \x1b[31merror:\x1b[0m %s\n", r.prog, msg)
	} else {
		fmt.Fprintf(r.w, "%s: error: %s\n", r.prog, msg)
	}
}

// ErrorfLine is Errorf plus a source-line snippet printed on a second line,
// the way the teacher's parser annotates a syntax error with the offending
// line (spec.md §7's "source line + description" diagnostic shape).
func (r *Reporter) ErrorfLine(sourceLine string, format string, args ...string) {
	r.Errorf(format, args...)
	fmt.Fprintf(r.w, "  |> %s\n", sourceLine)
}

// Count returns the number of diagnostics reported so far.
func (r *Reporter) Count() int { return r.count }

// HasErrors reports whether any diagnostic has been reported.
func (r *Reporter) HasErrors() bool { return r.count > 0 }

// Reset clears the error count, used when a Reporter is reused across
// translation units (spec.md §5: "All are owned by the top-level driver
// and reset per translation unit").
func (r *Reporter) Reset() { r.count = 0 }
