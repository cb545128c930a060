// Package diag accumulates compile-time diagnostics instead of aborting on
// the first one, the way the scanner, parser, module loader and compiler all
// need to report as many problems as possible in a single pass.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/holoscript/holo/lang/token"
)

// A Diagnostic is a single reported problem at a source position.
type Diagnostic struct {
	Pos token.Pos
	Msg string
}

// Sink collects diagnostics produced while processing one or more files. The
// zero value is ready to use.
type Sink struct {
	fset *token.FileSet
	errs []Diagnostic
}

// NewSink returns a Sink that renders positions using fset.
func NewSink(fset *token.FileSet) *Sink {
	return &Sink{fset: fset}
}

// Add records a diagnostic at pos.
func (s *Sink) Add(pos token.Pos, msg string) {
	s.errs = append(s.errs, Diagnostic{Pos: pos, Msg: msg})
}

// Addf records a formatted diagnostic at pos.
func (s *Sink) Addf(pos token.Pos, format string, args ...any) {
	s.Add(pos, fmt.Sprintf(format, args...))
}

// Len reports how many diagnostics have been recorded.
func (s *Sink) Len() int { return len(s.errs) }

// Sort orders diagnostics by position, ties broken by report order.
func (s *Sink) Sort() {
	sort.SliceStable(s.errs, func(i, j int) bool { return s.errs[i].Pos < s.errs[j].Pos })
}

// Err returns nil if no diagnostic was recorded, otherwise a combined error
// rendering every diagnostic, one per line, as "file:line:col: message".
func (s *Sink) Err() error {
	if len(s.errs) == 0 {
		return nil
	}
	s.Sort()
	var b strings.Builder
	for i, d := range s.errs {
		if i > 0 {
			b.WriteByte('\n')
		}
		if s.fset != nil {
			fmt.Fprintf(&b, "%s: %s", s.fset.Position(d.Pos), d.Msg)
		} else {
			fmt.Fprintf(&b, "%d: %s", d.Pos, d.Msg)
		}
	}
	return &Error{Diagnostics: append([]Diagnostic(nil), s.errs...), text: b.String()}
}

// Error is the combined error returned by Sink.Err.
type Error struct {
	Diagnostics []Diagnostic
	text        string
}

func (e *Error) Error() string { return e.text }
