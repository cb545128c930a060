package machine

import (
	"fmt"
	"strings"
)

// StackFrame is one formatted entry of a RuntimeError's trace: the source
// file and line the active instruction pointer maps to, and the enclosing
// function's name (spec.md §4.3/§7: "a formatted stack trace walking active
// frames (file, line, function name)").
type StackFrame struct {
	File     string
	Line     int
	Function string
}

// RuntimeError is returned by Thread.run for any failure that occurs once
// bytecode is executing, as opposed to a compile-time diagnostic reported
// through internal/diag (spec.md §7 draws this line between compile-time
// and runtime errors explicitly).
type RuntimeError struct {
	Message string
	Trace   []StackFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Trace {
		fn := f.Function
		if fn == "" {
			fn = "<toplevel>"
		}
		fmt.Fprintf(&b, "\n  at %s (%s:%d)", fn, f.File, f.Line)
	}
	return b.String()
}

// runtimeError builds a RuntimeError walking the thread's active frames
// innermost-first, using each frame's chunk line table to resolve the
// current instruction to a file/line.
func (th *Thread) runtimeError(format string, args ...interface{}) error {
	re := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := len(th.frames) - 1; i >= 0; i-- {
		f := th.frames[i]
		proto := f.Closure.Fn.Proto
		file, line := proto.Chunk.LineFor(f.ip)
		re.Trace = append(re.Trace, StackFrame{File: file, Line: line, Function: proto.Name})
	}
	return re
}
