package maincmd

import (
	"context"
	"fmt"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/compiler"
	"github.com/holoscript/holo/lang/module"
	"github.com/holoscript/holo/lang/parser"
	"github.com/mna/mainer"
)

// Resolve compiles every given file without running it, printing the
// resulting bytecode in compiler.Dasm's textual form - the teacher's
// "resolve" command repurposed for a compiler that folds scope resolution
// into the compile step rather than running it as a separate pass.
func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(stdio, args...)
}

// ResolveFiles runs files through the scanner+parser+module+compiler
// pipeline and prints compiler.Dasm's textual bytecode listing for the
// resulting Program, without running it.
func ResolveFiles(stdio mainer.Stdio, files ...string) error {
	fset, chunks, err := parser.ParseFiles(files...)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	sink := diag.NewSink(fset)
	names := moduleNamesFromPaths(files)
	graph := module.Build(fset, sink, names, chunks)
	if err := sink.Err(); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	prog := compiler.Compile(fset, sink, graph)
	if err := sink.Err(); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	out, err := compiler.Dasm(prog)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	stdio.Stdout.Write(out)
	return nil
}
