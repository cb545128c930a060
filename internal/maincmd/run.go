package maincmd

import (
	"context"
	"fmt"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/compiler"
	"github.com/holoscript/holo/lang/machine"
	"github.com/holoscript/holo/lang/module"
	"github.com/holoscript/holo/lang/parser"
	"github.com/mna/mainer"
)

// Run compiles and executes the given files as one dependency-ordered set
// of modules (spec.md §6: the last file given is conventionally the entry
// module, named main.holo), sharing a single global table and heap across
// all of them.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(stdio, args...)
}

func RunFiles(stdio mainer.Stdio, files ...string) error {
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

	m := machine.New(stdio.Stdout, stdio.Stderr)
	result, err := m.RunProgram(prog)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "runtime error: %s\n", err)
		return err
	}
	fmt.Fprintln(stdio.Stdout, result.String())
	return nil
}
