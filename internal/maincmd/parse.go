package maincmd

import (
	"context"
	"fmt"

	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/parser"
	"github.com/holoscript/holo/lang/token"
	"github.com/mna/mainer"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(stdio, token.PosLong, args...)
}

func ParseFiles(stdio mainer.Stdio, posMode token.PosMode, files ...string) error {
	printer := ast.Printer{Output: stdio.Stdout, Pos: posMode}
	fset, chunks, err := parser.ParseFiles(files...)
	for _, ch := range chunks {
		start, _ := ch.Span()
		file := fset.File(start)
		if perr := printer.Print(ch, file); perr != nil {
			fmt.Fprintln(stdio.Stderr, perr)
			return perr
		}
	}
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}
	return err
}
