package maincmd

import (
	"context"
	"fmt"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/scanner"
	"github.com/holoscript/holo/lang/token"
	"github.com/mna/mainer"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, token.PosLong, args...)
}

func TokenizeFiles(stdio mainer.Stdio, posMode token.PosMode, files ...string) error {
	fset := token.NewFileSet()
	sink := diag.NewSink(fset)

	for _, file := range files {
		toks, err := scanner.ScanFile(fset, sink, file)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", file, err)
			continue
		}
		f := fset.File(toks[0].Value.Pos)
		for _, tv := range toks {
			fmt.Fprintf(stdio.Stdout, "%s: %s", token.FormatPos(posMode, f, tv.Value.Pos, true), tv.Token)
			if tv.Value.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %s", tv.Value.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if err := sink.Err(); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
