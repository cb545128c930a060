// Package parser implements the recursive-descent parser that transforms
// tokenized holo source into an AST.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/scanner"
	"github.com/holoscript/holo/lang/token"
)

// ParseFiles parses each of the given source files into its own *ast.Chunk,
// registering all of them in a shared FileSet so positions across files are
// comparable. The returned error, if non-nil, is the sink's combined
// *diag.Error.
func ParseFiles(files ...string) (*token.FileSet, []*ast.Chunk, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	fset := token.NewFileSet()
	sink := diag.NewSink(fset)
	chunks := make([]*ast.Chunk, 0, len(files))

	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			sink.Add(token.NoPos, fmt.Sprintf("%s: %v", file, err))
			continue
		}
		var p parser
		p.init(fset, sink, file, b)
		ch := p.parseChunk()
		ch.Name = file
		chunks = append(chunks, ch)
	}
	return fset, chunks, sink.Err()
}

// ParseChunk parses a single chunk from src, registering it in fset under
// filename. The returned error, if non-nil, is the sink's combined
// *diag.Error.
func ParseChunk(fset *token.FileSet, filename string, src []byte) (*ast.Chunk, error) {
	sink := diag.NewSink(fset)
	var p parser
	p.init(fset, sink, filename, src)
	ch := p.parseChunk()
	ch.Name = filename
	return ch, sink.Err()
}

// parser parses one source file and builds its AST.
type parser struct {
	scanner scanner.Scanner
	sink    *diag.Sink
	file    *token.File

	tok token.Token
	val token.Value
}

func (p *parser) init(fset *token.FileSet, sink *diag.Sink, filename string, src []byte) {
	p.file = fset.AddFile(filename, len(src))
	p.sink = sink
	p.scanner.Init(p.file, src, sink)
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

// errPanicMode is the sentinel value recovered at the statement level,
// turning the skipped-over tokens into a BadStmt.
var errPanicMode = errors.New("panic")

// expect consumes and returns the position of the current token if it is one
// of the expected tokens; otherwise it records an error and unwinds to the
// nearest statement boundary via panic/recover.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos

	var ok bool
	for _, tok := range toks {
		if p.tok == tok {
			ok = true
			break
		}
	}
	if !ok {
		p.errorExpected(pos, describeTokens(toks))
		panic(errPanicMode)
	}

	p.advance()
	return pos
}

func describeTokens(toks []token.Token) string {
	var buf strings.Builder
	for i, tok := range toks {
		if i > 0 {
			buf.WriteString(" or ")
		}
		buf.WriteString(tok.GoString())
	}
	if len(toks) > 1 {
		return "one of " + buf.String()
	}
	return buf.String()
}

func (p *parser) error(pos token.Pos, msg string) {
	p.sink.Add(pos, msg)
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.sink.Addf(pos, format, args...)
}

func (p *parser) errorExpected(pos token.Pos, what string) {
	msg := "expected " + what
	if pos == p.val.Pos {
		msg += ", found " + p.tok.GoString()
	}
	p.error(pos, msg)
}

func tokenIn(t token.Token, toks ...token.Token) bool {
	for _, tok := range toks {
		if t == tok {
			return true
		}
	}
	return false
}

// syncToks are the tokens that make a safe resumption point after a parse
// error: their presence ends the panic-mode skip, either before (syncAt) or
// after (syncAfter) consuming them.
type syncMode int

const (
	syncAfter syncMode = iota
	syncAt
)

var syncToks = map[token.Token]syncMode{
	token.SEMI:     syncAfter,
	token.RBRACE:   syncAt,
	token.IF:       syncAt,
	token.WHILE:    syncAt,
	token.FOR:      syncAt,
	token.RETURN:   syncAt,
	token.BREAK:    syncAt,
	token.CONTINUE: syncAt,
	token.ADVANCE:  syncAt,
	token.SWITCH:   syncAt,
	token.FUNC:     syncAt,
	token.CLASS:    syncAt,
	token.STRUCT:   syncAt,
	token.VAR:      syncAt,
	token.IMPORT:   syncAt,
	token.EXPORT:   syncAt,
}

func (p *parser) syncAfterError() token.Pos {
	for p.tok != token.EOF {
		if mode, ok := syncToks[p.tok]; ok {
			if mode == syncAfter {
				p.advance()
			}
			return p.val.Pos
		}
		p.advance()
	}
	return p.val.Pos
}
