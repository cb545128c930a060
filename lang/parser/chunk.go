package parser

import (
	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/token"
)

func (p *parser) parseChunk() *ast.Chunk {
	var chunk ast.Chunk

	start := p.val.Pos
	stmts := p.parseStmtsUntil(token.EOF)
	chunk.Block = &ast.Block{Start: start, Stmts: stmts, End: p.val.Pos}
	chunk.EOF = p.expect(token.EOF)
	return &chunk
}
