package ast_test

import (
	"fmt"
	"testing"

	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/token"
	"github.com/stretchr/testify/require"
)

func ident(start token.Pos, lit string) *ast.IdentExpr {
	return &ast.IdentExpr{Start: start, Lit: lit}
}

func TestChunkSpan(t *testing.T) {
	blk := &ast.Block{
		Start: 1,
		End:   10,
		Stmts: []ast.Stmt{
			&ast.ExprStmt{Expr: ident(1, "x"), Semi: 2},
		},
	}
	chunk := &ast.Chunk{Name: "main.holo", Block: blk, EOF: 11}

	start, end := chunk.Span()
	require.Equal(t, token.Pos(1), start)
	require.Equal(t, token.Pos(10), end)
}

func TestChunkSpanNoBlock(t *testing.T) {
	chunk := &ast.Chunk{Name: "empty.holo", EOF: 5}
	start, end := chunk.Span()
	require.Equal(t, token.Pos(5), start)
	require.Equal(t, token.Pos(5), end)
}

func TestIsAssignable(t *testing.T) {
	id := ident(1, "x")
	require.True(t, ast.IsAssignable(id))

	dot := &ast.DotExpr{Left: id, Dot: 2, Right: ident(3, "y")}
	require.True(t, ast.IsAssignable(dot))

	idx := &ast.IndexExpr{Prefix: id, Lbrack: 2, Index: ident(3, "i"), Rbrack: 4}
	require.True(t, ast.IsAssignable(idx))

	lit := &ast.LiteralExpr{Type: token.INT, Start: 1, Raw: "1", Value: int64(1)}
	require.False(t, ast.IsAssignable(lit))

	call := &ast.CallExpr{Fn: id, Lparen: 2, Rparen: 3}
	require.False(t, ast.IsAssignable(call))
}

func TestUnwrapParens(t *testing.T) {
	id := ident(2, "x")
	paren := &ast.ParenExpr{Lparen: 1, Expr: id, Rparen: 3}
	nested := &ast.ParenExpr{Lparen: 0, Expr: paren, Rparen: 4}

	require.Same(t, id, ast.Unwrap(nested))
}

func TestWalkVisitsChildrenInOrder(t *testing.T) {
	left := ident(1, "a")
	right := ident(3, "b")
	bin := &ast.BinOpExpr{Left: left, Type: token.PLUS, Op: 2, Right: right}

	var visited []string
	v := ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter {
			return nil
		}
		visited = append(visited, fmt.Sprintf("%v", n))
		return ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
			if dir != ast.VisitEnter {
				return nil
			}
			visited = append(visited, fmt.Sprintf("%v", n))
			return nil
		})
	})
	ast.Walk(v, bin)

	require.Equal(t, []string{"binary '+'", "a", "b"}, visited)
}

func TestFormatWidthAndFlags(t *testing.T) {
	short := &ast.IdentExpr{Start: 1, Lit: "abc"}

	require.Equal(t, "abc", fmt.Sprintf("%v", short))
	require.Equal(t, "   abc", fmt.Sprintf("%6v", short))
	require.Equal(t, "abc   ", fmt.Sprintf("%-6v", short))
	require.Equal(t, "abc", fmt.Sprintf("%+6v", short))

	long := &ast.IdentExpr{Start: 1, Lit: "abcdef"}
	require.Equal(t, "abc", fmt.Sprintf("%3v", long))
}

func TestFormatBadVerb(t *testing.T) {
	id := ident(1, "x")
	require.Contains(t, fmt.Sprintf("%d", id), "%!d")
}

func TestIfStmtSpanWithElseIf(t *testing.T) {
	then := &ast.Block{Start: 5, End: 10}
	elseif := &ast.IfStmt{
		If:   20,
		Cond: ident(21, "y"),
		Then: &ast.Block{Start: 25, End: 30},
	}
	outer := &ast.IfStmt{
		If:     1,
		Cond:   ident(2, "x"),
		Then:   then,
		Else:   15,
		ElseIf: elseif,
	}

	start, end := outer.Span()
	require.Equal(t, token.Pos(1), start)
	require.Equal(t, token.Pos(30), end)
}

func TestSwitchStmtWalk(t *testing.T) {
	sw := &ast.SwitchStmt{
		Switch: 1,
		Tag:    ident(2, "x"),
		Lbrace: 3,
		Cases: []*ast.CaseClause{
			{
				Case:   4,
				Values: []ast.Expr{&ast.LiteralExpr{Type: token.INT, Start: 5, Raw: "1", Value: int64(1)}},
				Body:   []ast.Stmt{&ast.BreakStmt{Start: 6}},
			},
			{Case: 7, Default: true, Body: []ast.Stmt{&ast.AdvanceStmt{Start: 8}}},
		},
		Rbrace: 9,
	}

	var kinds []string
	ast.Walk(ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter {
			return nil
		}
		kinds = append(kinds, fmt.Sprintf("%T", n))
		return ast.VisitorFunc(func(ast.Node, ast.VisitDirection) ast.Visitor { return nil })
	}), sw)

	require.Contains(t, kinds, "*ast.SwitchStmt")
}

func TestBlockEndingStmts(t *testing.T) {
	require.True(t, (&ast.BreakStmt{}).BlockEnding())
	require.True(t, (&ast.ContinueStmt{}).BlockEnding())
	require.True(t, (&ast.AdvanceStmt{}).BlockEnding())
	require.True(t, (&ast.ReturnStmt{}).BlockEnding())
	require.False(t, (&ast.ExprStmt{Expr: ident(1, "x")}).BlockEnding())
}

func TestClassDeclWalk(t *testing.T) {
	name := ident(1, "Dog")
	super := ident(2, "Animal")
	field := &ast.VarDecl{Var: 3, Name: ident(4, "age")}
	method := &ast.FuncDecl{
		Fn:     5,
		Name:   ident(6, "bark"),
		Body:   &ast.Block{Start: 7, End: 8},
	}
	cls := &ast.ClassDecl{
		Class:   0,
		Name:    name,
		Super:   super,
		Fields:  []*ast.VarDecl{field},
		Methods: []*ast.FuncDecl{method},
		Rbrace:  9,
	}

	var count int
	ast.Walk(ast.VisitorFunc(func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter {
			return nil
		}
		count++
		return ast.VisitorFunc(func(ast.Node, ast.VisitDirection) ast.Visitor { return nil })
	}), cls)

	require.Equal(t, 1, count)
	require.Contains(t, fmt.Sprintf("%#v", cls), "fields=1")
	require.Contains(t, fmt.Sprintf("%#v", cls), "methods=1")
}
