package parser_test

import (
	"os"
	"testing"

	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/parser"
	"github.com/holoscript/holo/lang/token"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	fset := token.NewFileSet()
	chunk, err := parser.ParseChunk(fset, "test.holo", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, chunk)
	return chunk
}

func TestParseVarDecl(t *testing.T) {
	chunk := parseOK(t, `var x = 1;`)
	require.Len(t, chunk.Block.Stmts, 1)

	decl, ok := chunk.Block.Stmts[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "x", decl.Name.Lit)
	lit, ok := decl.Value.(*ast.LiteralExpr)
	require.True(t, ok)
	require.Equal(t, int64(1), lit.Value)
}

func TestParseVarDeclNoInitializer(t *testing.T) {
	chunk := parseOK(t, `var x;`)
	decl := chunk.Block.Stmts[0].(*ast.VarDecl)
	require.Nil(t, decl.Value)
}

func TestParseExportVarDecl(t *testing.T) {
	chunk := parseOK(t, `export var x = 1;`)
	decl := chunk.Block.Stmts[0].(*ast.VarDecl)
	require.True(t, decl.Export)
}

func TestParseBinaryPrecedence(t *testing.T) {
	chunk := parseOK(t, `var x = 1 + 2 * 3;`)
	decl := chunk.Block.Stmts[0].(*ast.VarDecl)

	bin, ok := decl.Value.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.PLUS, bin.Type)

	right, ok := bin.Right.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.STAR, right.Type)
}

func TestParseUnaryAndLogical(t *testing.T) {
	chunk := parseOK(t, `var x = !a && -b;`)
	decl := chunk.Block.Stmts[0].(*ast.VarDecl)

	and, ok := decl.Value.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.AND, and.Type)

	left, ok := and.Left.(*ast.UnaryOpExpr)
	require.True(t, ok)
	require.Equal(t, token.BANG, left.Type)

	right, ok := and.Right.(*ast.UnaryOpExpr)
	require.True(t, ok)
	require.Equal(t, token.MINUS, right.Type)
}

func TestParseTernary(t *testing.T) {
	chunk := parseOK(t, `var x = a ? 1 : 2;`)
	decl := chunk.Block.Stmts[0].(*ast.VarDecl)
	tern, ok := decl.Value.(*ast.TernaryExpr)
	require.True(t, ok)
	require.IsType(t, &ast.IdentExpr{}, tern.Cond)
}

func TestParseCallChain(t *testing.T) {
	chunk := parseOK(t, `x.y(1, 2)[0].z;`)
	stmt := chunk.Block.Stmts[0].(*ast.ExprStmt)

	dot, ok := stmt.Expr.(*ast.DotExpr)
	require.True(t, ok)
	require.Equal(t, "z", dot.Right.Lit)

	idx, ok := dot.Left.(*ast.IndexExpr)
	require.True(t, ok)

	call, ok := idx.Prefix.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)

	fn, ok := call.Fn.(*ast.DotExpr)
	require.True(t, ok)
	require.Equal(t, "y", fn.Right.Lit)
}

func TestParseAssignStmt(t *testing.T) {
	chunk := parseOK(t, `x = y;`)
	stmt, ok := chunk.Block.Stmts[0].(*ast.AssignStmt)
	require.True(t, ok)
	require.IsType(t, &ast.IdentExpr{}, stmt.Left)
}

func TestParseIncrementDesugarsToAssign(t *testing.T) {
	chunk := parseOK(t, `x++;`)
	stmt, ok := chunk.Block.Stmts[0].(*ast.AssignStmt)
	require.True(t, ok)

	bin, ok := stmt.Right.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.PLUS, bin.Type)
}

func TestParseIfElseIf(t *testing.T) {
	chunk := parseOK(t, `
		if (a) { print 1; } else if (b) { print 2; } else { print 3; }
	`)
	stmt := chunk.Block.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, stmt.ElseIf)
	require.NotNil(t, stmt.ElseIf.ElseBlock)
}

func TestParseWhileStmt(t *testing.T) {
	chunk := parseOK(t, `while (x) { if (x) { continue; } break; }`)
	stmt := chunk.Block.Stmts[0].(*ast.WhileStmt)
	require.Len(t, stmt.Body.Stmts, 2)
	require.True(t, stmt.Body.Stmts[1].BlockEnding())
}

func TestParseForStmt(t *testing.T) {
	chunk := parseOK(t, `for (var i = 0; i < 10; i++) { print i; }`)
	stmt := chunk.Block.Stmts[0].(*ast.ForStmt)
	require.IsType(t, &ast.VarDecl{}, stmt.Init)
	require.NotNil(t, stmt.Cond)
	require.IsType(t, &ast.AssignStmt{}, stmt.Post)
}

func TestParseSwitchStmt(t *testing.T) {
	chunk := parseOK(t, `
		switch (x) {
		case 1:
			print 1;
			advance;
		case 2:
			print 2;
		default:
			print 3;
		}
	`)
	stmt := chunk.Block.Stmts[0].(*ast.SwitchStmt)
	require.Len(t, stmt.Cases, 3)
	require.True(t, stmt.Cases[2].Default)
	require.True(t, stmt.Cases[0].Body[1].BlockEnding())
}

func TestParseFuncDecl(t *testing.T) {
	chunk := parseOK(t, `func add(a, b) { return a + b; }`)
	decl := chunk.Block.Stmts[0].(*ast.FuncDecl)
	require.Equal(t, "add", decl.Name.Lit)
	require.Len(t, decl.Params, 2)
	require.Len(t, decl.Body.Stmts, 1)
}

func TestParseClassDeclWithInherit(t *testing.T) {
	chunk := parseOK(t, `
		class Dog : Animal {
			var legs = 4;
			func bark() { print this.legs; }
		}
	`)
	decl := chunk.Block.Stmts[0].(*ast.ClassDecl)
	require.Equal(t, "Dog", decl.Name.Lit)
	require.Equal(t, "Animal", decl.Super.Lit)
	require.Len(t, decl.Fields, 1)
	require.Len(t, decl.Methods, 1)

	ret := decl.Methods[0].Body.Stmts[0].(*ast.PrintStmt)
	dot := ret.Value.(*ast.DotExpr)
	require.IsType(t, &ast.ThisExpr{}, dot.Left)
}

func TestParseStructDeclAndLiteral(t *testing.T) {
	chunk := parseOK(t, `
		struct Point { x, y }
		var p = struct{x: 1, y: 2};
	`)
	sdecl := chunk.Block.Stmts[0].(*ast.StructDecl)
	require.Len(t, sdecl.Fields, 2)

	vdecl := chunk.Block.Stmts[1].(*ast.VarDecl)
	lit := vdecl.Value.(*ast.StructLiteralExpr)
	require.Len(t, lit.Items, 2)
}

func TestParseImportWithAlias(t *testing.T) {
	chunk := parseOK(t, `import "std/io" as io;`)
	decl := chunk.Block.Stmts[0].(*ast.ImportDecl)
	require.Equal(t, "std/io", decl.Path)
	require.Equal(t, "io", decl.Alias.Lit)
}

func TestParseLaunchAwait(t *testing.T) {
	chunk := parseOK(t, `var f = launch work(); var r = await f;`)
	first := chunk.Block.Stmts[0].(*ast.VarDecl)
	launch := first.Value.(*ast.LaunchExpr)
	require.NotNil(t, launch.Call)

	second := chunk.Block.Stmts[1].(*ast.VarDecl)
	await := second.Value.(*ast.AwaitExpr)
	require.IsType(t, &ast.IdentExpr{}, await.Right)
}

func TestParseSuperCall(t *testing.T) {
	chunk := parseOK(t, `
		class Cat : Animal {
			func speak() { super.speak(); }
		}
	`)
	decl := chunk.Block.Stmts[0].(*ast.ClassDecl)
	stmt := decl.Methods[0].Body.Stmts[0].(*ast.ExprStmt)
	call := stmt.Expr.(*ast.CallExpr)
	require.IsType(t, &ast.SuperExpr{}, call.Fn)
}

func TestParseErrorProducesBadStmtAndSyncs(t *testing.T) {
	fset := token.NewFileSet()
	chunk, err := parser.ParseChunk(fset, "bad.holo", []byte(`var = ; var y = 1;`))
	require.Error(t, err)
	require.NotNil(t, chunk)

	var sawBad, sawY bool
	for _, s := range chunk.Block.Stmts {
		if _, ok := s.(*ast.BadStmt); ok {
			sawBad = true
		}
		if v, ok := s.(*ast.VarDecl); ok && v.Name != nil && v.Name.Lit == "y" {
			sawY = true
		}
	}
	require.True(t, sawBad, "expected a BadStmt from the malformed declaration")
	require.True(t, sawY, "expected parsing to resynchronize and parse the following statement")
}

func TestParseFilesSharedFileSet(t *testing.T) {
	dir := t.TempDir()
	f1 := dir + "/a.holo"
	f2 := dir + "/b.holo"
	require.NoError(t, os.WriteFile(f1, []byte("var a = 1;"), 0o644))
	require.NoError(t, os.WriteFile(f2, []byte("var b = 2;"), 0o644))

	fset, chunks, err := parser.ParseFiles(f1, f2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	require.NotNil(t, fset)
	require.Equal(t, f1, chunks[0].Name)
	require.Equal(t, f2, chunks[1].Name)
}
