package module_test

import (
	"testing"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/module"
	"github.com/holoscript/holo/lang/parser"
	"github.com/holoscript/holo/lang/token"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, fset *token.FileSet, name, src string) *ast.Chunk {
	t.Helper()
	ch, err := parser.ParseChunk(fset, name, []byte(src))
	require.NoError(t, err)
	return ch
}

func TestBuildOrdersByDependency(t *testing.T) {
	fset := token.NewFileSet()
	chA := mustParse(t, fset, "a", `export func helper() { return 1; }`)
	chB := mustParse(t, fset, "b", `import "a"; export var x = 1;`)

	sink := diag.NewSink(fset)
	graph := module.Build(fset, sink, []string{"b", "a"}, []*ast.Chunk{chB, chA})
	require.NoError(t, sink.Err())
	require.Len(t, graph.Order, 2)
	require.Equal(t, "a", graph.Order[0].Name)
	require.Equal(t, "b", graph.Order[1].Name)
}

func TestBuildReportsUnknownImport(t *testing.T) {
	fset := token.NewFileSet()
	ch := mustParse(t, fset, "a", `import "missing";`)

	sink := diag.NewSink(fset)
	module.Build(fset, sink, []string{"a"}, []*ast.Chunk{ch})
	require.Error(t, sink.Err())
}

func TestCollectsExports(t *testing.T) {
	fset := token.NewFileSet()
	ch := mustParse(t, fset, "a", `
		export var x = 1;
		var y = 2;
		export func f() { return 0; }
	`)

	sink := diag.NewSink(fset)
	graph := module.Build(fset, sink, []string{"a"}, []*ast.Chunk{ch})
	require.NoError(t, sink.Err())

	exports := graph.Order[0].Exports
	_, hasX := exports["x"]
	_, hasY := exports["y"]
	_, hasF := exports["f"]
	require.True(t, hasX)
	require.False(t, hasY)
	require.True(t, hasF)
}

func TestResolveImportNameUsesAliasOrLastSegment(t *testing.T) {
	require.Equal(t, "io", module.ResolveImportName("std/io", ""))
	require.Equal(t, "myio", module.ResolveImportName("std/io", "myio"))
}

func TestCheckAmbiguousImports(t *testing.T) {
	fset := token.NewFileSet()
	ch := mustParse(t, fset, "a", `
		import "std/io";
		import "other/io";
	`)

	sink := diag.NewSink(fset)
	graph := module.Build(fset, sink, []string{"a"}, []*ast.Chunk{ch})
	require.NoError(t, sink.Err())

	sink2 := diag.NewSink(fset)
	module.CheckAmbiguousImports(sink2, graph.Order[0])
	require.Error(t, sink2.Err())
}

func TestBuildDetectsImportCycle(t *testing.T) {
	fset := token.NewFileSet()
	chA := mustParse(t, fset, "a", `import "b";`)
	chB := mustParse(t, fset, "b", `import "a";`)

	sink := diag.NewSink(fset)
	graph := module.Build(fset, sink, []string{"a", "b"}, []*ast.Chunk{chA, chB})
	require.Error(t, sink.Err())
	require.Len(t, graph.Order, 2)
}
