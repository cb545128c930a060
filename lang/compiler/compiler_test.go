package compiler_test

import (
	"fmt"
	"testing"

	"github.com/holoscript/holo/internal/diag"
	"github.com/holoscript/holo/lang/ast"
	"github.com/holoscript/holo/lang/compiler"
	"github.com/holoscript/holo/lang/module"
	"github.com/holoscript/holo/lang/parser"
	"github.com/holoscript/holo/lang/token"
	"github.com/stretchr/testify/require"
)

// mustCompile parses src as a single module named "main" and compiles it,
// failing the test on any parse or compile diagnostic.
func mustCompile(t *testing.T, src string) *compiler.Program {
	t.Helper()
	return mustCompileModules(t, map[string]string{"main": src})
}

// mustCompileModules compiles a set of named modules together, so tests can
// exercise cross-module global resolution and import ordering.
func mustCompileModules(t *testing.T, srcs map[string]string) *compiler.Program {
	t.Helper()
	fset := token.NewFileSet()
	sink := diag.NewSink(fset)

	names := make([]string, 0, len(srcs))
	for name := range srcs {
		names = append(names, name)
	}
	chunks := make([]*ast.Chunk, len(names))
	for i, name := range names {
		ch, err := parser.ParseChunk(fset, name, []byte(srcs[name]))
		require.NoError(t, err, "parsing %s", name)
		chunks[i] = ch
	}

	graph := module.Build(fset, sink, names, chunks)
	require.NoError(t, sink.Err(), "building module graph")

	prog := compiler.Compile(fset, sink, graph)
	require.NoError(t, sink.Err(), "compiling")
	return prog
}

func opsOf(t *testing.T, ch *compiler.Chunk) []compiler.Opcode {
	t.Helper()
	insns, _, ok := compiler.DecodeForTest(ch)
	require.True(t, ok, "malformed code for chunk %q", ch.Name)
	out := make([]compiler.Opcode, len(insns))
	for i, in := range insns {
		out[i] = in.Op
	}
	return out
}

func TestCompileGlobalSlotsAssignedAcrossModules(t *testing.T) {
	prog := mustCompileModules(t, map[string]string{
		"a": `export var x = 1;`,
		"b": `import "a";
var y = x;`,
	})
	require.Len(t, prog.Modules, 2)

	var names []string
	for _, g := range prog.Globals {
		names = append(names, g.Module+"."+g.Plain)
	}
	require.Contains(t, names, "a.x")
	require.Contains(t, names, "b.y")

	// Slot numbering must not depend on declaration order: a and b's slots
	// are assigned up front, before either module's body is compiled.
	var aSlot, bSlot = -1, -1
	for i, g := range prog.Globals {
		if g.Module == "a" && g.Plain == "x" {
			aSlot = i
		}
		if g.Module == "b" && g.Plain == "y" {
			bSlot = i
		}
	}
	require.GreaterOrEqual(t, aSlot, 0)
	require.GreaterOrEqual(t, bSlot, 0)
	require.NotEqual(t, aSlot, bSlot)
}

func TestCompileClosureCapturesLocalAsUpvalue(t *testing.T) {
	prog := mustCompile(t, `
func outer() {
	var x = 1;
	func inner() {
		return x;
	}
	return inner;
}
`)
	top := prog.Modules[0].Top
	var outerProto, innerProto *compiler.FunctionProto
	for _, c := range top.Chunk.Constants {
		if fp, ok := c.(*compiler.FunctionProto); ok && fp.Name == "outer" {
			outerProto = fp
		}
	}
	require.NotNil(t, outerProto, "outer function constant not found")
	for _, c := range outerProto.Chunk.Constants {
		if fp, ok := c.(*compiler.FunctionProto); ok && fp.Name == "inner" {
			innerProto = fp
		}
	}
	require.NotNil(t, innerProto, "inner function constant not found")
	require.Len(t, innerProto.Upvalues, 1)
	require.True(t, innerProto.Upvalues[0].IsLocal)

	// outer's own scope-exit must close the captured local rather than a
	// plain pop, since inner reads it after outer's frame would otherwise
	// have discarded it.
	require.Contains(t, opsOf(t, outerProto.Chunk), compiler.OpCloseUpval)
}

func TestCompileWhileBreakContinue(t *testing.T) {
	prog := mustCompile(t, `
var i = 0;
while (i < 10) {
	i = i + 1;
	if (i == 3) {
		continue;
	}
	if (i == 5) {
		break;
	}
}
`)
	ops := opsOf(t, prog.Modules[0].Top.Chunk)
	require.Contains(t, ops, compiler.OpLoop, "continue in a while loop must jump backward to the condition")
	require.Contains(t, ops, compiler.OpJump, "break must emit a forward jump")
}

func TestCompileForLoopContinueTargetsPostClause(t *testing.T) {
	prog := mustCompile(t, `
for (var i = 0; i < 10; i = i + 1) {
	if (i == 2) {
		continue;
	}
	print i;
}
`)
	// A for-loop's continue has no known backward target until the post
	// clause compiles, so it must not emit loop/loop_if_true itself; the
	// backward jump to the post-clause-then-condition belongs to the loop's
	// own end-of-body control flow, not to continue.
	ops := opsOf(t, prog.Modules[0].Top.Chunk)
	require.Contains(t, ops, compiler.OpJump)
	require.Contains(t, ops, compiler.OpLoop)
}

func TestCompileSwitchDefaultAndAdvance(t *testing.T) {
	prog := mustCompile(t, `
var x = 1;
switch (x) {
case 1:
	print 1;
	advance;
case 2:
	print 2;
default:
	print 0;
}
`)
	ops := opsOf(t, prog.Modules[0].Top.Chunk)
	require.Contains(t, ops, compiler.OpSwitch)
}

func TestCompileClassWithSuperclassBindsSuperLocal(t *testing.T) {
	prog := mustCompile(t, `
class Animal {
	Animal() {
	}
	speak() {
		print "...";
	}
}
class Dog : Animal {
	Dog() {
	}
	speak() {
		super.speak();
		print "woof";
	}
}
`)
	ops := opsOf(t, prog.Modules[0].Top.Chunk)
	require.Contains(t, ops, compiler.OpClass)
	require.Contains(t, ops, compiler.OpInherit)
	require.Contains(t, ops, compiler.OpMethod)
	// The superclass value is bound as a local so "super.speak()" inside a
	// method can resolve it as an ordinary upvalue read; the class's own
	// scope-exit must close that binding rather than pop the class value
	// sitting above it, so dup/exch must appear around the inherit.
	require.Contains(t, ops, compiler.OpDup)
	require.Contains(t, ops, compiler.OpExch)

	// Find Dog's speak() method to confirm the super-invoke calling
	// convention: push super, push `this`, then the name-indexed call.
	var dogSpeak *compiler.FunctionProto
	for _, c := range prog.Modules[0].Top.Chunk.Constants {
		if fp, ok := c.(*compiler.FunctionProto); ok && fp.Name == "speak" && fp.IsMethod {
			dogSpeak = fp
		}
	}
	require.NotNil(t, dogSpeak)
	methodOps := opsOf(t, dogSpeak.Chunk)
	require.Contains(t, methodOps, compiler.OpSuperInvoke)
	require.Contains(t, methodOps, compiler.OpGetLocal)
}

func TestCompileLongFormSelectedPastShortLimit(t *testing.T) {
	var b []byte
	b = append(b, "var dummy = 0;\n"...)
	for i := 0; i < 260; i++ {
		b = append(b, []byte(fmt.Sprintf("var v%d = %d;\n", i, i))...)
	}
	b = append(b, "print v259;\n"...)
	prog := mustCompile(t, string(b))
	ops := opsOf(t, prog.Modules[0].Top.Chunk)
	found := false
	for _, op := range ops {
		if op == compiler.OpDefGlobalLong {
			found = true
		}
	}
	require.True(t, found, "more than 256 top-level globals must select the long def_global form")
}

func TestCompileArrayLiteralEvaluatesReverseOrder(t *testing.T) {
	prog := mustCompile(t, `print [1, 2, 3];`)
	ops := opsOf(t, prog.Modules[0].Top.Chunk)
	require.Contains(t, ops, compiler.OpCreateArray)

	// Items are pushed last-to-first, so the element loads just before
	// create_array are 3, 2, 1.
	insns, _, ok := compiler.DecodeForTest(prog.Modules[0].Top.Chunk)
	require.True(t, ok)
	at := -1
	for i, in := range insns {
		if in.Op == compiler.OpCreateArray {
			at = i
			break
		}
	}
	require.GreaterOrEqual(t, at, 3)
	require.Equal(t, []int{3}, insns[at].Args)
	for k, want := range []int{3, 2, 1} {
		require.Equal(t, compiler.OpLoadInt, insns[at-3+k].Op)
		require.Equal(t, []int{want}, insns[at-3+k].Args)
	}
}
