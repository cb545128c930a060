package machine_test

// These tests assemble bytecode directly through compiler.Asm's textual
// format (see lang/compiler/asm.go) rather than going through the
// scanner/parser/compiler pipeline, so each opcode's runtime behavior can be
// pinned down independently of whatever sequences the compiler happens to
// emit for a given piece of holo source.

import (
	"bytes"
	"testing"

	"github.com/holoscript/holo/lang/compiler"
	"github.com/holoscript/holo/lang/heap"
	"github.com/holoscript/holo/lang/machine"
	"github.com/stretchr/testify/require"
)

func assemble(t *testing.T, src string) *compiler.Program {
	t.Helper()
	prog, err := compiler.Asm([]byte(src))
	require.NoError(t, err)
	return prog
}

func mustRun(t *testing.T, src string) (*machine.Machine, heap.Value) {
	t.Helper()
	prog := assemble(t, src)
	var stdout, stderr bytes.Buffer
	m := machine.New(&stdout, &stderr)
	result, err := m.RunProgram(prog)
	require.NoError(t, err)
	return m, result
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	prog := assemble(t, src)
	var stdout, stderr bytes.Buffer
	m := machine.New(&stdout, &stderr)
	_, err := m.RunProgram(prog)
	return err
}

func TestArithmeticAndReturn(t *testing.T) {
	_, result := mustRun(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		float 2   # 000
		float 3   # 001
	code:
		const 0   # 000
		const 1   # 001
		add       # 002
		return    # 003
`)
	require.True(t, result.IsNum())
	require.Equal(t, float64(5), result.AsNum())
}

func TestStringConcatenation(t *testing.T) {
	_, result := mustRun(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		string "foo"
		string "bar"
	code:
		const 0
		const 1
		add
		return
`)
	s, ok := result.AsObj().(*heap.String)
	require.True(t, ok)
	require.Equal(t, "foobar", s.Value)
}

func TestGlobalsDefineAndGet(t *testing.T) {
	_, result := mustRun(t, `
program:
	globals:
		main x

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		float 42
	code:
		const 0
		def_global 0
		get_global 0
		return
`)
	require.True(t, result.IsNum())
	require.Equal(t, float64(42), result.AsNum())
}

func TestUndefinedGlobalErrors(t *testing.T) {
	err := runErr(t, `
program:
	globals:
		main x

function: 0  name=main  arity=0  upvalues=0  method=false
	code:
		get_global 0
		return
`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "undefined global")
}

// The closure captures main's own local 0 by boxing it into a heap cell
// (spec.md §4.3's upvalue capture); the closure then reads 10 through that
// shared cell and adds 5.
func TestClosureReadsCapturedLocalThroughCell(t *testing.T) {
	_, result := mustRun(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		func 1
	code:
		load_int 10
		closure 0 1 0
		call 0
		return

function: 1  name=inner  arity=0  upvalues=1  method=false
	upvalues:
		local 0
	code:
		get_upval 0
		load_int 5
		add
		return
`)
	require.True(t, result.IsNum())
	require.Equal(t, float64(15), result.AsNum())
}

func TestCallArityMismatch(t *testing.T) {
	err := runErr(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		func 1
	code:
		closure 0
		load_int 1
		call 1
		return

function: 1  name=needsTwo  arity=2  upvalues=0  method=false
	code:
		return
`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected 2 argument")
}

func TestArraysAndIndexing(t *testing.T) {
	_, result := mustRun(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		float 10
		float 20
		float 30
	code:
		const 2
		const 1
		const 0
		create_array 3
		load_int 0
		get
		return
`)
	require.True(t, result.IsNum())
	// create_array pops n values in reverse push order, matching
	// lang/compiler's own array-literal codegen (items pushed back to
	// front), so index 0 recovers the first-declared element (10).
	require.Equal(t, float64(10), result.AsNum())
}

func TestArrayIndexOutOfBounds(t *testing.T) {
	err := runErr(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		float 1
		float 2
		float 5
	code:
		const 0
		const 1
		create_array 2
		const 2
		get
		return
`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of bounds")
}

func TestStructLiteral(t *testing.T) {
	_, result := mustRun(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		float 7
		string "x"
	code:
		const 0
		const 1
		create_struct 1
		return
`)
	inst, ok := result.AsObj().(*heap.Instance)
	require.True(t, ok)
	require.Nil(t, inst.Class)
	v, ok := inst.Fields.Get("x")
	require.True(t, ok)
	require.Equal(t, float64(7), v.AsNum())
}

func TestSwitchDispatchesToMatchingCase(t *testing.T) {
	_, result := mustRun(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		int 2
		int 1
		int 2
		string "one"
		string "two"
		string "other"
	code:
		const 0
		switch 2 1 2 2 4 6
		const 3
		jump 7
		const 4
		jump 7
		const 5
		return
`)
	s, ok := result.AsObj().(*heap.String)
	require.True(t, ok)
	require.Equal(t, "two", s.Value)
}

func TestSwitchFallsBackToDefault(t *testing.T) {
	_, result := mustRun(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		int 99
		int 1
		int 2
		string "one"
		string "two"
		string "other"
	code:
		const 0
		switch 2 1 2 2 4 6
		const 3
		jump 7
		const 4
		jump 7
		const 5
		return
`)
	s, ok := result.AsObj().(*heap.String)
	require.True(t, ok)
	require.Equal(t, "other", s.Value)
}

// Exercises class/inherit/method/invoke/get_super/super_invoke together:
// Dog overrides Animal's speak but can still reach Animal's own speak
// through super_invoke (spec.md's class model).
func TestClassInheritanceAndSuperInvoke(t *testing.T) {
	_, result := mustRun(t, `
program:
	globals:
		main Animal
		main Dog

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		string "Animal"
		string "Dog"
		string "speak"
		string "parentSpeak"
		func 1
		func 2
		func 3
	code:
		class 0
		closure 4
		method 2
		def_global 0

		get_global 0
		class 1
		inherit
		closure 5
		method 2
		closure 6
		method 3
		def_global 1

		get_global 1
		call 0
		get_local 0
		invoke 2 0
		load_int 10
		mul
		get_local 0
		invoke 3 0
		add
		return

function: 1  name=speak  arity=0  upvalues=0  method=true
	constants:
		int 1
	code:
		const 0
		return

function: 2  name=speak  arity=0  upvalues=0  method=true
	constants:
		int 2
	code:
		const 0
		return

function: 3  name=parentSpeak  arity=0  upvalues=0  method=true
	constants:
		string "speak"
	code:
		get_global 0
		get_local 0
		super_invoke 0 0
		return
`)
	// Dog.speak overrides Animal.speak (returns 2, not 1), and
	// Dog.parentSpeak reaches Animal's original speak through super_invoke
	// (returns 1): 2*10+1 = 21 pins down both resolutions at once.
	require.True(t, result.IsNum())
	require.Equal(t, float64(21), result.AsNum())
}

func TestLaunchAsyncAwait(t *testing.T) {
	_, result := mustRun(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		func 1
	code:
		closure 0
		launch_async 0
		await
		return

function: 1  name=worker  arity=0  upvalues=0  method=false
	code:
		load_int 42
		return
`)
	require.True(t, result.IsNum())
	require.Equal(t, float64(42), result.AsNum())
}

// A garbage-collection cycle runs automatically between each top-level
// module (Machine.RunProgram) even when no explicit opcode asks for one; a
// value kept in a global must survive compaction and come back out intact
// from a later module, while a value only ever reachable from the stack
// must not corrupt the heap once it is popped and collected.
func TestGarbageCollectionAcrossModules(t *testing.T) {
	_, result := mustRun(t, `
program:
	globals:
		main arr

	modules:
		m0 func 0
		m1 func 1

function: 0  name=m0  arity=0  upvalues=0  method=false
	constants:
		float 3
		float 2
		float 1
	code:
		const 0
		const 1
		const 2
		create_array 3
		def_global 0
		const 0
		create_array 1
		pop
		return

function: 1  name=m1  arity=0  upvalues=0  method=false
	code:
		get_global 0
		return
`)
	arr, ok := result.AsObj().(*heap.Array)
	require.True(t, ok)
	require.Equal(t, 3, arr.Len())
}

func TestDivisionByZero(t *testing.T) {
	err := runErr(t, `
program:

function: 0  name=main  arity=0  upvalues=0  method=false
	constants:
		float 1
		float 0
	code:
		const 0
		const 1
		div
		return
`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}
