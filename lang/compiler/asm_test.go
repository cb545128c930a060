package compiler_test

import (
	"testing"

	"github.com/holoscript/holo/lang/compiler"
	"github.com/stretchr/testify/require"
)

func TestAsmErrors(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		err  string
	}{
		{"empty", ``, "expected program section"},
		{"not program", `function: 0 name=x`, "expected program section"},
		{"bad global entry", "program:\n\tglobals:\n\t\tonly_one_field\n", "invalid global entry"},
		{"bad module entry", "program:\n\tmodules:\n\t\tmain notfunc 0\n", "invalid module entry"},
		{"bad opcode", "program:\nfunction: 0 name=main arity=0\n\tcode:\n\t\tbogus_op\n", "invalid opcode"},
		{"unknown function index in module", "program:\n\tmodules:\n\t\tmain func 5\nfunction: 0 name=main arity=0\n\tcode:\n\t\treturn\n", "undefined function index"},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			_, err := compiler.Asm([]byte(c.in))
			if c.err == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), c.err)
		})
	}
}

func TestAsmMinimal(t *testing.T) {
	src := `
program:
	modules:
		main	func 0

function: 0	name=main	arity=0	upvalues=0	method=false
	constants:
		float	1.5
		string	"hi"
	code:
		const 0
		print
		return
`
	prog, err := compiler.Asm([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Modules, 1)
	require.Equal(t, "main", prog.Modules[0].Name)

	top := prog.Modules[0].Top
	require.Equal(t, []interface{}{1.5, "hi"}, top.Chunk.Constants)
	require.Equal(t, []byte{
		byte(compiler.OpConst), 0,
		byte(compiler.OpPrint),
		byte(compiler.OpReturn),
	}, top.Chunk.Code)
}

func TestAsmJumpRoundTrip(t *testing.T) {
	// while (true) { print 1; break; } return
	src := `
program:
function: 0	name=main	arity=0	upvalues=0	method=false
	constants:
		float	1
	code:
		true
		jif_pop 4
		const 0
		print
		jump 6
		loop 0
		nil
		return
`
	prog, err := compiler.Asm([]byte(src))
	require.NoError(t, err)

	out, err := compiler.Dasm(prog)
	require.NoError(t, err)

	roundTrip, err := compiler.Asm(out)
	require.NoError(t, err)
	require.Equal(t, prog.Modules[0].Top.Chunk.Code, roundTrip.Modules[0].Top.Chunk.Code)
}

func TestDasmRoundTripsCompiledProgram(t *testing.T) {
	prog := mustCompile(t, `var x = 1
func add(a, b) {
	return a + b
}
print add(x, 2)
`)
	out, err := compiler.Dasm(prog)
	require.NoError(t, err)
	require.Contains(t, string(out), "program:")
	require.Contains(t, string(out), "function:")

	reparsed, err := compiler.Asm(out)
	require.NoError(t, err)
	require.Equal(t, len(prog.Modules), len(reparsed.Modules))
	for i := range prog.Modules {
		require.Equal(t, prog.Modules[i].Top.Chunk.Code, reparsed.Modules[i].Top.Chunk.Code)
	}
}
