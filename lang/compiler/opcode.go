package compiler

import "fmt"

// Increment this to force recompilation of saved bytecode files.
const Version = 1

// Opcode is one instruction in a Chunk's code stream. Most opcodes that
// reference a constant, a global slot, or a name carry either an 8-bit
// ("short") or a 16-bit ("long") operand; the compiler picks whichever form
// fits and the two are distinct opcodes so the VM's dispatch never has to
// branch on operand width.
type Opcode uint8

const (
	OpNop Opcode = iota // - : reserved for operand padding, never emitted by the compiler

	// stack
	OpPop     // x -
	OpDup     // x x x
	OpExch    // x y y x
	OpPopN    // x1..xn -            (8: n)
	OpLoadInt // - int               (8: signed byte widened to float)

	// constants and literals
	OpConst     // - value            (8: constant index)
	OpConstLong // - value            (16: constant index)
	OpNil       // - nil
	OpTrue      // - true
	OpFalse     // - false

	// unary
	OpNeg    // x -x
	OpNot    // x !x
	OpBitNot // x ~x
	OpInc    // x x+-1              (8: flags, operand carried by surrounding get/set)

	// binary arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpBAnd
	OpBOr
	OpBXor

	// comparisons
	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe

	// globals
	OpDefGlobal     // value -            (8: global slot)
	OpDefGlobalLong // value -            (16: global slot)
	OpGetGlobal     // - value            (8: global slot)
	OpGetGlobalLong // - value            (16: global slot)
	OpSetGlobal     // value value        (8: global slot)
	OpSetGlobalLong // value value        (16: global slot)

	// locals and upvalues
	OpGetLocal   // - value             (8: stack slot)
	OpSetLocal   // value value         (8: stack slot)
	OpGetUpval   // - value             (8: upvalue index)
	OpSetUpval   // value value         (8: upvalue index)
	OpCloseUpval // x -

	// arrays
	OpCreateArray // x1..xn array       (8: n)
	OpIndexGet    // a i elem
	OpIndexSet    // a i v v

	// control flow (operands are 16-bit; jump offsets are relative to the
	// byte just past the instruction)
	OpJump         // -             (16: forward offset)
	OpJumpIfFalse  // cond cond     (16: forward offset, does not pop)
	OpJumpIfTrue   // cond cond     (16: forward offset, does not pop)
	OpJumpIfFalsePop // cond -      (16: forward offset, pops)
	OpLoop         // -             (16: backward offset)
	OpLoopIfTrue   // cond cond     (16: backward offset, does not pop)
	OpJumpPopN     // -             (16: forward offset, 8: locals to pop)
	OpSwitch       // scrutinee -   (16: case count N, N x (8: constant idx), (N+1) x (16: rel offset))
	OpSwitchLong   // scrutinee -   (16: case count N, N x (16: constant idx), (N+1) x (16: rel offset))

	// calls
	OpCall        // fn arg1..argn result   (8: arg count)
	OpReturn      // value -
	OpClosure     // fn closure              (8: function constant index, then per-upvalue (8: is-local, 8: index))
	OpClosureLong // fn closure              (16: function constant index, then per-upvalue (8: is-local, 16: index))

	// OOP
	OpClass          // - class              (16: name constant index)
	OpGetProp        // recv value           (8: name constant index)
	OpGetPropLong    // recv value           (16: name constant index)
	OpSetProp        // recv value value     (8: name constant index)
	OpSetPropLong    // recv value value     (16: name constant index)
	OpCreateStruct   // k1 v1..kn vn struct  (8: n)
	OpCreateStructLong // k1 v1..kn vn struct (16: n)
	OpMethod         // class closure class  (16: name constant index)
	OpInvoke         // recv arg1..argn result (8: name constant index, 8: arg count)
	OpInvokeLong     // recv arg1..argn result (16: name constant index, 8: arg count)
	OpInherit        // super sub sub
	OpGetSuper       // super this bound     (8: name constant index)
	OpGetSuperLong   // super this bound     (16: name constant index)
	OpSuperInvoke    // super this arg1..argn result (8: name constant index, 8: arg count)
	OpSuperInvokeLong // super this arg1..argn result (16: name constant index, 8: arg count)

	// async and io
	OpLaunchAsync // fn arg1..argn future   (8: arg count)
	OpAwait       // future value
	OpPrint       // value -

	opcodeMax = OpPrint
)

var opcodeNames = [...]string{
	OpNop:              "nop",
	OpPop:              "pop",
	OpDup:              "dup",
	OpExch:             "exch",
	OpPopN:             "pop_n",
	OpLoadInt:          "load_int",
	OpConst:            "const",
	OpConstLong:        "const_long",
	OpNil:              "nil",
	OpTrue:             "true",
	OpFalse:            "false",
	OpNeg:              "neg",
	OpNot:              "not",
	OpBitNot:           "bit_not",
	OpInc:              "inc",
	OpAdd:              "add",
	OpSub:              "sub",
	OpMul:              "mul",
	OpDiv:              "div",
	OpMod:              "mod",
	OpShl:              "shl",
	OpShr:              "shr",
	OpBAnd:             "band",
	OpBOr:              "bor",
	OpBXor:             "bxor",
	OpEq:               "eq",
	OpNe:               "ne",
	OpGt:               "gt",
	OpGe:               "ge",
	OpLt:               "lt",
	OpLe:               "le",
	OpDefGlobal:        "def_global",
	OpDefGlobalLong:    "def_global_long",
	OpGetGlobal:        "get_global",
	OpGetGlobalLong:    "get_global_long",
	OpSetGlobal:        "set_global",
	OpSetGlobalLong:    "set_global_long",
	OpGetLocal:         "get_local",
	OpSetLocal:         "set_local",
	OpGetUpval:         "get_upval",
	OpSetUpval:         "set_upval",
	OpCloseUpval:       "close_upval",
	OpCreateArray:      "create_array",
	OpIndexGet:         "get",
	OpIndexSet:         "set",
	OpJump:             "jump",
	OpJumpIfFalse:      "jif",
	OpJumpIfTrue:       "jit",
	OpJumpIfFalsePop:   "jif_pop",
	OpLoop:             "loop",
	OpLoopIfTrue:       "loop_if_true",
	OpJumpPopN:         "jump_pop_n",
	OpSwitch:           "switch",
	OpSwitchLong:       "switch_long",
	OpCall:             "call",
	OpReturn:           "return",
	OpClosure:          "closure",
	OpClosureLong:      "closure_long",
	OpClass:            "class",
	OpGetProp:          "get_prop",
	OpGetPropLong:      "get_prop_long",
	OpSetProp:          "set_prop",
	OpSetPropLong:      "set_prop_long",
	OpCreateStruct:     "create_struct",
	OpCreateStructLong: "create_struct_long",
	OpMethod:           "method",
	OpInvoke:           "invoke",
	OpInvokeLong:       "invoke_long",
	OpInherit:          "inherit",
	OpGetSuper:         "get_super",
	OpGetSuperLong:     "get_super_long",
	OpSuperInvoke:      "super_invoke",
	OpSuperInvokeLong:  "super_invoke_long",
	OpLaunchAsync:      "launch_async",
	OpAwait:            "await",
	OpPrint:            "print",
}

var reverseLookupOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, s := range opcodeNames {
		if s != "" {
			m[s] = Opcode(op)
		}
	}
	return m
}()

func (op Opcode) String() string {
	if op <= opcodeMax {
		if name := opcodeNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// jumpOpcodes carries a fixed 16-bit unsigned big-endian offset, per the
// external bytecode contract; loop/loop_if_true treat the offset as a
// backward distance.
var jumpOpcodes = map[Opcode]bool{
	OpJump:           true,
	OpJumpIfFalse:    true,
	OpJumpIfTrue:     true,
	OpJumpIfFalsePop: true,
	OpLoop:           true,
	OpLoopIfTrue:     true,
}

// operandWidth returns the number of bytes of fixed inline operand(s) that
// immediately follow the opcode byte, not counting variable-length tails
// (switch's case tables, closure's upvalue descriptors).
func operandWidth(op Opcode) int {
	switch op {
	case OpNop, OpPop, OpDup, OpExch, OpNil, OpTrue, OpFalse,
		OpNeg, OpNot, OpBitNot,
		OpAdd, OpSub, OpMul, OpDiv, OpMod, OpShl, OpShr, OpBAnd, OpBOr, OpBXor,
		OpEq, OpNe, OpGt, OpGe, OpLt, OpLe,
		OpCloseUpval, OpIndexGet, OpIndexSet, OpReturn, OpInherit,
		OpAwait, OpPrint:
		return 0
	case OpPopN, OpLoadInt, OpConst, OpInc,
		OpDefGlobal, OpGetGlobal, OpSetGlobal,
		OpGetLocal, OpSetLocal, OpGetUpval, OpSetUpval,
		OpCreateArray, OpCreateStruct,
		OpCall, OpClosure,
		OpGetProp, OpSetProp, OpGetSuper, OpLaunchAsync:
		return 1
	case OpConstLong, OpDefGlobalLong, OpGetGlobalLong, OpSetGlobalLong,
		OpJump, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfFalsePop, OpLoop, OpLoopIfTrue,
		OpClass, OpCreateStructLong, OpGetPropLong, OpSetPropLong, OpMethod, OpGetSuperLong,
		OpClosureLong:
		return 2
	case OpJumpPopN:
		return 3 // 16-bit offset + 8-bit pop count
	case OpInvoke, OpSuperInvoke:
		return 2 // 8-bit name index + 8-bit arg count
	case OpInvokeLong, OpSuperInvokeLong:
		return 3 // 16-bit name index + 8-bit arg count
	case OpSwitch, OpSwitchLong:
		return 2 // case count only; the table itself is variable-length
	default:
		return 0
	}
}

const variableStackEffect = 1 << 6

// stackEffect records the effect on the operand stack depth of each
// instruction that does not depend on an inline operand; entries left at
// variableStackEffect depend on the operand itself and have no fixed value
// here (pop_n, create_array, call, invoke, switch, ...).
var stackEffect = [...]int8{
	OpNop:              0,
	OpPop:              -1,
	OpDup:              +1,
	OpExch:             0,
	OpPopN:             variableStackEffect,
	OpLoadInt:          +1,
	OpConst:            +1,
	OpConstLong:        +1,
	OpNil:              +1,
	OpTrue:             +1,
	OpFalse:            +1,
	OpNeg:              0,
	OpNot:              0,
	OpBitNot:           0,
	OpInc:              0,
	OpAdd:              -1,
	OpSub:              -1,
	OpMul:              -1,
	OpDiv:              -1,
	OpMod:              -1,
	OpShl:              -1,
	OpShr:              -1,
	OpBAnd:             -1,
	OpBOr:              -1,
	OpBXor:             -1,
	OpEq:               -1,
	OpNe:               -1,
	OpGt:               -1,
	OpGe:               -1,
	OpLt:               -1,
	OpLe:               -1,
	OpDefGlobal:        -1,
	OpDefGlobalLong:    -1,
	OpGetGlobal:        +1,
	OpGetGlobalLong:    +1,
	OpSetGlobal:        0,
	OpSetGlobalLong:    0,
	OpGetLocal:         +1,
	OpSetLocal:         0,
	OpGetUpval:         +1,
	OpSetUpval:         0,
	OpCloseUpval:       -1,
	OpCreateArray:      variableStackEffect,
	OpIndexGet:         -1,
	OpIndexSet:         -2,
	OpJump:             0,
	OpJumpIfFalse:      0,
	OpJumpIfTrue:       0,
	OpJumpIfFalsePop:   -1,
	OpLoop:             0,
	OpLoopIfTrue:       0,
	OpJumpPopN:         variableStackEffect,
	OpSwitch:           -1,
	OpSwitchLong:       -1,
	OpCall:             variableStackEffect,
	OpReturn:           -1,
	OpClosure:          variableStackEffect,
	OpClosureLong:      variableStackEffect,
	OpClass:            +1,
	OpGetProp:          0,
	OpGetPropLong:      0,
	OpSetProp:          -1,
	OpSetPropLong:      -1,
	OpCreateStruct:     variableStackEffect,
	OpCreateStructLong: variableStackEffect,
	OpMethod:           -1,
	OpInvoke:           variableStackEffect,
	OpInvokeLong:       variableStackEffect,
	OpInherit:          -1,
	OpGetSuper:         -1,
	OpGetSuperLong:     -1,
	OpSuperInvoke:      variableStackEffect,
	OpSuperInvokeLong:  variableStackEffect,
	OpLaunchAsync:      variableStackEffect,
	OpAwait:            0,
	OpPrint:            -1,
}
