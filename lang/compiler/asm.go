package compiler

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// This file implements a human-readable/writable textual form of a
// compiled Program, for hand-written VM tests that want bytecode without
// going through the scanner/parser/compiler pipeline. A disassembler is
// also implemented, mostly useful for inspecting what the compiler emitted.
//
// The format (indentation/spacing is arbitrary, section order is not):
//
//	program:
//		globals:
//			main   x              # 000
//		modules:
//			main  func 0           # 000
//
//	function: 0  name=main  arity=0  upvalues=0  method=false
//		upvalues:
//			local 0               # 000
//		constants:
//			float  1.5             # 000
//			string "hi"            # 001
//			func   1               # 002
//		code:
//			const 0                # 000
//			print                  # 001
//			return                 # 002
//
// Jump/loop/switch target operands are written and read in terms of
// instruction index, not byte offset; Asm and Dasm translate between the two
// so a hand-written program never has to compute a byte distance. A closure
// line carries the function constant index followed by one raw
// (is-local, index) pair per upvalue descriptor.

var asmSections = map[string]bool{
	"program:":   true,
	"globals:":   true,
	"modules:":   true,
	"function:":  true,
	"upvalues:":  true,
	"constants:": true,
	"code:":      true,
}

// DecodedInsn is the test-visible form of one decoded instruction, with
// jump and switch target operands already resolved to instruction indices.
type DecodedInsn struct {
	Op   Opcode
	Args []int
}

// DecodeForTest exposes decodeChunk's instruction stream to tests outside
// this package that want to assert on which opcodes a compile emitted
// without hand-decoding the chunk's raw Code bytes.
func DecodeForTest(ch *Chunk) ([]DecodedInsn, map[int]int, bool) {
	insns, addrToIndex, ok := decodeChunk(ch)
	out := make([]DecodedInsn, len(insns))
	for i, in := range insns {
		out[i] = DecodedInsn{Op: in.op, Args: in.resolvedArgs(addrToIndex)}
	}
	return out, addrToIndex, ok
}

// Dasm writes p to its assembler textual form.
func Dasm(p *Program) ([]byte, error) {
	d := &dasm{buf: new(bytes.Buffer), funcIdx: make(map[*FunctionProto]int)}
	topIdx := make([]int, len(p.Modules))
	for i, m := range p.Modules {
		topIdx[i] = d.register(m.Top)
	}
	d.program(p, topIdx)
	for i, fn := range d.funcs {
		d.write("\n")
		d.function(i, fn)
	}
	return d.buf.Bytes(), d.err
}

type dasm struct {
	buf     *bytes.Buffer
	err     error
	funcs   []*FunctionProto
	funcIdx map[*FunctionProto]int
}

// register assigns fn the next free function index, recursing into its own
// constant pool first so every FunctionProto reachable from p.Modules ends
// up indexed exactly once, parents before their nested closures.
func (d *dasm) register(fn *FunctionProto) int {
	if idx, ok := d.funcIdx[fn]; ok {
		return idx
	}
	idx := len(d.funcs)
	d.funcIdx[fn] = idx
	d.funcs = append(d.funcs, fn)
	if fn.Chunk != nil {
		for _, c := range fn.Chunk.Constants {
			if nested, ok := c.(*FunctionProto); ok {
				d.register(nested)
			}
		}
	}
	return idx
}

func (d *dasm) program(p *Program, topIdx []int) {
	d.write("program:\n")
	if len(p.Globals) > 0 {
		d.write("\tglobals:\n")
		for i, g := range p.Globals {
			d.writef("\t\t%s\t%s\t# %03d\n", g.Module, g.Plain, i)
		}
	}
	d.write("\tmodules:\n")
	for i, m := range p.Modules {
		d.writef("\t\t%s\tfunc %d\t# %03d\n", m.Name, topIdx[i], i)
	}
}

func (d *dasm) function(idx int, fn *FunctionProto) {
	if d.err != nil {
		return
	}
	d.writef("function: %d\tname=%s\tarity=%d\tupvalues=%d\tmethod=%t\n",
		idx, fn.Name, fn.Arity, len(fn.Upvalues), fn.IsMethod)

	if len(fn.Upvalues) > 0 {
		d.write("\tupvalues:\n")
		for i, u := range fn.Upvalues {
			kind := "local"
			if !u.IsLocal {
				kind = "upval"
			}
			d.writef("\t\t%s %d\t# %03d\n", kind, u.Index, i)
		}
	}

	ch := fn.Chunk
	if ch == nil {
		return
	}

	if len(ch.Constants) > 0 {
		d.write("\tconstants:\n")
		for i, c := range ch.Constants {
			switch c := c.(type) {
			case nil:
				d.writef("\t\tnil\t\t# %03d\n", i)
			case bool:
				d.writef("\t\tbool\t%t\t# %03d\n", c, i)
			case int64:
				d.writef("\t\tint\t%d\t# %03d\n", c, i)
			case float64:
				d.writef("\t\tfloat\t%g\t# %03d\n", c, i)
			case string:
				d.writef("\t\tstring\t%q\t# %03d\n", c, i)
			case *FunctionProto:
				d.writef("\t\tfunc\t%d\t# %03d\n", d.funcIdx[c], i)
			default:
				d.err = fmt.Errorf("chunk %q: unsupported constant type %T", ch.Name, c)
				return
			}
		}
	}

	insns, addrToIndex, ok := decodeChunk(ch)
	if !ok {
		d.err = fmt.Errorf("chunk %q: malformed code", ch.Name)
		return
	}
	if len(insns) == 0 {
		return
	}
	d.write("\tcode:\n")
	for i, in := range insns {
		d.writef("\t\t%s", in.op)
		for _, a := range in.resolvedArgs(addrToIndex) {
			d.writef(" %d", a)
		}
		d.writef("\t# %03d\n", i)
	}
}

func (d *dasm) writef(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.buf, format, args...)
}

func (d *dasm) write(s string) {
	if d.err != nil {
		return
	}
	_, d.err = d.buf.WriteString(s)
}

// insn is one decoded instruction: the raw operand bytes in encounter
// order (already widened to int), with jump-like slots still holding a
// byte offset until resolvedArgs translates them to an instruction index.
type insn struct {
	op      Opcode
	addr    int // byte offset this instruction starts at
	args    []int
	jumpArg int // index into args that is a relative jump distance, or -1
	fromPC  int // byte offset the jump distance in jumpArg is relative to
}

func (in insn) resolvedArgs(addrToIndex map[int]int) []int {
	if in.jumpArg < 0 {
		return in.args
	}
	out := append([]int(nil), in.args...)
	target := in.fromPC + out[in.jumpArg]
	if jumpBackward(in.op) {
		target = in.fromPC - out[in.jumpArg]
	}
	out[in.jumpArg] = addrToIndex[target]
	return out
}

func jumpBackward(op Opcode) bool {
	return op == OpLoop || op == OpLoopIfTrue
}

// decodeChunk walks a chunk's code once, producing one insn per
// instruction (switch/closure tails included as extra trailing args, with
// switch targets mapped to instruction indices) and a map from byte offset
// to instruction index for jump target resolution.
func decodeChunk(ch *Chunk) (insns []insn, addrToIndex map[int]int, ok bool) {
	addrToIndex = make(map[int]int)
	code := ch.Code
	addr := 0
	for addr < len(code) {
		addrToIndex[addr] = len(insns)
		op := Opcode(code[addr])
		start := addr
		addr++
		in := insn{op: op, addr: start, jumpArg: -1}

		switch {
		case op == OpSwitch || op == OpSwitchLong:
			if addr+2 > len(code) {
				return nil, nil, false
			}
			n := int(code[addr])<<8 | int(code[addr+1])
			in.args = append(in.args, n)
			addr += 2
			idxWidth := 1
			if op == OpSwitchLong {
				idxWidth = 2
			}
			for i := 0; i < n; i++ {
				if addr+idxWidth > len(code) {
					return nil, nil, false
				}
				v := int(code[addr])
				if idxWidth == 2 {
					v = v<<8 | int(code[addr+1])
				}
				in.args = append(in.args, v)
				addr += idxWidth
			}
			for i := 0; i <= n; i++ {
				if addr+2 > len(code) {
					return nil, nil, false
				}
				v := int(code[addr])<<8 | int(code[addr+1])
				in.args = append(in.args, addr+2+v)
				addr += 2
			}
		case op == OpClosure || op == OpClosureLong:
			width := operandWidth(op)
			if addr+width > len(code) {
				return nil, nil, false
			}
			fnIdx := readOperand(code[addr:addr+width], width)
			in.args = append(in.args, fnIdx)
			addr += width
			idxWidth := width // upvalue index width matches the function-index width
			proto, _ := ch.Constants[fnIdx].(*FunctionProto)
			n := 0
			if proto != nil {
				n = len(proto.Upvalues)
			}
			for i := 0; i < n; i++ {
				if addr+1+idxWidth > len(code) {
					return nil, nil, false
				}
				in.args = append(in.args, int(code[addr]))
				addr++
				v := readOperand(code[addr:addr+idxWidth], idxWidth)
				in.args = append(in.args, v)
				addr += idxWidth
			}
		case op == OpInvoke || op == OpSuperInvoke:
			if addr+2 > len(code) {
				return nil, nil, false
			}
			in.args = []int{int(code[addr]), int(code[addr+1])}
			addr += 2
		case op == OpInvokeLong || op == OpSuperInvokeLong:
			if addr+3 > len(code) {
				return nil, nil, false
			}
			in.args = []int{int(code[addr])<<8 | int(code[addr+1]), int(code[addr+2])}
			addr += 3
		case op == OpJumpPopN:
			if addr+3 > len(code) {
				return nil, nil, false
			}
			in.args = []int{int(code[addr])<<8 | int(code[addr+1]), int(code[addr+2])}
			in.jumpArg = 0
			in.fromPC = addr + 3
			addr += 3
		default:
			width := operandWidth(op)
			if addr+width > len(code) {
				return nil, nil, false
			}
			if width > 0 {
				v := readOperand(code[addr:addr+width], width)
				in.args = append(in.args, v)
				if jumpOpcodes[op] {
					in.jumpArg = 0
					in.fromPC = addr + width
				}
			}
			addr += width
		}
		insns = append(insns, in)
	}
	for k := range insns {
		if op := insns[k].op; op != OpSwitch && op != OpSwitchLong {
			continue
		}
		args := insns[k].args
		for j := 1 + args[0]; j < len(args); j++ {
			idx, found := addrToIndex[args[j]]
			if !found {
				return nil, nil, false
			}
			args[j] = idx
		}
	}
	return insns, addrToIndex, true
}

func readOperand(b []byte, width int) int {
	v := 0
	for _, c := range b {
		v = v<<8 | int(c)
	}
	_ = width
	return v
}

// Asm reads a compiled program from its assembler textual form.
func Asm(b []byte) (*Program, error) {
	a := &asm{s: bufio.NewScanner(bytes.NewReader(b)), funcByIdx: make(map[int]*FunctionProto)}
	fields := a.next()
	fields = a.program(fields)

	for a.err == nil && len(fields) > 0 && strings.EqualFold(fields[0], "function:") {
		fields = a.function(fields)
	}
	if a.err == nil && len(fields) > 0 {
		a.err = fmt.Errorf("unexpected section: %s", fields[0])
	}
	if a.err == nil {
		a.err = a.resolve()
	}
	return a.p, a.err
}

type asm struct {
	s       *bufio.Scanner
	rawLine string
	p       *Program

	funcByIdx map[int]*FunctionProto
	codeLines []codeLine // every instruction parsed so far, across all functions, for two-pass resolution

	// moduleRefs holds (name, function index) pairs read from the
	// program:modules: section; resolved into p.Modules once every
	// function: block is known.
	moduleRefs []struct {
		name   string
		fnIdx  int
	}

	err error
}

// codeLine is one not-yet-resolved instruction line: fields[0] is the
// mnemonic, remaining fields are raw integer operands still expressed as
// instruction indices for jump and switch targets.
type codeLine struct {
	chunk *Chunk
	op    Opcode
	args  []int64
}

func (a *asm) program(fields []string) []string {
	if a.err != nil {
		return fields
	}
	if len(fields) == 0 || !strings.EqualFold(fields[0], "program:") {
		a.err = errors.New("expected program section")
		return fields
	}
	a.p = &Program{}

	fields = a.next()
	if len(fields) > 0 && strings.EqualFold(fields[0], "globals:") {
		for fields = a.next(); len(fields) > 0 && !asmSections[strings.ToLower(fields[0])]; fields = a.next() {
			if len(fields) != 2 {
				a.err = fmt.Errorf("invalid global entry: %s", strings.Join(fields, " "))
				return fields
			}
			a.p.Globals = append(a.p.Globals, GlobalInfo{Module: fields[0], Plain: fields[1]})
		}
	}
	if len(fields) > 0 && strings.EqualFold(fields[0], "modules:") {
		for fields = a.next(); len(fields) > 0 && !asmSections[strings.ToLower(fields[0])]; fields = a.next() {
			if len(fields) != 3 || fields[1] != "func" {
				a.err = fmt.Errorf("invalid module entry: %s", strings.Join(fields, " "))
				return fields
			}
			a.moduleRefs = append(a.moduleRefs, struct {
				name  string
				fnIdx int
			}{name: fields[0], fnIdx: int(a.int(fields[2]))})
		}
	}
	return fields
}

func (a *asm) function(fields []string) []string {
	if a.err != nil || len(fields) == 0 {
		return fields
	}
	if len(fields) < 2 {
		a.err = fmt.Errorf("invalid function header: %s", strings.Join(fields, " "))
		return a.next()
	}
	idx := int(a.int(fields[1]))
	fn := &FunctionProto{}
	for _, kv := range fields[2:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "name":
			fn.Name = v
		case "arity":
			fn.Arity = int(a.int(v))
		case "method":
			fn.IsMethod = v == "true"
		}
	}
	a.funcByIdx[idx] = fn
	fn.Chunk = newChunk(fn.Name)

	fields = a.next()
	fields = a.upvalues(fn, fields)
	fields = a.constants(fn.Chunk, fields)
	fields = a.code(fn.Chunk, fields)
	return fields
}

func (a *asm) upvalues(fn *FunctionProto, fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "upvalues:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !asmSections[strings.ToLower(fields[0])]; fields = a.next() {
		if len(fields) != 2 {
			a.err = fmt.Errorf("invalid upvalue descriptor: %s", strings.Join(fields, " "))
			return fields
		}
		fn.Upvalues = append(fn.Upvalues, UpvalueDesc{
			IsLocal: fields[0] == "local",
			Index:   uint8(a.uint(fields[1])),
		})
	}
	return fields
}

var constTypes = map[string]bool{"nil": true, "bool": true, "int": true, "float": true, "string": true, "func": true}

func (a *asm) constants(ch *Chunk, fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "constants:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !asmSections[strings.ToLower(fields[0])]; fields = a.next() {
		if !constTypes[fields[0]] {
			a.err = fmt.Errorf("invalid constant type: %s", fields[0])
			return fields
		}
		switch fields[0] {
		case "nil":
			ch.Constants = append(ch.Constants, nil)
		case "bool":
			ch.Constants = append(ch.Constants, fields[1] == "true")
		case "int":
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				a.err = fmt.Errorf("invalid int constant: %w", err)
				return fields
			}
			ch.Constants = append(ch.Constants, n)
		case "float":
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				a.err = fmt.Errorf("invalid float constant: %w", err)
				return fields
			}
			ch.Constants = append(ch.Constants, f)
		case "string":
			s, err := strconv.Unquote(fields[1])
			if err != nil {
				a.err = fmt.Errorf("invalid string constant %s: %w", fields[1], err)
				return fields
			}
			ch.Constants = append(ch.Constants, s)
		case "func":
			// Resolved to the real *FunctionProto once every function: block
			// has been parsed; store a placeholder recording which function
			// index belongs at this constant slot.
			ch.Constants = append(ch.Constants, funcRef(a.int(fields[1])))
		}
	}
	return fields
}

// funcRef is a placeholder constant-pool entry written by constants() and
// replaced with the real *FunctionProto by asm.resolve() once all
// function: blocks are known.
type funcRef int

func (a *asm) code(ch *Chunk, fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "code:") {
		return fields
	}
	for fields = a.next(); len(fields) > 0 && !asmSections[strings.ToLower(fields[0])]; fields = a.next() {
		op, ok := reverseLookupOpcode[strings.ToLower(fields[0])]
		if !ok {
			a.err = fmt.Errorf("invalid opcode: %s", fields[0])
			return fields
		}
		var args []int64
		for _, f := range fields[1:] {
			args = append(args, a.int(f))
		}
		a.codeLines = append(a.codeLines, codeLine{chunk: ch, op: op, args: args})
	}
	return fields
}

// resolve performs the second pass: instruction-index jump/switch operands
// become byte offsets, and funcRef constants become real *FunctionProto
// pointers, for every chunk produced by this Asm call. It also assembles
// the final encoded byte stream per chunk (code() only recorded the
// textual operands; encoding happens here once indices are resolvable).
func (a *asm) resolve() error {
	// pass 1: resolve constant-pool func placeholders now that every
	// function: block has been read.
	for _, fn := range a.funcByIdx {
		for i, c := range fn.Chunk.Constants {
			if ref, ok := c.(funcRef); ok {
				target, ok := a.funcByIdx[int(ref)]
				if !ok {
					return fmt.Errorf("undefined function index %d referenced by a constant", int(ref))
				}
				fn.Chunk.Constants[i] = target
			}
		}
	}

	// pass 2: group codeLines by chunk, in order, computing each
	// instruction's address, so jump/switch index operands can be
	// translated to byte offsets.
	byChunk := map[*Chunk][]codeLine{}
	var order []*Chunk
	for _, cl := range a.codeLines {
		if _, ok := byChunk[cl.chunk]; !ok {
			order = append(order, cl.chunk)
		}
		byChunk[cl.chunk] = append(byChunk[cl.chunk], cl)
	}

	for _, ch := range order {
		lines := byChunk[ch]
		addrs := make([]int, len(lines))
		addr := 0
		for i, cl := range lines {
			sz, err := instrSize(ch, cl)
			if err != nil {
				return err
			}
			addrs[i] = addr
			addr += sz
		}
		for i, cl := range lines {
			if err := encodeLine(ch, cl, addrs, i); err != nil {
				return err
			}
		}
	}

	if len(a.moduleRefs) > 0 {
		for _, ref := range a.moduleRefs {
			fn, ok := a.funcByIdx[ref.fnIdx]
			if !ok {
				return fmt.Errorf("module %q: undefined function index %d", ref.name, ref.fnIdx)
			}
			a.p.Modules = append(a.p.Modules, &CompiledModule{Name: ref.name, Top: fn})
		}
	} else if fn, ok := a.funcByIdx[0]; ok {
		// A bare function list with no program:modules section assembles
		// function 0 as the sole module, named after it, for terse
		// single-chunk test fixtures.
		a.p.Modules = []*CompiledModule{{Name: fn.Name, Top: fn}}
	}
	return nil
}

// instrSize returns the byte length op plus operand(s) plus any variable
// tail (switch case table, closure upvalue descriptors) will occupy.
func instrSize(ch *Chunk, cl codeLine) (int, error) {
	switch {
	case cl.op == OpSwitch || cl.op == OpSwitchLong:
		if len(cl.args) < 1 {
			return 0, fmt.Errorf("switch: missing case count")
		}
		n := int(cl.args[0])
		idxWidth := 1
		if cl.op == OpSwitchLong {
			idxWidth = 2
		}
		return 1 + 2 + n*idxWidth + (n+1)*2, nil
	case cl.op == OpClosure || cl.op == OpClosureLong:
		if len(cl.args) < 1 {
			return 0, fmt.Errorf("closure: missing function constant index")
		}
		width := operandWidth(cl.op)
		fnIdx := int(cl.args[0])
		if fnIdx < 0 || fnIdx >= len(ch.Constants) {
			return 0, fmt.Errorf("closure: constant index %d out of range", fnIdx)
		}
		proto, ok := ch.Constants[fnIdx].(*FunctionProto)
		if !ok {
			if ref, ok := ch.Constants[fnIdx].(funcRef); ok {
				_ = ref
			} else {
				return 0, fmt.Errorf("closure: constant %d is not a function", fnIdx)
			}
		}
		n := 0
		if proto != nil {
			n = len(proto.Upvalues)
		}
		return 1 + width + n*(1+width), nil
	case cl.op == OpJumpPopN:
		return 1 + 3, nil
	default:
		return 1 + operandWidth(cl.op), nil
	}
}

func encodeLine(ch *Chunk, cl codeLine, addrs []int, i int) error {
	ch.Code = append(ch.Code, byte(cl.op))
	switch {
	case cl.op == OpSwitch || cl.op == OpSwitchLong:
		n := int(cl.args[0])
		ch.Code = append(ch.Code, byte(n>>8), byte(n))
		idxWidth := 1
		if cl.op == OpSwitchLong {
			idxWidth = 2
		}
		for k := 0; k < n; k++ {
			v := cl.args[1+k]
			if idxWidth == 2 {
				ch.Code = append(ch.Code, byte(v>>8), byte(v))
			} else {
				ch.Code = append(ch.Code, byte(v))
			}
		}
		for k := 0; k <= n; k++ {
			targetInsn := int(cl.args[1+n+k])
			dist := addrs[targetInsn] - (len(ch.Code) + 2)
			if dist < 0 {
				return fmt.Errorf("switch: negative offset to instruction %d", targetInsn)
			}
			ch.Code = append(ch.Code, byte(dist>>8), byte(dist))
		}
	case cl.op == OpClosure || cl.op == OpClosureLong:
		width := operandWidth(cl.op)
		fnIdx := cl.args[0]
		writeWidth(ch, fnIdx, width)
		proto, _ := ch.Constants[fnIdx].(*FunctionProto)
		n := 0
		if proto != nil {
			n = len(proto.Upvalues)
		}
		for k := 0; k < n; k++ {
			isLocal := cl.args[1+2*k]
			idx := cl.args[2+2*k]
			ch.Code = append(ch.Code, byte(isLocal))
			writeWidth(ch, idx, width)
		}
	case jumpOpcodes[cl.op]:
		targetInsn := int(cl.args[0])
		if targetInsn < 0 || targetInsn >= len(addrs) {
			return fmt.Errorf("jump: instruction index %d out of range", targetInsn)
		}
		var dist int
		if jumpBackward(cl.op) {
			dist = (len(ch.Code) + 2) - addrs[targetInsn]
		} else {
			dist = addrs[targetInsn] - (len(ch.Code) + 2)
		}
		if dist < 0 {
			return fmt.Errorf("jump: negative/backward-mismatched distance to instruction %d", targetInsn)
		}
		ch.Code = append(ch.Code, byte(dist>>8), byte(dist))
	case cl.op == OpJumpPopN:
		targetInsn := int(cl.args[0])
		dist := addrs[targetInsn] - (len(ch.Code) + 3)
		ch.Code = append(ch.Code, byte(dist>>8), byte(dist), byte(cl.args[1]))
	case cl.op == OpInvoke || cl.op == OpSuperInvoke:
		ch.Code = append(ch.Code, byte(cl.args[0]), byte(cl.args[1]))
	case cl.op == OpInvokeLong || cl.op == OpSuperInvokeLong:
		nameIdx := cl.args[0]
		ch.Code = append(ch.Code, byte(nameIdx>>8), byte(nameIdx), byte(cl.args[1]))
	default:
		width := operandWidth(cl.op)
		var v int64
		if len(cl.args) > 0 {
			v = cl.args[0]
		}
		writeWidth(ch, v, width)
	}
	return nil
}

func writeWidth(ch *Chunk, v int64, width int) {
	switch width {
	case 0:
	case 1:
		ch.Code = append(ch.Code, byte(v))
	case 2:
		ch.Code = append(ch.Code, byte(v>>8), byte(v))
	}
}

func (a *asm) int(s string) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		a.err = fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return i
}

func (a *asm) uint(s string) uint64 {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		a.err = fmt.Errorf("invalid unsigned integer %q: %w", s, err)
	}
	return u
}

// next returns the fields of the next non-empty, non-comment-only line.
func (a *asm) next() []string {
	a.rawLine = ""
	if a.err != nil {
		return nil
	}
	for a.s.Scan() {
		line := a.s.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		for i, f := range fields {
			if strings.HasPrefix(f, "#") {
				fields = fields[:i]
				break
			}
		}
		a.rawLine = line
		return fields
	}
	a.err = a.s.Err()
	return nil
}
