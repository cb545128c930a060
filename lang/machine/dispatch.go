package machine

import (
	"fmt"
	"math"

	"github.com/holoscript/holo/lang/compiler"
	"github.com/holoscript/holo/lang/heap"
)

func readU8(f *Frame) byte {
	b := f.Closure.Fn.Proto.Chunk.Code[f.ip]
	f.ip++
	return b
}

func readU16(f *Frame) int {
	code := f.Closure.Fn.Proto.Chunk.Code
	v := int(code[f.ip])<<8 | int(code[f.ip+1])
	f.ip += 2
	return v
}

// run executes instructions on th until the frame stack unwinds back to the
// depth it had when run was called (one frame already pushed by the
// caller), then returns the value left on top of the stack - the bytecode
// equivalent of a function call returning to its caller (spec.md §4.3).
func (th *Thread) run() (heap.Value, error) {
	baseDepth := len(th.frames) - 1
	for {
		th.checkPause()

		f := th.curFrame()
		code := f.Closure.Fn.Proto.Chunk.Code
		if f.ip >= len(code) {
			return heap.Nil, th.runtimeError("instruction pointer ran off the end of the chunk")
		}
		op := compiler.Opcode(code[f.ip])
		f.ip++

		switch op {
		case compiler.OpNop:

		case compiler.OpPop:
			th.pop()
		case compiler.OpDup:
			th.push(th.peek(0))
		case compiler.OpExch:
			a, b := th.pop(), th.pop()
			th.push(a)
			th.push(b)
		case compiler.OpPopN:
			n := int(readU8(f))
			th.sp -= n
		case compiler.OpLoadInt:
			n := int8(readU8(f))
			th.push(heap.Num(float64(n)))

		case compiler.OpConst:
			idx := int(readU8(f))
			th.push(constantToValue(th.m.heap, f.Closure.Fn.Proto.Chunk.Constants[idx]))
		case compiler.OpConstLong:
			idx := readU16(f)
			th.push(constantToValue(th.m.heap, f.Closure.Fn.Proto.Chunk.Constants[idx]))
		case compiler.OpNil:
			th.push(heap.Nil)
		case compiler.OpTrue:
			th.push(heap.Bool(true))
		case compiler.OpFalse:
			th.push(heap.Bool(false))

		case compiler.OpNeg:
			v := th.pop()
			if !v.IsNum() {
				return heap.Nil, th.runtimeError("unary -: operand is not a number")
			}
			th.push(heap.Num(-v.AsNum()))
		case compiler.OpNot:
			v := th.pop()
			th.push(heap.Bool(!v.Truthy()))
		case compiler.OpBitNot:
			v := th.pop()
			if !v.IsNum() {
				return heap.Nil, th.runtimeError("unary ~: operand is not a number")
			}
			th.push(heap.Num(float64(^int64(v.AsNum()))))
		case compiler.OpInc:
			flags := int8(readU8(f))
			v := th.pop()
			if !v.IsNum() {
				return heap.Nil, th.runtimeError("inc: operand is not a number")
			}
			th.push(heap.Num(v.AsNum() + float64(flags)))

		case compiler.OpAdd:
			b, a := th.pop(), th.pop()
			v, err := addValues(th.m.heap, a, b)
			if err != nil {
				return heap.Nil, th.runtimeError("%s", err)
			}
			th.push(v)
		case compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpMod,
			compiler.OpShl, compiler.OpShr, compiler.OpBAnd, compiler.OpBOr, compiler.OpBXor:
			b, a := th.pop(), th.pop()
			v, err := arith(op, a, b)
			if err != nil {
				return heap.Nil, th.runtimeError("%s", err)
			}
			th.push(v)

		case compiler.OpEq:
			b, a := th.pop(), th.pop()
			th.push(heap.Bool(heap.Equal(a, b)))
		case compiler.OpNe:
			b, a := th.pop(), th.pop()
			th.push(heap.Bool(!heap.Equal(a, b)))
		case compiler.OpGt, compiler.OpGe, compiler.OpLt, compiler.OpLe:
			b, a := th.pop(), th.pop()
			v, err := compare(op, a, b)
			if err != nil {
				return heap.Nil, th.runtimeError("%s", err)
			}
			th.push(v)

		case compiler.OpDefGlobal:
			th.defineGlobal(int(readU8(f)))
		case compiler.OpDefGlobalLong:
			th.defineGlobal(readU16(f))
		case compiler.OpGetGlobal:
			v, err := th.getGlobal(int(readU8(f)))
			if err != nil {
				return heap.Nil, err
			}
			th.push(v)
		case compiler.OpGetGlobalLong:
			v, err := th.getGlobal(readU16(f))
			if err != nil {
				return heap.Nil, err
			}
			th.push(v)
		case compiler.OpSetGlobal:
			th.setGlobal(int(readU8(f)), th.peek(0))
		case compiler.OpSetGlobalLong:
			th.setGlobal(readU16(f), th.peek(0))

		case compiler.OpGetLocal:
			slot := int(readU8(f))
			idx := f.base + slot
			cur := th.stack[idx]
			if uv, ok := asUpvalue(cur); ok {
				th.push(uv.Get())
			} else {
				th.push(cur)
			}
		case compiler.OpSetLocal:
			slot := int(readU8(f))
			idx := f.base + slot
			val := th.peek(0)
			if uv, ok := asUpvalue(th.stack[idx]); ok {
				uv.Set(val)
			} else {
				th.stack[idx] = val
			}
		case compiler.OpGetUpval:
			idx := int(readU8(f))
			th.push(f.Closure.Upvalues[idx].Get())
		case compiler.OpSetUpval:
			idx := int(readU8(f))
			f.Closure.Upvalues[idx].Set(th.peek(0))
		case compiler.OpCloseUpval:
			v := th.pop()
			if uv, ok := asUpvalue(v); ok {
				uv.Close()
			}

		case compiler.OpCreateArray:
			n := int(readU8(f))
			elems := make([]heap.Value, n)
			for i := 0; i < n; i++ {
				elems[i] = th.pop()
			}
			arr := th.m.alloc(th, heap.NewArray(elems))
			th.push(heap.Obj(arr))
		case compiler.OpIndexGet:
			idx, recv := th.pop(), th.pop()
			v, err := th.indexGet(recv, idx)
			if err != nil {
				return heap.Nil, err
			}
			th.push(v)
		case compiler.OpIndexSet:
			val, idx, recv := th.pop(), th.pop(), th.pop()
			if err := th.indexSet(recv, idx, val); err != nil {
				return heap.Nil, err
			}
			th.push(val)

		case compiler.OpJump:
			dist := readU16(f)
			f.ip += dist
		case compiler.OpJumpIfFalse:
			dist := readU16(f)
			if !th.peek(0).Truthy() {
				f.ip += dist
			}
		case compiler.OpJumpIfTrue:
			dist := readU16(f)
			if th.peek(0).Truthy() {
				f.ip += dist
			}
		case compiler.OpJumpIfFalsePop:
			dist := readU16(f)
			v := th.pop()
			if !v.Truthy() {
				f.ip += dist
			}
		case compiler.OpLoop:
			dist := readU16(f)
			f.ip -= dist
		case compiler.OpLoopIfTrue:
			dist := readU16(f)
			if th.peek(0).Truthy() {
				f.ip -= dist
			}
		case compiler.OpJumpPopN:
			dist := readU16(f)
			n := int(readU8(f))
			f.ip += dist
			th.sp -= n
		case compiler.OpSwitch, compiler.OpSwitchLong:
			if err := th.runSwitch(f, op == compiler.OpSwitchLong); err != nil {
				return heap.Nil, err
			}

		case compiler.OpCall:
			argc := int(readU8(f))
			base := th.sp - argc - 1
			if err := th.callValue(th.stack[base], argc, base); err != nil {
				return heap.Nil, err
			}
		case compiler.OpReturn:
			v := th.pop()
			frame := th.frames[len(th.frames)-1]
			th.frames = th.frames[:len(th.frames)-1]
			th.sp = frame.base
			if err := th.push(v); err != nil {
				return heap.Nil, err
			}
			if len(th.frames) == baseDepth {
				return th.pop(), nil
			}

		case compiler.OpClosure:
			idx := int(readU8(f))
			if err := th.makeClosure(f, idx, false); err != nil {
				return heap.Nil, err
			}
		case compiler.OpClosureLong:
			idx := readU16(f)
			if err := th.makeClosure(f, idx, true); err != nil {
				return heap.Nil, err
			}

		case compiler.OpClass:
			idx := readU16(f)
			name, _ := f.Closure.Fn.Proto.Chunk.Constants[idx].(string)
			cls := th.m.alloc(th, heap.NewClass(name))
			th.push(heap.Obj(cls))
		case compiler.OpGetProp:
			idx := int(readU8(f))
			if err := th.getProp(f, idx); err != nil {
				return heap.Nil, err
			}
		case compiler.OpGetPropLong:
			idx := readU16(f)
			if err := th.getProp(f, idx); err != nil {
				return heap.Nil, err
			}
		case compiler.OpSetProp:
			idx := int(readU8(f))
			if err := th.setProp(f, idx); err != nil {
				return heap.Nil, err
			}
		case compiler.OpSetPropLong:
			idx := readU16(f)
			if err := th.setProp(f, idx); err != nil {
				return heap.Nil, err
			}
		case compiler.OpCreateStruct:
			n := int(readU8(f))
			if err := th.createStruct(n); err != nil {
				return heap.Nil, err
			}
		case compiler.OpCreateStructLong:
			n := readU16(f)
			if err := th.createStruct(n); err != nil {
				return heap.Nil, err
			}
		case compiler.OpMethod:
			idx := readU16(f)
			name, _ := f.Closure.Fn.Proto.Chunk.Constants[idx].(string)
			closureV := th.pop()
			closure, ok := closureV.AsObj().(*heap.Closure)
			if !ok {
				return heap.Nil, th.runtimeError("method: not a closure")
			}
			classV := th.peek(0)
			cls, ok := classV.AsObj().(*heap.Class)
			if !ok {
				return heap.Nil, th.runtimeError("method: receiver is not a class")
			}
			cls.Methods.Put(name, closure)
		case compiler.OpInvoke:
			nameIdx := int(readU8(f))
			argc := int(readU8(f))
			if err := th.invoke(f, nameIdx, argc); err != nil {
				return heap.Nil, err
			}
		case compiler.OpInvokeLong:
			nameIdx := readU16(f)
			argc := int(readU8(f))
			if err := th.invoke(f, nameIdx, argc); err != nil {
				return heap.Nil, err
			}
		case compiler.OpInherit:
			childV := th.pop()
			superV := th.pop()
			child, ok1 := childV.AsObj().(*heap.Class)
			super, ok2 := superV.AsObj().(*heap.Class)
			if !ok1 || !ok2 {
				return heap.Nil, th.runtimeError("inherit: superclass is not a class")
			}
			child.Inherit(super)
			th.push(childV)
		case compiler.OpGetSuper:
			idx := int(readU8(f))
			if err := th.getSuper(f, idx); err != nil {
				return heap.Nil, err
			}
		case compiler.OpGetSuperLong:
			idx := readU16(f)
			if err := th.getSuper(f, idx); err != nil {
				return heap.Nil, err
			}
		case compiler.OpSuperInvoke:
			nameIdx := int(readU8(f))
			argc := int(readU8(f))
			if err := th.superInvoke(f, nameIdx, argc); err != nil {
				return heap.Nil, err
			}
		case compiler.OpSuperInvokeLong:
			nameIdx := readU16(f)
			argc := int(readU8(f))
			if err := th.superInvoke(f, nameIdx, argc); err != nil {
				return heap.Nil, err
			}

		case compiler.OpLaunchAsync:
			argc := int(readU8(f))
			if err := th.launchAsync(argc); err != nil {
				return heap.Nil, err
			}
		case compiler.OpAwait:
			v := th.pop()
			future, ok := v.AsObj().(*heap.Future)
			if !ok {
				return heap.Nil, th.runtimeError("await: operand is not a future")
			}
			result, err := future.Await()
			if err != nil {
				return heap.Nil, err
			}
			th.push(result)
		case compiler.OpPrint:
			v := th.pop()
			fmt.Fprintln(th.stdout, v.String())

		default:
			return heap.Nil, th.runtimeError("illegal opcode %s", op)
		}
	}
}

func asUpvalue(v heap.Value) (*heap.Upvalue, bool) {
	if !v.IsObj() {
		return nil, false
	}
	uv, ok := v.AsObj().(*heap.Upvalue)
	return uv, ok
}

func (th *Thread) defineGlobal(slot int) {
	th.m.globals[slot] = th.pop()
	th.m.globalsDefined[slot] = true
}

func (th *Thread) getGlobal(slot int) (heap.Value, error) {
	if !th.m.globalsDefined[slot] {
		return heap.Nil, th.runtimeError("undefined global %q", th.m.globalInfo[slot].Name)
	}
	return th.m.globals[slot], nil
}

func (th *Thread) setGlobal(slot int, v heap.Value) {
	th.m.globals[slot] = v
	th.m.globalsDefined[slot] = true
}

func (th *Thread) indexGet(recv, idx heap.Value) (heap.Value, error) {
	if arr, ok := recv.AsObj().(*heap.Array); ok {
		if !idx.IsNum() {
			return heap.Nil, th.runtimeError("array index is not a number")
		}
		i := int(idx.AsNum())
		if i < 0 || i >= arr.Len() {
			return heap.Nil, th.runtimeError("array index %d out of bounds (len %d)", i, arr.Len())
		}
		return arr.Elems[i], nil
	}
	if inst, ok := recv.AsObj().(*heap.Instance); ok {
		key, ok := idx.AsObj().(*heap.String)
		if !ok {
			return heap.Nil, th.runtimeError("struct index is not a string")
		}
		v, ok := inst.Fields.Get(key.Value)
		if !ok {
			return heap.Nil, th.runtimeError("missing field %q", key.Value)
		}
		return v, nil
	}
	return heap.Nil, th.runtimeError("value is not indexable: %s", recv.String())
}

func (th *Thread) indexSet(recv, idx, val heap.Value) error {
	if arr, ok := recv.AsObj().(*heap.Array); ok {
		if !idx.IsNum() {
			return th.runtimeError("array index is not a number")
		}
		i := int(idx.AsNum())
		if i < 0 || i >= arr.Len() {
			return th.runtimeError("array index %d out of bounds (len %d)", i, arr.Len())
		}
		arr.Set(i, val)
		return nil
	}
	if inst, ok := recv.AsObj().(*heap.Instance); ok {
		key, ok := idx.AsObj().(*heap.String)
		if !ok {
			return th.runtimeError("struct index is not a string")
		}
		inst.Fields.Put(key.Value, val)
		return nil
	}
	return th.runtimeError("value is not indexable: %s", recv.String())
}

// makeClosure implements the closure/closure_long opcode: instantiate a
// Function+Closure over the constant-pool FunctionProto at idx, capturing
// each declared upvalue per its descriptor (spec.md §4.3's boxed-cell
// capture: a freshly captured local gets a new heap cell so the closure's
// reference survives the stack slot being overwritten with the Upvalue
// wrapper itself).
func (th *Thread) makeClosure(f *Frame, idx int, long bool) error {
	proto, ok := f.Closure.Fn.Proto.Chunk.Constants[idx].(*compiler.FunctionProto)
	if !ok {
		return th.runtimeError("closure: constant is not a function prototype")
	}
	upvalues := make([]*heap.Upvalue, len(proto.Upvalues))
	for i := range proto.Upvalues {
		isLocal := readU8(f) != 0
		var index int
		if long {
			index = readU16(f)
		} else {
			index = int(readU8(f))
		}
		if isLocal {
			slot := f.base + index
			if uv, ok := asUpvalue(th.stack[slot]); ok {
				upvalues[i] = uv
				continue
			}
			cell := new(heap.Value)
			*cell = th.stack[slot]
			uv := th.m.alloc(th, &heap.Upvalue{Slot: cell}).(*heap.Upvalue)
			th.stack[slot] = heap.Obj(uv)
			upvalues[i] = uv
		} else {
			upvalues[i] = f.Closure.Upvalues[index]
		}
	}
	fn := th.m.alloc(th, &heap.Function{Proto: proto}).(*heap.Function)
	closure := th.m.alloc(th, &heap.Closure{Fn: fn, Upvalues: upvalues}).(*heap.Closure)
	return th.push(heap.Obj(closure))
}

func (th *Thread) getProp(f *Frame, idx int) error {
	name, _ := f.Closure.Fn.Proto.Chunk.Constants[idx].(string)
	recvV := th.pop()
	inst, ok := recvV.AsObj().(*heap.Instance)
	if !ok {
		return th.runtimeError("get property %q on non-instance value", name)
	}
	if v, ok := inst.Fields.Get(name); ok {
		return th.push(v)
	}
	if inst.Class != nil {
		if m, ok := inst.Class.Methods.Get(name); ok {
			bm := th.m.alloc(th, &heap.BoundMethod{Receiver: recvV, Method: m})
			return th.push(heap.Obj(bm))
		}
	}
	return th.runtimeError("undefined property %q", name)
}

func (th *Thread) setProp(f *Frame, idx int) error {
	name, _ := f.Closure.Fn.Proto.Chunk.Constants[idx].(string)
	val := th.pop()
	recvV := th.pop()
	inst, ok := recvV.AsObj().(*heap.Instance)
	if !ok {
		return th.runtimeError("set property %q on non-instance value", name)
	}
	inst.Fields.Put(name, val)
	return th.push(val)
}

func (th *Thread) createStruct(n int) error {
	inst := heap.NewInstance(nil)
	for i := 0; i < n; i++ {
		key := th.pop()
		val := th.pop()
		ks, ok := key.AsObj().(*heap.String)
		if !ok {
			return th.runtimeError("struct literal key is not a string")
		}
		inst.Fields.Put(ks.Value, val)
	}
	obj := th.m.alloc(th, inst)
	return th.push(heap.Obj(obj))
}

func (th *Thread) invoke(f *Frame, nameIdx, argc int) error {
	name, _ := f.Closure.Fn.Proto.Chunk.Constants[nameIdx].(string)
	base := th.sp - argc - 1
	recvV := th.stack[base]
	inst, ok := recvV.AsObj().(*heap.Instance)
	if !ok {
		return th.runtimeError("invoke %q on non-instance value", name)
	}
	if fv, ok := inst.Fields.Get(name); ok {
		th.stack[base] = fv
		return th.callValue(fv, argc, base)
	}
	if inst.Class != nil {
		if m, ok := inst.Class.Methods.Get(name); ok {
			return th.callValue(heap.Obj(m), argc, base)
		}
	}
	return th.runtimeError("undefined method %q", name)
}

func (th *Thread) getSuper(f *Frame, idx int) error {
	name, _ := f.Closure.Fn.Proto.Chunk.Constants[idx].(string)
	thisV := th.pop()
	superV := th.pop()
	super, ok := superV.AsObj().(*heap.Class)
	if !ok {
		return th.runtimeError("super: not a class")
	}
	m, ok := super.Methods.Get(name)
	if !ok {
		return th.runtimeError("undefined method %q on superclass %s", name, super.Name)
	}
	bm := th.m.alloc(th, &heap.BoundMethod{Receiver: thisV, Method: m})
	return th.push(heap.Obj(bm))
}

func (th *Thread) superInvoke(f *Frame, nameIdx, argc int) error {
	name, _ := f.Closure.Fn.Proto.Chunk.Constants[nameIdx].(string)
	base := th.sp - argc - 1
	superIdx := base - 1
	superV := th.stack[superIdx]
	super, ok := superV.AsObj().(*heap.Class)
	if !ok {
		return th.runtimeError("super invoke: not a class")
	}
	m, ok := super.Methods.Get(name)
	if !ok {
		return th.runtimeError("undefined method %q on superclass %s", name, super.Name)
	}
	// Drop the super slot: shift [this, arg1..argn] down by one.
	copy(th.stack[superIdx:th.sp-1], th.stack[base:th.sp])
	th.sp--
	return th.callValue(heap.Obj(m), argc, superIdx)
}

func (th *Thread) runSwitch(f *Frame, long bool) error {
	n := readU16(f)
	constIdx := make([]int, n)
	for i := 0; i < n; i++ {
		if long {
			constIdx[i] = readU16(f)
		} else {
			constIdx[i] = int(readU8(f))
		}
	}
	offsets := make([]int, n)
	for i := 0; i < n; i++ {
		dist := readU16(f)
		offsets[i] = f.ip + dist
	}
	defDist := readU16(f)
	defaultTarget := f.ip + defDist

	tag := th.pop()
	target := defaultTarget
	for i, ci := range constIdx {
		cv := constantToValue(th.m.heap, f.Closure.Fn.Proto.Chunk.Constants[ci])
		if heap.Equal(tag, cv) {
			target = offsets[i]
			break
		}
	}
	f.ip = target
	return nil
}

func arith(op compiler.Opcode, a, b heap.Value) (heap.Value, error) {
	if !a.IsNum() || !b.IsNum() {
		return heap.Nil, opErrorf(op, "operands are not both numbers")
	}
	x, y := a.AsNum(), b.AsNum()
	switch op {
	case compiler.OpSub:
		return heap.Num(x - y), nil
	case compiler.OpMul:
		return heap.Num(x * y), nil
	case compiler.OpDiv:
		if y == 0 {
			return heap.Nil, opErrorf(op, "division by zero")
		}
		return heap.Num(x / y), nil
	case compiler.OpMod:
		if y == 0 {
			return heap.Nil, opErrorf(op, "modulo by zero")
		}
		return heap.Num(math.Mod(x, y)), nil
	case compiler.OpShl:
		return heap.Num(float64(int64(x) << uint64(int64(y)))), nil
	case compiler.OpShr:
		return heap.Num(float64(int64(x) >> uint64(int64(y)))), nil
	case compiler.OpBAnd:
		return heap.Num(float64(int64(x) & int64(y))), nil
	case compiler.OpBOr:
		return heap.Num(float64(int64(x) | int64(y))), nil
	case compiler.OpBXor:
		return heap.Num(float64(int64(x) ^ int64(y))), nil
	}
	return heap.Nil, opErrorf(op, "unsupported operator")
}

func addValues(h *heap.Heap, a, b heap.Value) (heap.Value, error) {
	if a.IsNum() && b.IsNum() {
		return heap.Num(a.AsNum() + b.AsNum()), nil
	}
	as, aok := a.AsObj().(*heap.String)
	bs, bok := b.AsObj().(*heap.String)
	if a.IsObj() && b.IsObj() && aok && bok {
		return heap.Obj(h.InternString(as.Value + bs.Value)), nil
	}
	return heap.Nil, opErrorf(compiler.OpAdd, "operands are not both numbers or both strings")
}

func compare(op compiler.Opcode, a, b heap.Value) (heap.Value, error) {
	if !a.IsNum() || !b.IsNum() {
		return heap.Nil, opErrorf(op, "operands are not both numbers")
	}
	x, y := a.AsNum(), b.AsNum()
	switch op {
	case compiler.OpGt:
		return heap.Bool(x > y), nil
	case compiler.OpGe:
		return heap.Bool(x >= y), nil
	case compiler.OpLt:
		return heap.Bool(x < y), nil
	case compiler.OpLe:
		return heap.Bool(x <= y), nil
	}
	return heap.Nil, opErrorf(op, "unsupported comparison")
}

func opErrorf(op compiler.Opcode, format string, args ...interface{}) error {
	return &opError{op: op, msg: fmt.Sprintf(format, args...)}
}

type opError struct {
	op  compiler.Opcode
	msg string
}

func (e *opError) Error() string { return e.op.String() + ": " + e.msg }
