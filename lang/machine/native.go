package machine

import (
	"fmt"

	"github.com/holoscript/holo/lang/heap"
)

// nativeFn pairs the arity lang/compiler's UniverseNames expects (for the
// call/invoke opcode's arity check) with the Go implementation. arity -1
// means variadic, matching heap.NativeFn's convention.
type nativeFn struct {
	arity int
	fn    func(args []heap.Value) (heap.Value, error)
}

// universeFuncs returns the four builtins SPEC_FULL.md's "Supplemented
// features" section describes as filling the NativeFn variant spec.md
// names but leaves unpopulated: len, str, type, clock.
func universeFuncs(m *Machine) map[string]nativeFn {
	return map[string]nativeFn{
		"len": {arity: 1, fn: nativeLen},
		"str": {arity: 1, fn: func(args []heap.Value) (heap.Value, error) {
			return heap.Obj(m.heap.InternString(args[0].String())), nil
		}},
		"type": {arity: 1, fn: func(args []heap.Value) (heap.Value, error) {
			return heap.Obj(m.heap.InternString(typeName(args[0]))), nil
		}},
		"clock": {arity: 0, fn: nativeClock},
	}
}

func nativeLen(args []heap.Value) (heap.Value, error) {
	v := args[0]
	if v.IsObj() {
		switch o := v.AsObj().(type) {
		case *heap.String:
			return heap.Num(float64(len(o.Value))), nil
		case *heap.Array:
			return heap.Num(float64(o.Len())), nil
		case *heap.Instance:
			return heap.Num(float64(o.Fields.Count())), nil
		}
	}
	return heap.Nil, fmt.Errorf("len: unsupported argument %s", v.String())
}

func typeName(v heap.Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return "bool"
	case v.IsNum():
		return "num"
	case v.IsObj():
		switch v.AsObj().(type) {
		case *heap.String:
			return "string"
		case *heap.Array:
			return "array"
		case *heap.Closure, *heap.NativeFn, *heap.BoundMethod:
			return "function"
		case *heap.Class:
			return "class"
		case *heap.Instance:
			return "instance"
		case *heap.Future:
			return "future"
		case *heap.Mutex:
			return "mutex"
		case *heap.File:
			return "file"
		}
	}
	return "object"
}

func nativeClock(args []heap.Value) (heap.Value, error) {
	return heap.Num(nowSeconds()), nil
}
