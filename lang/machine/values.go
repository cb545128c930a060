package machine

import "github.com/holoscript/holo/lang/heap"

// constantToValue converts one Chunk.Constants entry (produced by
// lang/compiler's addConstant, which only ever stores int64, float64,
// string, bool, or nil) into a runtime Value, interning strings through the
// heap so two equal string constants in different chunks share one
// *heap.String (spec.md §4.4).
func constantToValue(h *heap.Heap, c interface{}) heap.Value {
	switch v := c.(type) {
	case nil:
		return heap.Nil
	case bool:
		return heap.Bool(v)
	case int64:
		return heap.Num(float64(v))
	case float64:
		return heap.Num(v)
	case string:
		return heap.Obj(h.InternString(v))
	default:
		return heap.Nil
	}
}
