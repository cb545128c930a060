package machine

import "github.com/holoscript/holo/lang/heap"

// Frame is one entry of a Thread's call-frame stack: the active closure,
// the byte offset of the next instruction to execute, and the index into
// the thread's value stack where this call's slot 0 lives (spec.md §4.3
// "a fixed-size call-frame stack of {closure, instruction-pointer,
// slot-base}").
type Frame struct {
	Closure *heap.Closure
	ip      int
	base    int
}
