package machine

import (
	"io"
	"runtime"
	"sync/atomic"

	"github.com/holoscript/holo/lang/heap"
)

// MaxFrames is the fixed call-frame depth limit (spec.md §4.3, §8: "the call
// frame depth never exceeds 256").
const MaxFrames = 256

// StackPerFrame bounds how many value-stack slots one frame may occupy;
// the whole value stack is sized MaxFrames*StackPerFrame up front so it
// never needs to grow during execution (spec.md: "a fixed-size value stack
// of N×256 values, N = max frames = 256").
const StackPerFrame = 256

// Thread is one VM execution context: the principal thread running a
// program's module top levels, or a child thread spawned by launch_async
// (spec.md §4.3, §5). Its value stack and frame stack are both fixed-size,
// allocated once at creation.
type Thread struct {
	m      *Machine
	stack  []heap.Value
	sp     int
	frames []Frame

	paused atomic.Bool
	done   atomic.Bool

	stdout io.Writer
	stderr io.Writer
}

func newThread(m *Machine) *Thread {
	return &Thread{
		m:      m,
		stack:  make([]heap.Value, MaxFrames*StackPerFrame),
		frames: make([]Frame, 0, MaxFrames),
		stdout: m.stdout,
		stderr: m.stderr,
	}
}

func (th *Thread) push(v heap.Value) error {
	if th.sp >= len(th.stack) {
		return th.runtimeError("value stack overflow")
	}
	th.stack[th.sp] = v
	th.sp++
	return nil
}

func (th *Thread) pop() heap.Value {
	th.sp--
	v := th.stack[th.sp]
	th.stack[th.sp] = heap.Nil
	return v
}

func (th *Thread) peek(distFromTop int) heap.Value {
	return th.stack[th.sp-1-distFromTop]
}

func (th *Thread) curFrame() *Frame {
	return &th.frames[len(th.frames)-1]
}

func (th *Thread) pushFrame(f Frame) error {
	if len(th.frames) >= MaxFrames {
		return th.runtimeError("call stack overflow")
	}
	th.frames = append(th.frames, f)
	return nil
}

// checkPause is the interpreter loop's back-edge check, performed once per
// instruction (spec.md §5 "Suspension points"): if the heap has requested a
// pause for collection, this thread parks itself until the flag clears.
func (th *Thread) checkPause() {
	if !th.m.heap.Paused() {
		return
	}
	th.paused.Store(true)
	for th.m.heap.Paused() {
		runtime.Gosched()
	}
	th.paused.Store(false)
}
