// Package machine implements the stack-based virtual machine that executes
// the bytecode lang/compiler produces, over the Value/Object/Heap model
// lang/heap defines. It owns the global table, the interpreter dispatch
// loop, the calling convention (including upvalues and class/instance
// method dispatch), the launch_async/await child-thread primitive, and the
// Roots side of the heap's mark-compact collector (spec.md §4.3, §5).
package machine

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/holoscript/holo/lang/compiler"
	"github.com/holoscript/holo/lang/heap"
)

// Machine owns everything a running program needs beyond a single Thread's
// own state: the heap, the flat global table, and the set of live threads
// the collector must enumerate as roots (spec.md §4.3 "The VM owns the
// global table ..., the file table, and the child-thread list").
type Machine struct {
	heap *heap.Heap

	globals        []heap.Value
	globalsDefined []bool
	globalInfo     []compiler.GlobalInfo

	stdout io.Writer
	stderr io.Writer

	threadsMu sync.Mutex
	threads   []*Thread

	allocMu    sync.Mutex
	allocCount int
}

// gcInterval is how many allocations elapse between opportunistic
// collections; spec.md leaves the exact trigger policy to the
// implementation ("a collection may be triggered at any allocation").
const gcInterval = 4096

// New creates a Machine over a fresh heap and wires itself in as the
// heap's Roots implementation.
func New(stdout, stderr io.Writer) *Machine {
	m := &Machine{heap: heap.New(), stdout: stdout, stderr: stderr}
	m.heap.SetRoots(m)
	return m
}

// Heap exposes the underlying heap, mainly for tests and the disassembler.
func (m *Machine) Heap() *heap.Heap { return m.heap }

func (m *Machine) newThread() *Thread {
	th := newThread(m)
	return th
}

func (m *Machine) registerThread(th *Thread) {
	m.threadsMu.Lock()
	m.threads = append(m.threads, th)
	m.threadsMu.Unlock()
}

func (m *Machine) unregisterThread(th *Thread) {
	th.done.Store(true)
	m.threadsMu.Lock()
	defer m.threadsMu.Unlock()
	for i, t := range m.threads {
		if t == th {
			m.threads = append(m.threads[:i], m.threads[i+1:]...)
			return
		}
	}
}

func (m *Machine) liveThreads() []*Thread {
	m.threadsMu.Lock()
	defer m.threadsMu.Unlock()
	return append([]*Thread(nil), m.threads...)
}

// alloc funnels every machine-initiated heap allocation through one place so
// the opportunistic collection trigger sees every allocation, matching
// spec.md's "a collection may be triggered at any allocation".
func (m *Machine) alloc(initiator *Thread, o heap.Object) heap.Object {
	obj := m.heap.Alloc(o)
	m.allocMu.Lock()
	m.allocCount++
	due := m.allocCount%gcInterval == 0
	m.allocMu.Unlock()
	if due {
		m.collect(initiator)
	}
	return obj
}

// collect runs one stop-the-world cycle, with initiator (the thread that
// tripped the trigger, or nil for an explicit out-of-band collection)
// exempted from the pause wait since it is the thread driving Collect
// itself (spec.md §5).
func (m *Machine) collect(initiator *Thread) {
	m.heap.RequestPause()
	for _, th := range m.liveThreads() {
		if th == initiator || th.done.Load() {
			continue
		}
		for !th.paused.Load() && !th.done.Load() {
			runtime.Gosched()
		}
	}
	m.heap.Collect()
}

// Collect forces an out-of-band collection; exposed for tests and for a
// future GC-on-demand CLI flag.
func (m *Machine) Collect() { m.collect(nil) }

// EachRoot implements heap.Roots: every thread's live stack slots and every
// frame's closure, plus the global table (spec.md §4.5 step 2).
func (m *Machine) EachRoot(fn func(heap.Value)) {
	for _, g := range m.globals {
		fn(g)
	}
	for _, th := range m.liveThreads() {
		for i := 0; i < th.sp; i++ {
			fn(th.stack[i])
		}
		for _, f := range th.frames {
			fn(heap.Obj(f.Closure))
		}
	}
}

// RewriteRoots implements heap.Roots: the same walk as EachRoot, replacing
// each Value with its post-compaction form.
func (m *Machine) RewriteRoots(rewrite func(heap.Value) heap.Value) {
	for i := range m.globals {
		m.globals[i] = rewrite(m.globals[i])
	}
	for _, th := range m.liveThreads() {
		for i := 0; i < th.sp; i++ {
			th.stack[i] = rewrite(th.stack[i])
		}
		for i := range th.frames {
			rv := rewrite(heap.Obj(th.frames[i].Closure))
			th.frames[i].Closure = rv.AsObj().(*heap.Closure)
		}
	}
}

// RunProgram executes every compiled module's top level in dependency
// order on one principal thread, as consecutive top-level calls sharing one
// global table (spec.md §6 "Source files... Entry file must be named
// main.<ext>"; imports resolved ahead of time by lang/module). The last
// module executed is conventionally the entry file once graph.Order has
// placed it last, per module.Build's dependency ordering.
func (m *Machine) RunProgram(prog *compiler.Program) (heap.Value, error) {
	m.globals = make([]heap.Value, len(prog.Globals))
	m.globalsDefined = make([]bool, len(prog.Globals))
	m.globalInfo = prog.Globals
	m.bindUniverse()

	th := m.newThread()
	m.registerThread(th)
	defer m.unregisterThread(th)

	result := heap.Nil
	for _, mod := range prog.Modules {
		fn := m.alloc(th, &heap.Function{Proto: mod.Top}).(*heap.Function)
		closure := m.alloc(th, &heap.Closure{Fn: fn}).(*heap.Closure)
		// A module's top level is never reached through a call opcode, so
		// unlike an ordinary function it reserves no "this"/closure slot at
		// index 0 (lang/compiler's compileModule skips that declareLocal) -
		// the frame's base is simply the next free stack slot.
		if err := th.pushFrame(Frame{Closure: closure, base: th.sp}); err != nil {
			return heap.Nil, err
		}
		r, err := th.run()
		if err != nil {
			return heap.Nil, err
		}
		result = r
		m.collect(th)
	}
	return result, nil
}

// bindUniverse assigns the predeclared native-function slots the compiler
// reserved (lang/compiler's UniverseNames) their NativeFn values, before
// any module body runs.
func (m *Machine) bindUniverse() {
	byName := make(map[string]int, len(compiler.UniverseNames))
	for slot, g := range m.globalInfo {
		if g.Module == compiler.UniverseModuleName {
			byName[g.Plain] = slot
		}
	}
	for name, fn := range universeFuncs(m) {
		slot, ok := byName[name]
		if !ok {
			continue
		}
		nf := m.heap.Alloc(&heap.NativeFn{Name: name, Arity: fn.arity, Fn: fn.fn}).(*heap.NativeFn)
		m.globals[slot] = heap.Obj(nf)
		m.globalsDefined[slot] = true
	}
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
