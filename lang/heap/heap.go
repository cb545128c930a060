package heap

import "sync"

// Roots is implemented by the VM (lang/machine) so the collector can
// enumerate every active Thread's value stack, every call frame's closure,
// and the globals table without this package importing the machine
// package (spec.md §4.5 step 2 names these alongside the interned string
// table, which the Heap already owns directly).
type Roots interface {
	// EachRoot calls fn once per live Value reachable directly from VM
	// state: every thread's stack slots in use, every frame's closure, and
	// every defined global.
	EachRoot(fn func(Value))
	// RewriteRoots walks the same root set a second time, replacing each
	// Value with the result of rewrite (used to move stack/frame/global
	// references to their post-compaction addresses).
	RewriteRoots(rewrite func(Value) Value)
}

// Heap owns every object allocation a running program makes: a bump-
// allocated main region (grown on demand, modeled here as a Go slice since
// there is no pointer arithmetic over a raw arena in idiomatic Go - see
// the Object doc comment) plus an overflow list for allocations made while
// a collection has not yet run (spec.md §4.5 "Layout").
type Heap struct {
	mu sync.Mutex // allocation lock: "only one mutator may hold it at a time"

	objects  []Object // the main bump region: index is this object's address
	capacity int      // current soft capacity before Plan should grow it
	overflow []Object // objects allocated past capacity, folded in at next collection

	strings *internTable

	roots Roots

	liveSize int // recomputed by Mark, used by Plan to decide whether to grow
	markStk  []Object

	pauseRequested bool
	pauseMu        sync.Mutex
}

// initialCapacity is the starting soft limit on the main bump region
// before allocations spill to the overflow list.
const initialCapacity = 1024

// New creates an empty heap. roots may be nil until the owning VM is
// constructed; SetRoots must be called before the first Collect.
func New() *Heap {
	return &Heap{
		capacity: initialCapacity,
		strings:  newInternTable(),
	}
}

// SetRoots wires the VM's root set into the heap once it exists. Done as a
// separate step (rather than a constructor argument) because the VM's
// Thread/frame bookkeeping is itself constructed with a *Heap reference to
// allocate through - see spec.md §9's ask that both receive explicit
// constructor arguments rather than reach for a global singleton.
func (h *Heap) SetRoots(r Roots) { h.roots = r }

// registerAlloc is the single allocation entry point every NewXxx
// constructor in this package funnels through: bump into the main region
// while there's room, else append to the overflow list, folded back in at
// the next collection's Plan phase.
func (h *Heap) registerAlloc(o Object) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.objects) < h.capacity {
		h.objects = append(h.objects, o)
		return
	}
	h.overflow = append(h.overflow, o)
}

// InternString returns the shared *String for s, allocating it on first
// sight (spec.md §4.4).
func (h *Heap) InternString(s string) *String {
	return h.strings.intern(h, s)
}

// Alloc is the single allocation entry point for every concrete Object
// constructor outside this package (lang/machine builds the Go value with
// the NewXxx free functions in objects.go, then calls Alloc so the object
// becomes reachable from h.objects/h.overflow for the collector to find).
func (h *Heap) Alloc(o Object) Object {
	h.registerAlloc(o)
	return o
}

// --- collector-facing helpers used by Object.mark/rewrite implementations ---

func (h *Heap) markValue(v Value) {
	if v.IsObj() {
		h.markObj(v.AsObj())
	}
}

func (h *Heap) markObj(o Object) {
	if o == nil {
		return
	}
	fo := o.(forwarding)
	if fo.isMarked() {
		return
	}
	fo.markSelf()
	h.liveSize += o.size()
	h.markStk = append(h.markStk, o)
}

func (h *Heap) rewriteValue(v Value) Value {
	if !v.IsObj() {
		return v
	}
	return Obj(h.rewriteObj(v.AsObj()))
}

// rewriteObj returns the already-live referent itself: in this slice-
// indexed model, compaction moves objects within h.objects but pointers
// (Go pointers to the Object's struct) remain valid throughout - there is
// no separate "planned address" to dereference through, unlike the
// original byte-offset arena. What changes is *position* in h.objects,
// tracked by forward, not the pointer identity a Go caller holds.
func (h *Heap) rewriteObj(o Object) Object {
	return o
}

// Collect runs one full stop-the-world mark-compact cycle, per spec.md
// §4.5's six phases. It must not be called concurrently with itself; the
// caller (the VM's allocation path) is responsible for the pause protocol
// described in spec.md §5 before invoking this.
func (h *Heap) Collect() {
	h.pause()
	defer h.resume()

	h.mark()
	h.plan()
	h.rewrite()
	h.compact()
}

// RequestPause sets the global pause flag without running a full
// collection, so the caller (lang/machine's Machine) can wait for every
// other mutator thread to observe it and park before starting Collect - the
// wait itself is orchestration Heap has no visibility into (it doesn't know
// about Threads), per spec.md §5 "the GC-running thread waits for all other
// threads to be in paused state before proceeding with marking".
func (h *Heap) RequestPause() { h.pause() }

// pause implements phase 1: set the global pause flag so every mutator
// thread's interpreter-loop back-edge check parks itself. The actual
// spin/park loop lives in lang/machine's Thread, which polls Paused.
func (h *Heap) pause() {
	h.pauseMu.Lock()
	h.pauseRequested = true
	h.pauseMu.Unlock()
}

func (h *Heap) resume() {
	h.pauseMu.Lock()
	h.pauseRequested = false
	h.pauseMu.Unlock()
	for i := range h.objects {
		if fo, ok := h.objects[i].(forwarding); ok {
			fo.clearForward()
		}
	}
	for _, o := range h.overflow {
		if fo, ok := o.(forwarding); ok {
			fo.clearForward()
		}
	}
}

// Paused reports whether a collection has been requested; lang/machine's
// Thread polls this at its back-edge check (spec.md §5).
func (h *Heap) Paused() bool {
	h.pauseMu.Lock()
	defer h.pauseMu.Unlock()
	return h.pauseRequested
}

// liveObjects returns the main-table objects followed by the overflow objects.
func (h *Heap) liveObjects() []Object {
	all := make([]Object, 0, len(h.objects)+len(h.overflow))
	all = append(all, h.objects...)
	all = append(all, h.overflow...)
	return all
}

// mark implements phase 2: enumerate roots, then drain the mark stack.
func (h *Heap) mark() {
	h.liveSize = 0
	h.markStk = h.markStk[:0]

	h.strings.mark(h)
	if h.roots != nil {
		h.roots.EachRoot(h.markValue)
	}
	for len(h.markStk) > 0 {
		o := h.markStk[len(h.markStk)-1]
		h.markStk = h.markStk[:len(h.markStk)-1]
		o.mark(h)
	}
}

// planGrowThreshold is the load-factor ceiling past which Plan grows the
// heap rather than compacting in place (spec.md: "exceeds ~90%").
const planGrowThreshold = 0.90

// plan implements phase 3: decide whether to grow, then assign every live
// object its post-compaction address in address order. In this slice-
// indexed model "address order" is simply current-slice order (main
// region, then overflow), matching the original arena's address-ordered
// walk.
func (h *Heap) plan() {
	if float64(h.liveSize) > planGrowThreshold*float64(h.capacity) {
		newCap := nextPow2(h.liveSize)
		if newCap < initialCapacity {
			newCap = initialCapacity
		}
		h.capacity = newCap
	}

	cursor := 0
	for _, o := range h.liveObjects() {
		fo := o.(forwarding)
		if !fo.isMarked() {
			continue
		}
		fo.setForward(cursor)
		cursor += o.size()
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// rewrite implements phase 4: every live object's interior pointers, plus
// every root, are updated. In this model an Object's rewrite() hook is
// mostly a no-op for struct/array fields holding *Closure/*Class/etc.
// pointers (Go pointer identity survives compaction unchanged here), but
// it still walks children to refresh Value copies held by value (e.g. an
// Upvalue's closed cell, an Array's element slice) and to let the interned
// table drop unreachable entries.
func (h *Heap) rewrite() {
	for _, o := range h.liveObjects() {
		fo := o.(forwarding)
		if !fo.isMarked() {
			continue
		}
		o.rewrite(h)
	}
	h.strings.rewrite(h)
	if h.roots != nil {
		h.roots.RewriteRoots(h.rewriteValue)
	}
}

// compact implements phase 5: live objects are retained in address order,
// dead ones dropped, and the overflow list folded into the main region -
// the Go-slice analogue of "walk in address order, move live bytes to
// their planned address, free the overflow list".
func (h *Heap) compact() {
	kept := make([]Object, 0, len(h.objects)+len(h.overflow))
	for _, o := range h.liveObjects() {
		fo := o.(forwarding)
		if fo.isMarked() {
			kept = append(kept, o)
		}
	}
	h.objects = kept
	h.overflow = nil
}

// LiveCount exposes the number of live objects after the most recent
// Collect, mainly for tests.
func (h *Heap) LiveCount() int { return len(h.objects) }
