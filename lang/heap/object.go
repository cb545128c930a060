package heap

// ObjKind is the type tag every heap object header carries, per spec.md
// §3's fixed variant list.
type ObjKind uint8

const (
	KindString ObjKind = iota
	KindFunction
	KindNativeFn
	KindClosure
	KindUpvalue
	KindArray
	KindClass
	KindInstance
	KindBoundMethod
	KindFile
	KindMutex
	KindFuture
)

// Object is implemented by every heap-allocated variant. size/mark/rewrite
// are the three operations the collector drives; the embedded header's
// isMarked/forwardAddr/setForward carry the mark bit and the planned
// post-compaction address during plan/rewrite/compact.
//
// This module represents "address" as a slice index into the Heap's object
// table rather than a raw byte offset: Go has no pointer arithmetic over a
// byte block the way the original C++ collector does, so the Lisp-2
// algorithm's invariants (forwarding pointer, monotonic compaction order,
// interior-pointer rewriting) are expressed over indices into a slice of
// Object instead of bytes in an arena. The phase structure and every
// invariant in spec.md §4.5 carry over unchanged; only the unit of address
// changes.
type Object interface {
	String() string
	Kind() ObjKind

	// size reports how many live-size units this object counts as when
	// deciding whether the heap must grow (Plan, spec.md step 3).
	size() int
	// mark pushes every heap reference this object holds onto the
	// collector's mark stack.
	mark(h *Heap)
	// rewrite updates every heap reference this object holds to its
	// referent's forwarding address, once every live object's forwarding
	// pointer has been assigned (Rewrite, spec.md step 4).
	rewrite(h *Heap)
}

// header is embedded by every concrete Object and carries the forwarding
// pointer / liveness bit the collector manipulates. marked is false outside
// a collection (spec.md: "forwarding pointer is null"); Mark sets it true
// the moment an object is first reached, before its planned address is
// known; Plan then fills in forward; Compact/Resume clear marked again.
//
// A bool+int pair is used instead of a single sentinel-valued int so a
// freshly-allocated object (Go's zero value, marked=false) is
// indistinguishable from "swept clean after a prior cycle" - there is no
// address value that would need to be reserved as a magic "not yet
// assigned" marker.
type header struct {
	marked  bool
	forward int
}

func (h *header) forwardAddr() int { return h.forward }
func (h *header) setForward(a int) { h.forward = a }
func (h *header) isMarked() bool   { return h.marked }
func (h *header) markSelf()        { h.marked = true }
func (h *header) clearForward()    { h.marked = false; h.forward = 0 }

// forwarding is the header's method set, satisfied automatically by every
// Object since each embeds header by value. The collector type-asserts to
// it rather than widening the public Object interface with bookkeeping no
// caller outside this package should touch.
type forwarding interface {
	forwardAddr() int
	setForward(int)
	isMarked() bool
	markSelf()
	clearForward()
}
