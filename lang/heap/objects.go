package heap

import (
	"fmt"
	"sync"

	"github.com/dolthub/swiss"
	"github.com/holoscript/holo/lang/compiler"
)

// String is immutable and globally interned: two strings with identical
// content are the same heap object (spec.md §3/§4.4). hash is computed once
// at creation (FNV-1a over the payload bytes) and reused by the intern
// table's probing.
type String struct {
	header
	Value string
	hash  uint64
}

var _ Object = (*String)(nil)

func (s *String) String() string { return s.Value }
func (s *String) Kind() ObjKind  { return KindString }
func (s *String) size() int      { return 1 }
func (s *String) mark(h *Heap)   {}
func (s *String) rewrite(h *Heap) {}

// Function is the compile-time product a Closure wraps: it owns a Chunk
// (code + constants + line table, built by lang/compiler) and an optional
// name. Arity and upvalue count are fixed once compiled.
type Function struct {
	header
	Proto *compiler.FunctionProto
}

var _ Object = (*Function)(nil)

func (f *Function) String() string {
	name := f.Proto.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("<function %s>", name)
}
func (f *Function) Kind() ObjKind { return KindFunction }
func (f *Function) Arity() int    { return f.Proto.Arity }
func (f *Function) size() int     { return 1 }

// mark walks the function's own constant pool for nested *compiler.
// FunctionProto entries is unnecessary: those become heap Functions lazily,
// the first time their enclosing closure instruction runs, so a Function
// object has no heap-resident children of its own.
func (f *Function) mark(h *Heap)    {}
func (f *Function) rewrite(h *Heap) {}

// NativeFn is a function implemented in Go and exposed to the source
// language, with the variadic arity convention (-1) spec.md §4.3 allows.
type NativeFn struct {
	header
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

var _ Object = (*NativeFn)(nil)

func (n *NativeFn) String() string  { return fmt.Sprintf("<native %s>", n.Name) }
func (n *NativeFn) Kind() ObjKind   { return KindNativeFn }
func (n *NativeFn) size() int       { return 1 }
func (n *NativeFn) mark(h *Heap)    {}
func (n *NativeFn) rewrite(h *Heap) {}

// Upvalue has two lifecycle states (spec.md §3): Open holds a pointer into
// another thread's value stack (Slot non-nil, pointing at a live stack
// cell); Closed owns a Value inline (Slot nil, Closed holds the copy). The
// transition happens exactly once, in Close.
type Upvalue struct {
	header
	Slot   *Value // non-nil while open
	Closed Value
}

var _ Object = (*Upvalue)(nil)

func (u *Upvalue) String() string { return "<upvalue>" }
func (u *Upvalue) Kind() ObjKind  { return KindUpvalue }
func (u *Upvalue) size() int      { return 1 }

func (u *Upvalue) Get() Value {
	if u.Slot != nil {
		return *u.Slot
	}
	return u.Closed
}

func (u *Upvalue) Set(v Value) {
	if u.Slot != nil {
		*u.Slot = v
		return
	}
	u.Closed = v
}

// Close transitions an open upvalue to closed, copying the referenced slot
// value inline and detaching from the stack.
func (u *Upvalue) Close() {
	if u.Slot == nil {
		return
	}
	u.Closed = *u.Slot
	u.Slot = nil
}

func (u *Upvalue) mark(h *Heap) {
	if u.Slot != nil {
		h.markValue(*u.Slot)
	} else {
		h.markValue(u.Closed)
	}
}

func (u *Upvalue) rewrite(h *Heap) {
	if u.Slot == nil {
		u.Closed = h.rewriteValue(u.Closed)
	}
	// An open upvalue's Slot points into a thread's stack, which the
	// collector already rewrites in place as a root; nothing further to do.
}

// Closure references exactly one Function and owns a fixed-size vector of
// Upvalue references equal to the function's declared upvalue count
// (spec.md §3).
type Closure struct {
	header
	Fn       *Function
	Upvalues []*Upvalue
}

var _ Object = (*Closure)(nil)

func (c *Closure) String() string { return c.Fn.String() }
func (c *Closure) Kind() ObjKind  { return KindClosure }
func (c *Closure) size() int      { return 1 }

func (c *Closure) mark(h *Heap) {
	h.markObj(c.Fn)
	for _, u := range c.Upvalues {
		h.markObj(u)
	}
}

func (c *Closure) rewrite(h *Heap) {
	c.Fn = h.rewriteObj(c.Fn).(*Function)
	for i, u := range c.Upvalues {
		c.Upvalues[i] = h.rewriteObj(u).(*Upvalue)
	}
}

// Array is a dense sequence of Values. hasPointers caches whether any slot
// is a heap reference, so the collector can skip scanning arrays of pure
// numbers/bools/nil (spec.md §3, §4.5 invariants).
type Array struct {
	header
	Elems       []Value
	hasPointers bool
}

var _ Object = (*Array)(nil)

func NewArray(elems []Value) *Array {
	a := &Array{Elems: elems}
	a.recomputeHasPointers()
	return a
}

func (a *Array) String() string { return fmt.Sprintf("<array len=%d>", len(a.Elems)) }
func (a *Array) Kind() ObjKind  { return KindArray }
func (a *Array) Len() int       { return len(a.Elems) }
func (a *Array) size() int      { return 1 + len(a.Elems) }

func (a *Array) recomputeHasPointers() {
	a.hasPointers = false
	for _, v := range a.Elems {
		if v.IsObj() {
			a.hasPointers = true
			return
		}
	}
}

// Push appends v, updating the heap-pointer-slot cache.
func (a *Array) Push(v Value) {
	a.Elems = append(a.Elems, v)
	if v.IsObj() {
		a.hasPointers = true
	}
}

// Set overwrites slot i, which may turn a previously-pointer-free array
// into one requiring scanning.
func (a *Array) Set(i int, v Value) {
	a.Elems[i] = v
	if v.IsObj() {
		a.hasPointers = true
	}
}

func (a *Array) mark(h *Heap) {
	if !a.hasPointers {
		return
	}
	for _, v := range a.Elems {
		h.markValue(v)
	}
}

func (a *Array) rewrite(h *Heap) {
	if !a.hasPointers {
		return
	}
	for i, v := range a.Elems {
		a.Elems[i] = h.rewriteValue(v)
	}
	a.recomputeHasPointers()
}

// Class holds a string name plus a mapping from method name to Closure
// value. Copy-down inheritance (spec.md §3): Inherit copies every entry
// from parent into this class's table at the moment it runs, so the
// runtime never walks a parent chain afterward. Methods is a swiss-table
// map rather than a bare Go map.
type Class struct {
	header
	Name    string
	Methods *swiss.Map[string, *Closure]
}

var _ Object = (*Class)(nil)

func NewClass(name string) *Class {
	return &Class{Name: name, Methods: swiss.NewMap[string, *Closure](8)}
}

func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }
func (c *Class) Kind() ObjKind  { return KindClass }
func (c *Class) size() int      { return 1 + c.Methods.Count() }

// Inherit copies every method from parent into c, per spec.md's copy-down
// model; subclass method declarations that follow overwrite these entries.
func (c *Class) Inherit(parent *Class) {
	parent.Methods.Iter(func(name string, fn *Closure) bool {
		c.Methods.Put(name, fn)
		return false
	})
}

func (c *Class) mark(h *Heap) {
	c.Methods.Iter(func(_ string, m *Closure) bool {
		h.markObj(m)
		return false
	})
}

func (c *Class) rewrite(h *Heap) {
	c.Methods.Iter(func(name string, m *Closure) bool {
		c.Methods.Put(name, h.rewriteObj(m).(*Closure))
		return false
	})
}

// Instance references a Class (nil means the value is a struct literal, not
// a class instance - structs and instances share this runtime shape per
// spec.md §3) and owns a mapping from field name to Value, also backed by
// swiss rather than a bare Go map.
type Instance struct {
	header
	Class  *Class // nil for struct literals
	Fields *swiss.Map[string, Value]
}

var _ Object = (*Instance)(nil)

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: swiss.NewMap[string, Value](8)}
}

func (i *Instance) String() string {
	if i.Class != nil {
		return fmt.Sprintf("<instance of %s>", i.Class.Name)
	}
	return "<struct>"
}
func (i *Instance) Kind() ObjKind { return KindInstance }
func (i *Instance) size() int     { return 1 + i.Fields.Count() }

func (i *Instance) mark(h *Heap) {
	if i.Class != nil {
		h.markObj(i.Class)
	}
	i.Fields.Iter(func(_ string, v Value) bool {
		h.markValue(v)
		return false
	})
}

func (i *Instance) rewrite(h *Heap) {
	if i.Class != nil {
		i.Class = h.rewriteObj(i.Class).(*Class)
	}
	i.Fields.Iter(func(name string, v Value) bool {
		i.Fields.Put(name, h.rewriteValue(v))
		return false
	})
}

// BoundMethod is a receiver Value plus a Closure; it keeps the receiver
// alive as long as the method value exists (spec.md §3). invoke/
// super-invoke bypass allocating one of these on the common call path.
type BoundMethod struct {
	header
	Receiver Value
	Method   *Closure
}

var _ Object = (*BoundMethod)(nil)

func (b *BoundMethod) String() string { return b.Method.String() }
func (b *BoundMethod) Kind() ObjKind  { return KindBoundMethod }
func (b *BoundMethod) size() int      { return 1 }

func (b *BoundMethod) mark(h *Heap) {
	h.markValue(b.Receiver)
	h.markObj(b.Method)
}

func (b *BoundMethod) rewrite(h *Heap) {
	b.Receiver = h.rewriteValue(b.Receiver)
	b.Method = h.rewriteObj(b.Method).(*Closure)
}

// File is an opened source file handle exposed to the source language.
type File struct {
	header
	Name string
}

var _ Object = (*File)(nil)

func (f *File) String() string  { return fmt.Sprintf("<file %s>", f.Name) }
func (f *File) Kind() ObjKind   { return KindFile }
func (f *File) size() int       { return 1 }
func (f *File) mark(h *Heap)    {}
func (f *File) rewrite(h *Heap) {}

// Mutex is a language-level mutual-exclusion object (out of scope for the
// core concurrency model beyond existing as a value, per spec.md §5).
type Mutex struct {
	header
	mu sync.Mutex
}

var _ Object = (*Mutex)(nil)

func (m *Mutex) String() string  { return "<mutex>" }
func (m *Mutex) Kind() ObjKind   { return KindMutex }
func (m *Mutex) size() int       { return 1 }
func (m *Mutex) mark(h *Heap)    {}
func (m *Mutex) rewrite(h *Heap) {}
func (m *Mutex) Lock()           { m.mu.Lock() }
func (m *Mutex) Unlock()         { m.mu.Unlock() }

// Future is the return slot and handle for a child thread's top-level call
// (spec.md §3, §4.3). Done/Result are set exactly once, by the child
// thread, before it signals completion; Await blocks until that happens.
type Future struct {
	header
	done   chan struct{}
	result Value
	err    error
}

var _ Object = (*Future)(nil)

func NewFuture() *Future { return &Future{done: make(chan struct{})} }

func (f *Future) String() string { return "<future>" }
func (f *Future) Kind() ObjKind  { return KindFuture }
func (f *Future) size() int      { return 1 }

// Resolve stores the child thread's result and wakes any waiter. It must be
// called exactly once.
func (f *Future) Resolve(v Value, err error) {
	f.result = v
	f.err = err
	close(f.done)
}

// Await blocks until Resolve has run and returns the child thread's result.
func (f *Future) Await() (Value, error) {
	<-f.done
	return f.result, f.err
}

func (f *Future) mark(h *Heap) {
	select {
	case <-f.done:
		h.markValue(f.result)
	default:
	}
}

func (f *Future) rewrite(h *Heap) {
	select {
	case <-f.done:
		f.result = h.rewriteValue(f.result)
	default:
	}
}
