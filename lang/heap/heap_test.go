package heap_test

import (
	"testing"

	"github.com/holoscript/holo/lang/heap"
	"github.com/stretchr/testify/require"
)

func TestInternStringIdentity(t *testing.T) {
	h := heap.New()
	a := h.InternString("hello")
	b := h.InternString("hello")
	require.Same(t, a, b)

	c := h.InternString("world")
	require.NotSame(t, a, c)
}

func TestValueEqualityEpsilonAndIdentity(t *testing.T) {
	h := heap.New()
	require.True(t, heap.Equal(heap.Num(1.0), heap.Num(1.0+1e-12)))
	require.False(t, heap.Equal(heap.Num(1.0), heap.Num(1.1)))

	s1 := h.InternString("x")
	s2 := h.InternString("x")
	require.True(t, heap.Equal(heap.Obj(s1), heap.Obj(s2)))

	require.True(t, heap.Nil.IsNil())
	require.False(t, heap.Bool(true).Truthy() == heap.Bool(false).Truthy())
}

func TestArrayLenCountsPushedElements(t *testing.T) {
	a := heap.NewArray([]heap.Value{heap.Num(1), heap.Num(2)})
	require.Equal(t, 2, a.Len())

	h := heap.New()
	s := h.InternString("x")
	a.Push(heap.Obj(s))
	require.Equal(t, 3, a.Len())
}

// fakeRoots lets the test control exactly which values the collector sees
// as reachable from VM state, without depending on lang/machine (which
// would create an import cycle back into this package).
type fakeRoots struct {
	values []heap.Value
}

func (r *fakeRoots) EachRoot(fn func(heap.Value)) {
	for _, v := range r.values {
		fn(v)
	}
}

func (r *fakeRoots) RewriteRoots(rewrite func(heap.Value) heap.Value) {
	for i, v := range r.values {
		r.values[i] = rewrite(v)
	}
}

func TestCollectDropsUnreachableKeepsReachable(t *testing.T) {
	h := heap.New()
	kept := h.Alloc(heap.NewClass("Kept")).(*heap.Class)
	h.Alloc(heap.NewClass("Dropped"))

	roots := &fakeRoots{values: []heap.Value{heap.Obj(kept)}}
	h.SetRoots(roots)

	require.Equal(t, 2, h.LiveCount())
	h.Collect()
	require.Equal(t, 1, h.LiveCount())
	require.False(t, h.Paused())
}

func TestCollectPreservesStringIdentityAcrossCompaction(t *testing.T) {
	h := heap.New()
	s := h.InternString("alive")
	roots := &fakeRoots{values: []heap.Value{heap.Obj(s)}}
	h.SetRoots(roots)

	h.Collect()

	s2 := h.InternString("alive")
	require.Same(t, s, s2)
	require.True(t, heap.Equal(heap.Obj(s), heap.Obj(s2)))
}
