package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSetPosition(t *testing.T) {
	fset := NewFileSet()
	f0 := fset.AddFile("a.holo", 10)
	f0.AddLine(3)
	f0.AddLine(7)
	f1 := fset.AddFile("b.holo", 5)
	f1.AddLine(2)

	cases := []struct {
		pos  Pos
		want Position
	}{
		{f0.Pos(0), Position{"a.holo", 1, 1}},
		{f0.Pos(2), Position{"a.holo", 1, 3}},
		{f0.Pos(3), Position{"a.holo", 2, 1}},
		{f0.Pos(6), Position{"a.holo", 2, 4}},
		{f0.Pos(7), Position{"a.holo", 3, 1}},
		{f1.Pos(0), Position{"b.holo", 1, 1}},
		{f1.Pos(2), Position{"b.holo", 2, 1}},
	}
	for _, c := range cases {
		got := fset.Position(c.pos)
		require.Equal(t, c.want, got)
	}
}

func TestFileSetFile(t *testing.T) {
	fset := NewFileSet()
	f0 := fset.AddFile("a.holo", 10)
	f1 := fset.AddFile("b.holo", 5)

	require.Same(t, f0, fset.File(f0.Pos(0)))
	require.Same(t, f0, fset.File(f0.Pos(9)))
	require.Same(t, f1, fset.File(f1.Pos(0)))
	require.Nil(t, fset.File(Pos(0)))
}

func TestPositionString(t *testing.T) {
	require.Equal(t, "a.holo:2:3", Position{"a.holo", 2, 3}.String())
	require.Equal(t, "2:3", Position{"", 2, 3}.String())
}

func TestFormatPos(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("a.holo", 10)
	p := f.Pos(2)

	require.Equal(t, "a.holo:1:3", FormatPos(PosLong, f, p, true))
	require.Equal(t, "3", FormatPos(PosOffsets, nil, p, true))
}
