package detection

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBox(t *testing.T) {
	b := NewBox(10, 20, 40, 30)
	assert.Equal(t, 300, b.Area)
	assert.Equal(t, 30, b.Width())
	assert.Equal(t, 10, b.Height())
	assert.True(t, b.Valid())
	assert.Equal(t, image.Rect(10, 20, 40, 30), b.Rect())
}

func TestBoxFromRect(t *testing.T) {
	b, ok := BoxFromRect(5, 6, 20, 10)
	require.True(t, ok)
	assert.Equal(t, Box{X1: 5, Y1: 6, X2: 25, Y2: 16, Area: 200}, b)

	for _, tc := range []struct{ w, h int }{{0, 10}, {10, 0}, {-3, 10}, {10, -1}} {
		_, ok := BoxFromRect(0, 0, tc.w, tc.h)
		assert.False(t, ok, "w=%d h=%d", tc.w, tc.h)
	}
}

func TestBoxValid(t *testing.T) {
	assert.False(t, Box{X1: 0, Y1: 0, X2: 10, Y2: 10, Area: 99}.Valid())
	assert.False(t, Box{X1: 10, Y1: 0, X2: 0, Y2: 10, Area: -100}.Valid())
}

func TestBoxCenter(t *testing.T) {
	cx, cy := NewBox(0, 0, 5, 4).Center()
	assert.Equal(t, 2.5, cx)
	assert.Equal(t, 2.0, cy)
}

func TestBoxUnion(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(20, 5, 30, 40)

	u := a.Union(b)
	assert.Equal(t, NewBox(0, 0, 30, 40), u)
	assert.Equal(t, 1200, u.Area)
	assert.Equal(t, u, b.Union(a))
}

func TestBoxIntersection(t *testing.T) {
	a := NewBox(0, 0, 10, 10)

	assert.Equal(t, 25, a.Intersection(NewBox(5, 5, 15, 15)))
	assert.Equal(t, 0, a.Intersection(NewBox(10, 0, 20, 10)), "touching edges do not overlap")
	assert.Equal(t, 0, a.Intersection(NewBox(50, 50, 60, 60)))
}

func TestBoxOverlapRatio(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(0, 5, 10, 15)
	assert.InDelta(t, 50.0/150.0, a.OverlapRatio(b), 1e-12)
	assert.Equal(t, a.OverlapRatio(b), b.OverlapRatio(a))

	// Zero-area boxes have zero union and never count as overlapping.
	z := Box{X1: 3, Y1: 3, X2: 3, Y2: 3}
	assert.Equal(t, 0.0, z.OverlapRatio(z))
}

func TestBoxContainedIn(t *testing.T) {
	outer := NewBox(0, 0, 50, 50)

	assert.True(t, NewBox(10, 10, 20, 20).ContainedIn(outer))
	assert.True(t, NewBox(0, 0, 50, 50).ContainedIn(outer))
	assert.True(t, NewBox(0, 0, 10, 50).ContainedIn(outer), "shared edges count as inside")
	assert.False(t, NewBox(40, 40, 60, 60).ContainedIn(outer))
	assert.False(t, outer.ContainedIn(NewBox(10, 10, 20, 20)))
}

func TestBoxCenterDistance(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(30, 40, 40, 50)
	assert.Equal(t, 50.0, a.CenterDistance(b))
	assert.Equal(t, 0.0, a.CenterDistance(a))
}

func TestBoxString(t *testing.T) {
	assert.Equal(t, "(1,2)-(3,4) area=4", NewBox(1, 2, 3, 4).String())
}
