package detection

import (
	"fmt"
	"image"
	"math"
)

// Box is an axis-aligned bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive). Area is always (X2-X1)*(Y2-Y1); constructors and Union
// keep it in sync with the corners.
type Box struct {
	X1   int `json:"x1"`
	Y1   int `json:"y1"`
	X2   int `json:"x2"`
	Y2   int `json:"y2"`
	Area int `json:"area"`
}

// DetectionSet is the ordered list of boxes found in one frame.
type DetectionSet []Box

// NewBox builds a box from its corners and computes its area.
func NewBox(x1, y1, x2, y2 int) Box {
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2, Area: (x2 - x1) * (y2 - y1)}
}

// BoxFromRect converts a (x, y, width, height) rectangle to a corner-pair box.
//
// Returns false when width or height is not positive; such rectangles never
// enter a DetectionSet.
func BoxFromRect(x, y, w, h int) (Box, bool) {
	if w <= 0 || h <= 0 {
		return Box{}, false
	}
	return NewBox(x, y, x+w, y+h), true
}

// Width returns X2 - X1.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Center returns the box center. Coordinates may be fractional.
func (b Box) Center() (float64, float64) {
	return float64(b.X1+b.X2) / 2, float64(b.Y1+b.Y2) / 2
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Valid reports whether the corners are ordered and Area matches them.
func (b Box) Valid() bool {
	return b.X2 >= b.X1 && b.Y2 >= b.Y1 && b.Area == (b.X2-b.X1)*(b.Y2-b.Y1)
}

// ContainedIn reports whether b lies entirely within other. Edges may touch.
func (b Box) ContainedIn(other Box) bool {
	return b.X1 >= other.X1 &&
		b.Y1 >= other.Y1 &&
		b.X2 <= other.X2 &&
		b.Y2 <= other.Y2
}

// Union returns the smallest box enclosing both b and other.
func (b Box) Union(other Box) Box {
	return NewBox(
		min(b.X1, other.X1),
		min(b.Y1, other.Y1),
		max(b.X2, other.X2),
		max(b.Y2, other.Y2),
	)
}

// Intersection returns the overlapping area of b and other, or 0.
func (b Box) Intersection(other Box) int {
	w := min(b.X2, other.X2) - max(b.X1, other.X1)
	h := min(b.Y2, other.Y2) - max(b.Y1, other.Y1)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// OverlapRatio returns intersection over union using the stored areas.
//
// A non-positive union yields 0, so degenerate boxes never suppress anything.
func (b Box) OverlapRatio(other Box) float64 {
	inter := b.Intersection(other)
	union := b.Area + other.Area - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// CenterDistance returns the Euclidean distance between the two box centers.
func (b Box) CenterDistance(other Box) float64 {
	cx1, cy1 := b.Center()
	cx2, cy2 := other.Center()
	return math.Hypot(cx1-cx2, cy1-cy2)
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d) area=%d", b.X1, b.Y1, b.X2, b.Y2, b.Area)
}
