package detection

import (
	"image"
	"sort"
)

// Contour is the outer border of one connected foreground region.
type Contour struct {
	// Points are the region's pixels that touch the outside background,
	// in raster order.
	Points []image.Point `json:"-"`

	// Bounds is the axis-aligned bounding rectangle of the region
	// (Max is exclusive).
	Bounds image.Rectangle `json:"bounds"`

	// Pixels is the number of foreground pixels in the region.
	Pixels int `json:"pixels"`
}

// FindExternalContours returns the outermost contours of a mask.
//
// Foreground regions are 8-connected and background regions 4-connected.
// Only regions that border the background surrounding the whole image are
// reported; a region sitting inside a hole of another region is skipped,
// as are the holes themselves.
//
// Contours are returned in raster order of their first pixel (top-to-bottom,
// then left-to-right), so the result is deterministic for a given mask.
//
// # Errors
//
//   - Returns ErrInvalidMask if the mask fails Validate
func FindExternalContours(m *Mask) ([]Contour, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	outside := markOutside(m)
	visited := make([]bool, len(m.Pix))
	contours := make([]Contour, 0)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := y*m.Width + x
			if m.Pix[i] == 0 || visited[i] {
				continue
			}
			c, external := traceRegion(m, outside, visited, x, y)
			if external {
				contours = append(contours, c)
			}
		}
	}

	return contours, nil
}

// ExtractBoxes converts the external contours of a mask into boxes.
//
// A contour's bounding rectangle (x, y, w, h) becomes a box only when both
// dimensions are positive and w*h is strictly greater than minArea. The
// result is empty, never nil, when nothing qualifies.
func ExtractBoxes(m *Mask, minArea int) (DetectionSet, error) {
	contours, err := FindExternalContours(m)
	if err != nil {
		return nil, err
	}
	return boxesFromContours(contours, minArea), nil
}

func boxesFromContours(contours []Contour, minArea int) DetectionSet {
	boxes := make(DetectionSet, 0, len(contours))
	for _, c := range contours {
		r := c.Bounds
		box, ok := BoxFromRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy())
		if !ok {
			continue
		}
		if box.Area > minArea {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

// markOutside flags every background pixel 4-connected to the area around
// the mask. The returned grid is padded by one pixel on each side.
func markOutside(m *Mask) []bool {
	pw, ph := m.Width+2, m.Height+2
	outside := make([]bool, pw*ph)
	isBackground := func(px, py int) bool {
		return !m.Foreground(px-1, py-1)
	}

	stack := []image.Point{{X: 0, Y: 0}}
	outside[0] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range fourNeighbors {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= pw || ny >= ph {
				continue
			}
			j := ny*pw + nx
			if outside[j] || !isBackground(nx, ny) {
				continue
			}
			outside[j] = true
			stack = append(stack, image.Point{X: nx, Y: ny})
		}
	}
	return outside
}

// traceRegion flood-fills the 8-connected region starting at (sx, sy),
// marking it visited. It reports whether the region touches the outside
// background and, if so, its contour.
func traceRegion(m *Mask, outside, visited []bool, sx, sy int) (Contour, bool) {
	pw := m.Width + 2
	minX, minY, maxX, maxY := sx, sy, sx, sy
	border := make([]image.Point, 0)
	pixels := 0

	stack := []image.Point{{X: sx, Y: sy}}
	visited[sy*m.Width+sx] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pixels++

		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)

		for _, d := range fourNeighbors {
			if outside[(p.Y+1+d.Y)*pw+(p.X+1+d.X)] {
				border = append(border, p)
				break
			}
		}

		for _, d := range eightNeighbors {
			nx, ny := p.X+d.X, p.Y+d.Y
			if !m.Foreground(nx, ny) {
				continue
			}
			j := ny*m.Width + nx
			if visited[j] {
				continue
			}
			visited[j] = true
			stack = append(stack, image.Point{X: nx, Y: ny})
		}
	}

	if len(border) == 0 {
		return Contour{}, false
	}

	sort.Slice(border, func(i, j int) bool {
		if border[i].Y != border[j].Y {
			return border[i].Y < border[j].Y
		}
		return border[i].X < border[j].X
	})

	return Contour{
		Points: border,
		Bounds: image.Rect(minX, minY, maxX+1, maxY+1),
		Pixels: pixels,
	}, true
}

var fourNeighbors = []image.Point{{X: 0, Y: -1}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

var eightNeighbors = []image.Point{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}
