package detection

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidMask is returned when a mask is not a well-formed 2D grid.
var ErrInvalidMask = errors.New("invalid mask")

// Mask is a single-channel foreground mask for one frame.
//
// Pix holds one byte per pixel in row-major order. Any non-zero value is
// foreground; predictors normally emit 0 and 255. The pipeline only reads a
// Mask and never modifies it.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask returns an all-background mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// MaskFromGray copies a grayscale image into a mask. The image origin is
// shifted to (0, 0).
func MaskFromGray(img *image.Gray) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(m.Pix[y*m.Width:(y+1)*m.Width], img.Pix[off:off+m.Width])
	}
	return m
}

// Validate checks that the mask dimensions are positive and match Pix.
func (m *Mask) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil mask", ErrInvalidMask)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidMask, m.Width, m.Height)
	}
	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidMask, len(m.Pix), m.Width, m.Height)
	}
	return nil
}

// Foreground reports whether (x, y) is a foreground pixel. Coordinates
// outside the mask are background.
func (m *Mask) Foreground(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Fill sets every pixel inside r (clipped to the mask) to v.
func (m *Mask) Fill(r image.Rectangle, v uint8) {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.Pix[y*m.Width+x] = v
		}
	}
}

// Gray returns the mask as a grayscale image.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(img.Pix, m.Pix)
	return img
}

// CountForeground returns the number of foreground pixels.
func (m *Mask) CountForeground() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}
