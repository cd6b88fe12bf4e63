package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

func TestBinarizeMask(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	img.SetGray(1, 1, color.Gray{Y: 255})
	img.SetGray(2, 2, color.Gray{Y: 200})
	img.SetGray(3, 3, color.Gray{Y: 40})

	m := BinarizeMask(img, MaskOptions{})
	require.NoError(t, m.Validate())
	assert.True(t, m.Foreground(1, 1))
	assert.True(t, m.Foreground(2, 2))
	assert.False(t, m.Foreground(3, 3))
	assert.Equal(t, 2, m.CountForeground())
	assert.Equal(t, uint8(255), m.Pix[1*10+1])
}

func TestBinarizeMaskLevel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.SetGray(0, 0, color.Gray{Y: 255})
	img.SetGray(1, 0, color.Gray{Y: 100})

	m := BinarizeMask(img, MaskOptions{Level: 50})
	assert.Equal(t, 2, m.CountForeground())

	m = BinarizeMask(img, MaskOptions{Level: 250})
	assert.Equal(t, 1, m.CountForeground())
}

func TestBinarizeMaskColorInput(t *testing.T) {
	img := createInMemoryImage(8, 8, color.RGBA{0, 0, 0, 255})
	img.Set(4, 4, color.RGBA{255, 255, 255, 255})

	m := BinarizeMask(img, MaskOptions{})
	assert.Equal(t, 1, m.CountForeground())
	assert.True(t, m.Foreground(4, 4))
}

func TestBinarizeMaskDilateJoinsFragments(t *testing.T) {
	// Two blocks separated by a two pixel gap.
	img := createMaskImage(40, 20, image.Rect(5, 5, 15, 15), image.Rect(17, 5, 27, 15))

	plain := BinarizeMask(img, MaskOptions{})
	contours, err := detection.FindExternalContours(plain)
	require.NoError(t, err)
	assert.Len(t, contours, 2)

	dilated := BinarizeMask(img, MaskOptions{DilateRadius: 2})
	contours, err = detection.FindExternalContours(dilated)
	require.NoError(t, err)
	assert.Len(t, contours, 1)
	assert.Greater(t, dilated.CountForeground(), plain.CountForeground())
}

func TestLoadMask(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "gt000010.png", createMaskImage(50, 40, image.Rect(10, 10, 30, 30)))

	m, err := LoadMask(NewImageCache(), path, MaskOptions{})
	require.NoError(t, err)
	assert.Equal(t, 50, m.Width)
	assert.Equal(t, 40, m.Height)
	assert.Equal(t, 400, m.CountForeground())

	boxes, err := detection.ExtractBoxes(m, 100)
	require.NoError(t, err)
	assert.Equal(t, detection.DetectionSet{detection.NewBox(10, 10, 30, 30)}, boxes)

	_, err = LoadMask(NewImageCache(), filepath.Join(dir, "missing.png"), MaskOptions{})
	assert.Error(t, err)
}
