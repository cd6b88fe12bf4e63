package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSideBySide(t *testing.T) {
	left := createInMemoryImage(30, 20, color.RGBA{255, 0, 0, 255})
	right := createInMemoryImage(10, 40, color.RGBA{0, 0, 255, 255})

	out := SideBySide(left, right)
	assert.Equal(t, image.Rect(0, 0, 40, 40), out.Bounds())
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgbaAt(out, 29, 19))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgbaAt(out, 29, 20), "below the shorter image is black")
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, rgbaAt(out, 30, 39))
}

func TestAddCaption(t *testing.T) {
	frame := createInMemoryImage(200, 50, color.RGBA{0, 128, 0, 255})

	out := AddCaption(frame, "CDNet_2014 / baseline / highway")
	assert.Equal(t, image.Rect(0, 0, 200, 50+CaptionStripHeight), out.Bounds())
	assert.Equal(t, color.RGBA{0, 128, 0, 255}, rgbaAt(out, 0, CaptionStripHeight))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgbaAt(out, 0, 0))

	white := 0
	for y := 0; y < CaptionStripHeight; y++ {
		for x := 0; x < 200; x++ {
			if c := rgbaAt(out, x, y); c.R > 200 && c.G > 200 && c.B > 200 {
				white++
			}
		}
	}
	assert.Positive(t, white, "caption text should be drawn in the strip")
}

func TestAddCaptionWideText(t *testing.T) {
	frame := createInMemoryImage(20, 10, color.Black)
	out := AddCaption(frame, "a caption much wider than the frame")
	assert.Equal(t, 20, out.Bounds().Dx())
}

func TestMaskImage(t *testing.T) {
	out := MaskImage(createMaskImage(10, 10, image.Rect(0, 0, 5, 5)))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(out, 2, 2))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgbaAt(out, 7, 7))
}
