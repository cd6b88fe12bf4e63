package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

func rgbaAt(img *image.NRGBA, x, y int) color.RGBA {
	c := img.NRGBAAt(x, y)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func TestDrawDetections(t *testing.T) {
	frame := createInMemoryImage(60, 60, color.Black)
	boxes := detection.DetectionSet{detection.NewBox(10, 10, 30, 20)}

	out := DrawDetections(frame, boxes, OverlayOptions{})
	require.Equal(t, image.Rect(0, 0, 60, 60), out.Bounds())

	red := color.RGBA{255, 0, 0, 255}
	black := color.RGBA{0, 0, 0, 255}
	assert.Equal(t, red, rgbaAt(out, 10, 10), "top-left corner")
	assert.Equal(t, red, rgbaAt(out, 29, 19), "bottom-right corner is inclusive of x2-1, y2-1")
	assert.Equal(t, red, rgbaAt(out, 20, 10))
	assert.Equal(t, red, rgbaAt(out, 10, 15))
	assert.Equal(t, black, rgbaAt(out, 20, 15), "inside stays untouched")
	assert.Equal(t, black, rgbaAt(out, 30, 20), "x2, y2 are exclusive")

	// Source frame is not modified.
	assert.Equal(t, black, frame.RGBAAt(10, 10))
}

func TestDrawDetectionsThicknessAndColor(t *testing.T) {
	frame := createInMemoryImage(40, 40, color.Black)
	boxes := detection.DetectionSet{detection.NewBox(5, 5, 35, 35)}

	out := DrawDetections(frame, boxes, OverlayOptions{Color: "#00FF00", Thickness: 3})
	green := color.RGBA{0, 255, 0, 255}
	assert.Equal(t, green, rgbaAt(out, 5, 20))
	assert.Equal(t, green, rgbaAt(out, 7, 20))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgbaAt(out, 8, 20))
}

func TestDrawDetectionsInvalidColorFallsBack(t *testing.T) {
	frame := createInMemoryImage(20, 20, color.Black)
	out := DrawDetections(frame, detection.DetectionSet{detection.NewBox(0, 0, 10, 10)}, OverlayOptions{Color: "nope"})
	assert.Equal(t, DefaultBoxColor, rgbaAt(out, 0, 0))
}

func TestDrawDetectionsDistinct(t *testing.T) {
	frame := createInMemoryImage(100, 40, color.Black)
	boxes := detection.DetectionSet{
		detection.NewBox(0, 0, 20, 20),
		detection.NewBox(50, 0, 70, 20),
	}

	out := DrawDetections(frame, boxes, OverlayOptions{Distinct: true})
	assert.NotEqual(t, rgbaAt(out, 0, 10), rgbaAt(out, 50, 10))
}

func TestDrawDetectionsClipsToImage(t *testing.T) {
	frame := createInMemoryImage(20, 20, color.Black)
	boxes := detection.DetectionSet{
		detection.NewBox(10, 10, 40, 40),
		detection.NewBox(100, 100, 120, 120),
	}

	out := DrawDetections(frame, boxes, OverlayOptions{Numbered: true})
	assert.Equal(t, DefaultBoxColor, rgbaAt(out, 19, 15))
}

func TestDrawLabel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 255, 255}

	drawLabel(img, 1, 1, "10", fg, bg)
	// Top row of '1' is "010"; its middle pixel is foreground.
	assert.Equal(t, fg, rgbaAt(img, 2, 1))
	assert.Equal(t, bg, rgbaAt(img, 1, 1))

	// Drawing past the edge must not panic.
	drawLabel(img, 18, 8, "99", fg, bg)
}

func TestRenderOverlay(t *testing.T) {
	frame := createInMemoryImage(32, 24, color.Black)
	boxes := detection.DetectionSet{detection.NewBox(2, 2, 12, 12)}

	res, err := RenderOverlay(frame, boxes, OverlayOptions{})
	require.NoError(t, err)
	assert.Equal(t, 32, res.Width)
	assert.Equal(t, 24, res.Height)
	assert.Equal(t, 1, res.BoxCount)
	assert.Equal(t, "image/png", res.MimeType)

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	require.NoError(t, err)
	decoded, err := png.Decode(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 24), decoded.Bounds())
}

func TestEncodeOverlayComposed(t *testing.T) {
	frame := createInMemoryImage(32, 24, color.Black)
	composed := AddCaption(SideBySide(frame, frame), "cam")

	res, err := EncodeOverlay(composed, 3)
	require.NoError(t, err)
	assert.Equal(t, 64, res.Width)
	assert.Equal(t, 24+CaptionStripHeight, res.Height)
	assert.Equal(t, 3, res.BoxCount)
}
