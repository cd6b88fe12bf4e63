package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

// createQuadrantImage creates an image with red top-left, green top-right,
// blue bottom-left and white bottom-right quadrants.
func createQuadrantImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createQuadrantImage(100, 100)

	out, err := Crop(img, detection.NewBox(60, 10, 80, 30), 0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, rgbaAt(out, 5, 5))
}

func TestCropPaddingIsClipped(t *testing.T) {
	img := createQuadrantImage(100, 100)

	out, err := Crop(img, detection.NewBox(0, 0, 20, 20), 5, 1.0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 25, 25), out.Bounds())
}

func TestCropScale(t *testing.T) {
	img := createQuadrantImage(100, 100)

	out, err := Crop(img, detection.NewBox(0, 0, 50, 50), 0, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 100, out.Bounds().Dx())

	out, err = Crop(img, detection.NewBox(0, 0, 50, 50), 0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 25, out.Bounds().Dx())
}

func TestCropOutsideImage(t *testing.T) {
	_, err := Crop(createQuadrantImage(50, 50), detection.NewBox(60, 60, 80, 80), 0, 1.0)
	assert.Error(t, err)
}

func TestCropDetections(t *testing.T) {
	img := createQuadrantImage(100, 100)
	boxes := detection.DetectionSet{
		detection.NewBox(0, 0, 10, 10),
		detection.NewBox(60, 60, 90, 80),
	}

	crops, err := CropDetections(img, boxes, 0, 1.0)
	require.NoError(t, err)
	require.Len(t, crops, 2)

	assert.Equal(t, 0, crops[0].Index)
	assert.Equal(t, boxes[1], crops[1].Box)
	assert.Equal(t, 30, crops[1].Width)
	assert.Equal(t, 20, crops[1].Height)
	assert.Equal(t, "image/png", crops[1].MimeType)

	_, err = base64.StdEncoding.DecodeString(crops[0].ImageBase64)
	assert.NoError(t, err)

	_, err = CropDetections(img, detection.DetectionSet{detection.NewBox(500, 500, 510, 510)}, 0, 1.0)
	assert.ErrorContains(t, err, "detection 0")
}
