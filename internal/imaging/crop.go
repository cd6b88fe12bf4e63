package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

// CropResult contains one cropped detection.
type CropResult struct {
	Index       int           `json:"index"`
	Box         detection.Box `json:"box"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	ImageBase64 string        `json:"image_base64"`
	MimeType    string        `json:"mime_type"`
}

// Crop extracts the region of box, grown by padding pixels on each side and
// clipped to the image, optionally scaled.
func Crop(img image.Image, box detection.Box, padding int, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()
	r := image.Rect(box.X1-padding, box.Y1-padding, box.X2+padding, box.Y2+padding).
		Add(bounds.Min).
		Intersect(bounds)
	if r.Empty() {
		return nil, fmt.Errorf("box %s outside image bounds %dx%d", box, bounds.Dx(), bounds.Dy())
	}

	cropped := imaging.Crop(img, r)

	if scale != 1.0 && scale > 0 {
		newWidth := max(int(float64(cropped.Bounds().Dx())*scale), 1)
		newHeight := max(int(float64(cropped.Bounds().Dy())*scale), 1)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return cropped, nil
}

// CropDetections crops every box out of img and encodes each crop as a
// base64 PNG. Boxes entirely outside the image are an error.
func CropDetections(img image.Image, boxes detection.DetectionSet, padding int, scale float64) ([]CropResult, error) {
	results := make([]CropResult, 0, len(boxes))
	for i, box := range boxes {
		cropped, err := Crop(img, box, padding, scale)
		if err != nil {
			return nil, fmt.Errorf("detection %d: %w", i, err)
		}

		encoded, err := encodePNGBase64(cropped)
		if err != nil {
			return nil, fmt.Errorf("detection %d: %w", i, err)
		}

		results = append(results, CropResult{
			Index:       i,
			Box:         box,
			Width:       cropped.Bounds().Dx(),
			Height:      cropped.Bounds().Dy(),
			ImageBase64: encoded,
			MimeType:    "image/png",
		})
	}
	return results, nil
}
