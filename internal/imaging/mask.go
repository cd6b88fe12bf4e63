package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

// DefaultMaskLevel splits a probability mask written as 255*p at p = 0.5.
const DefaultMaskLevel = 128

// MaskOptions controls how a predictor image becomes a binary mask.
type MaskOptions struct {
	// Level is the luminance at or above which a pixel is foreground.
	// Zero means DefaultMaskLevel.
	Level uint8

	// DilateRadius grows the foreground before thresholding a second time,
	// joining fragments separated by thin gaps. Zero disables it.
	DilateRadius float64
}

// BinarizeMask thresholds a predictor output into a 0/255 detection mask.
func BinarizeMask(img image.Image, opts MaskOptions) *detection.Mask {
	level := opts.Level
	if level == 0 {
		level = DefaultMaskLevel
	}

	gray := segment.Threshold(img, level)
	if opts.DilateRadius > 0 {
		gray = segment.Threshold(effect.Dilate(gray, opts.DilateRadius), DefaultMaskLevel)
	}

	return detection.MaskFromGray(gray)
}

// LoadMask loads a mask file through the cache and binarizes it.
func LoadMask(cache *ImageCache, path string, opts MaskOptions) (*detection.Mask, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return BinarizeMask(img, opts), nil
}
