package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

// OverlayOptions controls how detections are drawn on a frame.
type OverlayOptions struct {
	// Color is the rectangle color as "#RRGGBB" or "#RRGGBBAA".
	// Empty or unparsable means DefaultBoxColor.
	Color string

	// Thickness is the outline width in pixels, drawn inward. Minimum 1.
	Thickness int

	// Numbered draws each box's index in its top-left corner.
	Numbered bool

	// Distinct gives each box its own color from DistinctColors and
	// ignores Color.
	Distinct bool
}

// OverlayResult contains a frame with detections drawn on it.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	BoxCount    int    `json:"box_count"`
}

// DrawDetections returns a copy of img with a rectangle outline for every
// box. The returned image's origin is (0, 0); boxes are in the same
// coordinates as the mask they were extracted from.
func DrawDetections(img image.Image, boxes detection.DetectionSet, opts OverlayOptions) *image.NRGBA {
	dst := imaging.Clone(img)

	thickness := max(opts.Thickness, 1)
	base, err := parseHexColor(opts.Color)
	if err != nil {
		base = DefaultBoxColor
	}

	var palette []color.RGBA
	if opts.Distinct {
		palette = DistinctColors(len(boxes))
	}

	for i, b := range boxes {
		c := base
		if palette != nil {
			c = palette[i]
		}
		drawRect(dst, b.Rect(), thickness, c)
		if opts.Numbered {
			drawLabel(dst, b.X1+1, b.Y1+1, strconv.Itoa(i), color.RGBA{255, 255, 255, 255}, c)
		}
	}

	return dst
}

// RenderOverlay draws boxes on img and encodes the result as base64 PNG.
func RenderOverlay(img image.Image, boxes detection.DetectionSet, opts OverlayOptions) (*OverlayResult, error) {
	return EncodeOverlay(DrawDetections(img, boxes, opts), len(boxes))
}

// EncodeOverlay encodes an already composed frame, such as the output of
// SideBySide or AddCaption, as base64 PNG.
func EncodeOverlay(img image.Image, boxCount int) (*OverlayResult, error) {
	encoded, err := encodePNGBase64(img)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		BoxCount:    boxCount,
	}, nil
}

// drawRect draws the outline of r, clipped to img, growing inward.
func drawRect(img *image.NRGBA, r image.Rectangle, thickness int, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		x1, y1 := r.Min.X+t, r.Min.Y+t
		x2, y2 := r.Max.X-1-t, r.Max.Y-1-t
		if x1 > x2 || y1 > y2 {
			return
		}
		for x := x1; x <= x2; x++ {
			img.Set(x, y1, c)
			img.Set(x, y2, c)
		}
		for y := y1; y <= y2; y++ {
			img.Set(x1, y, c)
			img.Set(x2, y, c)
		}
	}
}

// drawLabel draws a small digit label at the given position using a 3x5
// pixel font.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 6

	in := func(px, py int) bool {
		return px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y
	}

	for dy := 0; dy < labelHeight; dy++ {
		for dx := 0; dx < labelWidth; dx++ {
			if in(x+dx, y+dy) {
				img.Set(x+dx, y+dy, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' && in(cx+col, y+row) {
					img.Set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}

func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
