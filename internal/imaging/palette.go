package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultBoxColor is the rectangle color used when none is configured.
var DefaultBoxColor = color.RGBA{R: 255, A: 255}

// parseHexColor parses "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional.
func parseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")

	var alpha uint8 = 255
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid alpha in color %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", hex)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// colorHex formats c as "#rrggbb".
func colorHex(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// DistinctColors returns n saturated colors with evenly spaced hues,
// starting at red. Used to tell boxes apart in an overlay.
func DistinctColors(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}
	colors := make([]color.RGBA, n)
	for i := range colors {
		h := 360 * float64(i) / float64(n)
		r, g, b := colorful.Hsv(h, 0.85, 1.0).Clamped().RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}
