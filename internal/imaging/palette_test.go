package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00ff00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.RGBA{0, 0, 255, 128}, false},
		{"", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
		{"#FF0000ZZ", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#ff0000", colorHex(color.RGBA{255, 0, 0, 255}))
	assert.Equal(t, "#102030", colorHex(color.RGBA{16, 32, 48, 255}))
}

func TestDistinctColors(t *testing.T) {
	assert.Nil(t, DistinctColors(0))

	colors := DistinctColors(6)
	require.Len(t, colors, 6)
	assert.Equal(t, uint8(255), colors[0].R, "first hue is red")

	seen := make(map[color.RGBA]bool)
	for _, c := range colors {
		assert.Equal(t, uint8(255), c.A)
		assert.False(t, seen[c], "duplicate color %v", c)
		seen[c] = true
	}
}
