package imaging

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

// MaskStats summarizes the foreground of a mask.
type MaskStats struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	ForegroundCount int     `json:"foreground_pixels"`
	Coverage        float64 `json:"coverage"`
	Contours        int     `json:"contours"`

	// Contour pixel counts, for choosing min_area.
	MeanRegionPixels   float64 `json:"mean_region_pixels"`
	StdDevRegionPixels float64 `json:"stddev_region_pixels"`
	LargestRegion      int     `json:"largest_region_pixels"`
}

// MeasureMask reports foreground coverage and region sizes of a mask.
func MeasureMask(m *detection.Mask) (*MaskStats, error) {
	contours, err := detection.FindExternalContours(m)
	if err != nil {
		return nil, err
	}

	fg := m.CountForeground()
	s := &MaskStats{
		Width:           m.Width,
		Height:          m.Height,
		ForegroundCount: fg,
		Coverage:        round(float64(fg)/float64(m.Width*m.Height), 4),
		Contours:        len(contours),
	}

	if len(contours) > 0 {
		sizes := make([]float64, len(contours))
		for i, c := range contours {
			sizes[i] = float64(c.Pixels)
			s.LargestRegion = max(s.LargestRegion, c.Pixels)
		}
		mean, std := stat.MeanStdDev(sizes, nil)
		s.MeanRegionPixels = round(mean, 2)
		if !math.IsNaN(std) {
			s.StdDevRegionPixels = round(std, 2)
		}
	}

	return s, nil
}

// SpacingStats summarizes how far apart detections are, for choosing
// distance_threshold.
type SpacingStats struct {
	Count int `json:"count"`

	// NearestDistances[i] is the center distance from box i to its closest
	// other box. Empty for fewer than two boxes.
	NearestDistances []float64 `json:"nearest_distances"`

	MeanNearest   float64 `json:"mean_nearest"`
	StdDevNearest float64 `json:"stddev_nearest"`
	MinNearest    float64 `json:"min_nearest"`
}

// MeasureSpacing computes nearest-neighbour center distances between boxes.
func MeasureSpacing(boxes detection.DetectionSet) *SpacingStats {
	s := &SpacingStats{Count: len(boxes), NearestDistances: []float64{}}
	if len(boxes) < 2 {
		return s
	}

	nearest := make([]float64, len(boxes))
	for i, a := range boxes {
		nearest[i] = math.Inf(1)
		for j, b := range boxes {
			if i != j {
				nearest[i] = math.Min(nearest[i], a.CenterDistance(b))
			}
		}
	}

	mean, std := stat.MeanStdDev(nearest, nil)
	s.MinNearest = math.Inf(1)
	for i, d := range nearest {
		s.MinNearest = math.Min(s.MinNearest, d)
		nearest[i] = round(d, 2)
	}
	s.NearestDistances = nearest
	s.MeanNearest = round(mean, 2)
	s.StdDevNearest = round(std, 2)
	s.MinNearest = round(s.MinNearest, 2)

	return s
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
