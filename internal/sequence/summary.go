package sequence

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the detections of a whole sequence.
type Summary struct {
	Frames               int     `json:"frames"`
	FramesWithDetections int     `json:"frames_with_detections"`
	TotalBoxes           int     `json:"total_boxes"`
	MaxBoxes             int     `json:"max_boxes"`
	MeanBoxes            float64 `json:"mean_boxes"`
	StdDevBoxes          float64 `json:"stddev_boxes"`
	MeanBoxArea          float64 `json:"mean_box_area"`
}

// Summarize aggregates per-frame results.
func Summarize(results []FrameResult) Summary {
	s := Summary{Frames: len(results)}
	if len(results) == 0 {
		return s
	}

	counts := make([]float64, len(results))
	var areas []float64
	for i, r := range results {
		n := len(r.Boxes)
		counts[i] = float64(n)
		s.TotalBoxes += n
		s.MaxBoxes = max(s.MaxBoxes, n)
		if n > 0 {
			s.FramesWithDetections++
		}
		for _, b := range r.Boxes {
			areas = append(areas, float64(b.Area))
		}
	}

	mean, std := stat.MeanStdDev(counts, nil)
	s.MeanBoxes = round2(mean)
	if !math.IsNaN(std) {
		s.StdDevBoxes = round2(std)
	}
	if len(areas) > 0 {
		s.MeanBoxArea = round2(stat.Mean(areas, nil))
	}

	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
