package detection

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned when pipeline thresholds are out of range.
var ErrInvalidParams = errors.New("invalid detection params")

// Merge strategies accepted by Params.MergeStrategy.
const (
	// MergeGreedy is the single-pass, order-dependent MergeNearby.
	MergeGreedy = "greedy"
	// MergeTransitive is the union-find MergeClusters.
	MergeTransitive = "transitive"
)

// Default thresholds, tuned for CDnet2014/SBMnet frame sizes.
const (
	DefaultMinArea           = 400
	DefaultOverlapThreshold  = 0.3
	DefaultDistanceThreshold = 55.0
)

// Params holds the pipeline thresholds.
type Params struct {
	// MinArea is the bounding-box area a contour must exceed to be kept.
	MinArea int `json:"min_area" yaml:"min_area"`

	// OverlapThreshold is the NMS overlap ratio at or above which the
	// smaller of two boxes is suppressed.
	OverlapThreshold float64 `json:"overlap_threshold" yaml:"overlap_threshold"`

	// DistanceThreshold is the center distance, in pixels, below which two
	// boxes are merged.
	DistanceThreshold float64 `json:"distance_threshold" yaml:"distance_threshold"`

	// MergeStrategy is MergeGreedy (default when empty) or MergeTransitive.
	MergeStrategy string `json:"merge_strategy,omitempty" yaml:"merge_strategy"`
}

// DefaultParams returns the thresholds the pipeline was tuned with.
func DefaultParams() Params {
	return Params{
		MinArea:           DefaultMinArea,
		OverlapThreshold:  DefaultOverlapThreshold,
		DistanceThreshold: DefaultDistanceThreshold,
		MergeStrategy:     MergeGreedy,
	}
}

// Validate checks the thresholds.
func (p Params) Validate() error {
	if p.MinArea < 0 {
		return fmt.Errorf("%w: min_area must be >= 0, got %d", ErrInvalidParams, p.MinArea)
	}
	if math.IsNaN(p.OverlapThreshold) || p.OverlapThreshold < 0 {
		return fmt.Errorf("%w: overlap_threshold must be >= 0, got %v", ErrInvalidParams, p.OverlapThreshold)
	}
	if math.IsNaN(p.DistanceThreshold) || p.DistanceThreshold < 0 {
		return fmt.Errorf("%w: distance_threshold must be >= 0, got %v", ErrInvalidParams, p.DistanceThreshold)
	}
	switch p.MergeStrategy {
	case "", MergeGreedy, MergeTransitive:
	default:
		return fmt.Errorf("%w: unknown merge_strategy %q", ErrInvalidParams, p.MergeStrategy)
	}
	return nil
}

// Stats counts boxes after each pipeline stage.
type Stats struct {
	Contours    int `json:"contours"`
	Candidates  int `json:"candidates"`
	Uncontained int `json:"uncontained"`
	Suppressed  int `json:"after_nms"`
	Final       int `json:"final"`
}

// Result is the output of Run.
type Result struct {
	Boxes DetectionSet `json:"boxes"`
	Stats Stats        `json:"stats"`
}

// Run executes the full pipeline on one mask.
//
// Parameters:
//   - m: The frame's foreground mask. Not modified.
//   - p: Pipeline thresholds. See DefaultParams.
//
// Returns:
//   - *Result: Final boxes plus per-stage counts. Boxes is empty, not nil,
//     when no contour passes MinArea.
//   - error: ErrInvalidMask or ErrInvalidParams (wrapped) on bad input.
//
// # Stages
//
//  1. ExtractBoxes with p.MinArea
//  2. RemoveContained
//  3. SuppressOverlaps with p.OverlapThreshold
//  4. MergeNearby (or MergeClusters) with p.DistanceThreshold
func Run(m *Mask, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	contours, err := FindExternalContours(m)
	if err != nil {
		return nil, err
	}

	res := &Result{Boxes: DetectionSet{}}
	res.Stats.Contours = len(contours)

	candidates := boxesFromContours(contours, p.MinArea)
	res.Stats.Candidates = len(candidates)
	if len(candidates) == 0 {
		return res, nil
	}

	uncontained := RemoveContained(candidates)
	res.Stats.Uncontained = len(uncontained)

	kept := SuppressOverlaps(uncontained, p.OverlapThreshold)
	res.Stats.Suppressed = len(kept)

	if p.MergeStrategy == MergeTransitive {
		res.Boxes = MergeClusters(kept, p.DistanceThreshold)
	} else {
		res.Boxes = MergeNearby(kept, p.DistanceThreshold)
	}
	res.Stats.Final = len(res.Boxes)

	return res, nil
}

// Detect runs the pipeline and returns only the final boxes.
func Detect(m *Mask, p Params) (DetectionSet, error) {
	res, err := Run(m, p)
	if err != nil {
		return nil, err
	}
	return res.Boxes, nil
}
