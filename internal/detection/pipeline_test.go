package detection

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 400, p.MinArea)
	assert.Equal(t, 0.3, p.OverlapThreshold)
	assert.Equal(t, 55.0, p.DistanceThreshold)
	assert.Equal(t, MergeGreedy, p.MergeStrategy)
	assert.NoError(t, p.Validate())
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"negative min area", func(p *Params) { p.MinArea = -1 }},
		{"negative overlap", func(p *Params) { p.OverlapThreshold = -0.1 }},
		{"NaN overlap", func(p *Params) { p.OverlapThreshold = math.NaN() }},
		{"negative distance", func(p *Params) { p.DistanceThreshold = -5 }},
		{"unknown strategy", func(p *Params) { p.MergeStrategy = "kmeans" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
		})
	}

	p := DefaultParams()
	p.MergeStrategy = ""
	assert.NoError(t, p.Validate())
}

func TestDetectEmptyMask(t *testing.T) {
	res, err := Run(NewMask(64, 48), DefaultParams())
	require.NoError(t, err)
	assert.NotNil(t, res.Boxes)
	assert.Empty(t, res.Boxes)
	assert.Equal(t, Stats{}, res.Stats)
}

func TestDetectNothingAboveMinArea(t *testing.T) {
	m := newTestMask(100, 100, image.Rect(0, 0, 10, 10), image.Rect(50, 50, 55, 70))

	res, err := Run(m, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, res.Boxes)
	assert.Equal(t, 2, res.Stats.Contours)
	assert.Equal(t, 0, res.Stats.Candidates)
}

func TestDetectSingleRectangle(t *testing.T) {
	m := newTestMask(100, 100, image.Rect(5, 5, 35, 25))

	boxes, err := Detect(m, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, DetectionSet{NewBox(5, 5, 35, 25)}, boxes)
	assert.Equal(t, 600, boxes[0].Area)
}

func TestDetectTwoDisjointSquares(t *testing.T) {
	m := newTestMask(150, 150, image.Rect(0, 0, 20, 20), image.Rect(100, 100, 120, 120))
	p := DefaultParams()
	p.MinArea = 100

	res, err := Run(m, p)
	require.NoError(t, err)
	assert.Equal(t, DetectionSet{NewBox(0, 0, 20, 20), NewBox(100, 100, 120, 120)}, res.Boxes)
	for _, b := range res.Boxes {
		assert.Equal(t, 400, b.Area)
	}
	assert.Equal(t, Stats{Contours: 2, Candidates: 2, Uncontained: 2, Suppressed: 2, Final: 2}, res.Stats)
}

func TestDetectOverlappingSquaresCollapse(t *testing.T) {
	// Overlapping squares form a single foreground region.
	m := newTestMask(100, 100, image.Rect(10, 10, 50, 50), image.Rect(12, 12, 52, 52))

	boxes, err := Detect(m, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, DetectionSet{NewBox(10, 10, 52, 52)}, boxes)

	// As boxes, a 90% overlap is resolved by NMS in favor of the larger one.
	large := NewBox(0, 0, 100, 100)
	small := NewBox(0, 0, 100, 90)
	assert.Equal(t, DetectionSet{large}, SuppressOverlaps(DetectionSet{small, large}, DefaultOverlapThreshold))
}

func TestDetectDropsContainedRegion(t *testing.T) {
	// An L shape whose bounding rect encloses a separate blob.
	m := newTestMask(80, 80,
		image.Rect(0, 0, 60, 5),
		image.Rect(0, 0, 5, 60),
		image.Rect(30, 30, 52, 52),
	)

	res, err := Run(m, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, DetectionSet{NewBox(0, 0, 60, 60)}, res.Boxes)
	assert.Equal(t, 2, res.Stats.Candidates)
	assert.Equal(t, 1, res.Stats.Uncontained)
}

func TestDetectMergesNearbyFragments(t *testing.T) {
	// Two fragments of one object with a gap between them.
	m := newTestMask(120, 60, image.Rect(10, 10, 40, 30), image.Rect(50, 10, 80, 30))

	res, err := Run(m, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, DetectionSet{NewBox(10, 10, 80, 30)}, res.Boxes)
	assert.Equal(t, 2, res.Stats.Suppressed)
	assert.Equal(t, 1, res.Stats.Final)
}

func TestDetectMergeStrategies(t *testing.T) {
	// A chain of three blobs 50px apart center to center.
	m := newTestMask(130, 30,
		image.Rect(0, 0, 21, 21),
		image.Rect(50, 0, 71, 21),
		image.Rect(100, 0, 121, 21),
	)

	p := DefaultParams()
	boxes, err := Detect(m, p)
	require.NoError(t, err)
	assert.Equal(t, DetectionSet{NewBox(0, 0, 71, 21), NewBox(100, 0, 121, 21)}, boxes)

	p.MergeStrategy = MergeTransitive
	boxes, err = Detect(m, p)
	require.NoError(t, err)
	assert.Equal(t, DetectionSet{NewBox(0, 0, 121, 21)}, boxes)
}

func TestDetectIsDeterministic(t *testing.T) {
	m := newTestMask(200, 200,
		image.Rect(10, 10, 40, 40),
		image.Rect(45, 12, 70, 50),
		image.Rect(120, 120, 180, 190),
		image.Rect(150, 20, 175, 45),
	)

	first, err := Detect(m, DefaultParams())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Detect(m, DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDetectInvalidInput(t *testing.T) {
	_, err := Detect(&Mask{Width: 3, Height: 3}, DefaultParams())
	assert.ErrorIs(t, err, ErrInvalidMask)

	p := DefaultParams()
	p.OverlapThreshold = -1
	_, err = Detect(NewMask(10, 10), p)
	assert.ErrorIs(t, err, ErrInvalidParams)
}
