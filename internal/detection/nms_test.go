package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuppressOverlapsKeepsLarger(t *testing.T) {
	large := NewBox(0, 0, 100, 100)
	small := NewBox(0, 0, 100, 90) // 90% of large

	got := SuppressOverlaps(DetectionSet{small, large}, DefaultOverlapThreshold)
	assert.Equal(t, DetectionSet{large}, got)
}

func TestSuppressOverlapsThresholdBoundary(t *testing.T) {
	a := NewBox(0, 0, 10, 10)
	b := NewBox(0, 5, 10, 15) // overlap ratio 50/150
	ratio := a.OverlapRatio(b)

	// Survivors must be strictly below the threshold.
	got := SuppressOverlaps(DetectionSet{a, b}, ratio)
	assert.Equal(t, DetectionSet{a}, got, "ratio equal to threshold is suppressed")

	got = SuppressOverlaps(DetectionSet{a, b}, ratio+1e-9)
	assert.Equal(t, DetectionSet{a, b}, got, "ratio just below threshold is kept")
}

func TestSuppressOverlapsOrderedByArea(t *testing.T) {
	set := DetectionSet{
		NewBox(0, 0, 10, 10),
		NewBox(100, 0, 140, 40),
		NewBox(200, 0, 220, 20),
		NewBox(300, 0, 310, 10),
		NewBox(400, 0, 430, 30),
	}

	got := SuppressOverlaps(set, DefaultOverlapThreshold)
	require.Len(t, got, len(set))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Area, got[i].Area)
	}
	// Equal areas keep input order.
	assert.Equal(t, NewBox(0, 0, 10, 10), got[3])
	assert.Equal(t, NewBox(300, 0, 310, 10), got[4])
}

func TestSuppressOverlapsIdempotent(t *testing.T) {
	set := DetectionSet{
		NewBox(0, 0, 50, 50),
		NewBox(10, 10, 55, 55),
		NewBox(40, 40, 90, 90),
		NewBox(200, 200, 230, 230),
		NewBox(205, 205, 225, 225),
	}

	once := SuppressOverlaps(set, DefaultOverlapThreshold)
	twice := SuppressOverlaps(once, DefaultOverlapThreshold)
	assert.Equal(t, once, twice)
}

func TestSuppressOverlapsDoesNotModifyInput(t *testing.T) {
	set := DetectionSet{NewBox(0, 0, 10, 10), NewBox(0, 0, 20, 20)}
	orig := append(DetectionSet(nil), set...)

	SuppressOverlaps(set, DefaultOverlapThreshold)
	assert.Equal(t, orig, set)
}

func TestSuppressOverlapsZeroArea(t *testing.T) {
	z := Box{X1: 5, Y1: 5, X2: 5, Y2: 5}
	got := SuppressOverlaps(DetectionSet{z, z}, DefaultOverlapThreshold)
	assert.Len(t, got, 2)
}

func TestSuppressOverlapsEmpty(t *testing.T) {
	got := SuppressOverlaps(DetectionSet{}, DefaultOverlapThreshold)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
