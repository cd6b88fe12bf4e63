package sequence

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/motion-detect-mcp/internal/dataset"
	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

// fakePredictor returns a mask with one square per frame; the square moves
// right by frame index and frames listed in empty have no foreground.
type fakePredictor struct {
	empty    map[int]bool
	fail     map[int]error
	delay    func(index int) time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (p *fakePredictor) Predict(ctx context.Context, f dataset.Frame) (*detection.Mask, error) {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}

	if p.delay != nil {
		select {
		case <-time.After(p.delay(f.Index)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := p.fail[f.Index]; err != nil {
		return nil, err
	}

	m := detection.NewMask(200, 100)
	if !p.empty[f.Index] {
		x := 10 + f.Index*5
		m.Fill(image.Rect(x, 10, x+30, 40), 255)
	}
	return m, nil
}

func makeFrames(n int) []dataset.Frame {
	frames := make([]dataset.Frame, n)
	for i := range frames {
		frames[i] = dataset.Frame{Index: i, Path: "in.jpg"}
	}
	return frames
}

func TestRunnerOrderedResults(t *testing.T) {
	p := &fakePredictor{
		empty: map[int]bool{3: true},
		// Later frames finish first.
		delay: func(i int) time.Duration { return time.Duration(10-i) * time.Millisecond },
	}
	r := NewRunner(p, detection.DefaultParams(), 4)

	var mu sync.Mutex
	var calls []int
	results, err := r.Run(context.Background(), makeFrames(10), func(done, total int) {
		mu.Lock()
		calls = append(calls, done)
		mu.Unlock()
		assert.Equal(t, 10, total)
	})
	require.NoError(t, err)
	require.Len(t, results, 10)

	for i, res := range results {
		assert.Equal(t, i, res.Frame.Index)
		if i == 3 {
			assert.Empty(t, res.Boxes)
			continue
		}
		x := 10 + i*5
		assert.Equal(t, detection.DetectionSet{detection.NewBox(x, 10, x+30, 40)}, res.Boxes)
		assert.Nil(t, res.Mask)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, calls)
	assert.LessOrEqual(t, p.peak.Load(), int32(4))
}

func TestRunnerKeepMasks(t *testing.T) {
	r := NewRunner(&fakePredictor{}, detection.DefaultParams(), 2)
	r.KeepMasks = true

	results, err := r.Run(context.Background(), makeFrames(2), nil)
	require.NoError(t, err)
	require.NotNil(t, results[1].Mask)
	assert.Equal(t, 900, results[1].Mask.CountForeground())
}

func TestRunnerStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	p := &fakePredictor{fail: map[int]error{2: boom}}

	_, err := NewRunner(p, detection.DefaultParams(), 1).Run(context.Background(), makeFrames(6), nil)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "frame 2")
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(&fakePredictor{}, detection.DefaultParams(), 2).Run(ctx, makeFrames(5), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerValidation(t *testing.T) {
	_, err := (&Runner{Params: detection.DefaultParams()}).Run(context.Background(), makeFrames(1), nil)
	assert.Error(t, err)

	bad := detection.DefaultParams()
	bad.MinArea = -1
	_, err = NewRunner(&fakePredictor{}, bad, 1).Run(context.Background(), makeFrames(1), nil)
	assert.ErrorIs(t, err, detection.ErrInvalidParams)
}

func TestRunnerNoFrames(t *testing.T) {
	results, err := NewRunner(&fakePredictor{}, detection.DefaultParams(), 0).Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
