// Package sequence runs the detection pipeline over every frame of a video.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/motion-detect-mcp/internal/dataset"
	"github.com/ironsheep/motion-detect-mcp/internal/detection"
	"github.com/ironsheep/motion-detect-mcp/internal/logger"
	"github.com/ironsheep/motion-detect-mcp/internal/predictor"
)

// FrameResult holds the detections of one frame.
type FrameResult struct {
	Frame dataset.Frame          `json:"frame"`
	Boxes detection.DetectionSet `json:"boxes"`
	Stats detection.Stats        `json:"stats"`

	// Mask is set only when Runner.KeepMasks is true.
	Mask *detection.Mask `json:"-"`
}

// ProgressFunc is called after each frame completes. Calls are serialized.
type ProgressFunc func(done, total int)

// Runner processes frames in parallel. Frames share nothing, so the only
// coordination is collecting results by frame index.
type Runner struct {
	Predictor predictor.Predictor
	Params    detection.Params

	// Workers bounds the number of frames in flight. Values below 1 mean 1.
	Workers int

	// KeepMasks retains each frame's mask in its FrameResult, for rendering.
	KeepMasks bool

	Logger *logger.Logger
}

// NewRunner creates a runner with a no-op logger.
func NewRunner(p predictor.Predictor, params detection.Params, workers int) *Runner {
	return &Runner{
		Predictor: p,
		Params:    params,
		Workers:   workers,
		Logger:    logger.NewNopLogger(),
	}
}

// Run predicts a mask for every frame and extracts its detections.
//
// Results are returned in the order of frames regardless of completion
// order. The first error cancels the remaining frames and is returned;
// canceling ctx does the same.
func (r *Runner) Run(ctx context.Context, frames []dataset.Frame, progress ProgressFunc) ([]FrameResult, error) {
	if r.Predictor == nil {
		return nil, errors.New("sequence runner has no predictor")
	}
	if err := r.Params.Validate(); err != nil {
		return nil, err
	}

	log := r.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	results := make([]FrameResult, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))

	var mu sync.Mutex
	done := 0
	start := time.Now()

	for i, frame := range frames {
		if gctx.Err() != nil {
			break
		}
		i, frame := i, frame
		g.Go(func() error {
			mask, err := r.Predictor.Predict(gctx, frame)
			if err != nil {
				return fmt.Errorf("frame %d (%s): %w", frame.Index, frame.Name(), err)
			}

			res, err := detection.Run(mask, r.Params)
			if err != nil {
				return fmt.Errorf("frame %d (%s): %w", frame.Index, frame.Name(), err)
			}

			results[i] = FrameResult{Frame: frame, Boxes: res.Boxes, Stats: res.Stats}
			if r.KeepMasks {
				results[i].Mask = mask
			}

			log.Debug("frame processed", "frame", frame.Index, "boxes", len(res.Boxes), "contours", res.Stats.Contours)

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(frames))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("sequence processed", "frames", len(frames), "workers", max(r.Workers, 1), "elapsed", time.Since(start).String())
	return results, nil
}
