// Package predictor produces a foreground mask for each frame.
//
// The segmentation network itself lives outside this module. A Predictor
// either reads masks it has already written to disk, reads dataset ground
// truth, or asks an inference service over HTTP.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/motion-detect-mcp/internal/config"
	"github.com/ironsheep/motion-detect-mcp/internal/dataset"
	"github.com/ironsheep/motion-detect-mcp/internal/detection"
	"github.com/ironsheep/motion-detect-mcp/internal/imaging"
)

// ErrMaskNotFound is returned when no mask file exists for a frame.
var ErrMaskNotFound = errors.New("mask not found")

// Predictor returns the binary foreground mask of a frame.
type Predictor interface {
	Predict(ctx context.Context, frame dataset.Frame) (*detection.Mask, error)
}

// DirPredictor reads precomputed masks named after their frames
// (in000001.jpg -> gt000001.png) from a directory.
type DirPredictor struct {
	dir   string
	opts  imaging.MaskOptions
	cache *imaging.ImageCache
}

// NewDirPredictor reads masks from dir.
func NewDirPredictor(dir string, opts imaging.MaskOptions) *DirPredictor {
	return &DirPredictor{dir: dir, opts: opts, cache: imaging.NewImageCache()}
}

// NewGroundTruthPredictor reads the ground-truth masks shipped with a video.
func NewGroundTruthPredictor(v dataset.Video, opts imaging.MaskOptions) (*DirPredictor, error) {
	if !v.HasGroundTruth() {
		return nil, fmt.Errorf("%s has no ground truth", v)
	}
	return NewDirPredictor(v.GroundTruthDir(), opts), nil
}

// Dir returns the directory masks are read from.
func (p *DirPredictor) Dir() string { return p.dir }

// Predict loads and binarizes the mask for frame.
func (p *DirPredictor) Predict(ctx context.Context, frame dataset.Frame) (*detection.Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, dataset.MaskName(frame.Name()))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrMaskNotFound, path)
	}

	// Every mask is read once per run; keep the cache from growing.
	defer p.cache.Evict(path)
	return imaging.LoadMask(p.cache, path, p.opts)
}

// New builds the predictor configured for a video.
func New(cfg config.PredictorConfig, v dataset.Video, opts imaging.MaskOptions) (Predictor, error) {
	switch cfg.Mode {
	case config.PredictorMasks:
		return NewDirPredictor(cfg.MaskDir, opts), nil
	case config.PredictorGroundTruth:
		return NewGroundTruthPredictor(v, opts)
	case config.PredictorHTTP:
		return NewHTTPPredictor(cfg.URL, cfg.Timeout, opts), nil
	default:
		return nil, fmt.Errorf("unknown predictor mode %q", cfg.Mode)
	}
}
