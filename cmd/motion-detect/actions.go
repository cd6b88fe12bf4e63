package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/urfave/cli/v2"

	"github.com/ironsheep/motion-detect-mcp/internal/config"
	"github.com/ironsheep/motion-detect-mcp/internal/dataset"
	mdimaging "github.com/ironsheep/motion-detect-mcp/internal/imaging"
	"github.com/ironsheep/motion-detect-mcp/internal/logger"
	"github.com/ironsheep/motion-detect-mcp/internal/predictor"
	"github.com/ironsheep/motion-detect-mcp/internal/sequence"
	"github.com/ironsheep/motion-detect-mcp/internal/store"
	"github.com/ironsheep/motion-detect-mcp/internal/video"
)

// loadConfig reads the configuration file and applies command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, err
	}

	if c.Bool(flagDebug) {
		cfg.Log.Level = "debug"
	}

	d := &cfg.Dataset
	setString(c, flagDataset, &d.Dataset)
	setString(c, flagCategory, &d.Category)
	setString(c, flagVideo, &d.Video)
	if c.IsSet(flagSeed) {
		d.Seed = c.Int64(flagSeed)
	}

	det := &cfg.Detection
	setInt(c, flagMinArea, &det.MinArea)
	setFloat(c, flagOverlapThreshold, &det.OverlapThreshold)
	setFloat(c, flagDistanceThreshold, &det.DistanceThreshold)
	setString(c, flagMergeStrategy, &det.MergeStrategy)
	setInt(c, flagMaskLevel, &det.MaskLevel)

	setString(c, flagPredictor, &cfg.Predictor.Mode)
	setString(c, flagMaskDir, &cfg.Predictor.MaskDir)
	setString(c, flagPredictorURL, &cfg.Predictor.URL)
	setInt(c, flagWorkers, &cfg.Workers)

	setString(c, flagStore, &cfg.Output.StorePath)
	setString(c, flagVideoOut, &cfg.Output.VideoPath)
	setInt(c, flagFPS, &cfg.Output.FPS)
	setString(c, flagColor, &cfg.Output.BoxColor)
	setString(c, flagCaption, &cfg.Output.Caption)
	if c.IsSet(flagSideBySide) {
		cfg.Output.SideBySide = c.Bool(flagSideBySide)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setString(c *cli.Context, name string, dst *string) {
	if c.IsSet(name) {
		*dst = c.String(name)
	}
}

func setInt(c *cli.Context, name string, dst *int) {
	if c.IsSet(name) {
		*dst = c.Int(name)
	}
}

func setFloat(c *cli.Context, name string, dst *float64) {
	if c.IsSet(name) {
		*dst = c.Float64(name)
	}
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	// stdout carries results
	cfg.Log.Output = "stderr"
	return logger.New(cfg.Log)
}

func maskOptions(cfg *config.Config) mdimaging.MaskOptions {
	return mdimaging.MaskOptions{
		Level:        uint8(cfg.Detection.MaskLevel),
		DilateRadius: cfg.Detection.DilateRadius,
	}
}

func selectVideo(cfg *config.Config) (dataset.Video, []dataset.Frame, error) {
	d := cfg.Dataset
	v, err := dataset.Select(dataset.Roots(d.Roots), dataset.Selection{
		Dataset:  d.Dataset,
		Category: d.Category,
		Video:    d.Video,
		Seed:     d.Seed,
	})
	if err != nil {
		return dataset.Video{}, nil, err
	}
	frames, err := dataset.ListFrames(v)
	if err != nil {
		return dataset.Video{}, nil, err
	}
	return v, frames, nil
}

// openOutput returns the named file, or the app writer when name is empty.
func openOutput(c *cli.Context) (io.Writer, func() error, error) {
	name := c.String(flagOutput)
	if name == "" {
		return c.App.Writer, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

// SelectAction prints the selected video.
func SelectAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	v, frames, err := selectVideo(cfg)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "video:       %s\n", v)
	fmt.Fprintf(w, "directory:   %s\n", v.Dir())
	fmt.Fprintf(w, "frames:      %d\n", len(frames))
	fmt.Fprintf(w, "groundtruth: %t\n", v.HasGroundTruth())
	return nil
}

// ListVideosAction prints every video of a dataset with its frame count.
func ListVideosAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	videos, err := dataset.ListVideos(dataset.Roots(cfg.Dataset.Roots), cfg.Dataset.Dataset)
	if err != nil {
		return err
	}
	for _, v := range videos {
		frames, err := dataset.ListFrames(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%d\n", v.Category, v.Name, len(frames))
	}
	return nil
}

// runDetection predicts and detects every selected frame with a progress bar.
func runDetection(c *cli.Context, cfg *config.Config, log *logger.Logger, keepMasks bool, showProgress bool) (dataset.Video, []sequence.FrameResult, error) {
	v, frames, err := selectVideo(cfg)
	if err != nil {
		return dataset.Video{}, nil, err
	}
	if n := c.Int(flagMaxFrames); n > 0 && len(frames) > n {
		frames = frames[:n]
	}
	if len(frames) == 0 {
		return v, nil, fmt.Errorf("%w: %s has no frames", dataset.ErrNoVideos, v)
	}

	pred, err := predictor.New(cfg.Predictor, v, maskOptions(cfg))
	if err != nil {
		return v, nil, err
	}
	if hp, ok := pred.(*predictor.HTTPPredictor); ok {
		if err := hp.CheckHealth(c.Context); err != nil {
			return v, nil, err
		}
	}

	runner := sequence.NewRunner(pred, cfg.DetectionParams(), cfg.Workers)
	runner.KeepMasks = keepMasks
	runner.Logger = log.With("video", v.String())

	log.Info("processing video", "video", v.String(), "frames", len(frames), "predictor", cfg.Predictor.Mode)

	bar := newProgress(c.App.ErrWriter, fmt.Sprintf("Detecting %s", v.Name), len(frames), showProgress)
	results, err := runner.Run(c.Context, frames, bar.update)
	bar.stop()
	if err != nil {
		return v, nil, err
	}
	return v, results, nil
}

// DetectAction writes one JSON line per frame and optionally stores the run.
func DetectAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	out, closeOut, err := openOutput(c)
	if err != nil {
		return err
	}
	defer closeOut()

	v, results, err := runDetection(c, cfg, log, false, c.String(flagOutput) != "")
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}
	if err := closeOut(); err != nil {
		return err
	}

	if cfg.Output.StorePath != "" {
		id, err := storeRun(c.Context, cfg.Output.StorePath, v, cfg, results)
		if err != nil {
			return err
		}
		log.Info("run stored", "run_id", id, "store", cfg.Output.StorePath)
	}

	s := sequence.Summarize(results)
	log.Info("detection finished",
		"video", v.String(),
		"frames", s.Frames,
		"frames_with_detections", s.FramesWithDetections,
		"boxes", s.TotalBoxes,
		"mean_boxes", s.MeanBoxes,
	)
	return nil
}

func storeRun(ctx context.Context, path string, v dataset.Video, cfg *config.Config, results []sequence.FrameResult) (string, error) {
	st, err := store.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	id, err := st.CreateRun(ctx, v, cfg.DetectionParams())
	if err != nil {
		return "", err
	}
	return id, st.SaveFrames(ctx, id, results)
}

// RenderAction draws every frame's detections and writes a video, PNG frames
// or both.
func RenderAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	framesDir := c.String(flagFramesDir)
	if cfg.Output.VideoPath == "" && framesDir == "" {
		return errors.New("nothing to render: set --video-out or --frames-dir")
	}
	if cfg.Output.VideoPath != "" && !video.Available() {
		return errors.New("ffmpeg not found in PATH")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	v, results, err := runDetection(c, cfg, log, cfg.Output.SideBySide, true)
	if err != nil {
		return err
	}

	if framesDir != "" {
		if err := os.MkdirAll(framesDir, 0o755); err != nil {
			return fmt.Errorf("create frames directory: %w", err)
		}
	}

	caption := cfg.Output.Caption
	if caption == "" {
		caption = v.Name
	}
	opts := mdimaging.OverlayOptions{
		Color:     cfg.Output.BoxColor,
		Thickness: 1,
		Numbered:  c.Bool(flagNumbered),
	}

	cache := mdimaging.NewImageCache()
	var writer *video.Writer
	defer func() {
		if writer != nil {
			writer.Close()
		}
	}()

	bar := newProgress(c.App.ErrWriter, fmt.Sprintf("Rendering %s", v.Name), len(results), true)
	defer bar.stop()

	for i, r := range results {
		frame, err := cache.Load(r.Frame.Path)
		if err != nil {
			return err
		}
		cache.Evict(r.Frame.Path)

		out := mdimaging.DrawDetections(frame, r.Boxes, opts)
		if cfg.Output.SideBySide {
			out = mdimaging.SideBySide(out, mdimaging.MaskImage(r.Mask.Gray()))
		}
		out = mdimaging.AddCaption(out, caption)

		if cfg.Output.VideoPath != "" {
			if writer == nil {
				b := out.Bounds()
				writer, err = video.NewWriter(c.Context, cfg.Output.VideoPath, b.Dx(), b.Dy(), cfg.Output.FPS, log)
				if err != nil {
					return err
				}
			}
			if err := writer.WriteFrame(out); err != nil {
				return err
			}
		}

		if framesDir != "" {
			name := filepath.Join(framesDir, fmt.Sprintf("frame%06d.png", r.Frame.Index))
			if err := imaging.Save(out, name); err != nil {
				return fmt.Errorf("save frame: %w", err)
			}
		}
		bar.update(i+1, len(results))
	}

	if writer != nil {
		w := writer
		writer = nil
		if err := w.Close(); err != nil {
			return err
		}
		log.Info("video written", "path", cfg.Output.VideoPath, "frames", w.Frames(), "fps", cfg.Output.FPS)
	}
	return nil
}

// PairsAction writes the training pair list of the selected video.
func PairsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	v, _, err := selectVideo(cfg)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(c)
	if err != nil {
		return err
	}
	defer closeOut()

	n, err := dataset.WritePairs(out, v)
	if err != nil {
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "%d pairs written for %s\n", n, v)
	return nil
}

func openStore(c *cli.Context) (*store.Store, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if cfg.Output.StorePath == "" {
		return nil, errors.New("no store configured: set --store or output.store_path")
	}
	return store.Open(c.Context, cfg.Output.StorePath)
}

// ListRunsAction prints every stored run, newest first.
func ListRunsAction(c *cli.Context) error {
	st, err := openStore(c)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(c.Context)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%s / %s / %s\tframes=%d\tboxes=%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Dataset, r.Category, r.Video, r.Frames, r.Boxes)
	}
	return nil
}

// ShowRunAction prints the stored boxes of one frame.
func ShowRunAction(c *cli.Context) error {
	st, err := openStore(c)
	if err != nil {
		return err
	}
	defer st.Close()

	boxes, err := st.FrameDetections(c.Context, c.String(flagRun), c.Int(flagFrame))
	if err != nil {
		return err
	}
	printBoxes(c.App.Writer, boxes)
	return nil
}
