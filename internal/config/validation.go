package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

// Validate validates the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if c.Detection.MinArea < 0 {
		errors = append(errors, fmt.Sprintf("detection.min_area must be >= 0, got: %d", c.Detection.MinArea))
	}
	if c.Detection.OverlapThreshold < 0 || c.Detection.OverlapThreshold > 1 {
		errors = append(errors, fmt.Sprintf("detection.overlap_threshold must be between 0 and 1, got: %.2f", c.Detection.OverlapThreshold))
	}
	if c.Detection.DistanceThreshold < 0 {
		errors = append(errors, fmt.Sprintf("detection.distance_threshold must be >= 0, got: %.2f", c.Detection.DistanceThreshold))
	}
	if c.Detection.MergeStrategy != detection.MergeGreedy && c.Detection.MergeStrategy != detection.MergeTransitive {
		errors = append(errors, fmt.Sprintf("invalid detection.merge_strategy: %s (must be: greedy or transitive)", c.Detection.MergeStrategy))
	}
	if c.Detection.MaskLevel < 1 || c.Detection.MaskLevel > 255 {
		errors = append(errors, fmt.Sprintf("detection.mask_level must be between 1 and 255, got: %d", c.Detection.MaskLevel))
	}
	if c.Detection.DilateRadius < 0 {
		errors = append(errors, fmt.Sprintf("detection.dilate_radius must be >= 0, got: %.2f", c.Detection.DilateRadius))
	}

	if c.Dataset.Dataset != "" {
		if _, ok := c.Dataset.Roots[c.Dataset.Dataset]; !ok {
			errors = append(errors, fmt.Sprintf("dataset.dataset %q has no entry in dataset.roots", c.Dataset.Dataset))
		}
	}
	if c.Dataset.Video != "" && c.Dataset.Category == "" {
		errors = append(errors, "dataset.category is required when dataset.video is set")
	}

	switch c.Predictor.Mode {
	case PredictorMasks:
		if c.Predictor.MaskDir == "" {
			errors = append(errors, "predictor.mask_dir is required when predictor.mode is masks")
		}
	case PredictorGroundTruth:
	case PredictorHTTP:
		if c.Predictor.URL == "" {
			errors = append(errors, "predictor.url is required when predictor.mode is http")
		} else if u, err := url.Parse(c.Predictor.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid predictor.url: %s", c.Predictor.URL))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid predictor.mode: %s (must be: masks, groundtruth, http)", c.Predictor.Mode))
	}
	if c.Predictor.Timeout < 0 {
		errors = append(errors, fmt.Sprintf("predictor.timeout must be >= 0, got: %v", c.Predictor.Timeout))
	}

	if c.Output.FPS <= 0 {
		errors = append(errors, fmt.Sprintf("output.fps must be > 0, got: %d", c.Output.FPS))
	}
	if _, err := colorful.Hex(normalizeHex(c.Output.BoxColor)); err != nil {
		errors = append(errors, fmt.Sprintf("invalid output.box_color: %s (must be #RRGGBB)", c.Output.BoxColor))
	}

	if c.Workers <= 0 {
		errors = append(errors, fmt.Sprintf("workers must be > 0, got: %d", c.Workers))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errors = append(errors, fmt.Sprintf("invalid log.level: %s (must be: debug, info, warn, error)", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errors = append(errors, fmt.Sprintf("invalid log.format: %s (must be: text or json)", c.Log.Format))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func normalizeHex(s string) string {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return s
}
