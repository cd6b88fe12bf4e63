// Package config loads the YAML configuration shared by the MCP server and
// the batch CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
	"github.com/ironsheep/motion-detect-mcp/internal/logger"
)

// Environment variables read by Load and ApplyEnv.
const (
	EnvConfigPath = "MOTION_MCP_CONFIG"
	EnvLogLevel   = "MOTION_MCP_LOG_LEVEL"
)

// Predictor modes.
const (
	PredictorMasks       = "masks"
	PredictorGroundTruth = "groundtruth"
	PredictorHTTP        = "http"
)

// Config is the root configuration.
type Config struct {
	Detection DetectionConfig  `yaml:"detection"`
	Dataset   DatasetConfig    `yaml:"dataset"`
	Predictor PredictorConfig  `yaml:"predictor"`
	Output    OutputConfig     `yaml:"output"`
	Workers   int              `yaml:"workers"`
	Log       logger.LogConfig `yaml:"log"`
}

// DetectionConfig holds pipeline thresholds and mask preprocessing.
type DetectionConfig struct {
	MinArea           int     `yaml:"min_area"`
	OverlapThreshold  float64 `yaml:"overlap_threshold"`
	DistanceThreshold float64 `yaml:"distance_threshold"`
	MergeStrategy     string  `yaml:"merge_strategy"`

	// MaskLevel is the gray level at or above which a mask pixel is
	// foreground.
	MaskLevel int `yaml:"mask_level"`

	// DilateRadius closes small gaps in the mask before contour extraction.
	// Zero disables dilation.
	DilateRadius float64 `yaml:"dilate_radius"`
}

// DatasetConfig names the dataset roots and the video to process.
type DatasetConfig struct {
	// Roots maps a dataset name (SBMnet, CDNet_2014) to its directory.
	Roots    map[string]string `yaml:"roots"`
	Dataset  string            `yaml:"dataset"`
	Category string            `yaml:"category"`
	Video    string            `yaml:"video"`
	Seed     int64             `yaml:"seed"`
}

// PredictorConfig selects where masks come from.
type PredictorConfig struct {
	Mode    string        `yaml:"mode"`
	MaskDir string        `yaml:"mask_dir"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// OutputConfig controls rendering and persistence of results.
type OutputConfig struct {
	VideoPath  string `yaml:"video_path"`
	FPS        int    `yaml:"fps"`
	StorePath  string `yaml:"store_path"`
	BoxColor   string `yaml:"box_color"`
	SideBySide bool   `yaml:"side_by_side"`
	Caption    string `yaml:"caption"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads a YAML configuration file and applies defaults.
//
// An empty path falls back to $MOTION_MCP_CONFIG; when that is unset too,
// the defaults are returned. An explicit path that does not exist is an
// error.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv(EnvConfigPath)
	}
	if configPath == "" {
		cfg := Default()
		cfg.ApplyEnv()
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.setDefaults()
	cfg.ApplyEnv()

	return &cfg, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// DetectionParams returns the pipeline thresholds.
func (c *Config) DetectionParams() detection.Params {
	return detection.Params{
		MinArea:           c.Detection.MinArea,
		OverlapThreshold:  c.Detection.OverlapThreshold,
		DistanceThreshold: c.Detection.DistanceThreshold,
		MergeStrategy:     c.Detection.MergeStrategy,
	}
}

func (c *Config) setDefaults() {
	d := detection.DefaultParams()
	if c.Detection.MinArea == 0 {
		c.Detection.MinArea = d.MinArea
	}
	if c.Detection.OverlapThreshold == 0 {
		c.Detection.OverlapThreshold = d.OverlapThreshold
	}
	if c.Detection.DistanceThreshold == 0 {
		c.Detection.DistanceThreshold = d.DistanceThreshold
	}
	if c.Detection.MergeStrategy == "" {
		c.Detection.MergeStrategy = d.MergeStrategy
	}
	if c.Detection.MaskLevel == 0 {
		c.Detection.MaskLevel = 128
	}

	if c.Dataset.Roots == nil {
		c.Dataset.Roots = map[string]string{
			"SBMnet":     "../Datasets/SBMnet",
			"CDNet_2014": "../Datasets/CDNet_2014",
		}
	}

	if c.Predictor.Mode == "" {
		c.Predictor.Mode = PredictorGroundTruth
	}
	if c.Predictor.Timeout == 0 {
		c.Predictor.Timeout = 30 * time.Second
	}

	if c.Output.FPS == 0 {
		c.Output.FPS = 25
	}
	if c.Output.BoxColor == "" {
		c.Output.BoxColor = "#FF0000"
	}

	if c.Workers == 0 {
		c.Workers = 4
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stderr"
	}
}
