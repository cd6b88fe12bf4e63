// Package main is the batch command line for motion detection over
// SBMnet and CDNet_2014 videos.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ironsheep/motion-detect-mcp/internal/detection"
)

// Version information - set by ldflags during build
var Version = "dev"

const (
	// Global flags.
	flagConfig = "config"
	flagDebug  = "debug"

	// Selection flags.
	flagDataset  = "dataset"
	flagCategory = "category"
	flagVideo    = "video"
	flagSeed     = "seed"

	// Detection flags.
	flagMinArea           = "min-area"
	flagOverlapThreshold  = "overlap-threshold"
	flagDistanceThreshold = "distance-threshold"
	flagMergeStrategy     = "merge-strategy"
	flagMaskLevel         = "mask-level"
	flagPredictor         = "predictor"
	flagMaskDir           = "mask-dir"
	flagPredictorURL      = "predictor-url"
	flagWorkers           = "workers"
	flagMaxFrames         = "max-frames"

	// Output flags.
	flagOutput     = "output"
	flagStore      = "store"
	flagVideoOut   = "video-out"
	flagFramesDir  = "frames-dir"
	flagFPS        = "fps"
	flagSideBySide = "side-by-side"
	flagCaption    = "caption"
	flagColor      = "color"
	flagNumbered   = "numbered"
	flagRun        = "run"
	flagFrame      = "frame"
)

var selectionFlags = []cli.Flag{
	&cli.StringFlag{Name: flagDataset, Usage: "dataset name (SBMnet or CDNet_2014); random when empty"},
	&cli.StringFlag{Name: flagCategory, Usage: "category directory; random when empty"},
	&cli.StringFlag{Name: flagVideo, Usage: "video directory; random when empty"},
	&cli.Int64Flag{Name: flagSeed, Usage: "seed for random selection"},
}

var detectionFlags = []cli.Flag{
	&cli.IntFlag{Name: flagMinArea, Usage: "keep contour boxes with area strictly greater than `N`"},
	&cli.Float64Flag{Name: flagOverlapThreshold, Usage: "suppress the smaller box at or above this overlap ratio"},
	&cli.Float64Flag{Name: flagDistanceThreshold, Usage: "merge boxes whose centers are closer than `PIXELS`"},
	&cli.StringFlag{Name: flagMergeStrategy, Usage: "greedy or transitive"},
	&cli.IntFlag{Name: flagMaskLevel, Usage: "gray `LEVEL` at or above which a mask pixel is foreground"},
	&cli.StringFlag{Name: flagPredictor, Usage: "mask source: masks, groundtruth or http"},
	&cli.StringFlag{Name: flagMaskDir, Usage: "directory of precomputed masks (predictor=masks)"},
	&cli.StringFlag{Name: flagPredictorURL, Usage: "inference service `URL` (predictor=http)"},
	&cli.IntFlag{Name: flagWorkers, Usage: "frames processed in parallel"},
	&cli.IntFlag{Name: flagMaxFrames, Usage: "process only the first `N` frames"},
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// NewApp builds the command line application writing to out and errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "motion-detect",
		Usage:           "turn predictor masks into bounding boxes for dataset videos",
		Version:         Version,
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				EnvVars: []string{"MOTION_MCP_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "select",
				Usage:  "choose a video and print its location",
				Flags:  selectionFlags,
				Action: SelectAction,
			},
			{
				Name:  "videos",
				Usage: "list the videos of a dataset",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagDataset, Required: true, Usage: "dataset name (SBMnet or CDNet_2014)"},
				},
				Action: ListVideosAction,
			},
			{
				Name:  "detect",
				Usage: "detect boxes in every frame of a video and write them as JSON lines",
				Flags: concat(selectionFlags, detectionFlags, []cli.Flag{
					&cli.StringFlag{Name: flagOutput, Aliases: []string{"o"}, Usage: "write results to `FILE` instead of stdout"},
					&cli.StringFlag{Name: flagStore, Usage: "also store results in the SQLite database `FILE`"},
				}),
				Action: DetectAction,
			},
			{
				Name:  "render",
				Usage: "draw detections on every frame and encode a video",
				Flags: concat(selectionFlags, detectionFlags, []cli.Flag{
					&cli.StringFlag{Name: flagVideoOut, Usage: "output video `FILE` (requires ffmpeg)"},
					&cli.StringFlag{Name: flagFramesDir, Usage: "also write annotated frames as PNG into `DIR`"},
					&cli.IntFlag{Name: flagFPS, Usage: "video frame rate"},
					&cli.BoolFlag{Name: flagSideBySide, Usage: "place the mask next to each annotated frame"},
					&cli.StringFlag{Name: flagCaption, Usage: "caption above every frame; defaults to the video name"},
					&cli.StringFlag{Name: flagColor, Usage: "box color as #RRGGBB"},
					&cli.BoolFlag{Name: flagNumbered, Usage: "label boxes with their index"},
				}),
				Action: RenderAction,
			},
			{
				Name:  "pairs",
				Usage: "write the reference/current/mask pair list of a video",
				Flags: concat(selectionFlags, []cli.Flag{
					&cli.StringFlag{Name: flagOutput, Aliases: []string{"o"}, Usage: "write pairs to `FILE` instead of stdout"},
				}),
				Action: PairsAction,
			},
			{
				Name:  "runs",
				Usage: "inspect stored detection runs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagStore, Usage: "SQLite database `FILE`"},
				},
				Action: ListRunsAction,
				Subcommands: []*cli.Command{
					{
						Name:  "show",
						Usage: "print the boxes of one frame of a run",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: flagStore, Usage: "SQLite database `FILE`"},
							&cli.StringFlag{Name: flagRun, Required: true, Usage: "run `ID`"},
							&cli.IntFlag{Name: flagFrame, Usage: "frame `INDEX`"},
						},
						Action: ShowRunAction,
					},
				},
			},
		},
	}
}

func main() {
	if err := NewApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printBoxes writes one box per line.
func printBoxes(w io.Writer, boxes detection.DetectionSet) {
	for i, b := range boxes {
		fmt.Fprintf(w, "%d\t%s\n", i, b)
	}
}
