// Package dataset locates videos and frames in the SBMnet and CDnet2014
// directory layouts.
//
// Both datasets store one directory per video:
//
//	<root>/<category>/<video>/input/in000001.jpg
//	<root>/<category>/<video>/groundtruth/gt000001.png   (CDnet2014 only)
//
// Which video to process is always an explicit Selection. Fields left empty
// are drawn from a random source seeded by Selection.Seed, so a given seed
// and directory tree always produce the same choice.
package dataset

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dataset names.
const (
	SBMnet    = "SBMnet"
	CDNet2014 = "CDNet_2014"
)

const (
	inputDir       = "input"
	groundTruthDir = "groundtruth"
)

var (
	// ErrNoVideos is returned when a dataset or category holds no videos.
	ErrNoVideos = errors.New("no videos found")

	// ErrUnknownDataset is returned when a selection names a dataset that
	// has no configured root.
	ErrUnknownDataset = errors.New("unknown dataset")
)

// Roots maps dataset names to their root directories.
type Roots map[string]string

// Names returns the dataset names in sorted order.
func (r Roots) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Selection picks one video. Empty fields are chosen at random.
type Selection struct {
	Dataset  string `json:"dataset,omitempty"`
	Category string `json:"category,omitempty"`
	Video    string `json:"video,omitempty"`
	Seed     int64  `json:"seed,omitempty"`
}

// Video is one frame sequence of a dataset.
type Video struct {
	Dataset  string `json:"dataset"`
	Root     string `json:"root"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// Dir returns the video's directory.
func (v Video) Dir() string {
	return filepath.Join(v.Root, v.Category, v.Name)
}

// InputDir returns the directory holding the video's frames.
func (v Video) InputDir() string {
	return filepath.Join(v.Dir(), inputDir)
}

// GroundTruthDir returns the directory holding ground-truth masks.
func (v Video) GroundTruthDir() string {
	return filepath.Join(v.Dir(), groundTruthDir)
}

// HasGroundTruth reports whether the video ships ground-truth masks.
func (v Video) HasGroundTruth() bool {
	info, err := os.Stat(v.GroundTruthDir())
	return err == nil && info.IsDir()
}

// String returns "dataset / category / video", used as a caption.
func (v Video) String() string {
	return fmt.Sprintf("%s / %s / %s", v.Dataset, v.Category, v.Name)
}

// relPath returns category/video/sub/name with forward slashes.
func (v Video) relPath(sub, name string) string {
	return strings.Join([]string{v.Category, v.Name, sub, name}, "/")
}

// Select resolves a Selection against the dataset roots.
//
// Named fields must exist. Empty fields are filled in order (dataset,
// category, video) from a random source seeded with sel.Seed; choices are
// made over sorted directory listings so the result does not depend on
// file system order.
func Select(roots Roots, sel Selection) (Video, error) {
	rng := rand.New(rand.NewSource(sel.Seed))

	name := sel.Dataset
	if name == "" {
		names := roots.Names()
		if len(names) == 0 {
			return Video{}, fmt.Errorf("%w: no dataset roots configured", ErrNoVideos)
		}
		name = names[rng.Intn(len(names))]
	}
	root, ok := roots[name]
	if !ok {
		return Video{}, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}

	category := sel.Category
	if category == "" {
		categories, err := subdirs(root)
		if err != nil {
			return Video{}, fmt.Errorf("list categories of %s: %w", name, err)
		}
		if len(categories) == 0 {
			return Video{}, fmt.Errorf("%w: dataset %s has no categories", ErrNoVideos, name)
		}
		category = categories[rng.Intn(len(categories))]
	}

	video := sel.Video
	if video == "" {
		videos, err := subdirs(filepath.Join(root, category))
		if err != nil {
			return Video{}, fmt.Errorf("list videos of %s/%s: %w", name, category, err)
		}
		if len(videos) == 0 {
			return Video{}, fmt.Errorf("%w: %s/%s", ErrNoVideos, name, category)
		}
		video = videos[rng.Intn(len(videos))]
	}

	v := Video{Dataset: name, Root: root, Category: category, Name: video}
	if info, err := os.Stat(v.InputDir()); err != nil || !info.IsDir() {
		return Video{}, fmt.Errorf("%w: %s has no %s directory", ErrNoVideos, v, inputDir)
	}
	return v, nil
}

// ListVideos returns every video of a dataset, sorted by category then name.
func ListVideos(roots Roots, name string) ([]Video, error) {
	root, ok := roots[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}

	categories, err := subdirs(root)
	if err != nil {
		return nil, fmt.Errorf("list categories of %s: %w", name, err)
	}

	var videos []Video
	for _, category := range categories {
		names, err := subdirs(filepath.Join(root, category))
		if err != nil {
			return nil, fmt.Errorf("list videos of %s/%s: %w", name, category, err)
		}
		for _, n := range names {
			videos = append(videos, Video{Dataset: name, Root: root, Category: category, Name: n})
		}
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVideos, name)
	}
	return videos, nil
}

// subdirs returns the sorted names of the directories inside dir.
func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
