package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Frame is one image of a video.
type Frame struct {
	// Index is the frame's position in the sorted input directory.
	Index int `json:"index"`

	// Path is the frame's file path.
	Path string `json:"path"`
}

// Name returns the frame's file name.
func (f Frame) Name() string {
	return filepath.Base(f.Path)
}

// MaskName returns the file name a mask for the given frame is stored
// under: every "in" becomes "gt" and every "jpg" becomes "png", so
// in000123.jpg maps to gt000123.png.
func MaskName(frameName string) string {
	return strings.ReplaceAll(strings.ReplaceAll(frameName, "in", "gt"), "jpg", "png")
}

// GroundTruthPath returns the ground-truth mask path for a frame of v.
func GroundTruthPath(v Video, f Frame) string {
	return filepath.Join(v.GroundTruthDir(), MaskName(f.Name()))
}

// ListFrames returns the video's frames sorted by file name.
func ListFrames(v Video) ([]Frame, error) {
	names, err := listImages(v.InputDir(), ".jpg", ".jpeg", ".png")
	if err != nil {
		return nil, fmt.Errorf("list frames of %s: %w", v, err)
	}
	frames := make([]Frame, len(names))
	for i, n := range names {
		frames[i] = Frame{Index: i, Path: filepath.Join(v.InputDir(), n)}
	}
	return frames, nil
}

// WritePairs writes the training pair list of a video, one line per frame
// after the first. Each line holds three paths relative to the dataset root:
// the reference (first) frame, the current frame and its label.
//
// Videos with ground truth pair frame i with groundtruth mask i. Videos
// without ground truth use the current frame as its own label, and the
// first line repeats the reference frame three times.
func WritePairs(w io.Writer, v Video) (int, error) {
	inputs, err := listImages(v.InputDir(), ".jpg")
	if err != nil {
		return 0, fmt.Errorf("list frames of %s: %w", v, err)
	}
	if len(inputs) == 0 {
		return 0, fmt.Errorf("%w: %s has no frames", ErrNoVideos, v)
	}

	ref := v.relPath(inputDir, inputs[0])
	lines := 0
	write := func(a, b, c string) error {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", a, b, c); err != nil {
			return err
		}
		lines++
		return nil
	}

	if v.HasGroundTruth() {
		labels, err := listImages(v.GroundTruthDir(), ".png")
		if err != nil {
			return 0, fmt.Errorf("list ground truth of %s: %w", v, err)
		}
		n := min(len(inputs), len(labels))
		for i := 1; i < n; i++ {
			if err := write(ref, v.relPath(inputDir, inputs[i]), v.relPath(groundTruthDir, labels[i])); err != nil {
				return lines, err
			}
		}
		return lines, nil
	}

	if err := write(ref, ref, ref); err != nil {
		return lines, err
	}
	for _, name := range inputs[1:] {
		cur := v.relPath(inputDir, name)
		if err := write(ref, cur, cur); err != nil {
			return lines, err
		}
	}
	return lines, nil
}

// listImages returns the sorted names of files in dir with one of the given
// extensions, compared case-insensitively.
func listImages(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
