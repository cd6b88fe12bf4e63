package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskName(t *testing.T) {
	tests := map[string]string{
		"in000001.jpg":  "gt000001.png",
		"in000123.jpg":  "gt000123.png",
		"frame.png":     "frame.png",
		"winter_in.jpg": "wgtter_gt.png",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskName(in), in)
	}
}

func TestListFrames(t *testing.T) {
	v := makeVideo(t, t.TempDir(), "baseline", "highway", 3, true)
	require.NoError(t, os.WriteFile(filepath.Join(v.InputDir(), "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(v.InputDir(), "sub"), 0o755))

	frames, err := ListFrames(v)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, i, f.Index)
	}
	assert.Equal(t, "in000001.jpg", frames[0].Name())
	assert.Equal(t, "in000003.jpg", frames[2].Name())
	assert.Equal(t, filepath.Join(v.GroundTruthDir(), "gt000002.png"), GroundTruthPath(v, frames[1]))

	_, err = ListFrames(Video{Root: t.TempDir(), Category: "x", Name: "y"})
	assert.Error(t, err)
}

func TestWritePairsWithGroundTruth(t *testing.T) {
	v := makeVideo(t, t.TempDir(), "baseline", "highway", 3, true)

	var buf bytes.Buffer
	n, err := WritePairs(&buf, v)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"baseline/highway/input/in000001.jpg baseline/highway/input/in000002.jpg baseline/highway/groundtruth/gt000002.png",
		"baseline/highway/input/in000001.jpg baseline/highway/input/in000003.jpg baseline/highway/groundtruth/gt000003.png",
	}, lines)
}

func TestWritePairsWithoutGroundTruth(t *testing.T) {
	v := makeVideo(t, t.TempDir(), "Clutter", "Board", 3, false)

	var buf bytes.Buffer
	n, err := WritePairs(&buf, v)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Clutter/Board/input/in000001.jpg Clutter/Board/input/in000001.jpg Clutter/Board/input/in000001.jpg",
		"Clutter/Board/input/in000001.jpg Clutter/Board/input/in000002.jpg Clutter/Board/input/in000002.jpg",
		"Clutter/Board/input/in000001.jpg Clutter/Board/input/in000003.jpg Clutter/Board/input/in000003.jpg",
	}, lines)
}

func TestWritePairsEmptyVideo(t *testing.T) {
	v := makeVideo(t, t.TempDir(), "c", "v", 0, false)

	_, err := WritePairs(&bytes.Buffer{}, v)
	assert.ErrorIs(t, err, ErrNoVideos)
}
