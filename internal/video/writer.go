// Package video encodes rendered frames into an MP4 file with ffmpeg.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ironsheep/motion-detect-mcp/internal/logger"
)

// DefaultFPS matches the frame rate of the dataset videos.
const DefaultFPS = 25

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("video writer closed")

// Available reports whether an ffmpeg binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Writer streams raw frames to an ffmpeg process encoding MPEG-4 video.
//
// All frames share the size passed to NewWriter. Smaller frames are placed
// on a black canvas at the top-left corner and larger ones are cropped.
type Writer struct {
	path   string
	width  int
	height int
	pw     *io.PipeWriter
	done   chan error
	stderr *bytes.Buffer
	frames int
	closed bool
	log    *logger.Logger
}

// NewWriter starts ffmpeg writing to path. Cancel ctx to abort encoding.
func NewWriter(ctx context.Context, path string, width, height, fps int, log *logger.Logger) (*Writer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid video size %dx%d", width, height)
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	pr, pw := io.Pipe()
	w := &Writer{
		path:   path,
		width:  width,
		height: height,
		pw:     pw,
		done:   make(chan error, 1),
		stderr: &bytes.Buffer{},
		log:    log,
	}

	stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": fps,
	}).Output(path, ffmpeg.KwArgs{
		"vcodec":  "mpeg4",
		"q:v":     3,
		"pix_fmt": "yuv420p",
		"vf":      "pad=ceil(iw/2)*2:ceil(ih/2)*2",
	}).OverWriteOutput()
	// Input and error output are carried on the stream context, so the
	// caller's context has to be installed first.
	stream.Context = ctx
	stream = stream.WithInput(pr).WithErrorOutput(w.stderr)

	go func() {
		err := stream.Run()
		// Unblock any pending WriteFrame if ffmpeg exits early.
		if err != nil {
			pr.CloseWithError(err)
		} else {
			pr.Close()
		}
		w.done <- err
	}()

	log.Debug("video writer started", "path", path, "width", width, "height", height, "fps", fps)
	return w, nil
}

// WriteFrame appends one frame.
func (w *Writer) WriteFrame(img image.Image) error {
	if w.closed {
		return ErrClosed
	}

	frame := imaging.New(w.width, w.height, color.Black)
	frame = imaging.Paste(frame, img, image.Pt(0, 0))

	if _, err := w.pw.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame %d: %w", w.frames, err)
	}
	w.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Close flushes the stream and waits for ffmpeg to finish.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_ = w.pw.Close()
	if err := <-w.done; err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(w.stderr.String()))
	}

	w.log.Info("video written", "path", w.path, "frames", w.frames)
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
