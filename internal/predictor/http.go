package predictor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/motion-detect-mcp/internal/dataset"
	"github.com/ironsheep/motion-detect-mcp/internal/detection"
	mdimaging "github.com/ironsheep/motion-detect-mcp/internal/imaging"
)

// HTTPPredictor posts each frame to an inference service and reads back a
// mask image.
//
// The service receives a multipart form with the frame in the "file" field
// and answers 200 with the mask encoded as PNG or JPEG, one gray level per
// pixel (255 * probability).
type HTTPPredictor struct {
	url    string
	client *http.Client
	opts   mdimaging.MaskOptions
}

// NewHTTPPredictor creates a predictor for the service at url. A zero
// timeout means no per-request timeout beyond the caller's context.
func NewHTTPPredictor(url string, timeout time.Duration, opts mdimaging.MaskOptions) *HTTPPredictor {
	return &HTTPPredictor{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: timeout},
		opts:   opts,
	}
}

// Predict sends the frame and binarizes the returned mask.
func (p *HTTPPredictor) Predict(ctx context.Context, frame dataset.Frame) (*detection.Mask, error) {
	data, err := os.ReadFile(frame.Path)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", frame.Name())
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("copy frame data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/predict", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed for %s with status: %d", frame.Name(), resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode mask: %w", err)
	}

	return mdimaging.BinarizeMask(img, p.opts), nil
}

// CheckHealth checks that the inference service is reachable.
func (p *HTTPPredictor) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}

	return nil
}
