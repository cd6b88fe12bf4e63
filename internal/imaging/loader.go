package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded frames and masks.
//
// The cache stores decoded image.Image objects keyed by their file path. Once a
// file is loaded, subsequent Load() calls for the same path return the cached
// copy without disk I/O. Sequence runs touch every frame once, so callers
// processing whole videos should Evict() frames they are done with.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("highway/input/in000001.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("highway/input/in000001.jpg")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Parameters:
//   - path: File path to the image. Any format registered with
//     disintegration/imaging is accepted (JPEG, PNG, GIF, TIFF, BMP).
//
// Returns:
//   - image.Image: The decoded image.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached using the exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// FrameInfo contains metadata about a frame or mask file.
type FrameInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif" or "unknown", from the file extension.
	Format string `json:"format"`

	// ColorModel is "gray", "gray16", "rgba", "rgba64", "ycbcr" or "paletted".
	ColorModel string `json:"color_model"`

	// Grayscale is true for single-channel images, which is what mask files
	// normally are.
	Grayscale bool `json:"grayscale"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrameInfo loads a frame into the cache and describes it.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
func LoadFrameInfo(cache *ImageCache, path string) (*FrameInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	model := "rgba"
	gray := false
	switch img.(type) {
	case *image.Gray:
		model, gray = "gray", true
	case *image.Gray16:
		model, gray = "gray16", true
	case *image.RGBA64, *image.NRGBA64:
		model = "rgba64"
	case *image.YCbCr:
		model = "ycbcr"
	case *image.Paletted:
		model = "paletted"
	}

	bounds := img.Bounds()
	return &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorModel:    model,
		Grayscale:     gray,
		FileSizeBytes: stat.Size(),
	}, nil
}

// Dimensions returns the width and height of an image file.
func Dimensions(cache *ImageCache, path string) (width, height int, err error) {
	img, err := cache.Load(path)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}
