// Package imaging loads frames and masks and renders detections.
//
// It sits between the detection core, which only understands binary masks and
// boxes, and the image files of a dataset. Masks coming from a predictor are
// binarized here; detections going to a viewer or video are drawn here.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X increases rightward, Y increases downward
//   - For regions, (x1,y1) is inclusive and (x2,y2) is exclusive
//
// Images with a non-zero origin are treated as if their origin were (0,0).
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless
// and return new images; inputs are never modified.
//
// # Libraries
//
//   - disintegration/imaging: decoding, cloning, cropping, pasting, resizing
//   - anthonynsimon/bild: mask thresholding and dilation
//   - lucasb-eyer/go-colorful: color parsing and palettes
//   - golang.org/x/image: caption text
//   - gonum: mask and spacing statistics
package imaging
