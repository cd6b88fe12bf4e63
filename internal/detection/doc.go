// Package detection turns foreground masks into bounding-box detections.
//
// A mask is the per-pixel output of a change-detection model for one video
// frame. This package post-processes it into a small set of boxes that can be
// drawn over the frame, stored, or compared across runs.
//
// # Pipeline
//
// Detect runs four stages in order:
//
//  1. Contour extraction: outer borders of connected foreground regions,
//     reduced to bounding rectangles and filtered by a minimum area
//  2. Containment pruning: boxes lying fully inside another box are dropped
//  3. Non-maximal suppression: largest boxes win over boxes they overlap
//  4. Proximity merging: boxes whose centers are close are unioned
//
// Each stage returns a new DetectionSet and never mutates its input. An empty
// mask, or a mask whose regions are all below the area threshold, produces an
// empty set rather than an error.
//
// # Coordinate System
//
// All boxes use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - (X1, Y1) is inclusive, (X2, Y2) is exclusive
//
// Every stage works on the same corner-pair Box. Rectangles given as
// (x, y, width, height) are converted once with BoxFromRect.
//
// # Order Dependence
//
// Containment pruning and greedy merging depend on input order. The stages
// keep a fixed scan order (raster contour order, stable area sort, front of
// queue merging) so a given mask always yields the same boxes. MergeClusters
// is an order-independent alternative to MergeNearby, selected through
// Params.MergeStrategy.
//
// # Concurrency
//
// All functions are pure and hold no state between calls, so frames can be
// processed concurrently without coordination.
package detection
