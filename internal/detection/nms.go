package detection

import "sort"

// SuppressOverlaps applies area-ordered non-maximal suppression.
//
// Parameters:
//   - set: Boxes to filter. Not modified.
//   - overlapThreshold: A box survives a keeper only when its overlap ratio
//     (intersection over union) with the keeper is strictly below this value.
//     Typical: 0.3.
//
// Returns the kept boxes, largest area first.
//
// # Algorithm
//
//  1. Stable sort by area, descending. Equal areas keep their input order.
//  2. Take the first remaining box as a keeper.
//  3. Retain only boxes whose overlap with the keeper is below the threshold.
//  4. Repeat from step 2 until no boxes remain.
//
// A pair with zero union area counts as zero overlap. Running the function
// again on its own output returns the same boxes.
func SuppressOverlaps(set DetectionSet, overlapThreshold float64) DetectionSet {
	remaining := make(DetectionSet, len(set))
	copy(remaining, set)
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Area > remaining[j].Area
	})

	kept := make(DetectionSet, 0, len(remaining))
	for len(remaining) > 0 {
		current := remaining[0]
		kept = append(kept, current)

		next := make(DetectionSet, 0, len(remaining)-1)
		for _, box := range remaining[1:] {
			if current.OverlapRatio(box) < overlapThreshold {
				next = append(next, box)
			}
		}
		remaining = next
	}

	return kept
}
