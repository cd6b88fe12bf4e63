package detection

// MergeNearby unions boxes whose centers lie close together.
//
// Parameters:
//   - set: Boxes in the order they should be considered, normally the output
//     of SuppressOverlaps. Not modified.
//   - distanceThreshold: Two boxes are near when the Euclidean distance
//     between their centers is strictly below this value, in pixels.
//     Typical: 55.
//
// # Algorithm
//
// The set is treated as a queue. The front box becomes the current box and
// the rest are scanned once, in order. Each near box is unioned into the
// current box and removed; the current box's center moves with every union,
// so later boxes in the same scan are compared against the grown box. Boxes
// that are not near are kept, in order, for the next pass. After the scan the
// current box is final and the next pass starts from the front of what is
// left.
//
// The scan is single-pass per current box. A box that only becomes near after
// a later union in the same scan is not revisited, so chains of near boxes
// can stay split. Use MergeClusters for transitive grouping.
func MergeNearby(set DetectionSet, distanceThreshold float64) DetectionSet {
	queue := make(DetectionSet, len(set))
	copy(queue, set)

	merged := make(DetectionSet, 0, len(queue))
	for len(queue) > 0 {
		current := queue[0]
		rest := make(DetectionSet, 0, len(queue)-1)
		for _, box := range queue[1:] {
			if current.CenterDistance(box) < distanceThreshold {
				current = current.Union(box)
			} else {
				rest = append(rest, box)
			}
		}
		merged = append(merged, current)
		queue = rest
	}

	return merged
}

// MergeClusters unions every group of boxes connected by a chain of near
// pairs, using the same strict center-distance test as MergeNearby on the
// original boxes.
//
// Groups are emitted in order of their first member in set, which makes the
// result independent of how near pairs are discovered. Unlike MergeNearby,
// distances are not re-measured against grown boxes.
func MergeClusters(set DetectionSet, distanceThreshold float64) DetectionSet {
	n := len(set)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if set[i].CenterDistance(set[j]) < distanceThreshold {
				union(i, j)
			}
		}
	}

	groups := make(map[int]int, n)
	merged := make(DetectionSet, 0, n)
	for i, box := range set {
		root := find(i)
		if k, ok := groups[root]; ok {
			merged[k] = merged[k].Union(box)
			continue
		}
		groups[root] = len(merged)
		merged = append(merged, box)
	}

	return merged
}
