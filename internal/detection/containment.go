package detection

// RemoveContained drops every box that lies entirely inside another box of
// the set. Input order is preserved.
//
// Boxes are compared by index, never against themselves. Two boxes with
// identical coordinates each contain the other, so both are dropped; callers
// relying on duplicates surviving must deduplicate first.
func RemoveContained(set DetectionSet) DetectionSet {
	out := make(DetectionSet, 0, len(set))
	for i, box := range set {
		contained := false
		for j, other := range set {
			if i != j && box.ContainedIn(other) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, box)
		}
	}
	return out
}
