package brain

// Overlap counts the indices two winner sets share.
func Overlap(a, b []int) int {
	seen := make(map[int]bool, len(a))
	for _, x := range a {
		seen[x] = true
	}
	count := 0
	for _, x := range b {
		if seen[x] {
			count++
		}
	}
	return count
}

// Overlaps computes the overlap of each winner set in the list against the
// set at the base index.
func Overlaps(sets [][]int, base int) []int {
	overlaps := make([]int, len(sets))
	for i, set := range sets {
		overlaps[i] = Overlap(set, sets[base])
	}
	return overlaps
}
