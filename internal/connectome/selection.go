package connectome

import "sort"

// topK selects the indices of the k largest entries of input without fully
// ordering the rest. Ties at the boundary break toward the lower index: a
// later neuron only displaces an earlier one on strictly greater input.
// The returned indices are sorted ascending.
//
// The selection keeps a k-sized binary min-heap ordered worst-first, so a
// round over n neurons costs O(n log k).
func topK(input []float64, k int) []int {
	if k <= 0 {
		return []int{}
	}
	if k >= len(input) {
		all := make([]int, len(input))
		for i := range all {
			all[i] = i
		}
		return all
	}

	heap := make([]int, 0, k)

	// worse reports whether neuron a is a worse candidate than neuron b.
	worse := func(a, b int) bool {
		if input[a] != input[b] {
			return input[a] < input[b]
		}
		return a > b
	}

	siftDown := func(i int) {
		for {
			left, right := 2*i+1, 2*i+2
			least := i
			if left < len(heap) && worse(heap[left], heap[least]) {
				least = left
			}
			if right < len(heap) && worse(heap[right], heap[least]) {
				least = right
			}
			if least == i {
				return
			}
			heap[i], heap[least] = heap[least], heap[i]
			i = least
		}
	}

	siftUp := func(i int) {
		for i > 0 {
			parent := (i - 1) / 2
			if !worse(heap[i], heap[parent]) {
				return
			}
			heap[i], heap[parent] = heap[parent], heap[i]
			i = parent
		}
	}

	for i := range input {
		if len(heap) < k {
			heap = append(heap, i)
			siftUp(len(heap) - 1)
			continue
		}
		// Indices arrive in ascending order, so on equal input the
		// incumbent (lower index) survives.
		if worse(i, heap[0]) {
			continue
		}
		heap[0] = i
		siftDown(0)
	}

	sort.Ints(heap)
	return heap
}
