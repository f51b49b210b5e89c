package tokenizer

import "container/heap"

// mergePiece runs the BPE reduction for one pre-token. Symbols start as one
// per byte and live in a doubly linked list over slot indices; a min-heap
// ordered by rank selects the globally lowest-ranked adjacent pair after
// every merge, which is required for output to match the reference
// tokenizer (a single left-to-right pass is not equivalent, since a merge
// can create a new pair with a lower rank).
//
// Heap entries are invalidated by per-slot version counters instead of
// being removed, the same scheme the incremental encoders in bpetok use.
func (c *Codec) mergePiece(piece string) []int {
	n := len(piece)
	if n == 0 {
		return nil
	}
	if n == 1 {
		id, _ := c.enc.Rank(piece)
		return []int{id}
	}

	// Slot i initially covers piece[i : i+1]; merging extends end[i] and
	// unlinks the absorbed right slot.
	start := make([]int, n)
	end := make([]int, n)
	prev := make([]int, n)
	next := make([]int, n)
	ver := make([]int, n)
	for i := 0; i < n; i++ {
		start[i], end[i] = i, i+1
		prev[i], next[i] = i-1, i+1
	}
	next[n-1] = -1

	h := make(mergeHeap, 0, n)
	push := func(i int) {
		if i < 0 {
			return
		}
		j := next[i]
		if j < 0 {
			return
		}
		if rank, ok := c.enc.Rank(piece[start[i]:end[j]]); ok {
			heap.Push(&h, mergeCand{rank: rank, pos: i, verL: ver[i], verR: ver[j]})
		}
	}
	for i := 0; i < n-1; i++ {
		push(i)
	}

	for h.Len() > 0 {
		cand := heap.Pop(&h).(mergeCand)
		i := cand.pos
		j := next[i]
		if j < 0 {
			continue
		}
		// A version bump on either slot means this entry described a pair
		// that no longer exists.
		if ver[i] != cand.verL || ver[j] != cand.verR {
			continue
		}

		end[i] = end[j]
		nj := next[j]
		next[i] = nj
		if nj >= 0 {
			prev[nj] = i
		}
		prev[j], next[j] = -1, -1
		ver[i]++
		ver[j]++

		if pi := prev[i]; pi >= 0 {
			push(pi)
		}
		push(i)
	}

	out := make([]int, 0, 4)
	for i := 0; i != -1; i = next[i] {
		// Merged symbols are in the table by construction; single bytes are
		// guaranteed by the New-time byte coverage check.
		id, _ := c.enc.Rank(piece[start[i]:end[i]])
		out = append(out, id)
	}
	return out
}

// mergeCand is a heap entry proposing to merge the symbol at pos with its
// right neighbor.
type mergeCand struct {
	rank int
	pos  int
	verL int
	verR int
}

// mergeHeap is a min-heap over candidates, ordered by rank and breaking
// ties on the leftmost position.
type mergeHeap []mergeCand

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].pos < h[j].pos
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(mergeCand)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
