package searcher

import (
	"container/heap"
	"slices"
)

// Compile time check to ensure TopK satisfies the heap interface.
var _ heap.Interface = (*TopK)(nil)

// Hit is a scored document of one segment.
type Hit struct {
	Segment int
	Doc     int
	Score   float32
}

// better reports whether a ranks before b: higher score first, ties broken
// by lower segment and then lower doc so results are deterministic.
func better(a, b Hit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Segment != b.Segment {
		return a.Segment < b.Segment
	}
	return a.Doc < b.Doc
}

// TopK keeps the k best hits. The root of the heap is the worst kept hit.
// It is not safe for concurrent use.
type TopK struct {
	k     int
	items []Hit
}

// NewTopK creates a collector for k hits. k <= 0 keeps nothing.
func NewTopK(k int) *TopK {
	return &TopK{k: k, items: make([]Hit, 0, min(max(k, 0), 1024))}
}

// Worst returns the worst kept hit.
func (q *TopK) Worst() (Hit, bool) {
	if len(q.items) == 0 {
		return Hit{}, false
	}
	return q.items[0], true
}

// Full reports whether k hits are kept.
func (q *TopK) Full() bool { return len(q.items) >= q.k }

// Offer adds h if it ranks among the k best. It reports whether h was kept.
func (q *TopK) Offer(h Hit) bool {
	if q.k <= 0 {
		return false
	}
	if len(q.items) < q.k {
		q.items = append(q.items, h)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if !better(h, q.items[0]) {
		return false
	}
	q.items[0] = h
	q.siftDown(0)
	return true
}

// Merge offers every hit of other.
func (q *TopK) Merge(other *TopK) {
	for _, h := range other.items {
		q.Offer(h)
	}
}

// Results returns the kept hits, best first.
func (q *TopK) Results() []Hit {
	out := slices.Clone(q.items)
	slices.SortFunc(out, func(a, b Hit) int {
		switch {
		case better(a, b):
			return -1
		case better(b, a):
			return 1
		default:
			return 0
		}
	})
	return out
}

// Len returns the number of kept hits.
func (q *TopK) Len() int { return len(q.items) }

// Less orders the worst hit first.
func (q *TopK) Less(i, j int) bool { return better(q.items[j], q.items[i]) }

// Swap swaps the elements with indexes i and j.
func (q *TopK) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

// Push pushes the element x onto the heap.
func (q *TopK) Push(x any) { q.items = append(q.items, x.(Hit)) }

// Pop removes and returns the last element.
func (q *TopK) Pop() any {
	n := len(q.items)
	h := q.items[n-1]
	q.items = q.items[:n-1]
	return h
}

// Reset clears the collector.
func (q *TopK) Reset() { q.items = q.items[:0] }

func (q *TopK) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.Less(i, parent) {
			break
		}
		q.Swap(i, parent)
		i = parent
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && q.Less(right, left) {
			child = right
		}
		if !q.Less(child, i) {
			break
		}
		q.Swap(i, child)
		i = child
	}
}
