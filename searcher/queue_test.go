package searcher

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imgsim/testutil"
)

func TestTopK(t *testing.T) {
	q := NewTopK(3)
	for i, s := range []float32{0.5, 1.9, 0.1, 1.2, 0.7} {
		q.Offer(Hit{Doc: i, Score: s})
	}

	assert.True(t, q.Full())
	worst, ok := q.Worst()
	require.True(t, ok)
	assert.Equal(t, float32(0.7), worst.Score)

	assert.Equal(t, []Hit{
		{Doc: 1, Score: 1.9},
		{Doc: 3, Score: 1.2},
		{Doc: 4, Score: 0.7},
	}, q.Results())
}

func TestTopK_TiesAreDeterministic(t *testing.T) {
	q := NewTopK(2)
	q.Offer(Hit{Segment: 1, Doc: 0, Score: 1})
	q.Offer(Hit{Segment: 0, Doc: 5, Score: 1})
	q.Offer(Hit{Segment: 0, Doc: 2, Score: 1})

	assert.Equal(t, []Hit{
		{Segment: 0, Doc: 2, Score: 1},
		{Segment: 0, Doc: 5, Score: 1},
	}, q.Results())
}

func TestTopK_ZeroK(t *testing.T) {
	q := NewTopK(0)
	assert.False(t, q.Offer(Hit{Score: 2}))
	assert.Empty(t, q.Results())
	_, ok := q.Worst()
	assert.False(t, ok)
}

func TestTopK_MatchesSort(t *testing.T) {
	rng := testutil.NewRNG(3)
	const k = 10

	q := NewTopK(k)
	all := NewTopK(1000)
	for i := range 500 {
		h := Hit{Segment: rng.Intn(3), Doc: i, Score: float32(rng.Float64() * 2)}
		q.Offer(h)
		all.Offer(h)
	}

	assert.Equal(t, all.Results()[:k], q.Results())
}

func TestTopK_Merge(t *testing.T) {
	a, b := NewTopK(2), NewTopK(2)
	a.Offer(Hit{Segment: 0, Doc: 1, Score: 0.4})
	a.Offer(Hit{Segment: 0, Doc: 2, Score: 1.5})
	b.Offer(Hit{Segment: 1, Doc: 1, Score: 0.9})

	a.Merge(b)
	assert.Equal(t, []Hit{
		{Segment: 0, Doc: 2, Score: 1.5},
		{Segment: 1, Doc: 1, Score: 0.9},
	}, a.Results())

	a.Reset()
	assert.Zero(t, a.Len())
}

func TestTopK_HeapInterface(t *testing.T) {
	q := NewTopK(4)
	heap.Push(q, Hit{Doc: 0, Score: 1})
	heap.Push(q, Hit{Doc: 1, Score: 0.2})
	heap.Push(q, Hit{Doc: 2, Score: 1.7})

	worst := heap.Pop(q).(Hit)
	assert.Equal(t, 1, worst.Doc)
	assert.Equal(t, 2, q.Len())
}
