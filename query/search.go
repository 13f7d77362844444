package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/imgsim/searcher"
	"github.com/hupe1980/imgsim/segment"
)

// Hit is a scored document. Segment indexes the slice passed to Search.
type Hit = searcher.Hit

// SearchOptions tune Search.
type SearchOptions struct {
	// Parallelism bounds concurrently scored segments. Zero scores one
	// segment at a time.
	Parallelism int
}

// Search returns the k best hits of q across segments, best first. A missing
// stored descriptor on any candidate fails the whole search.
func Search(ctx context.Context, q *ImageQuery, segments []segment.Reader, k int, opts SearchOptions) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	perSegment := make([]*searcher.TopK, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Parallelism, 1))
	for i, seg := range segments {
		g.Go(func() error {
			top, err := collect(gctx, q, seg, i, k)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			perSegment[i] = top
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	top := searcher.NewTopK(k)
	for _, t := range perSegment {
		top.Merge(t)
	}
	return top.Results(), nil
}

func collect(ctx context.Context, q *ImageQuery, seg segment.Reader, segIdx, k int) (*searcher.TopK, error) {
	s, err := q.CreateScorer(ctx, seg)
	if err != nil {
		return nil, err
	}

	top := searcher.NewTopK(k)
	for doc := s.NextDoc(); doc != NoMoreDocs; doc = s.NextDoc() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, err := s.Score(ctx)
		if err != nil {
			return nil, err
		}
		top.Offer(Hit{Segment: segIdx, Doc: doc, Score: score})
	}
	return top, nil
}
