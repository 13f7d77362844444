package query

import (
	"context"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/segment"
)

// NoMoreDocs is returned by iterators once they are exhausted.
const NoMoreDocs = math.MaxInt32

// DocIDIterator walks doc ids in ascending order.
type DocIDIterator interface {
	// DocID returns the current doc, -1 before the first call to NextDoc or
	// Advance, and NoMoreDocs once exhausted.
	DocID() int
	// NextDoc moves to the next doc and returns it.
	NextDoc() int
	// Advance moves to the first doc >= target and returns it.
	Advance(target int) int
	// Cost estimates the number of docs the iterator visits.
	Cost() int64
}

// Scorer scores the documents of one segment for one query. It is not safe
// for concurrent use.
//
// As a DocIDIterator, Scorer only stops on documents that pass the match
// predicate. Hosts that want to interleave cheap and expensive checks use
// TwoPhase instead.
type Scorer struct {
	query  *ImageQuery
	seg    segment.Reader
	field  string
	maxDoc int
	it     roaring.IntPeekable
	cost   int64

	filter    *roaring.Bitmap // nil accepts every candidate
	matchCost float32

	doc   int
	state State
}

var _ DocIDIterator = (*Scorer)(nil)

// State returns the current protocol state.
func (s *Scorer) State() State { return s.state }

// DocID implements DocIDIterator.
func (s *Scorer) DocID() int { return s.doc }

// Cost implements DocIDIterator.
func (s *Scorer) Cost() int64 { return s.cost }

// NextDoc moves to the next matching document.
func (s *Scorer) NextDoc() int {
	for doc := s.nextCandidate(); doc != NoMoreDocs; doc = s.nextCandidate() {
		if s.matches() {
			return doc
		}
	}
	return NoMoreDocs
}

// Advance moves to the first matching document >= target.
func (s *Scorer) Advance(target int) int {
	doc := s.advanceCandidate(target)
	for doc != NoMoreDocs && !s.matches() {
		doc = s.nextCandidate()
	}
	return doc
}

// TwoPhase exposes the approximation and the match predicate separately.
func (s *Scorer) TwoPhase() *TwoPhaseIterator {
	return &TwoPhaseIterator{s: s}
}

// Score scores the current document. It fails with a
// *MissingFeatureFieldError when the document has no stored descriptor.
func (s *Scorer) Score(ctx context.Context) (float32, error) {
	if s.state != StateMatching && s.state != StateScored {
		return 0, fmt.Errorf("%w (state %s)", ErrNotPositioned, s.state)
	}
	d, err := s.distance(ctx, s.doc)
	if err != nil {
		return 0, err
	}
	s.state = StateScored
	return ScoreFromDistance(d, s.query.boost), nil
}

// distance decodes the stored descriptor of doc and compares it to the query.
func (s *Scorer) distance(ctx context.Context, doc int) (float64, error) {
	raw, err := s.seg.Stored(ctx, doc, s.field)
	if err != nil {
		return 0, fmt.Errorf("read %q of document %d: %w", s.field, doc, err)
	}
	if len(raw) == 0 {
		return 0, &MissingFeatureFieldError{Field: s.query.field, Kind: s.query.Kind(), Doc: doc}
	}
	stored, err := feature.Decode(s.query.Kind(), raw)
	if err != nil {
		return 0, fmt.Errorf("document %d: %w", doc, err)
	}
	return feature.Distance(s.query.descriptor, stored)
}

func (s *Scorer) nextCandidate() int {
	if s.state == StateExhausted {
		return NoMoreDocs
	}
	if !s.it.HasNext() {
		return s.exhaust()
	}
	s.doc = int(s.it.Next())
	s.state = StateApproximating
	return s.doc
}

func (s *Scorer) advanceCandidate(target int) int {
	if s.state == StateExhausted {
		return NoMoreDocs
	}
	if target >= s.maxDoc {
		return s.exhaust()
	}
	if target <= s.doc {
		target = s.doc + 1
	}
	if target > 0 {
		s.it.AdvanceIfNeeded(uint32(target))
	}
	return s.nextCandidate()
}

func (s *Scorer) exhaust() int {
	s.doc = NoMoreDocs
	s.state = StateExhausted
	return NoMoreDocs
}

func (s *Scorer) matches() bool {
	if s.state != StateApproximating && s.state != StateMatching && s.state != StateScored {
		return false
	}
	if s.filter != nil && !s.filter.Contains(uint32(s.doc)) {
		return false
	}
	if s.state == StateApproximating {
		s.state = StateMatching
	}
	return true
}

// TwoPhaseIterator splits iteration into a cheap approximation and a match
// check on the current candidate.
type TwoPhaseIterator struct {
	s *Scorer
}

// Approximation returns the candidate iterator. It shares its position with
// the scorer.
func (t *TwoPhaseIterator) Approximation() DocIDIterator {
	return approximation{s: t.s}
}

// Matches reports whether the current candidate is a match.
func (t *TwoPhaseIterator) Matches() bool { return t.s.matches() }

// MatchCost estimates the cost of one Matches call. It is 0 without a hash
// filter.
func (t *TwoPhaseIterator) MatchCost() float32 { return t.s.matchCost }

type approximation struct {
	s *Scorer
}

func (a approximation) DocID() int             { return a.s.doc }
func (a approximation) NextDoc() int           { return a.s.nextCandidate() }
func (a approximation) Advance(target int) int { return a.s.advanceCandidate(target) }
func (a approximation) Cost() int64            { return a.s.cost }
