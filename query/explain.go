package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/imgsim/segment"
)

// Explanation describes how a score was computed.
type Explanation struct {
	Match       bool
	Value       float32
	Description string
	Details     []Explanation
}

// String renders the explanation as an indented tree.
func (e Explanation) String() string {
	var b strings.Builder
	e.write(&b, 0)
	return b.String()
}

func (e Explanation) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	if e.Match {
		fmt.Fprintf(b, "%v = %s\n", e.Value, e.Description)
	} else {
		fmt.Fprintf(b, "no match: %s\n", e.Description)
	}
	for _, d := range e.Details {
		d.write(b, depth+1)
	}
}

// Explain reports how doc of seg scores against the query. A document that
// is deleted or rejected by the hash filter yields a non-matching explanation.
func (q *ImageQuery) Explain(ctx context.Context, seg segment.Reader, doc int) (Explanation, error) {
	s, err := q.CreateScorer(ctx, seg)
	if err != nil {
		return Explanation{}, err
	}

	desc := "weight(" + q.String() + ")"
	if s.Advance(doc) != doc {
		return Explanation{Description: fmt.Sprintf("%s doesn't match id %d", desc, doc)}, nil
	}

	score, err := s.Score(ctx)
	if err != nil {
		return Explanation{}, err
	}

	raw := score
	var details []Explanation
	if q.boost != 1 {
		details = append(details, Explanation{Match: true, Value: q.boost, Description: "boost"})
		raw = score / q.boost
	}
	details = append(details, Explanation{Match: true, Value: raw, Description: "image score (1/distance)"})

	return Explanation{
		Match:       true,
		Value:       score,
		Description: desc + ", product of:",
		Details:     details,
	}, nil
}
