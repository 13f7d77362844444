// Package query scores segment documents by visual similarity to a query
// image.
//
// An ImageQuery holds the descriptor of the query image for one field and
// descriptor kind. CreateScorer binds it to a segment and returns a Scorer
// that follows a two-phase protocol:
//
//	Unpositioned -> Approximating -> Matching -> Scored
//	                      \______________________________-> Exhausted
//
// The approximation walks every live document in ascending id order. The
// match predicate accepts every candidate unless the query carries a hash
// filter, in which case a candidate must share at least one hash token with
// the query. Scoring decodes the stored descriptor and maps its distance d to
//
//	score = (2 - d) * boost   if d <= 1
//	score = (1 / d) * boost   otherwise
//
// so scores are strictly positive, decrease with distance and never exceed
// 2 * boost.
package query
