// Package searcher collects the best scoring hits of a query with a bounded
// priority queue.
package searcher
