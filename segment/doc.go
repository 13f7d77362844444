// Package segment defines the candidate source the similarity scorer reads
// from: a set of documents with stored binary fields and exact-term postings.
//
// Doc ids are dense and segment local, starting at 0. Deleted documents stay
// addressable but drop out of the live set.
//
// # Implementations
//
//   - Memory: in-memory segment with roaring postings
//   - sqlite: persisted segment on modernc.org/sqlite (package segment/sqlite)
package segment
