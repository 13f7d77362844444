// Package sqlite implements a persisted segment on top of modernc.org/sqlite,
// a pure Go SQLite driver.
//
// Schema:
//
//	meta(key, value)                 codec name and field mappings
//	docs(doc, live)                  one row per document
//	stored(doc, field, value)        stored fields
//	postings(field, term, doc)       indexed fields
//
// Documents are written in one transaction each, so a document is either
// fully visible or absent.
package sqlite
