// Package pipeline turns raw image bytes into the index fields of one
// document.
//
// For every requested descriptor kind the pipeline emits one stored binary
// field holding the encoded descriptor, followed by one indexed field per
// hash token and a stored field with the fingerprint of the table that
// produced the tokens. Declared metadata sub-fields come last.
//
// A document is indexed all or nothing: any decode, extraction or hashing
// failure (and a metadata failure unless IgnoreMetadataErrors is set) returns
// an error and no fields. Output is deterministic for identical input, field
// spec and tables, independent of extraction concurrency.
package pipeline
