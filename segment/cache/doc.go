// Package cache keeps recently read stored feature records in memory.
//
// Scoring reads one stored record per candidate document. Against a
// persistent segment every read is a database lookup; Reader wraps any
// segment.Reader and serves repeated reads from a sharded LRU instead.
// Stored records never change once written, so entries need no invalidation;
// deletions only affect the live set, which is never cached.
package cache
