// Package mmap maps hash table files read-only.
//
// Table blobs are parsed once, front to back, when an engine starts, so Open
// hints sequential access to the kernel:
//
//	f, err := mmap.Open("tables/v1/lsh.imht")
//	if err != nil { ... }
//	defer f.Close()
//	table, err := hashing.Unmarshal(f.Bytes())
//
// Unix platforms use mmap(2) and madvise(2). Windows maps the file with
// CreateFileMapping/MapViewOfFile and ignores the hint.
package mmap
