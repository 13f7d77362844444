package mmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned by reads from a closed File.
	ErrClosed = errors.New("mmap: file closed")
	// ErrNegativeOffset is returned by ReadAt for off < 0.
	ErrNegativeOffset = errors.New("mmap: negative offset")
)

// File is a read-only memory-mapped file.
type File struct {
	data   []byte
	unmap  func() error
	closed atomic.Bool
}

// Open maps the file at path. Empty files are valid and map to no bytes.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mmap: %s: size %d exceeds address space", path, size)
	}
	if size == 0 {
		return &File{}, nil
	}

	data, unmap, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	adviseSequential(data)
	return &File{data: data, unmap: unmap}, nil
}

// Bytes returns the mapped content. The slice must not be used after Close.
func (f *File) Bytes() []byte {
	if f.closed.Load() {
		return nil
	}
	return f.data
}

// Len returns the size of the file in bytes.
func (f *File) Len() int { return len(f.data) }

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	switch {
	case f.closed.Load():
		return 0, ErrClosed
	case off < 0:
		return 0, ErrNegativeOffset
	case off >= int64(len(f.data)):
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file. Calling Close more than once is a no-op.
func (f *File) Close() error {
	if f.closed.Swap(true) || f.unmap == nil {
		return nil
	}
	return f.unmap()
}
