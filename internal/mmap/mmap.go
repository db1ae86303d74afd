// Package mmap exposes read-only files as random-access byte slices,
// memory-mapping them where the platform allows.
package mmap

import (
	"errors"
	"io"
)

// ErrClosed is returned by ReadAt after Close.
var ErrClosed = errors.New("mmap: file closed")

// File is a read-only view of a whole file.
// A File is not safe for concurrent use with Close.
type File struct {
	data    []byte
	release func([]byte) error
	closed  bool
}

// Size returns the length of the file in bytes.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, errors.New("mmap: negative offset")
	}
	if off >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the mapping. Close is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	data := f.data
	f.data = nil
	if f.release == nil || len(data) == 0 {
		return nil
	}
	return f.release(data)
}
