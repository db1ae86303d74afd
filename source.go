package book

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/simp-lee/book/internal/mmap"
)

// Source is a size-known, random-access byte source.
type Source interface {
	io.ReaderAt
	Size() int64
}

// SourceFile is a Source holding a resource that must be released.
type SourceFile interface {
	Source
	io.Closer
}

// SideFile is a per-book user data file opened for reading and writing.
// *os.File satisfies it.
type SideFile interface {
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
	Stat() (fs.FileInfo, error)
	Close() error
}

// Storage opens primary book sources and side files.
type Storage interface {
	// OpenSource opens name read-only.
	OpenSource(name string) (SourceFile, error)

	// OpenSideFile opens name read-write, creating it when absent.
	OpenSideFile(name string) (SideFile, error)
}

// errSideFileIsDir disables a side file whose name is taken by a directory.
var errSideFileIsDir = errors.New("book: side file path is a directory")

// section returns a non-copying view of src covering r.
// A range spanning the whole source returns src itself.
func section(src Source, r Range) Source {
	if r.Offset == 0 && int64(r.Length) == src.Size() {
		return src
	}
	return io.NewSectionReader(src, r.Offset, int64(r.Length))
}

// OSStorage is the Storage backed by the local file system.
type OSStorage struct {
	// UseMmap maps primary sources into memory instead of reading
	// them through the file descriptor.
	UseMmap bool
}

// OpenSource implements Storage.
func (s OSStorage) OpenSource(name string) (SourceFile, error) {
	if s.UseMmap {
		f, err := mmap.Open(name)
		if err != nil {
			return nil, fmt.Errorf("book: open %s: %w", name, err)
		}
		return f, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("book: open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("book: stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("book: open %s: is a directory: %w", name, ErrBookFormat)
	}
	return &fileSource{File: f, size: info.Size()}, nil
}

// OpenSideFile implements Storage.
func (s OSStorage) OpenSideFile(name string) (SideFile, error) {
	if info, err := os.Stat(name); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s", errSideFileIsDir, name)
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("book: open side file %s: %w", name, err)
	}
	return f, nil
}

// fileSource adapts an *os.File whose size was taken at open time.
type fileSource struct {
	*os.File
	size int64
}

func (f *fileSource) Size() int64 {
	return f.size
}

// changeExtension replaces the extension of filename with ext.
// A name without an extension gets ext appended.
func changeExtension(filename, ext string) string {
	base := filepath.Base(filename)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return filename[:len(filename)-len(base)+i] + ext
	}
	return filename + ext
}

// readSideFile returns the whole content of f.
func readSideFile(f SideFile) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	data := make([]byte, info.Size())
	n, err := f.ReadAt(data, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(data)) {
		return nil, err
	}
	return data, nil
}

// writeSideFile replaces the content of f with data.
// The record is built in full before the file is truncated.
func writeSideFile(f SideFile, data []byte) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	_, err := f.WriteAt(data, 0)
	return err
}
