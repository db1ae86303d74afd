package book

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// maxEntrySize bounds the decompressed size of a single container entry.
const maxEntrySize int64 = 256 * 1024 * 1024

// Archive resolves the entries of a zip container to byte sources.
// Lookups are exact first, then case-insensitive.
type Archive struct {
	zr    *zip.Reader
	src   Source
	exact map[string]*zip.File
	lower map[string]*zip.File
	limit int64
}

func newArchive(src Source) (*Archive, error) {
	zr, err := zip.NewReader(src, src.Size())
	if err != nil {
		return nil, fmt.Errorf("book: open zip: %v: %w", err, ErrBookFormat)
	}
	a := &Archive{
		zr:    zr,
		src:   src,
		exact: make(map[string]*zip.File, len(zr.File)),
		lower: make(map[string]*zip.File, len(zr.File)),
		limit: maxEntrySize,
	}
	for _, f := range zr.File {
		if _, ok := a.exact[f.Name]; !ok {
			a.exact[f.Name] = f
		}
		key := strings.ToLower(f.Name)
		if _, ok := a.lower[key]; !ok {
			a.lower[key] = f
		}
	}
	return a, nil
}

// Files returns the entry names in archive order.
func (a *Archive) Files() []string {
	names := make([]string, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		names = append(names, f.Name)
	}
	return names
}

func (a *Archive) find(name string) *zip.File {
	if f, ok := a.exact[name]; ok {
		return f
	}
	return a.lower[strings.ToLower(name)]
}

// ReadFile returns the decompressed content of the named entry.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f := a.find(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return readEntry(f, a.limit)
}

// Open returns the named entry as a byte source. Stored entries are
// served as views of the container itself; compressed entries are
// inflated on each read.
func (a *Archive) Open(name string) (Source, error) {
	f := a.find(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("book: unsafe zip entry path: %s", f.Name)
	}
	if f.Method == zip.Store && f.CompressedSize64 == f.UncompressedSize64 {
		off, err := f.DataOffset()
		if err != nil {
			return nil, fmt.Errorf("book: locate zip entry %s: %w", f.Name, err)
		}
		if end := off + int64(f.UncompressedSize64); off >= 0 && end <= a.src.Size() {
			return io.NewSectionReader(a.src, off, int64(f.UncompressedSize64)), nil
		}
	}
	if f.UncompressedSize64 > uint64(a.limit) {
		return nil, fmt.Errorf("book: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, a.limit)
	}
	return &zipEntrySource{f: f, size: int64(f.UncompressedSize64)}, nil
}

// zipEntrySource reads a compressed entry on demand. Every ReadAt
// inflates the entry from its start and keeps nothing afterwards.
type zipEntrySource struct {
	f    *zip.File
	size int64
}

func (s *zipEntrySource) Size() int64 {
	return s.size
}

func (s *zipEntrySource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("book: zip entry %s: negative offset", s.f.Name)
	}
	if off >= s.size {
		return 0, io.EOF
	}

	rc, err := s.f.Open()
	if err != nil {
		return 0, fmt.Errorf("book: open zip entry %s: %w", s.f.Name, err)
	}
	defer rc.Close()

	if _, err := io.CopyN(io.Discard, rc, off); err != nil {
		return 0, fmt.Errorf("book: seek zip entry %s: %w", s.f.Name, err)
	}
	want := p
	if rest := s.size - off; int64(len(want)) > rest {
		want = want[:rest]
	}
	n, err := io.ReadFull(rc, want)
	if err != nil {
		return n, fmt.Errorf("book: read zip entry %s: %w", s.f.Name, err)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// readEntry inflates f, refusing unsafe names and entries whose real or
// declared size exceeds limit.
func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("book: unsafe zip entry path: %s", f.Name)
	}
	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("book: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("book: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("book: read zip entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("book: zip entry %s inflates past %d bytes", f.Name, limit)
	}
	return data, nil
}

// resolveRelativePath resolves href against the directory of basePath.
// Hrefs that are absolute or escape the archive root resolve to "".
func resolveRelativePath(basePath, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	p := path.Join(path.Dir(basePath), href)
	if !isSafePath(p) {
		return ""
	}
	return p
}

// isSafePath reports whether p stays inside the archive root.
func isSafePath(p string) bool {
	p = path.Clean(p)
	return !strings.HasPrefix(p, "/") && p != ".." && !strings.HasPrefix(p, "../")
}

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// hrefWithoutFragment drops a trailing "#fragment".
func hrefWithoutFragment(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i]
	}
	return href
}
