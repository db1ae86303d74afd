package book

import (
	"errors"
	"fmt"
	"io"
)

// DefaultEncoding is the text encoding label chapters start with.
const DefaultEncoding = "utf-8"

// Chapter is a bounded byte range of a book, loaded into memory on first
// access. The reading cursor and the encoding label survive Unload.
type Chapter struct {
	// Title is the display title, "Chapter #n" unless the book supplies one.
	Title string

	number   int
	length   int
	src      Source
	buf      []byte
	cursor   int
	encoding string

	// prev and next are chain indices, -1 at either end.
	prev, next int
}

func newChapter(src Source, r Range) *Chapter {
	return &Chapter{
		Title:    fmt.Sprintf("Chapter #%d", r.Number+1),
		number:   r.Number,
		length:   r.Length,
		src:      section(src, r),
		encoding: DefaultEncoding,
		prev:     -1,
		next:     -1,
	}
}

// Number returns the chapter's position within its book.
func (c *Chapter) Number() int {
	return c.number
}

// Len returns the chapter length in bytes.
func (c *Chapter) Len() int {
	return c.length
}

// Cursor returns the reading position as a byte offset.
func (c *Chapter) Cursor() int {
	return c.cursor
}

// SetCursor moves the reading position. It fails with ErrRange unless
// 0 <= pos < Len().
func (c *Chapter) SetCursor(pos int) error {
	if pos < 0 || pos >= c.length {
		return fmt.Errorf("book: cursor %d outside chapter %d of %d bytes: %w", pos, c.number, c.length, ErrRange)
	}
	c.cursor = pos
	return nil
}

// clampCursor installs pos, forcing it into the chapter.
func (c *Chapter) clampCursor(pos int) {
	switch {
	case pos < 0 || c.length == 0:
		c.cursor = 0
	case pos >= c.length:
		c.cursor = c.length - 1
	default:
		c.cursor = pos
	}
}

// Encoding returns the text encoding label used to decode the chapter.
func (c *Chapter) Encoding() string {
	return c.encoding
}

// SetEncoding changes the text encoding label. An empty label restores
// DefaultEncoding.
func (c *Chapter) SetEncoding(label string) {
	if label == "" {
		label = DefaultEncoding
	}
	c.encoding = label
}

// Loaded reports whether the chapter bytes are held in memory.
func (c *Chapter) Loaded() bool {
	return c.buf != nil
}

// Buffer returns the raw chapter bytes, reading them from the source on
// first access. The returned slice must not be modified.
func (c *Chapter) Buffer() ([]byte, error) {
	if c.buf != nil {
		return c.buf, nil
	}
	if c.src == nil {
		return nil, ErrInvalidChapter
	}

	buf := make([]byte, c.length)
	n, err := c.src.ReadAt(buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == c.length) {
		return nil, fmt.Errorf("book: load chapter %d: %w", c.number, err)
	}
	c.buf = buf
	return c.buf, nil
}

// Unload frees the in-memory bytes. They are read again on the next
// call to Buffer.
func (c *Chapter) Unload() {
	c.buf = nil
}
