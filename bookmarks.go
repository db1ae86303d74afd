package book

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Bookmark document vocabulary:
//
//	<b>
//	<b c="3" p="1234">Label</b>
//	</b>
const (
	bookmarkTag      = "b"
	chapterAttr      = "c"
	positionAttr     = "p"
	untitledBookmark = "Untitled"
)

// bookmarkEscaper keeps a label from terminating its element early.
var bookmarkEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Bookmark marks a byte position inside a chapter.
type Bookmark struct {
	Chapter  *Chapter
	Position int
	Text     string
}

// Bookmarks is an insertion-ordered bookmark collection.
type Bookmarks struct {
	items []*Bookmark
}

// Add appends b to the collection.
func (m *Bookmarks) Add(b *Bookmark) {
	m.items = append(m.items, b)
}

// Delete removes b, reporting whether it was present.
func (m *Bookmarks) Delete(b *Bookmark) bool {
	i := slices.Index(m.items, b)
	if i < 0 {
		return false
	}
	m.items = slices.Delete(m.items, i, i+1)
	return true
}

// DeleteAll empties the collection.
func (m *Bookmarks) DeleteAll() {
	m.items = nil
}

// Len returns the number of bookmarks.
func (m *Bookmarks) Len() int {
	return len(m.items)
}

// All returns the bookmarks in insertion order.
func (m *Bookmarks) All() []*Bookmark {
	return append([]*Bookmark(nil), m.items...)
}

// InChapter returns the bookmarks that point into ch, in insertion order.
func (m *Bookmarks) InChapter(ch *Chapter) []*Bookmark {
	var out []*Bookmark
	for _, b := range m.items {
		if b.Chapter == ch {
			out = append(out, b)
		}
	}
	return out
}

// EncodeBookmarks renders marks as a bookmark document. Characters that
// XML cannot represent are dropped from labels.
func EncodeBookmarks(marks []*Bookmark) []byte {
	var buf bytes.Buffer
	buf.Grow(64 + 48*len(marks))

	buf.WriteString("<" + bookmarkTag + ">\n")
	for _, b := range marks {
		number := 0
		if b.Chapter != nil {
			number = b.Chapter.Number()
		}
		buf.WriteString("<" + bookmarkTag + " " + chapterAttr + `="`)
		buf.WriteString(strconv.Itoa(number))
		buf.WriteString(`" ` + positionAttr + `="`)
		buf.WriteString(strconv.Itoa(b.Position))
		buf.WriteString(`">`)
		bookmarkEscaper.WriteString(&buf, xmlSafeLabel(b.Text))
		buf.WriteString("</" + bookmarkTag + ">\n")
	}
	buf.WriteString("</" + bookmarkTag + ">\n")
	return buf.Bytes()
}

// xmlSafeLabel drops characters a bookmark document cannot carry, so one
// bad label does not make the whole document unreadable. Invalid UTF-8
// becomes U+FFFD.
func xmlSafeLabel(s string) string {
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, strings.ToValidUTF8(s, "\uFFFD"))
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// DecodeBookmarks parses a bookmark document, resolving chapter numbers
// through chain with clamping. Unparsable numbers read as 0.
//
// A document without a root element, or one that is not well formed,
// fails with ErrFormat and yields no bookmarks.
func DecodeBookmarks(data []byte, chain *Chain) ([]*Bookmark, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.CharsetReader = charset.NewReaderLabel

	var (
		marks    []*Bookmark
		current  *Bookmark
		text     strings.Builder
		hasText  bool
		depth    int
		seenRoot bool
	)

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("book: parse bookmarks: %v: %w", err, ErrFormat)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1:
				seenRoot = true
			case depth == 2 && t.Name.Local == bookmarkTag:
				current = newDecodedBookmark(t, chain)
				text.Reset()
				hasText = false
			}

		case xml.CharData:
			if depth == 2 && current != nil {
				text.Write(t)
				hasText = true
			}

		case xml.EndElement:
			if depth == 2 && current != nil {
				if hasText {
					current.Text = text.String()
				}
				marks = append(marks, current)
				current = nil
			}
			depth--
			if depth == 0 && seenRoot {
				return marks, nil
			}
		}
	}

	if !seenRoot {
		return nil, fmt.Errorf("book: bookmark document has no root element: %w", ErrFormat)
	}
	return nil, fmt.Errorf("book: bookmark document ends inside an element: %w", ErrFormat)
}

func newDecodedBookmark(el xml.StartElement, chain *Chain) *Bookmark {
	var number, pos int
	for _, a := range el.Attr {
		switch a.Name.Local {
		case chapterAttr:
			number = atoiOrZero(a.Value)
		case positionAttr:
			pos = atoiOrZero(a.Value)
		}
	}

	ch := chain.Chapter(number)
	switch {
	case pos < 0 || ch.Len() == 0:
		pos = 0
	case pos >= ch.Len():
		pos = ch.Len() - 1
	}
	return &Bookmark{Chapter: ch, Position: pos, Text: untitledBookmark}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
