package book

import "fmt"

// Chain is the ordered chapter set of a book. Chapters are stored in an
// array and linked by index.
type Chain struct {
	chapters []*Chapter
}

// newChain takes ownership of chapters, renumbers them by position and
// links neighbours. A book must have at least one chapter.
func newChain(chapters []*Chapter) (*Chain, error) {
	if len(chapters) == 0 {
		return nil, fmt.Errorf("book: no chapters: %w", ErrConfiguration)
	}
	for i, ch := range chapters {
		ch.number = i
		ch.prev = i - 1
		ch.next = i + 1
	}
	chapters[len(chapters)-1].next = -1
	return &Chain{chapters: chapters}, nil
}

// buildChain creates one chapter per range over src.
func buildChain(src Source, ranges []Range) (*Chain, error) {
	chapters := make([]*Chapter, 0, len(ranges))
	for _, r := range ranges {
		chapters = append(chapters, newChapter(src, r))
	}
	return newChain(chapters)
}

// Len returns the number of chapters.
func (c *Chain) Len() int {
	return len(c.chapters)
}

// Chapter returns the chapter at index i. Negative indices return the
// first chapter and indices past the end return the last one.
func (c *Chain) Chapter(i int) *Chapter {
	if i < 0 {
		return c.chapters[0]
	}
	if i > len(c.chapters)-1 {
		return c.chapters[len(c.chapters)-1]
	}
	return c.chapters[i]
}

// Chapters returns the chapters in order.
func (c *Chain) Chapters() []*Chapter {
	return append([]*Chapter(nil), c.chapters...)
}

// Next returns the chapter after ch, or nil at the end of the book.
func (c *Chain) Next(ch *Chapter) *Chapter {
	if !c.contains(ch) || ch.next < 0 {
		return nil
	}
	return c.chapters[ch.next]
}

// Prev returns the chapter before ch, or nil at the start of the book.
func (c *Chain) Prev(ch *Chapter) *Chapter {
	if !c.contains(ch) || ch.prev < 0 {
		return nil
	}
	return c.chapters[ch.prev]
}

// UnloadAll frees every chapter buffer. Cursors and encodings are kept.
func (c *Chain) UnloadAll() {
	for _, ch := range c.chapters {
		ch.Unload()
	}
}

// contains reports whether ch is a member of this chain.
func (c *Chain) contains(ch *Chapter) bool {
	return ch != nil && ch.number >= 0 && ch.number < len(c.chapters) && c.chapters[ch.number] == ch
}
