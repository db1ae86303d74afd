package book

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// Book is an opened book: its chapters, the reading position and the
// user's bookmarks. Use Open to create one.
//
// A Book is not safe for concurrent use by multiple goroutines.
type Book struct {
	title           string
	author          string
	language        string
	currentLanguage string
	description     string
	meta            map[string]string
	url             string

	parser  TextParser
	src     SourceFile
	archive *Archive

	chain     *Chain
	current   *Chapter
	bookmarks Bookmarks

	settingsFile  SideFile
	bookmarksFile SideFile

	warnings []string
	log      *slog.Logger
	closed   bool
}

// Close releases the book file and both side files. Close is idempotent.
//
// After Close, accessors keep reporting the last state; reading chapter
// text and changing the state fail with ErrClosed.
func (b *Book) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for _, c := range []interface{ Close() error }{b.src, b.settingsFile, b.bookmarksFile} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.settingsFile = nil
	b.bookmarksFile = nil
	b.chain.UnloadAll()
	b.log.Debug("book closed")
	return errors.Join(errs...)
}

// Title returns the book title.
func (b *Book) Title() string { return b.title }

// Author returns the book author.
func (b *Book) Author() string { return b.author }

// Description returns the publisher's description, if any.
func (b *Book) Description() string { return b.description }

// URL returns the path the book was opened from.
func (b *Book) URL() string { return b.url }

// FileSize returns the size of the book file in bytes.
func (b *Book) FileSize() int64 { return b.src.Size() }

// Parser returns the text parser matching the book format.
func (b *Book) Parser() TextParser { return b.parser }

// Archive returns the container of an ePub book, or nil for
// single-document books.
func (b *Book) Archive() *Archive { return b.archive }

// Meta returns additional book information such as publisher or date.
// It is nil for single-document books.
func (b *Book) Meta() map[string]string {
	if b.meta == nil {
		return nil
	}
	return maps.Clone(b.meta)
}

// Warnings returns non-fatal problems found while opening the book.
func (b *Book) Warnings() []string {
	return append([]string(nil), b.warnings...)
}

// DefaultLanguage returns the language declared by the book, or "".
func (b *Book) DefaultLanguage() string { return b.language }

// LanguageAlias returns the full name of the book's declared language,
// falling back to its code.
func (b *Book) LanguageAlias() string { return LanguageName(b.language) }

// Language returns the active language.
func (b *Book) Language() string { return b.currentLanguage }

// SetLanguage changes the active language and reports whether it changed.
// Comparison ignores case.
func (b *Book) SetLanguage(lang string) bool {
	if strings.EqualFold(lang, b.currentLanguage) {
		return false
	}
	b.currentLanguage = lang
	return true
}

// ChapterCount returns the number of chapters.
func (b *Book) ChapterCount() int { return b.chain.Len() }

// Chapter returns the chapter at index i, clamped to the valid range.
func (b *Book) Chapter(i int) *Chapter { return b.chain.Chapter(i) }

// Chapters returns all chapters in reading order.
func (b *Book) Chapters() []*Chapter { return b.chain.Chapters() }

// NextChapter returns the chapter after ch, or nil.
func (b *Book) NextChapter(ch *Chapter) *Chapter { return b.chain.Next(ch) }

// PrevChapter returns the chapter before ch, or nil.
func (b *Book) PrevChapter(ch *Chapter) *Chapter { return b.chain.Prev(ch) }

// CurrentChapter returns the chapter being read.
func (b *Book) CurrentChapter() *Chapter { return b.current }

// SetCurrentChapter makes ch the chapter being read. ch must belong to
// this book.
func (b *Book) SetCurrentChapter(ch *Chapter) error {
	if b.closed {
		return ErrClosed
	}
	if !b.chain.contains(ch) {
		return ErrInvalidChapter
	}
	b.current = ch
	return nil
}

// Cursor returns the reading position within the current chapter.
func (b *Book) Cursor() int { return b.current.Cursor() }

// SetCursor moves the reading position within the current chapter. It
// fails with ErrRange unless 0 <= pos < chapter length.
func (b *Book) SetCursor(pos int) error {
	if b.closed {
		return ErrClosed
	}
	return b.current.SetCursor(pos)
}

// ChapterText loads ch and renders it with the book's parser using the
// chapter's encoding.
func (b *Book) ChapterText(ch *Chapter) (string, error) {
	if b.closed {
		return "", ErrClosed
	}
	if !b.chain.contains(ch) {
		return "", ErrInvalidChapter
	}
	raw, err := ch.Buffer()
	if err != nil {
		return "", err
	}
	return b.parser.Parse(raw, ch.Encoding())
}

// UnloadChapters frees every chapter buffer. Reading positions and
// encodings are kept.
func (b *Book) UnloadChapters() { b.chain.UnloadAll() }

// Bookmarks returns the book's bookmark collection.
func (b *Book) Bookmarks() *Bookmarks { return &b.bookmarks }

// AddBookmark marks pos in ch with the given label.
func (b *Book) AddBookmark(ch *Chapter, pos int, text string) (*Bookmark, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if !b.chain.contains(ch) {
		return nil, ErrInvalidChapter
	}
	if pos < 0 || pos >= ch.Len() {
		return nil, fmt.Errorf("book: bookmark at %d outside chapter %d: %w", pos, ch.Number(), ErrRange)
	}
	bm := &Bookmark{Chapter: ch, Position: pos, Text: text}
	b.bookmarks.Add(bm)
	return bm, nil
}

// settingsRecord captures the current reading state.
func (b *Book) settingsRecord() SettingsRecord {
	rec := SettingsRecord{
		Language:       b.currentLanguage,
		CurrentChapter: b.current.Number(),
		Chapters:       make([]ChapterState, b.chain.Len()),
	}
	for i, ch := range b.chain.chapters {
		rec.Chapters[i] = ChapterState{Cursor: ch.Cursor(), Encoding: ch.Encoding()}
	}
	return rec
}

// applySettings installs a decoded record. Chapters beyond the record
// keep their defaults; entries beyond the book are ignored.
func (b *Book) applySettings(rec SettingsRecord) {
	b.currentLanguage = rec.Language
	b.current = b.chain.Chapter(rec.CurrentChapter)
	for i, st := range rec.Chapters {
		if i >= b.chain.Len() {
			break
		}
		ch := b.chain.chapters[i]
		ch.clampCursor(st.Cursor)
		ch.SetEncoding(st.Encoding)
	}
}

// SaveSettings writes the reading state to the settings side file.
// Failures are logged, never returned.
func (b *Book) SaveSettings() {
	if b.closed || b.settingsFile == nil {
		return
	}
	data, err := EncodeSettings(b.settingsRecord())
	if err == nil {
		err = writeSideFile(b.settingsFile, data)
	}
	if err != nil {
		b.log.Warn("settings not saved", slog.Any("error", err))
	}
}

// SaveBookmarks writes the bookmarks to the bookmark side file.
// Failures are logged, never returned.
func (b *Book) SaveBookmarks() {
	if b.closed || b.bookmarksFile == nil {
		return
	}
	if err := writeSideFile(b.bookmarksFile, EncodeBookmarks(b.bookmarks.items)); err != nil {
		b.log.Warn("bookmarks not saved", slog.Any("error", err))
	}
}
