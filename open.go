package book

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// Supported book file extensions.
const (
	EPubExtension  = ".epub"
	TextExtension  = ".txt"
	HTMExtension   = ".htm"
	HTMLExtension  = ".html"
	XHTMLExtension = ".xhtml"
)

// SupportedExtensions lists the extensions Open accepts.
var SupportedExtensions = []string{EPubExtension, TextExtension, HTMExtension, HTMLExtension, XHTMLExtension}

const (
	defaultAuthor = "Unknown Author"

	// titleProbeSize is how much of an HTML book is scanned for <title>.
	titleProbeSize = 8 * 1024
)

type bookFormat int

const (
	formatEPub bookFormat = iota
	formatText
	formatHTML
)

// detectFormat picks the book format from the file extension.
func detectFormat(name string) (bookFormat, error) {
	lower := strings.ToLower(name)
	switch {
	case isContainer(lower):
		return formatEPub, nil
	case strings.HasSuffix(lower, TextExtension):
		return formatText, nil
	case strings.HasSuffix(lower, HTMExtension),
		strings.HasSuffix(lower, HTMLExtension),
		strings.HasSuffix(lower, XHTMLExtension):
		return formatHTML, nil
	}
	return 0, fmt.Errorf("book: %s: unsupported file format: %w", filepath.Base(name), ErrBookFormat)
}

// Open opens the book at path. The format is chosen by extension: ePub
// containers, plain text and HTML are supported.
//
// The settings and bookmark side files next to the book are created if
// absent and loaded on a best-effort basis: a missing, unreadable or
// malformed side file leaves the book at its default state. Only
// failures of the book file itself are returned.
//
// The caller must call Close when done with the book.
func Open(path string, opts OpenOptions) (*Book, error) {
	opts = opts.withDefaults()

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	src, err := opts.Storage.OpenSource(path)
	if err != nil {
		return nil, err
	}

	b := &Book{
		title:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		author: defaultAuthor,
		url:    path,
		src:    src,
		log:    opts.Logger.With(slog.String("book", path)),
	}

	switch format {
	case formatEPub:
		b.parser = HTMLTextParser{}
		err = b.loadEPub(opts.maxHTMLSize())
	case formatText:
		b.parser = PlainTextParser{}
		err = b.loadFile(opts.maxTextSize())
	case formatHTML:
		b.parser = HTMLTextParser{}
		err = b.loadFile(opts.maxHTMLSize())
		if err == nil {
			b.probeHTMLTitle()
		}
	}
	if err != nil {
		src.Close()
		return nil, err
	}

	for _, ch := range b.chain.chapters {
		ch.SetEncoding(opts.DefaultEncoding)
	}
	b.current = b.chain.Chapter(0)
	b.currentLanguage = b.language

	b.settingsFile = b.openSideFile(opts.Storage, changeExtension(path, opts.SettingsExtension))
	b.bookmarksFile = b.openSideFile(opts.Storage, changeExtension(path, opts.BookmarksExtension))
	b.loadUserData()

	b.log.Debug("book opened", slog.String("parser", b.parser.Name()), slog.Int("chapters", b.chain.Len()))
	return b, nil
}

// loadFile partitions a single-document book.
func (b *Book) loadFile(maxSize int) error {
	ranges, err := Partition(b.src.Size(), 0, maxSize)
	if err != nil {
		return err
	}
	chain, err := buildChain(b.src, ranges)
	if err != nil {
		return err
	}
	b.chain = chain
	return nil
}

// probeHTMLTitle takes the book title from the document's <title>. On a
// read error the file name stays the title.
func (b *Book) probeHTMLTitle() {
	buf := make([]byte, min(b.src.Size(), titleProbeSize))
	n, err := b.src.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		b.log.Warn("title not read", slog.Any("error", err))
		return
	}
	if t := htmlTitle(buf[:n]); t != "" {
		b.title = t
	}
}

// openSideFile opens a side file, returning nil when it is unavailable.
func (b *Book) openSideFile(s Storage, name string) SideFile {
	f, err := s.OpenSideFile(name)
	if err != nil {
		b.log.Warn("side file unavailable", slog.String("file", name), slog.Any("error", err))
		return nil
	}
	return f
}

// loadUserData restores settings and bookmarks. Failures are logged and
// leave the defaults in place.
func (b *Book) loadUserData() {
	if err := b.loadSettings(); err != nil {
		b.log.Warn("settings not restored", slog.Any("error", err))
	}
	if err := b.loadBookmarks(); err != nil {
		b.log.Warn("bookmarks not restored", slog.Any("error", err))
	}
}

func (b *Book) loadSettings() error {
	if b.settingsFile == nil {
		return nil
	}
	data, err := readSideFile(b.settingsFile)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	rec, err := DecodeSettings(data)
	if err != nil {
		return err
	}
	b.applySettings(rec)
	return nil
}

func (b *Book) loadBookmarks() error {
	if b.bookmarksFile == nil {
		return nil
	}
	data, err := readSideFile(b.bookmarksFile)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	marks, err := DecodeBookmarks(data, b.chain)
	if err != nil {
		return err
	}
	for _, m := range marks {
		b.bookmarks.Add(m)
	}
	return nil
}
