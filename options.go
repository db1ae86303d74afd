package book

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Maximum chapter sizes in bytes. Larger sources are split on byte
// boundaries, so a split may cut a character or a tag in two.
const (
	DefaultMaxTextChapterSize = 64 * 1024
	DefaultMaxHTMLChapterSize = 192 * 1024
	LightMaxChapterSize       = 16 * 1024
)

// Side file extensions substituted for the book's own extension.
const (
	DefaultSettingsExtension  = ".alx"
	DefaultBookmarksExtension = ".alb"
)

// OpenOptions controls how a book is opened. The zero value is usable;
// unset fields take the values of DefaultOptions.
type OpenOptions struct {
	// LightMode caps every chapter at LightMaxChapterSize.
	LightMode bool `yaml:"light_mode"`

	// MaxTextChapterSize bounds chapters of plain text books.
	MaxTextChapterSize int `yaml:"max_text_chapter_size"`

	// MaxHTMLChapterSize bounds chapters of HTML and ePub books.
	MaxHTMLChapterSize int `yaml:"max_html_chapter_size"`

	// SettingsExtension names the binary settings side file.
	SettingsExtension string `yaml:"settings_extension"`

	// BookmarksExtension names the bookmark side file.
	BookmarksExtension string `yaml:"bookmarks_extension"`

	// UseMmap memory-maps the book file when Storage is not set.
	UseMmap bool `yaml:"use_mmap"`

	// DefaultEncoding is the encoding label new chapters start with.
	DefaultEncoding string `yaml:"default_encoding"`

	// Storage opens the book and its side files. Defaults to OSStorage.
	Storage Storage `yaml:"-"`

	// Logger receives warnings about swallowed side file failures.
	// Defaults to slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// DefaultOptions returns the options used for unset fields.
func DefaultOptions() OpenOptions {
	return OpenOptions{
		MaxTextChapterSize: DefaultMaxTextChapterSize,
		MaxHTMLChapterSize: DefaultMaxHTMLChapterSize,
		SettingsExtension:  DefaultSettingsExtension,
		BookmarksExtension: DefaultBookmarksExtension,
		UseMmap:            true,
		DefaultEncoding:    DefaultEncoding,
	}
}

// LoadOptions reads options from a YAML file. A missing file yields
// DefaultOptions.
func LoadOptions(path string) (OpenOptions, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opts, nil
		}
		return OpenOptions{}, fmt.Errorf("book: read options %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return OpenOptions{}, fmt.Errorf("book: parse options %s: %w", path, err)
	}
	return opts, nil
}

// withDefaults fills unset fields. Negative sizes are kept so that
// partitioning rejects them.
func (o OpenOptions) withDefaults() OpenOptions {
	d := DefaultOptions()
	if o.MaxTextChapterSize == 0 {
		o.MaxTextChapterSize = d.MaxTextChapterSize
	}
	if o.MaxHTMLChapterSize == 0 {
		o.MaxHTMLChapterSize = d.MaxHTMLChapterSize
	}
	if o.SettingsExtension == "" {
		o.SettingsExtension = d.SettingsExtension
	}
	if o.BookmarksExtension == "" {
		o.BookmarksExtension = d.BookmarksExtension
	}
	if o.DefaultEncoding == "" {
		o.DefaultEncoding = d.DefaultEncoding
	}
	if o.Storage == nil {
		o.Storage = OSStorage{UseMmap: o.UseMmap}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// maxTextSize returns the chapter bound for plain text sources.
func (o OpenOptions) maxTextSize() int {
	if o.LightMode {
		return min(o.MaxTextChapterSize, LightMaxChapterSize)
	}
	return o.MaxTextChapterSize
}

// maxHTMLSize returns the chapter bound for HTML sources.
func (o OpenOptions) maxHTMLSize() int {
	if o.LightMode {
		return min(o.MaxHTMLChapterSize, LightMaxChapterSize)
	}
	return o.MaxHTMLChapterSize
}
