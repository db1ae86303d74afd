package book

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	path := writeTestFile(t, "reader.yaml", []byte(`
light_mode: true
max_text_chapter_size: 32768
settings_extension: .state
use_mmap: false
default_encoding: windows-1251
`))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.True(t, opts.LightMode)
	assert.Equal(t, 32768, opts.MaxTextChapterSize)
	assert.Equal(t, DefaultMaxHTMLChapterSize, opts.MaxHTMLChapterSize)
	assert.Equal(t, ".state", opts.SettingsExtension)
	assert.Equal(t, DefaultBookmarksExtension, opts.BookmarksExtension)
	assert.False(t, opts.UseMmap)
	assert.Equal(t, "windows-1251", opts.DefaultEncoding)
}

func TestLoadOptions_Missing(t *testing.T) {
	opts, err := LoadOptions(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestLoadOptions_Invalid(t *testing.T) {
	path := writeTestFile(t, "bad.yaml", []byte("max_text_chapter_size: [1, 2"))
	_, err := LoadOptions(path)
	assert.Error(t, err)
}

func TestOpenOptions_ChapterSizes(t *testing.T) {
	opts := OpenOptions{}.withDefaults()
	assert.Equal(t, DefaultMaxTextChapterSize, opts.maxTextSize())
	assert.Equal(t, DefaultMaxHTMLChapterSize, opts.maxHTMLSize())
	assert.NotNil(t, opts.Storage)
	assert.NotNil(t, opts.Logger)

	opts.LightMode = true
	assert.Equal(t, LightMaxChapterSize, opts.maxTextSize())
	assert.Equal(t, LightMaxChapterSize, opts.maxHTMLSize())

	opts.MaxTextChapterSize = 1024
	assert.Equal(t, 1024, opts.maxTextSize(), "light mode never raises a smaller bound")
}

func TestOpen_DefaultEncodingOption(t *testing.T) {
	opts := testOptions()
	opts.DefaultEncoding = "koi8-r"
	b := openBook(t, writeTextBook(t, 100), opts)

	assert.Equal(t, "koi8-r", b.Chapter(0).Encoding())
}

func TestOpen_CustomSideFileExtensions(t *testing.T) {
	path := writeTextBook(t, 100)
	opts := testOptions()
	opts.SettingsExtension = ".state"
	opts.BookmarksExtension = ".marks"
	openBook(t, path, opts)

	assert.FileExists(t, filepath.Join(filepath.Dir(path), "book.state"))
	assert.FileExists(t, filepath.Join(filepath.Dir(path), "book.marks"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(path), "book.alx"))
}
