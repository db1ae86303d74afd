package book

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestChain partitions data into chapters of at most maxSize bytes.
func newTestChain(t *testing.T, data []byte, maxSize int) *Chain {
	t.Helper()
	ranges, err := Partition(int64(len(data)), 0, maxSize)
	require.NoError(t, err)
	chain, err := buildChain(bytes.NewReader(data), ranges)
	require.NoError(t, err)
	return chain
}

func TestChain_Clamping(t *testing.T) {
	chain := newTestChain(t, []byte("0123456789"), 4)
	require.Equal(t, 3, chain.Len())

	assert.Same(t, chain.Chapter(0), chain.Chapter(-1))
	assert.Same(t, chain.Chapter(0), chain.Chapter(-100))
	assert.Same(t, chain.Chapter(2), chain.Chapter(3))
	assert.Same(t, chain.Chapter(2), chain.Chapter(1000))
	assert.Equal(t, 1, chain.Chapter(1).Number())
}

func TestChain_NextPrev(t *testing.T) {
	chain := newTestChain(t, []byte("0123456789"), 4)
	first, middle, last := chain.Chapter(0), chain.Chapter(1), chain.Chapter(2)

	assert.Nil(t, chain.Prev(first))
	assert.Same(t, middle, chain.Next(first))
	assert.Same(t, first, chain.Prev(middle))
	assert.Same(t, last, chain.Next(middle))
	assert.Nil(t, chain.Next(last))

	other := newTestChain(t, []byte("abc"), 4)
	assert.Nil(t, chain.Next(other.Chapter(0)), "foreign chapters have no neighbours")
	assert.Nil(t, chain.Next(nil))
}

func TestChain_Chapters(t *testing.T) {
	chain := newTestChain(t, []byte("0123456789"), 4)
	chapters := chain.Chapters()
	require.Len(t, chapters, 3)
	for i, ch := range chapters {
		assert.Equal(t, i, ch.Number())
		assert.Equal(t, "Chapter #"+string(rune('1'+i)), ch.Title)
	}

	chapters[0] = nil
	assert.NotNil(t, chain.Chapter(0), "Chapters returns a copy")
}

func TestChain_Empty(t *testing.T) {
	_, err := newChain(nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestChain_EmptySource(t *testing.T) {
	chain := newTestChain(t, nil, 4)
	require.Equal(t, 1, chain.Len())

	ch := chain.Chapter(0)
	assert.Equal(t, 0, ch.Len())
	assert.ErrorIs(t, ch.SetCursor(0), ErrRange)

	buf, err := ch.Buffer()
	require.NoError(t, err)
	assert.Empty(t, buf)
}

func TestChapter_Buffer(t *testing.T) {
	chain := newTestChain(t, []byte("0123456789"), 4)

	want := []string{"0123", "4567", "89"}
	for i, ch := range chain.Chapters() {
		assert.False(t, ch.Loaded())
		buf, err := ch.Buffer()
		require.NoError(t, err)
		assert.Equal(t, want[i], string(buf))
		assert.True(t, ch.Loaded())
	}
}

func TestChapter_SetCursor(t *testing.T) {
	chain := newTestChain(t, []byte("0123456789"), 4)
	ch := chain.Chapter(0)

	require.NoError(t, ch.SetCursor(0))
	require.NoError(t, ch.SetCursor(3))
	assert.Equal(t, 3, ch.Cursor())

	assert.ErrorIs(t, ch.SetCursor(4), ErrRange)
	assert.ErrorIs(t, ch.SetCursor(-1), ErrRange)
	assert.Equal(t, 3, ch.Cursor(), "a rejected cursor leaves the position unchanged")
}

func TestChapter_ClampCursor(t *testing.T) {
	chain := newTestChain(t, []byte("0123456789"), 4)
	ch := chain.Chapter(0)

	ch.clampCursor(-5)
	assert.Equal(t, 0, ch.Cursor())
	ch.clampCursor(100)
	assert.Equal(t, 3, ch.Cursor())
	ch.clampCursor(2)
	assert.Equal(t, 2, ch.Cursor())
}

func TestChapter_Encoding(t *testing.T) {
	chain := newTestChain(t, []byte("abc"), 4)
	ch := chain.Chapter(0)

	assert.Equal(t, DefaultEncoding, ch.Encoding())
	ch.SetEncoding("windows-1251")
	assert.Equal(t, "windows-1251", ch.Encoding())
	ch.SetEncoding("")
	assert.Equal(t, DefaultEncoding, ch.Encoding())
}

func TestChain_UnloadAllKeepsState(t *testing.T) {
	chain := newTestChain(t, []byte("0123456789"), 4)
	ch := chain.Chapter(1)

	_, err := ch.Buffer()
	require.NoError(t, err)
	require.NoError(t, ch.SetCursor(2))
	ch.SetEncoding("koi8-r")

	chain.UnloadAll()
	assert.False(t, ch.Loaded())
	assert.Equal(t, 2, ch.Cursor())
	assert.Equal(t, "koi8-r", ch.Encoding())

	buf, err := ch.Buffer()
	require.NoError(t, err)
	assert.Equal(t, "4567", string(buf), "chapters reload after unloading")
}
