package book

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// settingsMagic opens every settings record ("albx").
const settingsMagic uint32 = 0x616C6278

// SettingsRecord is the persisted reading state of a book.
//
// Layout, big-endian:
//
//	u32  magic (0x616C6278)
//	str  language
//	u16  current chapter index
//	u16  chapter count N
//	N × { u32 cursor, str encoding }
//
// where str is a u16 byte length followed by UTF-8 bytes.
type SettingsRecord struct {
	Language       string
	CurrentChapter int
	Chapters       []ChapterState
}

// ChapterState is the per-chapter part of a SettingsRecord.
type ChapterState struct {
	Cursor   int
	Encoding string
}

// EncodeSettings serialises rec. The current chapter index is clamped to
// the 16-bit range.
func EncodeSettings(rec SettingsRecord) ([]byte, error) {
	if len(rec.Chapters) > math.MaxUint16 {
		return nil, fmt.Errorf("book: %d chapters exceed the settings record limit: %w", len(rec.Chapters), ErrFormat)
	}

	size := 4 + 2 + len(rec.Language) + 2 + 2
	for _, ch := range rec.Chapters {
		size += 4 + 2 + len(ch.Encoding)
	}
	buf := make([]byte, 0, size)

	buf = binary.BigEndian.AppendUint32(buf, settingsMagic)
	buf, err := appendString(buf, rec.Language)
	if err != nil {
		return nil, err
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(min(max(rec.CurrentChapter, 0), math.MaxUint16)))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(rec.Chapters)))
	for _, ch := range rec.Chapters {
		buf = binary.BigEndian.AppendUint32(buf, uint32(min(max(int64(ch.Cursor), 0), math.MaxUint32)))
		if buf, err = appendString(buf, ch.Encoding); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendString(buf []byte, s string) ([]byte, error) {
	if len(s) > math.MaxUint16 {
		return nil, fmt.Errorf("book: string of %d bytes exceeds the settings record limit: %w", len(s), ErrFormat)
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...), nil
}

// DecodeSettings parses a record produced by EncodeSettings. Any failure
// returns a zero record and an error wrapping ErrFormat.
func DecodeSettings(data []byte) (SettingsRecord, error) {
	r := settingsReader{data: data}

	if magic := r.u32(); r.err == nil && magic != settingsMagic {
		return SettingsRecord{}, fmt.Errorf("book: settings magic number 0x%08x: %w", magic, ErrFormat)
	}

	var rec SettingsRecord
	rec.Language = r.str()
	rec.CurrentChapter = int(r.u16())
	count := int(r.u16())
	if r.err != nil {
		return SettingsRecord{}, r.err
	}

	// Each entry takes at least 6 bytes; refuse counts the data cannot hold.
	if count > (len(data)-r.off)/6 {
		return SettingsRecord{}, fmt.Errorf("book: settings record truncated: %d chapter entries in %d bytes: %w", count, len(data)-r.off, ErrFormat)
	}
	rec.Chapters = make([]ChapterState, count)
	for i := range rec.Chapters {
		rec.Chapters[i].Cursor = int(r.u32())
		rec.Chapters[i].Encoding = r.str()
	}
	if r.err != nil {
		return SettingsRecord{}, r.err
	}
	return rec, nil
}

// settingsReader reads big-endian fields, keeping the first error.
type settingsReader struct {
	data []byte
	off  int
	err  error
}

func (r *settingsReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data)-r.off < n {
		r.err = fmt.Errorf("book: settings record truncated at byte %d: %w", r.off, ErrFormat)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *settingsReader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *settingsReader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *settingsReader) str() string {
	n := int(r.u16())
	b := r.take(n)
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.err = fmt.Errorf("book: settings string at byte %d is not UTF-8: %w", r.off-n, ErrFormat)
		return ""
	}
	return string(b)
}
