package book

import "fmt"

// Range is a contiguous window [Offset, Offset+Length) of a byte source
// that becomes one chapter.
type Range struct {
	// Number is the chapter number assigned to this range.
	Number int

	// Offset is the position of the first byte within the source.
	Offset int64

	// Length is the number of bytes in the range.
	Length int
}

// End returns the exclusive end offset of the range.
func (r Range) End() int64 {
	return r.Offset + int64(r.Length)
}

// Partition splits a byte source of the given length into chapter-sized
// ranges of at most maxSize bytes, numbering them from base.
//
// The split is purely byte oriented: a multi-byte character or a markup
// tag may straddle two ranges. When length <= maxSize the whole source is
// returned as a single range.
func Partition(length int64, base, maxSize int) ([]Range, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("book: maximum chapter size %d: %w", maxSize, ErrConfiguration)
	}
	if length < 0 {
		return nil, fmt.Errorf("book: negative source length %d: %w", length, ErrConfiguration)
	}

	m := int64(maxSize)
	if length <= m {
		return []Range{{Number: base, Offset: 0, Length: int(length)}}, nil
	}

	count := length / m
	if length%m > 0 {
		count++
	}

	ranges := make([]Range, 0, count)
	left := length
	for k := int64(0); k < count; k++ {
		size := min(left, m)
		ranges = append(ranges, Range{
			Number: base + int(k),
			Offset: k * m,
			Length: int(size),
		})
		left -= size
	}
	return ranges, nil
}
