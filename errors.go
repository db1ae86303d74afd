package book

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the book package.
var (
	// ErrConfiguration indicates invalid partition parameters or a book
	// without chapters.
	ErrConfiguration = errors.New("book: invalid configuration")

	// ErrBookFormat indicates the primary source has an unsupported
	// extension or could not be recognised.
	ErrBookFormat = errors.New("book: unsupported or corrupt book")

	// ErrFormat indicates a malformed settings record or bookmark document.
	ErrFormat = errors.New("book: malformed user data")

	// ErrRange indicates a reading cursor outside the chapter bounds.
	ErrRange = errors.New("book: position out of range")

	// ErrDRMProtected indicates the ePub container is protected by DRM
	// (e.g., Adobe ADEPT, Apple FairPlay, Readium LCP) and cannot be read.
	// It wraps ErrBookFormat.
	ErrDRMProtected = fmt.Errorf("%w: file is DRM protected", ErrBookFormat)

	// ErrFileNotFound indicates the requested entry does not exist
	// in the container.
	ErrFileNotFound = errors.New("book: file not found in archive")

	// ErrInvalidChapter indicates a chapter handle that does not belong
	// to the book, or a zero-value Chapter.
	ErrInvalidChapter = errors.New("book: invalid chapter handle")

	// ErrUnsupportedEncoding indicates a chapter encoding label that no
	// decoder is registered for.
	ErrUnsupportedEncoding = errors.New("book: unsupported text encoding")

	// ErrClosed indicates an operation on a closed book.
	ErrClosed = errors.New("book: book is closed")
)
