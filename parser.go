package book

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// TextParser turns raw chapter bytes into renderable text.
type TextParser interface {
	// Name identifies the parser, e.g. "plain" or "html".
	Name() string

	// Parse decodes raw with the named encoding and extracts its text.
	Parse(raw []byte, encodingLabel string) (string, error)
}

// PlainTextParser treats chapter bytes as plain text.
type PlainTextParser struct{}

// Name implements TextParser.
func (PlainTextParser) Name() string { return "plain" }

// Parse implements TextParser. Line endings are normalised to "\n".
func (PlainTextParser) Parse(raw []byte, encodingLabel string) (string, error) {
	text, err := decodeText(raw, encodingLabel)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n"), nil
}

// HTMLTextParser extracts the text of HTML and XHTML chapters.
type HTMLTextParser struct{}

// Name implements TextParser.
func (HTMLTextParser) Name() string { return "html" }

// Parse implements TextParser.
func (HTMLTextParser) Parse(raw []byte, encodingLabel string) (string, error) {
	text, err := decodeText(raw, encodingLabel)
	if err != nil {
		return "", err
	}
	return extractText([]byte(text))
}

// lookupEncoding resolves a WHATWG encoding label such as "utf-8",
// "windows-1251" or "latin1".
func lookupEncoding(label string) (encoding.Encoding, error) {
	if label == "" {
		label = DefaultEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("book: encoding %q: %w", label, ErrUnsupportedEncoding)
	}
	return enc, nil
}

// ValidEncoding reports whether label names a supported text encoding.
func ValidEncoding(label string) bool {
	_, err := lookupEncoding(label)
	return err == nil
}

// decodeText converts raw to UTF-8. Bytes that do not decode, such as a
// character cut in half at a chapter boundary, become U+FFFD.
func decodeText(raw []byte, label string) (string, error) {
	enc, err := lookupEncoding(label)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(stripBOM(raw))
	if err != nil {
		return "", fmt.Errorf("book: decode %s text: %w", label, err)
	}
	return string(out), nil
}
