package book

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// xmlEntityRefs maps the HTML named entities that show up in OPF and NCX
// files to numeric references encoding/xml understands.
var xmlEntityRefs = map[string]string{
	"nbsp": "&#160;", "shy": "&#173;",
	"mdash": "&#8212;", "ndash": "&#8211;", "hellip": "&#8230;",
	"lsquo": "&#8216;", "rsquo": "&#8217;", "ldquo": "&#8220;", "rdquo": "&#8221;",
	"laquo": "&#171;", "raquo": "&#187;",
	"copy": "&#169;", "reg": "&#174;", "trade": "&#8482;",
	"bull": "&#8226;", "middot": "&#183;", "deg": "&#176;",
	"eacute": "&#233;", "egrave": "&#232;", "ecirc": "&#234;", "euml": "&#235;",
	"aacute": "&#225;", "agrave": "&#224;", "acirc": "&#226;", "auml": "&#228;",
	"iacute": "&#237;", "iuml": "&#239;", "oacute": "&#243;", "ouml": "&#246;",
	"uacute": "&#250;", "uuml": "&#252;", "ntilde": "&#241;", "ccedil": "&#231;",
}

var namedEntityPattern = regexp.MustCompile(`(?i)&([a-z]+);`)

// xmlSafeEntities rewrites known HTML named entities as numeric
// references. Unknown names and the five XML entities are left alone.
func xmlSafeEntities(data []byte) []byte {
	return namedEntityPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		if ref, ok := xmlEntityRefs[strings.ToLower(string(m[1:len(m)-1]))]; ok {
			return []byte(ref)
		}
		return m
	})
}

// lineBreakTags start a new line in extracted text.
var lineBreakTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Div: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
}

// hiddenTags have content that is never rendered.
var hiddenTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Head:   true,
}

// extractText renders HTML as plain text. Block elements produce line
// breaks and whitespace runs collapse to a single space. The input may be
// a fragment cut at an arbitrary byte; the tokenizer copes with that.
func extractText(data []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(data))

	var out strings.Builder
	hidden := 0
	atLineStart := true

	breakLine := func() {
		if out.Len() > 0 && !atLineStart {
			out.WriteByte('\n')
			atLineStart = true
		}
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return strings.TrimSpace(out.String()), nil

		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if hiddenTags[a] {
				hidden++
			} else if hidden == 0 && lineBreakTags[a] {
				breakLine()
			}

		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if hidden == 0 && lineBreakTags[atom.Lookup(name)] {
				breakLine()
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if hiddenTags[atom.Lookup(name)] && hidden > 0 {
				hidden--
			}

		case html.TextToken:
			if hidden > 0 {
				continue
			}
			if s := collapseSpaces(string(z.Text())); s != "" {
				if atLineStart {
					s = strings.TrimLeft(s, " ")
				}
				out.WriteString(s)
				atLineStart = false
			}
		}
	}
}

// collapseSpaces folds whitespace runs into single spaces, keeping one
// space at either edge when the input had whitespace there. All-space
// input yields "".
func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	joined := strings.Join(fields, " ")
	if isSpace(s[0]) {
		joined = " " + joined
	}
	if isSpace(s[len(s)-1]) {
		joined += " "
	}
	return joined
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// htmlTitle returns the text of the first <title> element, or "".
func htmlTitle(data []byte) string {
	z := html.NewTokenizer(bytes.NewReader(data))
	inTitle := false
	var title strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(title.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Title {
				inTitle = true
			} else if atom.Lookup(name) == atom.Body {
				return strings.TrimSpace(title.String())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && atom.Lookup(name) == atom.Title {
				return strings.Join(strings.Fields(title.String()), " ")
			}
		case html.TextToken:
			if inTitle {
				title.Write(z.Text())
			}
		}
	}
}
