package book

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageNamer holds the English names of languages.
var languageNamer = display.English.Languages()

// LanguageName returns the English name of a BCP 47 language code, e.g.
// "bg" becomes "Bulgarian". Codes without a known name are returned as
// given.
func LanguageName(code string) string {
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := languageNamer.Name(tag); name != "" {
		return name
	}
	return code
}
