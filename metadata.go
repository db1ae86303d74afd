package book

import "strings"

// Meta keys reported by Book.Meta for ePub books.
const (
	MetaPublisher  = "Publisher"
	MetaDate       = "Date"
	MetaRights     = "Rights"
	MetaSource     = "Source"
	MetaSubjects   = "Subjects"
	MetaIdentifier = "Identifier"
	MetaVersion    = "Version"
)

// packageInfo is the book information taken from OPF metadata.
type packageInfo struct {
	title       string
	author      string
	language    string
	description string
	meta        map[string]string
}

func extractPackageInfo(pkg *opfPackage) packageInfo {
	md := &pkg.Metadata
	info := packageInfo{
		title:       firstValue(md.Titles),
		language:    firstValue(md.Languages),
		description: firstValue(md.Descriptions),
		meta:        map[string]string{MetaVersion: pkg.Version},
	}

	var authors []string
	for _, c := range md.Creators {
		if v := strings.TrimSpace(c.Value); v != "" {
			authors = append(authors, v)
		}
	}
	info.author = strings.Join(authors, ", ")

	putMeta(info.meta, MetaPublisher, firstValue(md.Publishers))
	putMeta(info.meta, MetaDate, firstValue(md.Dates))
	putMeta(info.meta, MetaRights, firstValue(md.Rights))
	putMeta(info.meta, MetaSource, firstValue(md.Sources))

	var subjects []string
	for _, s := range md.Subjects {
		if v := strings.TrimSpace(s.Value); v != "" {
			subjects = append(subjects, v)
		}
	}
	putMeta(info.meta, MetaSubjects, strings.Join(subjects, ", "))

	for _, id := range md.Identifiers {
		v := strings.TrimSpace(id.Value)
		if v == "" {
			continue
		}
		if id.Scheme != "" {
			v = id.Scheme + ":" + v
		}
		putMeta(info.meta, MetaIdentifier, v)
		break
	}
	return info
}

// firstValue returns the first non-blank element value.
func firstValue(els []dcElement) string {
	for _, e := range els {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

func putMeta(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
