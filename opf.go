package book

import (
	"encoding/xml"
	"fmt"
	"path"
)

// opfPackage is the root of an OPF package document.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest []opfItem   `xml:"manifest>item"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Titles       []dcElement `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators     []dcElement `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages    []dcElement `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifiers  []dcElement `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Publishers   []dcElement `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Dates        []dcElement `xml:"http://purl.org/dc/elements/1.1/ date"`
	Descriptions []dcElement `xml:"http://purl.org/dc/elements/1.1/ description"`
	Subjects     []dcElement `xml:"http://purl.org/dc/elements/1.1/ subject"`
	Rights       []dcElement `xml:"http://purl.org/dc/elements/1.1/ rights"`
	Sources      []dcElement `xml:"http://purl.org/dc/elements/1.1/ source"`
}

type dcElement struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr"`
	Scheme string `xml:"scheme,attr"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"`
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// spineEntry is a resolved spine item.
type spineEntry struct {
	ID        string
	Path      string // archive path
	MediaType string
	Linear    bool
}

// parseOPF decodes a package document. A missing version means ePub 2.
func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(xmlSafeEntities(stripBOM(data)), &pkg); err != nil {
		return nil, fmt.Errorf("book: parse OPF: %v: %w", err, ErrBookFormat)
	}
	if pkg.Version == "" {
		pkg.Version = "2.0"
	}
	return &pkg, nil
}

// manifestByID indexes the manifest.
func (p *opfPackage) manifestByID() map[string]opfItem {
	m := make(map[string]opfItem, len(p.Manifest))
	for _, it := range p.Manifest {
		m[it.ID] = it
	}
	return m
}

// spine resolves the reading order to archive paths relative to the
// package document at opfPath. References to unknown manifest items are
// dropped.
func (p *opfPackage) spine(opfPath string) []spineEntry {
	byID := p.manifestByID()
	dir := path.Dir(opfPath)

	entries := make([]spineEntry, 0, len(p.Spine.ItemRefs))
	for _, ref := range p.Spine.ItemRefs {
		it, ok := byID[ref.IDRef]
		if !ok || it.Href == "" {
			continue
		}
		entries = append(entries, spineEntry{
			ID:        it.ID,
			Path:      joinOPFPath(dir, it.Href),
			MediaType: it.MediaType,
			Linear:    ref.Linear != "no",
		})
	}
	return entries
}

// joinOPFPath resolves a manifest href against the package directory.
func joinOPFPath(dir, href string) string {
	if dir == "." || dir == "" {
		return href
	}
	return path.Join(dir, href)
}
