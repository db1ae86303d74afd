package book

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// containerPath is the fixed location of the OCF container document.
const containerPath = "META-INF/container.xml"

const opfMediaType = "application/oebps-package+xml"

type ocfContainer struct {
	XMLName   xml.Name      `xml:"container"`
	RootFiles []ocfRootFile `xml:"rootfiles>rootfile"`
}

type ocfRootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// locatePackage returns the archive path of the OPF package document.
// Without container.xml the first ".opf" entry is used.
func locatePackage(a *Archive) (string, error) {
	if a.find(containerPath) == nil {
		for _, name := range a.Files() {
			if strings.HasSuffix(strings.ToLower(name), ".opf") {
				return name, nil
			}
		}
		return "", fmt.Errorf("book: no package document in container: %w", ErrBookFormat)
	}

	data, err := a.ReadFile(containerPath)
	if err != nil {
		return "", fmt.Errorf("book: read container.xml: %w", err)
	}
	var c ocfContainer
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("book: parse container.xml: %v: %w", err, ErrBookFormat)
	}

	// Prefer the rootfile declared as an OPF package; otherwise take the
	// first one with a path.
	var first string
	for _, rf := range c.RootFiles {
		p := strings.TrimSpace(rf.FullPath)
		if p == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), opfMediaType) {
			return p, nil
		}
		if first == "" {
			first = p
		}
	}
	if first == "" {
		return "", fmt.Errorf("book: container.xml names no rootfile: %w", ErrBookFormat)
	}
	return first, nil
}
