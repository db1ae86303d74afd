package book

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type ncxDoc struct {
	NavPoints []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxNavPoint struct {
	Label   string `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// tocTitles maps archive paths of content documents to their titles in
// the table of contents. ePub 3 nav documents are preferred over NCX.
// A missing or broken table of contents yields an empty map and a
// warning.
func tocTitles(a *Archive, pkg *opfPackage, opfPath string) (map[string]string, []string) {
	titles := make(map[string]string)
	var warnings []string
	dir := path.Dir(opfPath)

	if strings.HasPrefix(pkg.Version, "3") {
		for _, it := range pkg.Manifest {
			if !slices.Contains(strings.Fields(it.Properties), "nav") {
				continue
			}
			navPath := joinOPFPath(dir, it.Href)
			data, err := a.ReadFile(navPath)
			if err == nil {
				err = navTitles(data, navPath, titles)
			}
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("nav document: %v", err))
				break
			}
			if len(titles) > 0 {
				return titles, warnings
			}
			break
		}
	}

	if it, ok := pkg.manifestByID()[pkg.Spine.Toc]; ok && pkg.Spine.Toc != "" {
		ncxPath := joinOPFPath(dir, it.Href)
		data, err := a.ReadFile(ncxPath)
		if err == nil {
			err = ncxTitles(data, ncxPath, titles)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("NCX: %v", err))
		}
	}
	return titles, warnings
}

func ncxTitles(data []byte, ncxPath string, titles map[string]string) error {
	var doc ncxDoc
	if err := xml.Unmarshal(xmlSafeEntities(stripBOM(data)), &doc); err != nil {
		return err
	}
	var walk func([]ncxNavPoint)
	walk = func(points []ncxNavPoint) {
		for _, np := range points {
			addTitle(titles, ncxPath, np.Content.Src, np.Label)
			walk(np.Children)
		}
	}
	walk(doc.NavPoints)
	return nil
}

func navTitles(data []byte, navPath string, titles map[string]string) error {
	doc, err := html.Parse(bytes.NewReader(stripBOM(data)))
	if err != nil {
		return err
	}
	nav := findNav(doc)
	if nav == nil {
		return nil
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			addTitle(titles, navPath, attrValue(n, "href"), nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(nav)
	return nil
}

// findNav returns the <nav epub:type="toc"> element, else the first <nav>.
func findNav(root *html.Node) *html.Node {
	var first, toc *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if toc != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Nav {
			if first == nil {
				first = n
			}
			if slices.Contains(strings.Fields(attrValue(n, "epub:type")), "toc") {
				toc = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if toc != nil {
		return toc
	}
	return first
}

// addTitle records title for the document href points to, keeping the
// first title seen per document.
func addTitle(titles map[string]string, base, href, title string) {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return
	}
	p := resolveRelativePath(base, hrefWithoutFragment(href))
	if p == "" {
		return
	}
	if _, ok := titles[p]; !ok {
		titles[p] = title
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key || (a.Namespace != "" && a.Namespace+":"+a.Key == key) {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
