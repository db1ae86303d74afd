package book

import (
	"fmt"
	"strings"
)

// loadEPub builds the chapter chain of an ePub container. Every spine
// item becomes one or more chapters of at most maxSize bytes, numbered
// continuously across items.
func (b *Book) loadEPub(maxSize int) error {
	a, err := newArchive(b.src)
	if err != nil {
		return err
	}

	opfPath, err := locatePackage(a)
	if err != nil {
		return err
	}

	obfuscated, err := checkDRM(a)
	if err != nil {
		return err
	}
	if obfuscated {
		b.warnings = append(b.warnings, "font obfuscation detected; embedded fonts are unusable")
	}

	data, err := a.ReadFile(opfPath)
	if err != nil {
		return fmt.Errorf("book: read package document: %v: %w", err, ErrBookFormat)
	}
	pkg, err := parseOPF(data)
	if err != nil {
		return err
	}

	info := extractPackageInfo(pkg)
	if info.title != "" {
		b.title = info.title
	}
	if info.author != "" {
		b.author = info.author
	}
	b.language = info.language
	b.description = info.description
	b.meta = info.meta

	titles, warnings := tocTitles(a, pkg, opfPath)
	b.warnings = append(b.warnings, warnings...)

	var chapters []*Chapter
	for _, item := range pkg.spine(opfPath) {
		src, err := a.Open(item.Path)
		if err != nil {
			b.warnings = append(b.warnings, fmt.Sprintf("spine item %s: %v", item.ID, err))
			continue
		}
		if src.Size() == 0 {
			continue
		}

		ranges, err := Partition(src.Size(), len(chapters), maxSize)
		if err != nil {
			return err
		}
		title := titles[item.Path]
		for k, r := range ranges {
			ch := newChapter(src, r)
			switch {
			case title == "":
			case len(ranges) == 1:
				ch.Title = title
			default:
				ch.Title = fmt.Sprintf("%s (%d/%d)", title, k+1, len(ranges))
			}
			chapters = append(chapters, ch)
		}
	}
	if len(chapters) == 0 {
		return fmt.Errorf("book: container has no readable spine items: %w", ErrBookFormat)
	}

	chain, err := newChain(chapters)
	if err != nil {
		return err
	}
	b.chain = chain
	b.archive = a
	return nil
}

// isContainer reports whether name has the ePub extension.
func isContainer(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), EPubExtension)
}
