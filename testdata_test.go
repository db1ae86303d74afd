package book

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// buildTestZipBytes creates a ZIP archive from files (path → content).
// "mimetype" is written first when present; entries listed in stored are
// written without compression.
func buildTestZipBytes(t testing.TB, files map[string]string, stored ...string) []byte {
	t.Helper()
	isStored := make(map[string]bool, len(stored))
	for _, s := range stored {
		isStored[s] = true
	}

	names := make([]string, 0, len(files))
	for name := range files {
		if name != "mimetype" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := files["mimetype"]; ok {
		names = append([]string{"mimetype"}, names...)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, name := range names {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		if isStored[name] || name == "mimetype" {
			hdr.Method = zip.Store
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("buildTestZipBytes: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, files[name]); err != nil {
			t.Fatalf("buildTestZipBytes: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestZipBytes: close writer: %v", err)
	}
	return buf.Bytes()
}

// newTestArchive returns an Archive over an in-memory ZIP.
func newTestArchive(t testing.TB, files map[string]string, stored ...string) *Archive {
	t.Helper()
	a, err := newArchive(bytes.NewReader(buildTestZipBytes(t, files, stored...)))
	if err != nil {
		t.Fatalf("newTestArchive: %v", err)
	}
	return a
}

// buildTestEPubFile writes an ePub archive to a temporary directory and
// returns its path.
func buildTestEPubFile(t testing.TB, files map[string]string, stored ...string) string {
	t.Helper()
	return writeTestFile(t, "test.epub", buildTestZipBytes(t, files, stored...))
}

// writeTestFile writes data to name inside a fresh temporary directory.
func writeTestFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(fp, data, 0o644); err != nil {
		t.Fatalf("writeTestFile: %v", err)
	}
	return fp
}

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Test Book</dc:title>
    <dc:creator opf:role="aut">Jane Doe</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="uid" opf:scheme="ISBN">978-0-00-000000-0</dc:identifier>
    <dc:publisher>Test Press</dc:publisher>
    <dc:description>A book for tests.</dc:description>
  </metadata>
  <manifest>
    <item id="ch1" href="chapter01.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="chapter02.xhtml" media-type="application/xhtml+xml"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

const testNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text>Chapter One</text></navLabel>
      <content src="chapter01.xhtml"/>
    </navPoint>
    <navPoint id="np2" playOrder="2">
      <navLabel><text>Chapter Two</text></navLabel>
      <content src="chapter02.xhtml#start"/>
    </navPoint>
  </navMap>
</ncx>`

const testChapter01 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter One</title></head>
<body>
<h1>Chapter One</h1>
<p>Hello, world!</p>
</body>
</html>`

const testChapter02 = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter Two</title></head>
<body>
<p>Goodbye, world!</p>
</body>
</html>`

// testEPubFiles returns a minimal valid ePub 2 file set.
func testEPubFiles() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf":      testOPF,
		"OEBPS/toc.ncx":          testNCX,
		"OEBPS/chapter01.xhtml":  testChapter01,
		"OEBPS/chapter02.xhtml":  testChapter02,
	}
}
