package epub

import (
	"archive/zip"
	"bytes"
	"testing"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const contentOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="BookId">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="BookId">urn:uuid:test-book</dc:identifier>
    <dc:title>Walden</dc:title>
    <dc:creator>Henry David Thoreau</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ch1" href="text/chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="text/chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch2"/>
    <itemref idref="ch1"/>
  </spine>
</package>`

func chapterXHTML(title string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>` + title + `</title></head>
<body><div><p>Text of ` + title + `.</p></div></body>
</html>`
}

func buildTestEPUB(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	mimetype, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("creating mimetype: %v", err)
	}
	if _, err := mimetype.Write([]byte("application/epub+zip")); err != nil {
		t.Fatalf("writing mimetype: %v", err)
	}

	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func standardEntries() map[string]string {
	return map[string]string{
		"META-INF/container.xml":    containerXML,
		"OEBPS/content.opf":         contentOPF,
		"OEBPS/text/chapter1.xhtml": chapterXHTML("Chapter One"),
		"OEBPS/text/chapter2.xhtml": chapterXHTML("Chapter Two"),
	}
}

// TestOpenSpineOrder verifies fragments come out in spine order, not
// manifest order; the spine deliberately reverses the chapters.
func TestOpenSpineOrder(t *testing.T) {
	book, err := Open(buildTestEPUB(t, standardEntries()))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	fragments := book.Fragments()
	if len(fragments) != 2 {
		t.Fatalf("fragments: got %d, want 2", len(fragments))
	}
	if fragments[0].Name() != "OEBPS/text/chapter2.xhtml" {
		t.Errorf("fragment 1 should be the first spine item, got %s", fragments[0].Name())
	}
	if fragments[1].Name() != "OEBPS/text/chapter1.xhtml" {
		t.Errorf("fragment 2: got %s", fragments[1].Name())
	}
}

// TestOpenMetadata verifies OPF metadata extraction.
func TestOpenMetadata(t *testing.T) {
	book, err := Open(buildTestEPUB(t, standardEntries()))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	md := book.Metadata
	if md.Title != "Walden" {
		t.Errorf("Title: got %q", md.Title)
	}
	if md.Author != "Henry David Thoreau" {
		t.Errorf("Author: got %q", md.Author)
	}
	if md.Language != "en" {
		t.Errorf("Language: got %q", md.Language)
	}
	if md.Identifier != "urn:uuid:test-book" {
		t.Errorf("Identifier: got %q", md.Identifier)
	}
}

// TestOpenErrors verifies structural failures are reported, not papered over.
func TestOpenErrors(t *testing.T) {
	if _, err := Open([]byte("not a zip at all")); err == nil {
		t.Error("non-zip input should fail")
	}

	entries := standardEntries()
	delete(entries, "META-INF/container.xml")
	if _, err := Open(buildTestEPUB(t, entries)); err == nil {
		t.Error("missing container.xml should fail")
	}

	entries = standardEntries()
	delete(entries, "OEBPS/text/chapter1.xhtml")
	if _, err := Open(buildTestEPUB(t, entries)); err == nil {
		t.Error("missing spine item should fail")
	}

	entries = standardEntries()
	entries["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf">
  <manifest><item id="ch1" href="text/chapter1.xhtml"/></manifest>
  <spine><itemref idref="missing"/></spine>
</package>`
	if _, err := Open(buildTestEPUB(t, entries)); err == nil {
		t.Error("spine itemref outside the manifest should fail")
	}
}
