// Package epub reads EPUB archives and exposes their spine as an ordered
// list of document fragments, the shape the position index consumes.
package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pagefold/pagefold/core/document"
)

// Metadata contains the EPUB package metadata the application cares about.
type Metadata struct {
	Title      string
	Author     string
	Language   string
	Identifier string
}

// Book is an opened EPUB: its metadata and its spine content in reading
// order. The spine order is the authoritative fragment numbering used by
// position encodings (fragment 1 is the first spine item).
type Book struct {
	Metadata  Metadata
	fragments []*document.Fragment
}

// Fragments returns the spine content in reading order.
func (b *Book) Fragments() []*document.Fragment {
	return b.fragments
}

// OpenFile opens an EPUB from disk.
func OpenFile(filename string) (*Book, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return Open(data)
}

// Open parses an EPUB from bytes: container.xml to locate the OPF package,
// the OPF for metadata, manifest, and spine, then each spine item into a
// fragment.
func Open(data []byte) (*Book, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid EPUB archive: %w", err)
	}

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}

	opfPath, err := rootfilePath(files)
	if err != nil {
		return nil, err
	}

	opfData, err := readEntry(files, opfPath)
	if err != nil {
		return nil, err
	}
	opf, err := xmlquery.Parse(bytes.NewReader(opfData))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", opfPath, err)
	}

	book := &Book{Metadata: readMetadata(opf)}

	hrefs, err := spineHrefs(opf, opfPath)
	if err != nil {
		return nil, err
	}
	for _, href := range hrefs {
		content, err := readEntry(files, href)
		if err != nil {
			return nil, err
		}
		frag, err := document.Parse(href, content)
		if err != nil {
			return nil, err
		}
		book.fragments = append(book.fragments, frag)
	}
	if len(book.fragments) == 0 {
		return nil, fmt.Errorf("EPUB has an empty spine")
	}

	return book, nil
}

// rootfilePath locates the OPF package via META-INF/container.xml.
func rootfilePath(files map[string]*zip.File) (string, error) {
	data, err := readEntry(files, "META-INF/container.xml")
	if err != nil {
		return "", err
	}
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parsing container.xml: %w", err)
	}
	node := xmlquery.FindOne(doc, "//rootfile")
	if node == nil {
		return "", fmt.Errorf("container.xml has no rootfile")
	}
	full := node.SelectAttr("full-path")
	if full == "" {
		return "", fmt.Errorf("rootfile has no full-path")
	}
	return full, nil
}

func readMetadata(opf *xmlquery.Node) Metadata {
	md := Metadata{}
	if n := xmlquery.FindOne(opf, "//metadata/title"); n != nil {
		md.Title = strings.TrimSpace(n.InnerText())
	}
	if n := xmlquery.FindOne(opf, "//metadata/creator"); n != nil {
		md.Author = strings.TrimSpace(n.InnerText())
	}
	if n := xmlquery.FindOne(opf, "//metadata/language"); n != nil {
		md.Language = strings.TrimSpace(n.InnerText())
	}
	if n := xmlquery.FindOne(opf, "//metadata/identifier"); n != nil {
		md.Identifier = strings.TrimSpace(n.InnerText())
	}
	return md
}

// spineHrefs resolves the spine itemrefs through the manifest to archive
// paths, preserving spine order.
func spineHrefs(opf *xmlquery.Node, opfPath string) ([]string, error) {
	manifest := make(map[string]string)
	for _, item := range xmlquery.Find(opf, "//manifest/item") {
		id := item.SelectAttr("id")
		href := item.SelectAttr("href")
		if id != "" && href != "" {
			manifest[id] = href
		}
	}

	base := path.Dir(opfPath)
	var hrefs []string
	for _, ref := range xmlquery.Find(opf, "//spine/itemref") {
		idref := ref.SelectAttr("idref")
		href, ok := manifest[idref]
		if !ok {
			return nil, fmt.Errorf("spine itemref %q not in manifest", idref)
		}
		if base != "." {
			href = path.Join(base, href)
		}
		hrefs = append(hrefs, href)
	}
	return hrefs, nil
}

func readEntry(files map[string]*zip.File, name string) ([]byte, error) {
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("EPUB entry %s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}
