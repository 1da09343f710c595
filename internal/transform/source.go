package transform

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// LoadFile parses an XML document from path and strips its namespaces.
func LoadFile(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	StripNamespaces(doc.Root())
	return doc, nil
}

// LoadBytes parses an XML document from memory and strips its namespaces.
func LoadBytes(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	StripNamespaces(doc.Root())
	return doc, nil
}

// StripNamespaces drops element and attribute prefixes below el and removes
// xmlns declarations, so xml:lang becomes lang.
func StripNamespaces(el *etree.Element) {
	if el == nil {
		return
	}
	el.Space = ""
	attrs := el.Attr[:0]
	for _, a := range el.Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		a.Space = ""
		attrs = append(attrs, a)
	}
	el.Attr = attrs
	for _, c := range el.ChildElements() {
		StripNamespaces(c)
	}
}

// TextContent returns the concatenated character data below el.
func TextContent(el *etree.Element) string {
	var sb strings.Builder
	writeText(&sb, el)
	return sb.String()
}

func writeText(sb *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			writeText(sb, t)
		}
	}
}
