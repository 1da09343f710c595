package epub

import (
	"fmt"
	"strings"
)

// generatePackage creates the content.opf package document.
func (b *Builder) generatePackage() string {
	book := b.book
	var sb strings.Builder

	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString(fmt.Sprintf("<package version=\"%d.0\" xmlns=\"http://www.idpf.org/2007/opf\" unique-identifier=\"BookId\">\n", book.Version))

	// Metadata
	if book.Version == 2 {
		sb.WriteString("<metadata xmlns:dc=\"http://purl.org/dc/elements/1.1/\" xmlns:opf=\"http://www.idpf.org/2007/opf\">\n")
	} else {
		sb.WriteString("<metadata xmlns:dc=\"http://purl.org/dc/elements/1.1/\">\n")
	}
	sb.WriteString(fmt.Sprintf("<dc:identifier id=\"BookId\">urn:uuid:%s</dc:identifier>\n", book.ID))
	sb.WriteString(fmt.Sprintf("<dc:title id=\"title\">%s</dc:title>\n", escapeXML(book.Title)))
	for i, c := range book.Creators {
		n := i + 1
		if book.Version == 2 {
			sb.WriteString(fmt.Sprintf("<dc:creator opf:role=\"%s\">%s</dc:creator>\n", escapeXML(c.Role), escapeXML(c.Name)))
			continue
		}
		sb.WriteString(fmt.Sprintf("<dc:creator id=\"creator%d\">%s</dc:creator>\n", n, escapeXML(c.Name)))
		sb.WriteString(fmt.Sprintf("<meta refines=\"#creator%d\" property=\"role\" scheme=\"marc:relators\">%s</meta>\n", n, escapeXML(c.Role)))
		sb.WriteString(fmt.Sprintf("<meta refines=\"#creator%d\" property=\"display-seq\">%d</meta>\n", n, n))
	}
	for _, lang := range book.Languages {
		sb.WriteString(fmt.Sprintf("<dc:language>%s</dc:language>\n", escapeXML(lang)))
	}

	now := book.Now()
	if book.Version > 2 {
		// Modified timestamp (required for ePub 3)
		sb.WriteString(fmt.Sprintf("<meta property=\"dcterms:modified\">%s</meta>\n", now.UTC().Format("2006-01-02T15:04:05Z")))
	}
	if book.Publisher != "" {
		sb.WriteString(fmt.Sprintf("<dc:publisher>%s</dc:publisher>\n", escapeXML(book.Publisher)))
	}
	sb.WriteString(fmt.Sprintf("<dc:date>%s</dc:date>\n", now.Format("2006-01-02")))
	if book.Version == 2 && book.Cover != nil {
		sb.WriteString(fmt.Sprintf("<meta name=\"cover\" content=\"%s\" />\n", book.Cover.ID))
	}
	sb.WriteString("</metadata>\n")

	// Manifest
	sb.WriteString("<manifest>\n")
	if book.Version == 2 {
		sb.WriteString("<item id=\"ncx\" href=\"toc.ncx\" media-type=\"" + MediaTypeNCX + "\" />\n")
	} else {
		sb.WriteString("<item id=\"toc\" href=\"toc.html\" properties=\"nav\" media-type=\"" + MediaTypeXHTML + "\" />\n")
	}
	for _, item := range book.items {
		sb.WriteString("<item")
		if book.Version > 2 && len(item.Properties) > 0 {
			sb.WriteString(fmt.Sprintf(" properties=\"%s\"", strings.Join(item.Properties, " ")))
		}
		sb.WriteString(fmt.Sprintf(" id=\"%s\" href=\"%s\" media-type=\"%s\" />\n",
			item.ID, escapeXML(item.DestPath), item.MediaType))
	}
	sb.WriteString("</manifest>\n")

	// Spine (reading order)
	if book.Version == 2 {
		sb.WriteString("<spine toc=\"ncx\">\n")
	} else {
		sb.WriteString("<spine>\n")
		sb.WriteString("<itemref idref=\"toc\" />\n")
	}
	for _, item := range book.items {
		if item.MediaType == MediaTypeXHTML {
			sb.WriteString(fmt.Sprintf("<itemref idref=\"%s\" />\n", item.ID))
		}
	}
	sb.WriteString("</spine>\n")

	sb.WriteString("</package>\n")

	return sb.String()
}
