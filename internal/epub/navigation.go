package epub

import (
	"fmt"
	"strings"
)

// generateNavigation creates the toc.html navigation document (ePub 3).
func (b *Builder) generateNavigation() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
<meta charset="utf-8" />
<title>`)
	sb.WriteString(escapeXML(b.book.Title))
	sb.WriteString(`</title>
</head>
<body>
<nav id="toc" epub:type="toc">
<h1>Contents</h1>
`)

	b.writeNavNode(&sb, b.book.TOC)

	sb.WriteString("</nav>\n</body>\n</html>\n")

	return sb.String()
}

// writeNavNode renders a node's link followed by an ordered list of its children.
// Titles are already markup and are written as-is.
func (b *Builder) writeNavNode(sb *strings.Builder, node *TocNode) {
	if node.Title != "" {
		sb.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a>", escapeXML(node.Href), node.Title))
	}
	children := navChildren(node)
	if len(children) == 0 {
		return
	}

	style := b.book.TOCStyle
	switch style {
	case "none":
		sb.WriteString("<ol style=\"list-style-type:none;margin-left:-2em\">\n")
	case "":
		sb.WriteString("<ol>\n")
	default:
		sb.WriteString(fmt.Sprintf("<ol style=\"list-style-type:%s;\">\n", escapeXML(style)))
	}
	for _, child := range children {
		if style == "none" {
			sb.WriteString("<li style=\"margin-left:1em;text-indent:-1em\">")
		} else {
			sb.WriteString("<li>")
		}
		b.writeNavNode(sb, child)
		sb.WriteString("</li>\n")
	}
	sb.WriteString("</ol>\n")
}

// navChildren returns the titled nodes listed under node. Untitled nodes are
// replaced by their own children, as in the NCX.
func navChildren(node *TocNode) []*TocNode {
	var out []*TocNode
	for _, child := range node.Children {
		if child.Title == "" {
			out = append(out, navChildren(child)...)
			continue
		}
		out = append(out, child)
	}
	return out
}

// generateNCX creates the toc.ncx navigation document (ePub 2).
func (b *Builder) generateNCX() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE ncx PUBLIC "-//NISO//DTD ncx 2005-1//EN" "http://www.daisy.org/z3986/2005/ncx-2005-1.dtd">
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" xml:lang="en" version="2005-1">
  <head>
    <meta name="dtb:uid" content="urn:uuid:`)
	sb.WriteString(b.book.ID.String())
	sb.WriteString(fmt.Sprintf(`" />
    <meta name="dtb:depth" content="%d" />
    <meta name="dtb:totalPageCount" content="0" />
    <meta name="dtb:maxPageNumber" content="0" />
  </head>
  <docTitle>
    <text>`, b.book.TOCDepth))
	sb.WriteString(escapeXML(b.book.Title))
	sb.WriteString(`</text>
  </docTitle>
  <navMap>
`)

	writeNavPoints(&sb, b.book.TOC)

	sb.WriteString("  </navMap>\n</ncx>\n")

	return sb.String()
}

// writeNavPoints writes a navPoint for every titled node, nesting children inside.
// Untitled nodes contribute only their children.
func writeNavPoints(sb *strings.Builder, node *TocNode) {
	titled := node.Title != ""
	if titled {
		sb.WriteString(fmt.Sprintf("<navPoint id=\"navPoint-%d\" playOrder=\"%d\">\n", node.PlayOrder, node.PlayOrder))
		sb.WriteString(fmt.Sprintf("  <navLabel><text>%s</text></navLabel>\n", node.Title))
		sb.WriteString(fmt.Sprintf("  <content src=\"%s\" />\n", escapeXML(node.Href)))
	}
	for _, child := range node.Children {
		writeNavPoints(sb, child)
	}
	if titled {
		sb.WriteString("</navPoint>\n")
	}
}
