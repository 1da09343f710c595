package epub

import (
	"strings"
)

const (
	doctypeHTML5   = "<!DOCTYPE html>"
	doctypeXHTML11 = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">`
)

// CharsetDeclaration returns the head meta element declaring UTF-8 for the package version.
// Version 3 uses the HTML5 form; version 2 readers expect http-equiv.
func CharsetDeclaration(version int) string {
	if version == 2 {
		return `<meta http-equiv="Content-Type" content="text/html; charset=utf-8" />`
	}
	return `<meta charset="utf-8" />`
}

// XHTMLDocument wraps body markup into a standalone content document.
// cssHref may be empty.
func XHTMLDocument(version int, title, cssHref, body string) string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	if version == 2 {
		sb.WriteString(doctypeXHTML11)
	} else {
		sb.WriteString(doctypeHTML5)
	}
	sb.WriteString("\n<html xmlns=\"http://www.w3.org/1999/xhtml\">\n<head>\n")
	sb.WriteString(CharsetDeclaration(version))
	sb.WriteString("\n<title>")
	sb.WriteString(escapeXML(title))
	sb.WriteString("</title>\n")
	if cssHref != "" {
		sb.WriteString(`<link rel="stylesheet" type="text/css" href="`)
		sb.WriteString(escapeXML(cssHref))
		sb.WriteString("\" />\n")
	}
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("</body></html>")

	return sb.String()
}

// escapeXML escapes special XML characters.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

// DefaultStylesheet covers the classes the transform emits. It is used when no
// stylesheet is configured.
const DefaultStylesheet = `/* x2epub stylesheet */

body {
  font-family: serif;
  line-height: 1.6;
  margin: 1em;
}

h1, h2, h3, h4, h5, h6, p.head {
  font-weight: bold;
  margin-top: 1.5em;
  margin-bottom: 0.5em;
}

h1 {
  font-size: 1.6em;
}

p.head {
  font-size: 1.1em;
}

p.figure_head {
  text-align: center;
  font-size: 0.9em;
}

.quote {
  margin-left: 2em;
}

.quote_zh {
  font-family: "KaiTi", "BiauKai", serif;
}

.lg {
  margin: 1em 2em;
}

.cit, .bibl {
  margin-left: 2em;
}

.bibl_zh {
  text-align: right;
}

.byline, .opener {
  text-align: right;
}

.label {
  font-weight: bold;
}

.emph {
  font-weight: bold;
}

.supplied {
  color: #666;
}

.inline_note {
  font-size: 0.85em;
}

.inline_note2 {
  font-size: 0.7em;
}

a.noteAnchor {
  vertical-align: super;
  font-size: 0.75em;
  text-decoration: none;
}

p.note {
  font-size: 0.85em;
}

img.glyph {
  vertical-align: middle;
}

table td {
  border: 1px solid #999;
  padding: 0.2em 0.4em;
}
`
