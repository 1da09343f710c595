package transform

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/markup"
)

var dimensionPattern = regexp.MustCompile(`^([\d.]+)([^\d]*)$`)

// ParseDimension splits a length such as "120px" into its number and unit.
// The unit may be empty.
func ParseDimension(s string) (value, unit string, err error) {
	m := dimensionPattern.FindStringSubmatch(s)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedDimension, s)
	}
	return m[1], m[2], nil
}

// GlyphMap collects charDecl/char[@id]/graphic[@url] declarations.
func GlyphMap(root *etree.Element) (map[string]string, error) {
	chars := make(map[string]string)
	if root == nil {
		return chars, nil
	}
	decl := root.FindElement(".//charDecl")
	if decl == nil {
		return chars, nil
	}
	for _, c := range decl.FindElements(".//char") {
		id := attrValue(c, "id")
		g := c.SelectElement("graphic")
		if id == "" || g == nil || attrValue(g, "url") == "" {
			return nil, fmt.Errorf("%w: char %q needs an id and a graphic url", ErrMissingAttribute, id)
		}
		chars[id] = attrValue(g, "url")
	}
	return chars, nil
}

// GlyphLabels maps every declared glyph to the text used for it in table of
// contents titles: the character of its unicode mapping, or else its id.
func GlyphLabels(root *etree.Element) map[string]string {
	labels := make(map[string]string)
	if root == nil {
		return labels
	}
	decl := root.FindElement(".//charDecl")
	if decl == nil {
		return labels
	}
	for _, c := range decl.FindElements(".//char") {
		if id := attrValue(c, "id"); id != "" {
			labels[id] = glyphLabel(c, id)
		}
	}
	return labels
}

func glyphLabel(c *etree.Element, id string) string {
	for _, m := range c.SelectElements("mapping") {
		text := strings.TrimSpace(TextContent(m))
		if r, ok := codePoint(text); ok {
			return string(r)
		}
		if utf8.RuneCountInString(text) == 1 {
			return text
		}
	}
	return id
}

// codePoint decodes a "U+20C3D" style mapping.
func codePoint(s string) (rune, bool) {
	hex, ok := strings.CutPrefix(strings.ToUpper(s), "U+")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, false
	}
	return rune(n), true
}

// glyphText renders a glyph reference in text mode.
func (e *Engine) glyphText(el *etree.Element) (string, error) {
	ref := attrValue(el, "ref")
	id := strings.TrimPrefix(ref, "#")
	if _, ok := e.chars[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGlyph, ref)
	}
	if label, ok := e.labels[id]; ok {
		return markup.Escape(label), nil
	}
	return markup.Escape(id), nil
}

// registerImage adds base/url to the book under url and marks svg content.
func (e *Engine) registerImage(base, url string) {
	if strings.EqualFold(filepath.Ext(url), ".svg") {
		e.declare("svg")
	}
	e.book.AddImage(filepath.Join(base, filepath.FromSlash(url)), url)
}

func (e *Engine) renderGlyph(el *etree.Element) (string, error) {
	ref := attrValue(el, "ref")
	url, ok := e.chars[strings.TrimPrefix(ref, "#")]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGlyph, ref)
	}
	e.registerImage(e.opts.GlyphBase, url)

	return markup.New("img").
		Set("class", "glyph").
		Set("src", url).
		Set("alt", "").
		Set("width", "18").
		String(), nil
}

func (e *Engine) renderGraphic(el *etree.Element) (string, error) {
	url, ok := attr(el, "url")
	if !ok || url == "" {
		return "", missingAttr(el, "url")
	}
	e.registerImage(e.opts.GraphicBase, url)

	node := markup.New("img").Set("src", url).Set("alt", "")
	node.SetIf("style", attrValue(el, "rend"))
	for _, key := range []string{"width", "height"} {
		raw, ok := attr(el, key)
		if !ok {
			continue
		}
		value, unit, err := ParseDimension(raw)
		if err != nil {
			return "", fmt.Errorf("graphic %s %s: %w", url, key, err)
		}
		node.Set(key, value)
		node.SetIf("data-unit", unit)
	}
	return node.String(), nil
}
