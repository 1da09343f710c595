// Package transform renders a TEI-style XML tree into XHTML content documents,
// filling an epub.Book and its table of contents as a side effect.
package transform

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/epub"
	"github.com/jackzampolin/x2epub/internal/markup"
)

// Mode selects how an element is rendered.
type Mode int

const (
	// ModeHTML renders full XHTML markup with all side effects.
	ModeHTML Mode = iota
	// ModeText renders plain text only, used for table of contents titles.
	ModeText
)

// Sentinel errors for structural violations in the source document.
var (
	ErrNoTextBody         = errors.New("transform: document has no text element")
	ErrUnknownGlyph       = errors.New("transform: glyph is not declared")
	ErrMalformedDimension = errors.New("transform: malformed dimension")
	ErrMissingAttribute   = errors.New("transform: required attribute missing")
)

const defaultLang = "zh"

// frontFile is the content document produced for the first front element.
// Later ones are numbered front_2.htm, front_3.htm and so on.
const frontFile = "front.htm"

// Options configures an Engine.
type Options struct {
	GraphicBase       string // directory graphic urls are resolved against
	GlyphBase         string // directory glyph image urls are resolved against
	CSSHref           string // stylesheet linked from every content document, may be empty
	ConvertLineBreaks bool   // render lb and line runs as <br/>
	AfterCopyright    string // markup appended to the div with type="copyright"

	// TextFilter, when set, rewrites every escaped text run.
	TextFilter func(string) string

	Logger *slog.Logger
}

// chapterState is reset at every chapter boundary.
type chapterState struct {
	noteCount   int
	bottomNotes strings.Builder
	anchors     map[string]bool
	properties  map[string]bool
}

// Engine walks a source tree and renders it. An Engine holds the state of a
// single conversion and must not be shared between goroutines.
type Engine struct {
	book   *epub.Book
	opts   Options
	logger *slog.Logger

	toc       *epub.Cursor
	chars     map[string]string
	labels    map[string]string // glyph id to its text stand-in
	depth     int
	chapter   int
	fronts    int
	headCount int
	doc       string
	state     *chapterState
}

// New creates an engine that registers its output in book.
func New(book *epub.Book, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		book:   book,
		opts:   opts,
		logger: logger,
		toc:    epub.NewCursor(book.TOC),
		chars:  make(map[string]string),
		labels: make(map[string]string),
	}
	e.resetChapter()
	return e
}

// Chapters returns the number of chapter documents produced so far.
func (e *Engine) Chapters() int {
	return e.chapter
}

// HeadCount returns the number of headings that received a table of contents target.
func (e *Engine) HeadCount() int {
	return e.headCount
}

// SetGlyphs replaces the glyph identifier to image url map.
func (e *Engine) SetGlyphs(chars map[string]string) {
	e.chars = chars
}

// Convert collects glyph declarations from root and renders its text element.
func (e *Engine) Convert(root *etree.Element) error {
	if root == nil {
		return ErrNoTextBody
	}
	chars, err := GlyphMap(root)
	if err != nil {
		return err
	}
	e.SetGlyphs(chars)
	e.labels = GlyphLabels(root)

	text := root
	if root.Tag != "text" {
		text = root.FindElement(".//text")
	}
	if text == nil {
		return ErrNoTextBody
	}

	if _, err := e.Render(text, ModeHTML); err != nil {
		return err
	}
	e.logger.Info("document transformed", "chapters", e.chapter, "headings", e.headCount)
	return nil
}

// Render renders one element in the given mode.
func (e *Engine) Render(el *etree.Element, mode Mode) (string, error) {
	resolveLang(el)
	if mode == ModeText {
		return e.renderText(el)
	}

	switch el.Tag {
	case "bibl":
		return e.renderBibl(el)
	case "byline":
		return e.renderByline(el)
	case "cell":
		return e.renderCell(el)
	case "cit":
		return e.renderCit(el)
	case "div":
		return e.renderDiv(el)
	case "emph":
		return e.renderClassSpan(el, "emph")
	case "figure":
		return e.renderFigure(el)
	case "front":
		return e.renderFront(el)
	case "g":
		return e.renderGlyph(el)
	case "graphic":
		return e.renderGraphic(el)
	case "head":
		return e.renderHead(el)
	case "item":
		return e.renderItem(el)
	case "l":
		return e.renderLine(el)
	case "label":
		return e.renderLabel(el)
	case "lb":
		return e.renderLineBreak(el), nil
	case "lg":
		return e.renderLineGroup(el)
	case "list":
		return e.renderList(el)
	case "note":
		return e.renderNote(el)
	case "opener":
		return e.renderOpener(el)
	case "p":
		return e.renderParagraph(el)
	case "placeName", "term":
		return e.renderStyledSpan(el)
	case "q":
		return e.renderQ(el)
	case "quote":
		return e.renderQuote(el)
	case "ref":
		return e.renderRef(el)
	case "row":
		return e.renderRow(el)
	case "seg":
		return e.renderSeg(el)
	case "supplied":
		return e.renderClassSpan(el, "supplied")
	case "table":
		return e.renderTable(el)
	case "title":
		return e.renderTitle(el)
	default:
		// text and anything unknown pass through
		return e.traverse(el, ModeHTML)
	}
}

// renderText renders an element as plain text. Bottom notes and line breaks
// are dropped; everything else contributes its text.
func (e *Engine) renderText(el *etree.Element) (string, error) {
	switch el.Tag {
	case "lb":
		return "", nil
	case "g":
		return e.glyphText(el)
	case "note":
		if attrValue(el, "place") == "bottom" {
			return "", nil
		}
	}
	return e.traverse(el, ModeText)
}

// traverse renders the element's text, children and their tails in document order.
// Structural containers skip text between their children.
func (e *Engine) traverse(el *etree.Element, mode Mode) (string, error) {
	skipText := ignoresText(el.Tag)
	var sb strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if !skipText {
				sb.WriteString(e.text(t.Data))
			}
		case *etree.Element:
			s, err := e.Render(t, mode)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		}
	}
	return sb.String(), nil
}

// text escapes a source text run and drops newlines.
func (e *Engine) text(s string) string {
	s = markup.Escape(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	if e.opts.TextFilter != nil {
		s = e.opts.TextFilter(s)
	}
	return s
}

func ignoresText(tag string) bool {
	return tag == "table" || tag == "row"
}

// resetChapter starts a fresh set of per-chapter state.
func (e *Engine) resetChapter() {
	e.state = &chapterState{
		anchors:    make(map[string]bool),
		properties: make(map[string]bool),
	}
}

// declare records a manifest property for the current content document.
func (e *Engine) declare(property string) {
	e.state.properties[property] = true
}

func (e *Engine) properties() []string {
	if len(e.state.properties) == 0 {
		return nil
	}
	props := make([]string, 0, len(e.state.properties))
	for p := range e.state.properties {
		props = append(props, p)
	}
	sort.Strings(props)
	return props
}

// resolveLang gives el a lang attribute inherited from its parent, default zh.
func resolveLang(el *etree.Element) {
	if el.SelectAttr("lang") != nil {
		return
	}
	lang := defaultLang
	if p := el.Parent(); p != nil {
		lang = p.SelectAttrValue("lang", defaultLang)
	}
	el.CreateAttr("lang", lang)
}

func attr(el *etree.Element, key string) (string, bool) {
	a := el.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

func attrValue(el *etree.Element, key string) string {
	return el.SelectAttrValue(key, "")
}

func parentTag(el *etree.Element) string {
	if p := el.Parent(); p != nil {
		return p.Tag
	}
	return ""
}

// nextElement returns the element sibling following el, skipping text and comments.
func nextElement(el *etree.Element) *etree.Element {
	p := el.Parent()
	if p == nil {
		return nil
	}
	found := false
	for _, tok := range p.Child {
		c, ok := tok.(*etree.Element)
		if !ok {
			continue
		}
		if found {
			return c
		}
		if c == el {
			found = true
		}
	}
	return nil
}

func hasChild(el *etree.Element, tags ...string) bool {
	for _, c := range el.ChildElements() {
		for _, tag := range tags {
			if c.Tag == tag {
				return true
			}
		}
	}
	return false
}

func hasDescendant(el *etree.Element, tag string) bool {
	for _, c := range el.ChildElements() {
		if c.Tag == tag || hasDescendant(c, tag) {
			return true
		}
	}
	return false
}

// styled builds a node carrying rend as style.
func styled(tag string, el *etree.Element) *markup.Node {
	return markup.New(tag).SetIf("style", attrValue(el, "rend"))
}

func missingAttr(el *etree.Element, key string) error {
	return fmt.Errorf("%w: <%s> needs %q", ErrMissingAttribute, el.Tag, key)
}
