package transform

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/epub"
	"github.com/jackzampolin/x2epub/internal/markup"
)

// renderDiv handles sectioning. A div with a head opens a table of contents
// node for its subtree. A top-level div outside front becomes a chapter
// document and contributes nothing to its parent.
func (e *Engine) renderDiv(el *etree.Element) (string, error) {
	e.depth++
	defer func() { e.depth-- }()

	if el.SelectElement("head") != nil {
		e.toc.Open()
		e.book.NoteTOCDepth(e.depth)
		defer e.toc.Close()
	}

	if e.depth == 1 && parentTag(el) != "front" {
		return "", e.renderChapter(el)
	}

	body, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	return sectionNode(el).WithContent(body).String(), nil
}

func (e *Engine) renderChapter(el *etree.Element) error {
	e.chapter++
	e.doc = fmt.Sprintf("%d.htm", e.chapter)
	e.resetChapter()

	body, err := e.traverse(el, ModeHTML)
	if err != nil {
		return fmt.Errorf("chapter %d: %w", e.chapter, err)
	}
	if attrValue(el, "type") == "copyright" {
		body += e.opts.AfterCopyright
	}

	e.publish(e.doc, sectionNode(el).WithContent(body).String()+"\n")
	e.logger.Debug("chapter rendered", "chapter", e.chapter, "path", e.doc)
	return nil
}

// renderFront renders the front matter into its own document.
func (e *Engine) renderFront(el *etree.Element) (string, error) {
	e.fronts++
	e.doc = frontFile
	if e.fronts > 1 {
		e.doc = fmt.Sprintf("front_%d.htm", e.fronts)
	}
	e.resetChapter()

	body, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", fmt.Errorf("front matter: %w", err)
	}
	e.publish(e.doc, "<div>\n"+body+"</div>\n")
	return "", nil
}

// publish wraps body and the pending bottom notes into a content document.
func (e *Engine) publish(dest, body string) {
	var sb strings.Builder
	sb.WriteString(body)
	if e.state.bottomNotes.Len() > 0 {
		sb.WriteString("<div>")
		sb.WriteString(e.state.bottomNotes.String())
		sb.WriteString("</div>\n")
	}
	doc := epub.XHTMLDocument(e.book.Version, e.book.Title, e.opts.CSSHref, sb.String())
	e.book.AddHTML(dest, doc, e.properties()...)
}

func sectionNode(el *etree.Element) *markup.Node {
	return styled("div", el).SetIf("class", attrValue(el, "rendition"))
}

// renderHead renders a heading. Section headings extend the title of the
// open table of contents node and give it a target once.
func (e *Engine) renderHead(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}

	node := markup.New("p")
	switch parentTag(el) {
	case "div":
		if attrValue(el, "type") == "sub" {
			if e.depth > 5 {
				node.Set("class", "head")
			} else {
				node.Tag = fmt.Sprintf("h%d", e.depth+1)
			}
			break
		}
		if err := e.addHeading(el); err != nil {
			return "", err
		}
		if e.depth > 6 {
			node.Set("class", "head")
		} else {
			node.Tag = fmt.Sprintf("h%d", e.depth)
		}
		node.Set("id", fmt.Sprintf("a_%d", e.headCount))
	case "table":
		node.Tag = "caption"
	case "figure":
		node.Set("class", "figure_head")
	default:
		node.Set("class", "head")
	}

	node.SetIf("style", attrValue(el, "rend"))
	return node.WithContent(content).String(), nil
}

func (e *Engine) addHeading(el *etree.Element) error {
	title, err := e.traverse(el, ModeText)
	if err != nil {
		return err
	}
	e.headCount++

	toc := e.toc.Current()
	if attrValue(el, "lang") == "en" && toc.Title != "" {
		toc.Title += " "
	}
	toc.Title += title
	toc.SetTarget(fmt.Sprintf("%s#a_%d", e.doc, e.headCount), e.headCount)
	return nil
}
