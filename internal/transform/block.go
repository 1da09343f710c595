package transform

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/markup"
)

// hasDisplay reports whether a rend style sets display to value, ignoring spaces.
func hasDisplay(rend, value string) bool {
	return strings.Contains(strings.ReplaceAll(rend, " ", ""), "display:"+value)
}

func isZh(el *etree.Element) bool {
	return attrValue(el, "lang") == "zh"
}

// rendition returns the rendition attribute without a leading "#".
func rendition(el *etree.Element) string {
	return strings.TrimPrefix(attrValue(el, "rendition"), "#")
}

func (e *Engine) renderParagraph(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	tag := "p"
	if hasDescendant(el, "lg") {
		tag = "div"
	}
	return styled(tag, el).SetIf("class", rendition(el)).WithContent(content).String() + "\n", nil
}

func (e *Engine) renderQuote(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	rend := attrValue(el, "rend")

	tag := "span"
	switch {
	case hasDisplay(rend, "block"), hasDisplay(rend, "inline-block"):
		tag = "div"
	case hasChild(el, "p", "lg"):
		tag = "div"
	}

	zh := ""
	if isZh(el) {
		zh = "quote_zh"
	}
	return markup.New(tag).
		Set("class", markup.Classes("quote", zh)).
		SetIf("style", rend).
		WithContent(content).
		String(), nil
}

func (e *Engine) renderQ(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	rend := attrValue(el, "rend")
	node := markup.New("span").Set("class", "quote")
	switch {
	case rend == "":
	case hasDisplay(rend, "block"):
		node.Tag = "p"
		return node.WithContent(content).String() + "\n", nil
	default:
		node.Set("style", rend)
	}
	return node.WithContent(content).String(), nil
}

func (e *Engine) renderCit(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	rend := attrValue(el, "rend")
	switch {
	case rend == "":
		return content, nil
	case hasDisplay(rend, "block"):
		return markup.New("div").Set("class", "cit").WithContent(content).String() + "\n", nil
	default:
		return markup.New("span").Set("style", rend).WithContent(content).String(), nil
	}
}

func (e *Engine) renderBibl(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	rend := attrValue(el, "rend")
	if !hasDisplay(rend, "block") {
		return content, nil
	}
	class := "bibl"
	if isZh(el) {
		class = "bibl_zh"
	}
	return markup.New("p").Set("style", rend).Set("class", class).WithContent(content).String(), nil
}

func (e *Engine) renderLineGroup(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	zh := ""
	if parentTag(el) == "quote" && isZh(el) {
		zh = "quote_zh"
	}
	return markup.New("div").
		Set("class", markup.Classes("lg", attrValue(el, "rendition"), zh)).
		SetIf("style", attrValue(el, "rend")).
		WithContent(content).
		String(), nil
}

func listTag(el *etree.Element) string {
	switch attrValue(el, "type") {
	case "ordered":
		return "ol"
	case "bulleted":
		return "ul"
	}
	return ""
}

func (e *Engine) renderList(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	tag := listTag(el)
	if tag == "" {
		return styled("div", el).Set("class", "list").WithContent(content).String(), nil
	}
	return styled(tag, el).WithContent(content).String(), nil
}

// renderItem renders li inside ol/ul lists and a div anywhere else.
func (e *Engine) renderItem(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	if p := el.Parent(); p != nil && p.Tag == "list" && listTag(p) != "" {
		return styled("li", el).WithContent(content).String(), nil
	}
	if attrValue(el, "rend") == "" {
		return markup.New("div").Set("class", "item").WithContent(content).String(), nil
	}
	return styled("div", el).WithContent(content).String(), nil
}

func (e *Engine) renderLine(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	if !e.opts.ConvertLineBreaks {
		return content, nil
	}
	if next := nextElement(el); next != nil {
		switch next.Tag {
		case "l", "lb", "pb":
			content += "<br/>\n"
		}
	}
	return content, nil
}

func (e *Engine) renderLineBreak(el *etree.Element) string {
	if attrValue(el, "type") == "always-newline" {
		return "<br/>"
	}
	if e.opts.ConvertLineBreaks && parentTag(el) != "table" {
		return "<br/>"
	}
	return ""
}

func (e *Engine) renderOpener(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	class := rendition(el)
	if class == "" {
		class = "opener"
	}
	return styled("p", el).Set("class", class).WithContent(content).String() + "\n", nil
}

func (e *Engine) renderByline(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	return markup.New("p").
		Set("class", "byline").
		SetIf("style", attrValue(el, "rend")).
		WithContent(content).
		String() + "\n", nil
}

func (e *Engine) renderLabel(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	return markup.New("div").
		Set("class", "label").
		SetIf("style", attrValue(el, "rend")).
		WithContent(content).
		String(), nil
}

func (e *Engine) renderFigure(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	style := attrValue(el, "rend")
	if style == "" {
		style = "text-align:center"
	}
	return markup.New("div").Set("style", style).WithContent(content).String() + "\n", nil
}
