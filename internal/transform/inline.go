package transform

import (
	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/markup"
)

const ideographicSpace = "　"

func (e *Engine) renderSeg(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	class := attrValue(el, "rendition")
	if class == "ruby_base" && content == " " {
		content = ideographicSpace
	}
	return styled("span", el).SetIf("class", class).WithContent(content).String(), nil
}

// renderClassSpan wraps the content in a span of the given class.
func (e *Engine) renderClassSpan(el *etree.Element, class string) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	return markup.New("span").Set("class", class).WithContent(content).String(), nil
}

// renderStyledSpan wraps the content in a span only when the element has a rend style.
func (e *Engine) renderStyledSpan(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	rend := attrValue(el, "rend")
	if rend == "" {
		return content, nil
	}
	return markup.New("span").Set("style", rend).WithContent(content).String(), nil
}

func (e *Engine) renderTitle(el *etree.Element) (string, error) {
	if attrValue(el, "rend") != "" {
		return e.renderStyledSpan(el)
	}
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	switch attrValue(el, "lang") {
	case "en", "pi":
		return markup.New("span").Set("style", "font-style:italic").WithContent(content).String(), nil
	}
	return content, nil
}
