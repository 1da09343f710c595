package transform

import (
	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/markup"
)

const defaultTableStyle = "border-collapse: collapse;"

func (e *Engine) renderTable(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	style := attrValue(el, "rend")
	if style == "" {
		style = defaultTableStyle
	}
	return markup.New("table").
		Set("style", style).
		SetIf("class", attrValue(el, "rendition")).
		WithContent(content).
		String(), nil
}

func (e *Engine) renderRow(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	return "<tr>" + content + "</tr>\n", nil
}

func (e *Engine) renderCell(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	return styled("td", el).
		SetIf("rowspan", attrValue(el, "rows")).
		SetIf("colspan", attrValue(el, "cols")).
		WithContent(content).
		String(), nil
}
