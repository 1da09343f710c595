package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/markup"
)

const anchorPrefix = "noteAnchor_"

func (e *Engine) renderNote(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}

	switch attrValue(el, "place") {
	case "inline":
		return markup.New("span").Set("class", "inline_note").WithContent(content).String(), nil
	case "inline2":
		return markup.New("span").Set("class", "inline_note2").WithContent(content).String(), nil
	case "bottom":
		return e.bottomNote(el, content), nil
	}

	id, hasID := attr(el, "id")
	if !hasID {
		return content, nil
	}
	a := markup.New("a").Set("id", id)
	n := attrValue(el, "n")
	if n == "" {
		return a.String() + content, nil
	}
	a.Set("href", "#"+anchorPrefix+id).WithContent(markup.Escape(n))
	return a.String() + " " + content, nil
}

// bottomNote queues the note text for the end of the current document and
// returns the in-text marker linking to it.
func (e *Engine) bottomNote(el *etree.Element, content string) string {
	n := attrValue(el, "n")
	if n == "" {
		e.state.noteCount++
		n = strconv.Itoa(e.state.noteCount)
	}
	id := attrValue(el, "id")
	if id == "" {
		id = "n" + n
	}
	id = strings.ReplaceAll(id, "*", "star")
	label := markup.Escape(n)

	back := markup.New("a").Set("href", "#"+anchorPrefix+id).WithContent(label)
	fmt.Fprintf(&e.state.bottomNotes, "%s\n",
		markup.New("p").Set("id", id).Set("class", "note").WithContent(back.String()+" "+content))

	return e.anchor(anchorPrefix+id).
		Set("href", "#"+id).
		Set("class", "noteAnchor").
		WithContent(label).
		String()
}

// renderRef renders a link. Note anchors carry an id only on the first
// reference to a target within the current document.
func (e *Engine) renderRef(el *etree.Element) (string, error) {
	content, err := e.traverse(el, ModeHTML)
	if err != nil {
		return "", err
	}
	target := attrValue(el, "target")
	if attrValue(el, "type") != "noteAnchor" {
		return markup.New("a").Set("href", target).WithContent(content).String(), nil
	}
	return e.anchor(anchorPrefix+strings.TrimPrefix(target, "#")).
		Set("href", target).
		Set("class", "noteAnchor").
		WithContent(content).
		String(), nil
}

// anchor starts a link element, claiming id when it is unused in the current document.
func (e *Engine) anchor(id string) *markup.Node {
	a := markup.New("a")
	if !e.state.anchors[id] {
		e.state.anchors[id] = true
		a.Set("id", id)
	}
	return a
}
