package transform

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/epub"
	"github.com/jackzampolin/x2epub/internal/markup"
)

const (
	licenseFile  = "license.htm"
	licenseTitle = "版權頁"
	defaultRole  = "著者"
)

// LicenseData is passed to the license page template. Every field except
// Today is ready-made markup and may be empty.
type LicenseData struct {
	Author             string
	Resp               string
	ISBN               string
	Date               string
	Today              string
	CharsetDeclaration string
}

// NewLicenseData collects the license page fields from the document header.
func NewLicenseData(root *etree.Element, book *epub.Book) LicenseData {
	data := LicenseData{
		Today:              book.Now().Format("2006-01-02"),
		CharsetDeclaration: epub.CharsetDeclaration(book.Version),
	}

	// authors grouped by role, roles in order of first appearance
	var roles []string
	names := make(map[string][]string)
	for _, a := range root.FindElements(".//titleStmt/author") {
		role := a.SelectAttrValue("role", defaultRole)
		if _, ok := names[role]; !ok {
			roles = append(roles, role)
		}
		names[role] = append(names[role], markup.Escape(strings.TrimSpace(TextContent(a))))
	}
	var author strings.Builder
	for _, role := range roles {
		fmt.Fprintf(&author, `<p style="margin-left:3em;text-indent:-3em">%s：%s</p>`,
			markup.Escape(role), strings.Join(names[role], "、"))
	}
	data.Author = author.String()

	var resp strings.Builder
	for _, r := range root.FindElements(".//respStmt") {
		resp.WriteString(markup.Escape(TextContent(r)))
		resp.WriteString("<br />\n")
	}
	data.Resp = resp.String()

	if idno := root.FindElement(".//idno"); idno != nil {
		data.ISBN = "ISBN：" + markup.Escape(strings.TrimSpace(idno.Text()))
	}

	if d := root.FindElement(".//date"); d != nil {
		when := d.SelectAttrValue("when-iso", "")
		if when == "" {
			when = d.SelectAttrValue("when", "")
		}
		if when != "" {
			data.Date = "紙本出版時間：" + markup.Escape(when) + "<br />"
		}
	}
	return data
}

// AddLicensePage renders tmpl with the document's header data, registers it
// as the last content document and adds a top-level table of contents entry.
func (e *Engine) AddLicensePage(root *etree.Element, tmpl string) error {
	t, err := template.New(licenseFile).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse license template: %w", err)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, NewLicenseData(root, e.book)); err != nil {
		return fmt.Errorf("failed to render license page: %w", err)
	}
	e.book.AddHTML(licenseFile, sb.String())

	e.headCount++
	node := e.book.TOC.AddChild()
	node.Title = licenseTitle
	node.SetTarget(licenseFile, e.headCount)
	return nil
}
