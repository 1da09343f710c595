package transform

import (
	"strings"
	"testing"
)

const licenseHeader = `<TEI><teiHeader><fileDesc>
<titleStmt>
  <title>書名</title>
  <author>甲</author>
  <author role="譯者">乙</author>
  <author>丙</author>
  <respStmt><resp>校對</resp><name>丁</name></respStmt>
</titleStmt>
<publicationStmt><idno>978-986</idno><date when-iso="2013-11-19" when="2013"/></publicationStmt>
</fileDesc></teiHeader>
<text><body><div><head>One</head></div></body></text></TEI>`

func TestNewLicenseData(t *testing.T) {
	book := newBook(t)
	data := NewLicenseData(parse(t, licenseHeader), book)

	wantAuthor := `<p style="margin-left:3em;text-indent:-3em">著者：甲、丙</p>` +
		`<p style="margin-left:3em;text-indent:-3em">譯者：乙</p>`
	if data.Author != wantAuthor {
		t.Errorf("unexpected author markup %q", data.Author)
	}
	if data.Resp != "校對丁<br />\n" {
		t.Errorf("unexpected resp %q", data.Resp)
	}
	if data.ISBN != "ISBN：978-986" {
		t.Errorf("unexpected isbn %q", data.ISBN)
	}
	if data.Date != "紙本出版時間：2013-11-19<br />" {
		t.Errorf("unexpected date %q", data.Date)
	}
	if data.Today != "2024-03-21" {
		t.Errorf("unexpected today %q", data.Today)
	}
	if data.CharsetDeclaration != `<meta charset="utf-8" />` {
		t.Errorf("unexpected charset declaration %q", data.CharsetDeclaration)
	}
}

func TestNewLicenseData_MissingFields(t *testing.T) {
	data := NewLicenseData(parse(t, `<TEI><text/></TEI>`), newBook(t))
	if data.Author != "" || data.Resp != "" || data.ISBN != "" || data.Date != "" {
		t.Errorf("expected empty optional fields, got %+v", data)
	}
}

func TestAddLicensePage(t *testing.T) {
	root := parse(t, licenseHeader)
	book := newBook(t)
	e := New(book, Options{})
	if err := e.Convert(root); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	tmpl := "<html><head>{{.CharsetDeclaration}}</head><body>{{.Author}}{{.ISBN}} {{.Today}}</body></html>"
	if err := e.AddLicensePage(root, tmpl); err != nil {
		t.Fatalf("AddLicensePage: %v", err)
	}

	html := content(t, book, "license.htm")
	if !strings.Contains(html, "ISBN：978-986 2024-03-21") {
		t.Errorf("unexpected license page:\n%s", html)
	}

	items := book.Items()
	if last := items[len(items)-1]; last.DestPath != "license.htm" {
		t.Errorf("expected license page last, got %s", last.DestPath)
	}

	entries := book.TOC.Children
	node := entries[len(entries)-1]
	if node.Title != "版權頁" || node.Href != "license.htm" || node.PlayOrder != 2 {
		t.Errorf("unexpected license toc entry %+v", node)
	}
}

func TestAddLicensePage_BadTemplate(t *testing.T) {
	root := parse(t, licenseHeader)
	e := New(newBook(t), Options{})

	if err := e.AddLicensePage(root, "{{.Missing}}"); err == nil {
		t.Error("expected error for unknown template field")
	}
	if err := e.AddLicensePage(root, "{{"); err == nil {
		t.Error("expected error for unparsable template")
	}
}
