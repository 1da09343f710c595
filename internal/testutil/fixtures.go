// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleTEI is a small document exercising header metadata, front matter,
// nested divisions, notes and a glyph declaration.
const SampleTEI = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">
<teiHeader>
  <fileDesc>
    <titleStmt>
      <title>測試經</title>
      <author>玄奘</author>
      <respStmt><resp>譯</resp><name>編輯部</name></respStmt>
    </titleStmt>
    <publicationStmt><idno type="ISBN">978-0-00-000000-0</idno><date when="2020-01-01"/></publicationStmt>
  </fileDesc>
  <encodingDesc><charDecl><char xml:id="CB001"><graphic url="glyphs/CB001.png"/></char></charDecl></encodingDesc>
</teiHeader>
<text>
  <front><div><head>序</head><p>前言</p></div></front>
  <body>
    <div><head>第一品</head>
      <p>如是我聞<note place="bottom">註一</note><g ref="#CB001"/></p>
      <div><head>一之一</head><lg><l>甲</l><l>乙</l></lg></div>
    </div>
    <div><head>第二品</head><p lang="en">Thus have I heard.</p></div>
  </body>
</text>
</TEI>
`

// WriteFile writes content to dir/name, creating parent directories, and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteSampleBook writes SampleTEI and its glyph image into dir and returns the XML path.
func WriteSampleBook(t *testing.T, dir string) string {
	t.Helper()
	WriteFile(t, dir, "glyphs/CB001.png", "\x89PNG\r\n\x1a\n")
	return WriteFile(t, dir, "sample.xml", SampleTEI)
}
