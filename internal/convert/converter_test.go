package convert

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/config"
	"github.com/jackzampolin/x2epub/internal/home"
	"github.com/jackzampolin/x2epub/internal/testutil"
	"github.com/jackzampolin/x2epub/internal/transform"
	"github.com/jackzampolin/x2epub/internal/validator"
)

// sampleJob writes the sample book into a temp dir and returns a resolved job for it.
func sampleJob(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.XML = testutil.WriteSampleBook(t, dir)
	cfg.TempFolder = "work"
	cfg.Resolve(dir)
	return cfg, dir
}

func newConverter(t *testing.T) *Converter {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New: %v", err)
	}
	c := New(h, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.Now = func() time.Time { return time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC) }
	return c
}

// archiveFiles returns the entries of an epub keyed by name, plus the entry order.
func archiveFiles(t *testing.T, path string) (map[string]string, []*zip.File) {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	t.Cleanup(func() { r.Close() })

	files := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files, r.File
}

func TestConvert_SampleBook(t *testing.T) {
	cfg, dir := sampleJob(t)

	result, err := newConverter(t).Convert(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if result.EpubPath != filepath.Join(dir, "sample.epub") {
		t.Errorf("expected epub next to xml, got %s", result.EpubPath)
	}
	if result.Title != "測試經" || result.Version != 3 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Chapters != 2 || result.Headings != 4 {
		t.Errorf("expected 2 chapters and 4 headings, got %d and %d", result.Chapters, result.Headings)
	}
	if result.Report != nil {
		t.Error("expected no validation without a validator")
	}

	files, order := archiveFiles(t, result.EpubPath)
	if order[0].Name != "mimetype" || order[0].Method != zip.Store {
		t.Errorf("expected stored mimetype first, got %s (method %d)", order[0].Name, order[0].Method)
	}
	for _, name := range []string{
		"META-INF/container.xml", "OPS/content.opf", "OPS/toc.html",
		"OPS/front.htm", "OPS/1.htm", "OPS/2.htm", "OPS/style.css", "OPS/glyphs/CB001.png",
	} {
		if _, ok := files[name]; !ok {
			t.Errorf("expected %s in archive", name)
		}
	}

	opf := files["OPS/content.opf"]
	for _, want := range []string{">測試經</dc:title>", "玄奘", "<dc:language>zh-TW</dc:language>"} {
		if !strings.Contains(opf, want) {
			t.Errorf("expected %q in package document", want)
		}
	}
	if !strings.Contains(files["OPS/1.htm"], `<p id="n1" class="note">`) {
		t.Errorf("expected bottom note in first chapter:\n%s", files["OPS/1.htm"])
	}
	if !strings.Contains(files["OPS/1.htm"], `href="style.css"`) {
		t.Error("expected chapters to link the built-in stylesheet")
	}
}

func TestConvert_Version2(t *testing.T) {
	cfg, _ := sampleJob(t)
	cfg.EpubVer = 2

	result, err := newConverter(t).Convert(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	files, _ := archiveFiles(t, result.EpubPath)
	if _, ok := files["OPS/toc.ncx"]; !ok {
		t.Error("expected toc.ncx for version 2")
	}
	if _, ok := files["OPS/toc.html"]; ok {
		t.Error("expected no nav document for version 2")
	}
}

func TestConvert_ClearsTempFolder(t *testing.T) {
	cfg, _ := sampleJob(t)
	stale := testutil.WriteFile(t, cfg.TempFolder, "OPS/stale.htm", "old")

	if _, err := newConverter(t).Convert(context.Background(), cfg); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expected stale staging files removed")
	}
}

func TestConvert_TOCStyle(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  string
	}{
		{name: "hidden markers", style: "none", want: `<ol style="list-style-type:none;margin-left:-2em">`},
		{name: "empty keeps default markers", style: "", want: "<ol>\n"},
		{name: "named style", style: "decimal", want: `<ol style="list-style-type:decimal;">`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := sampleJob(t)
			cfg.TOCStyle = tt.style

			result, err := newConverter(t).Convert(context.Background(), cfg)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			files, _ := archiveFiles(t, result.EpubPath)
			if nav := files["OPS/toc.html"]; !strings.Contains(nav, tt.want) {
				t.Errorf("expected %q in nav document:\n%s", tt.want, nav)
			}
		})
	}
}

func TestConvert_RefusesStagingOverSource(t *testing.T) {
	tests := []struct {
		name string
		temp func(dir string) string
	}{
		{name: "source directory", temp: func(dir string) string { return dir }},
		{name: "parent directory", temp: func(dir string) string { return filepath.Dir(dir) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, dir := sampleJob(t)
			cfg.TempFolder = tt.temp(dir)

			_, err := newConverter(t).Convert(context.Background(), cfg)
			if !errors.Is(err, ErrUnsafeStaging) {
				t.Errorf("expected %v, got %v", ErrUnsafeStaging, err)
			}
			if _, err := os.Stat(cfg.XML); err != nil {
				t.Errorf("expected source xml to survive: %v", err)
			}
		})
	}
}

func TestConvert_LicenseAndCover(t *testing.T) {
	cfg, dir := sampleJob(t)
	cfg.CoverPage = testutil.WriteFile(t, dir, "cover.jpg", "jpeg")
	cfg.LicenseTemplate = testutil.WriteFile(t, dir, "license.tmpl",
		`<html><head>{{.CharsetDeclaration}}</head><body>{{.Author}}{{.ISBN}}</body></html>`)
	cfg.Publisher = "出版社"

	result, err := newConverter(t).Convert(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Headings != 5 {
		t.Errorf("expected license entry to take the next play order, got %d headings", result.Headings)
	}

	files, _ := archiveFiles(t, result.EpubPath)
	license := files["OPS/license.htm"]
	if !strings.Contains(license, "ISBN：978-0-00-000000-0") || !strings.Contains(license, "玄奘") {
		t.Errorf("unexpected license page:\n%s", license)
	}
	if _, ok := files["OPS/cover.jpg"]; !ok {
		t.Error("expected cover image in archive")
	}
	if !strings.Contains(files["OPS/content.opf"], `properties="cover-image"`) {
		t.Error("expected cover-image property in manifest")
	}
	if !strings.Contains(files["OPS/toc.html"], "版權頁") {
		t.Error("expected license entry in navigation")
	}
}

func TestConvert_MissingCoverDegrades(t *testing.T) {
	cfg, dir := sampleJob(t)
	cfg.CoverPage = filepath.Join(dir, "absent.jpg")

	if _, err := newConverter(t).Convert(context.Background(), cfg); err != nil {
		t.Fatalf("missing cover should not fail the conversion: %v", err)
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T, cfg *config.Config, dir string)
		wantErr error
	}{
		{
			name:    "no xml",
			mutate:  func(t *testing.T, cfg *config.Config, dir string) { cfg.XML = "" },
			wantErr: ErrNoSource,
		},
		{
			name: "unknown glyph",
			mutate: func(t *testing.T, cfg *config.Config, dir string) {
				cfg.XML = testutil.WriteFile(t, dir, "bad.xml", `<TEI><text><body><div><p><g ref="#X"/></p></div></body></text></TEI>`)
			},
			wantErr: transform.ErrUnknownGlyph,
		},
		{
			name: "no text body",
			mutate: func(t *testing.T, cfg *config.Config, dir string) {
				cfg.XML = testutil.WriteFile(t, dir, "header.xml", `<TEI><teiHeader/></TEI>`)
			},
			wantErr: transform.ErrNoTextBody,
		},
		{
			name: "missing stylesheet",
			mutate: func(t *testing.T, cfg *config.Config, dir string) {
				cfg.CSS = filepath.Join(dir, "absent.css")
			},
			wantErr: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, dir := sampleJob(t)
			tt.mutate(t, cfg, dir)
			_, err := newConverter(t).Convert(context.Background(), cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

type fakeValidator struct {
	paths []string
	valid bool
}

func (f *fakeValidator) Validate(ctx context.Context, epubPath string) (*validator.Report, error) {
	f.paths = append(f.paths, epubPath)
	return &validator.Report{Path: epubPath, Validator: "fake", Valid: f.valid}, nil
}

func TestConvert_Validator(t *testing.T) {
	cfg, _ := sampleJob(t)
	cfg.Validator.Type = "fake"

	fake := &fakeValidator{valid: false}
	c := newConverter(t)
	c.NewValidator = func(vc config.ValidatorConfig, _ *slog.Logger) (validator.Validator, error) {
		if vc.Type != "fake" {
			t.Errorf("expected job validator config, got %+v", vc)
		}
		return fake, nil
	}

	result, err := c.Convert(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(fake.paths) != 1 || fake.paths[0] != result.EpubPath {
		t.Errorf("expected one validation of %s, got %v", result.EpubPath, fake.paths)
	}
	if result.Report == nil || result.Report.Valid {
		t.Errorf("expected the invalid report passed through, got %+v", result.Report)
	}
}

func TestConvert_HomeDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.XML = testutil.WriteSampleBook(t, dir)
	cfg.GraphicBase, cfg.GlyphBase = dir, dir

	c := newConverter(t)
	result, err := c.Convert(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.EpubPath != c.home.ExportPath(cfg.XML) {
		t.Errorf("expected export under home, got %s", result.EpubPath)
	}
	if result.TempFolder != c.home.StagingDir(cfg.XML) {
		t.Errorf("expected staging under home, got %s", result.TempFolder)
	}
}

func TestAuthor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"single", `<titleStmt><author>甲</author></titleStmt>`, "甲"},
		{"several", `<titleStmt><author>甲</author><author>乙</author></titleStmt>`, "甲、乙"},
		{"editor fallback", `<titleStmt><editor>丙</editor></titleStmt>`, "丙"},
		{"author wins over editor", `<titleStmt><author>甲</author><editor>丙</editor></titleStmt>`, "甲"},
		{"none", `<titleStmt><title>t</title></titleStmt>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := etree.NewDocument()
			if err := doc.ReadFromString("<TEI><teiHeader>" + tt.header + "</teiHeader></TEI>"); err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := Author(doc.Root()); got != tt.want {
				t.Errorf("Author() = %q, want %q", got, tt.want)
			}
		})
	}
}
