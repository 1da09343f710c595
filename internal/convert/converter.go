// Package convert runs a configured job end to end: load the source XML,
// transform it into a book, package and archive it, then optionally validate.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jackzampolin/x2epub/internal/config"
	"github.com/jackzampolin/x2epub/internal/epub"
	"github.com/jackzampolin/x2epub/internal/home"
	"github.com/jackzampolin/x2epub/internal/transform"
	"github.com/jackzampolin/x2epub/internal/validator"
)

// ErrNoSource is returned when the job names no xml document.
var ErrNoSource = errors.New("convert: no source xml configured")

// ErrUnsafeStaging is returned when clearing the staging directory would
// remove the source document.
var ErrUnsafeStaging = errors.New("convert: temp_folder contains the source xml")

// defaultStylesheetFile is the destination of the built-in stylesheet.
const defaultStylesheetFile = "style.css"

// Result summarises one conversion.
type Result struct {
	XML        string            `json:"xml" yaml:"xml"`
	EpubPath   string            `json:"epub_path" yaml:"epub_path"`
	TempFolder string            `json:"temp_folder" yaml:"temp_folder"`
	Version    int               `json:"epub_ver" yaml:"epub_ver"`
	Title      string            `json:"title" yaml:"title"`
	Chapters   int               `json:"chapters" yaml:"chapters"`
	Headings   int               `json:"headings" yaml:"headings"`
	Items      int               `json:"items" yaml:"items"`
	Duration   string            `json:"duration" yaml:"duration"`
	Report     *validator.Report `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// Converter turns job configurations into epub archives.
// Conversions are sequential; a Converter is not safe for concurrent Convert calls.
type Converter struct {
	home   *home.Dir
	logger *slog.Logger

	// NewValidator builds the validator for a job. Defaults to validator.New.
	NewValidator func(config.ValidatorConfig, *slog.Logger) (validator.Validator, error)

	// Now overrides the clock used for package dates.
	Now func() time.Time
}

// New creates a converter. h provides the default staging and export
// locations and may be nil when every job sets temp_folder and epub_path.
func New(h *home.Dir, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		home:         h,
		logger:       logger,
		NewValidator: validator.New,
	}
}

// Convert runs the job described by cfg.
func (c *Converter) Convert(ctx context.Context, cfg *config.Config) (*Result, error) {
	start := time.Now()
	if cfg.XML == "" {
		return nil, ErrNoSource
	}
	log := c.logger.With("xml", cfg.XML)

	doc, err := transform.LoadFile(cfg.XML)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: %s is empty", transform.ErrNoTextBody, cfg.XML)
	}

	book, err := c.newBook(cfg, root)
	if err != nil {
		return nil, err
	}

	cssHref, err := c.addStylesheet(cfg, book)
	if err != nil {
		return nil, err
	}

	engine := transform.New(book, transform.Options{
		GraphicBase:       cfg.GraphicBase,
		GlyphBase:         cfg.GlyphBase,
		CSSHref:           cssHref,
		ConvertLineBreaks: cfg.ConvertLbToBr,
		AfterCopyright:    cfg.AfterCopyright,
		TextFilter:        cfg.Replacer(),
		Logger:            log,
	})
	if err := engine.Convert(root); err != nil {
		return nil, fmt.Errorf("failed to transform %s: %w", cfg.XML, err)
	}

	if cfg.LicenseTemplate != "" {
		tmpl, err := os.ReadFile(cfg.LicenseTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to read license template: %w", err)
		}
		if err := engine.AddLicensePage(root, string(tmpl)); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	temp, err := c.stagingDir(cfg)
	if err != nil {
		return nil, err
	}
	epubPath, err := c.epubPath(cfg)
	if err != nil {
		return nil, err
	}

	if err := epub.NewBuilder(book, log).Build(temp, epubPath); err != nil {
		return nil, fmt.Errorf("failed to package %s: %w", epubPath, err)
	}
	log.Info("epub written", "path", epubPath, "chapters", engine.Chapters())

	result := &Result{
		XML:        cfg.XML,
		EpubPath:   epubPath,
		TempFolder: temp,
		Version:    book.Version,
		Title:      book.Title,
		Chapters:   engine.Chapters(),
		Headings:   engine.HeadCount(),
		Items:      len(book.Items()),
	}

	report, err := c.validate(ctx, cfg, epubPath)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.Duration = time.Since(start).Round(time.Millisecond).String()
	return result, nil
}

// newBook fills the publication metadata from the header and the job.
func (c *Converter) newBook(cfg *config.Config, root *etree.Element) (*epub.Book, error) {
	book, err := epub.NewBook(cfg.EpubVer)
	if err != nil {
		return nil, err
	}
	if c.Now != nil {
		book.Now = c.Now
	}

	if t := root.FindElement(".//titleStmt/title"); t != nil {
		book.Title = strings.TrimSpace(transform.TextContent(t))
	}
	book.Publisher = cfg.Publisher
	book.TOCStyle = cfg.TOCStyle

	if author := Author(root); author != "" {
		book.AddCreator(author, "aut")
	} else {
		c.logger.Warn("no author or editor in header", "xml", cfg.XML)
	}

	for _, lang := range cfg.Languages {
		if err := book.AddLang(lang); err != nil {
			return nil, err
		}
	}

	if cfg.CoverPage != "" {
		if _, err := os.Stat(cfg.CoverPage); err != nil {
			c.logger.Warn("cover image not found, continuing without cover", "path", cfg.CoverPage)
		} else if _, err := book.AddCover(cfg.CoverPage); err != nil {
			return nil, err
		}
	}
	return book, nil
}

// Author joins the titleStmt authors with "、", falling back to the editors.
func Author(root *etree.Element) string {
	people := root.FindElements(".//titleStmt/author")
	if len(people) == 0 {
		people = root.FindElements(".//titleStmt/editor")
	}
	var names []string
	for _, p := range people {
		if name := strings.TrimSpace(transform.TextContent(p)); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, "、")
}

// addStylesheet registers the configured or built-in stylesheet and returns its href.
func (c *Converter) addStylesheet(cfg *config.Config, book *epub.Book) (string, error) {
	switch {
	case cfg.CSS != "":
		if _, err := os.Stat(cfg.CSS); err != nil {
			return "", fmt.Errorf("stylesheet not found: %w", err)
		}
		href := filepath.Base(cfg.CSS)
		book.AddCSS(cfg.CSS, href)
		return href, nil
	case cfg.DefaultCSS:
		book.AddInlineCSS(defaultStylesheetFile, epub.DefaultStylesheet)
		return defaultStylesheetFile, nil
	default:
		return "", nil
	}
}

// stagingDir returns a cleared directory to write the package tree into.
func (c *Converter) stagingDir(cfg *config.Config) (string, error) {
	temp := cfg.TempFolder
	if temp == "" {
		if c.home == nil {
			return "", errors.New("convert: temp_folder not set and no home directory")
		}
		temp = c.home.StagingDir(cfg.XML)
	}
	if contains(temp, cfg.XML) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeStaging, temp)
	}
	if err := os.RemoveAll(temp); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", temp, err)
	}
	if err := os.MkdirAll(temp, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", temp, err)
	}
	return temp, nil
}

// contains reports whether path is dir or lies beneath it.
func contains(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Converter) epubPath(cfg *config.Config) (string, error) {
	out := cfg.EpubPath
	if out == "" {
		if c.home == nil {
			return "", errors.New("convert: epub_path not set and no home directory")
		}
		out = c.home.ExportPath(cfg.XML)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return out, nil
}

func (c *Converter) validate(ctx context.Context, cfg *config.Config, epubPath string) (*validator.Report, error) {
	v, err := c.NewValidator(cfg.Validator, c.logger)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	if closer, ok := v.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	return v.Validate(ctx, epubPath)
}
