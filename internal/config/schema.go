package config

import "strings"

// Config describes one conversion job.
// Stored as YAML, usually next to the source XML.
type Config struct {
	XML         string `mapstructure:"xml" yaml:"xml"`                   // source document
	EpubPath    string `mapstructure:"epub_path" yaml:"epub_path"`       // output archive, default: xml path with .epub
	EpubVer     int    `mapstructure:"epub_ver" yaml:"epub_ver"`         // 2 or 3
	TempFolder  string `mapstructure:"temp_folder" yaml:"temp_folder"`   // staging directory, cleared before every run
	GraphicBase string `mapstructure:"graphic_base" yaml:"graphic_base"` // default: directory of xml
	GlyphBase   string `mapstructure:"glyph_base" yaml:"glyph_base"`     // default: directory of xml

	CSS        string `mapstructure:"css" yaml:"css"`
	DefaultCSS bool   `mapstructure:"default_css" yaml:"default_css"` // ship the built-in stylesheet when css is empty
	CoverPage  string `mapstructure:"cover_page" yaml:"cover_page"`
	Publisher  string `mapstructure:"publisher" yaml:"publisher"`

	LicenseTemplate string `mapstructure:"license_template" yaml:"license_template"`
	AfterCopyright  string `mapstructure:"after_copyright" yaml:"after_copyright"`

	ConvertLbToBr    bool          `mapstructure:"convert_lb_to_br" yaml:"convert_lb_to_br"`
	TOCStyle         string        `mapstructure:"toc_style" yaml:"toc_style"`
	Languages        []string      `mapstructure:"languages" yaml:"languages"`
	TextReplacements []Replacement `mapstructure:"text_replacements" yaml:"text_replacements"`

	Validator ValidatorConfig `mapstructure:"validator" yaml:"validator"`
}

// Replacement rewrites every occurrence of From in text runs.
type Replacement struct {
	From string `mapstructure:"from" yaml:"from"`
	To   string `mapstructure:"to" yaml:"to"`
}

// ValidatorConfig selects how a finished epub is checked.
type ValidatorConfig struct {
	// Type is "none", "java" or "docker".
	Type string `mapstructure:"type" yaml:"type"`
	// Path is the epubcheck jar used by the java validator.
	Path string `mapstructure:"path" yaml:"path"`
	// Java is the java executable (default: java).
	Java string `mapstructure:"java" yaml:"java"`
	// Image is the epubcheck image used by the docker validator.
	Image string `mapstructure:"image" yaml:"image"`
}

// Validator types.
const (
	ValidatorNone   = "none"
	ValidatorJava   = "java"
	ValidatorDocker = "docker"
)

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		EpubVer:       3,
		DefaultCSS:    true,
		ConvertLbToBr: true,
		TOCStyle:      "none",
		Languages:     []string{"zh-TW", "en"},
		Validator: ValidatorConfig{
			Type:  ValidatorNone,
			Java:  "java",
			Image: "ghcr.io/w3c/epubcheck:latest",
		},
	}
}

// Replacer returns a function applying the text replacements in order,
// or nil when none are configured.
func (c *Config) Replacer() func(string) string {
	if len(c.TextReplacements) == 0 {
		return nil
	}
	pairs := c.TextReplacements
	return func(s string) string {
		for _, r := range pairs {
			if r.From != "" {
				s = strings.ReplaceAll(s, r.From, r.To)
			}
		}
		return s
	}
}
