package api

import (
	"bytes"
	"strings"
	"testing"
)

type summary struct {
	Path  string `json:"path" yaml:"path"`
	Valid bool   `json:"valid" yaml:"valid"`
}

func TestOutputTo(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		want   string
	}{
		{"yaml", OutputFormatYAML, "path: book.epub\nvalid: true\n"},
		{"json", OutputFormatJSON, "{\n  \"path\": \"book.epub\",\n  \"valid\": true\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := OutputTo(&buf, tt.format, summary{Path: "book.epub", Valid: true}); err != nil {
				t.Fatalf("OutputTo() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("OutputTo() = %q, want %q", buf.String(), tt.want)
			}
		})
	}

	if err := OutputTo(&bytes.Buffer{}, "xml", nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetOutputFormat(t *testing.T) {
	defer func() { globalOutputFormat = DefaultOutput }()

	if err := SetOutputFormat("json"); err != nil {
		t.Fatalf("SetOutputFormat(json) error = %v", err)
	}
	if GetOutputFormat() != OutputFormatJSON {
		t.Errorf("expected json, got %s", GetOutputFormat())
	}
	if err := SetOutputFormat(""); err != nil || GetOutputFormat() != DefaultOutput {
		t.Errorf("expected empty format to reset to default, got %s (%v)", GetOutputFormat(), err)
	}

	err := SetOutputFormat("toml")
	if err == nil || !strings.Contains(err.Error(), "toml") {
		t.Errorf("expected error naming the bad format, got %v", err)
	}
	if GetOutputFormat() != DefaultOutput {
		t.Error("expected format unchanged after a bad value")
	}
}
