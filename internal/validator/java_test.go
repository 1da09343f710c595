package validator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeJava writes a script standing in for "java -jar epubcheck.jar <epub>".
// It fails for any archive whose name contains "bad".
func fakeJava(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script validator not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "java")
	script := `#!/bin/sh
case "$3" in
  *bad*) echo "ERROR(RSC-005): $3: invalid"; exit 1 ;;
  *) echo "No errors or warnings detected."; exit 0 ;;
esac
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake java: %v", err)
	}
	return path
}

func TestJava_Validate(t *testing.T) {
	j := NewJava(fakeJava(t), "/opt/epubcheck.jar", nil)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		report, err := j.Validate(ctx, "good.epub")
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if !report.Valid || report.Validator != "java" || report.Path != "good.epub" {
			t.Errorf("unexpected report %+v", report)
		}
		if !strings.Contains(report.Output, "No errors") {
			t.Errorf("expected epubcheck output, got %q", report.Output)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		report, err := j.Validate(ctx, "bad.epub")
		if err != nil {
			t.Fatalf("a failed check should not be an error: %v", err)
		}
		if report.Valid {
			t.Error("expected invalid report")
		}
		if !strings.Contains(report.Output, "RSC-005") {
			t.Errorf("expected error output, got %q", report.Output)
		}
	})
}

func TestJava_MissingBinary(t *testing.T) {
	j := NewJava(filepath.Join(t.TempDir(), "no-such-java"), "/opt/epubcheck.jar", nil)
	if _, err := j.Validate(context.Background(), "book.epub"); err == nil {
		t.Error("expected error when java cannot be started")
	}
}
