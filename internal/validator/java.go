package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
)

// Java runs a local epubcheck jar.
type Java struct {
	bin    string
	jar    string
	logger *slog.Logger
}

// NewJava creates a validator running "bin -jar jar <epub>". An empty bin means "java".
func NewJava(bin, jar string, logger *slog.Logger) *Java {
	if bin == "" {
		bin = "java"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Java{bin: bin, jar: jar, logger: logger}
}

// Validate runs epubcheck. A non-zero exit marks the archive invalid.
func (j *Java) Validate(ctx context.Context, epubPath string) (*Report, error) {
	cmd := exec.CommandContext(ctx, j.bin, "-jar", j.jar, epubPath)
	out, err := cmd.CombinedOutput()

	report := &Report{Path: epubPath, Validator: "java", Output: string(out)}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		report.Valid = true
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		report.Valid = false
	default:
		return nil, fmt.Errorf("failed to run epubcheck: %w", err)
	}

	j.logger.Info("epubcheck finished", "path", epubPath, "valid", report.Valid)
	return report, nil
}
