// Package validator checks finished archives with epubcheck.
package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/x2epub/internal/config"
)

var (
	// ErrUnknownValidator is returned by New for an unsupported validator type.
	ErrUnknownValidator = errors.New("validator: unknown type")

	// ErrNoJar is returned when the java validator has no epubcheck jar configured.
	ErrNoJar = errors.New("validator: epubcheck jar not configured")
)

// Report is the outcome of one epubcheck run.
type Report struct {
	Path      string `json:"path" yaml:"path"`
	Validator string `json:"validator" yaml:"validator"`
	Valid     bool   `json:"valid" yaml:"valid"`
	Output    string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Validator checks an epub archive. A failed check is reported through
// Report.Valid; the error is reserved for failures to run the check at all.
type Validator interface {
	Validate(ctx context.Context, epubPath string) (*Report, error)
}

// New builds the validator selected by cfg. It returns nil for type "none".
func New(cfg config.ValidatorConfig, logger *slog.Logger) (Validator, error) {
	switch cfg.Type {
	case "", config.ValidatorNone:
		return nil, nil
	case config.ValidatorJava:
		if cfg.Path == "" {
			return nil, ErrNoJar
		}
		return NewJava(cfg.Java, cfg.Path, logger), nil
	case config.ValidatorDocker:
		d, err := NewDocker(DockerConfig{Image: cfg.Image}, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownValidator, cfg.Type)
	}
}
