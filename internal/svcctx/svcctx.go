// Package svcctx carries the CLI's shared services through context.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/x2epub/internal/home"
)

// Services holds the services commands share.
// Commands extract what they need via the individual extractors.
type Services struct {
	Logger     *slog.Logger
	Home       *home.Dir
	ConfigFile string // --config, empty to search the default locations
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// LoggerFrom extracts the logger from context, falling back to slog.Default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}

// ConfigFileFrom extracts the config file flag from context.
func ConfigFileFrom(ctx context.Context) string {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigFile
	}
	return ""
}
