package validator

import (
	"errors"
	"testing"

	"github.com/jackzampolin/x2epub/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ValidatorConfig
		wantNil bool
		wantErr error
	}{
		{name: "empty type", cfg: config.ValidatorConfig{}, wantNil: true},
		{name: "none", cfg: config.ValidatorConfig{Type: config.ValidatorNone}, wantNil: true},
		{name: "java without jar", cfg: config.ValidatorConfig{Type: config.ValidatorJava}, wantNil: true, wantErr: ErrNoJar},
		{name: "unknown", cfg: config.ValidatorConfig{Type: "online"}, wantNil: true, wantErr: ErrUnknownValidator},
		{name: "java", cfg: config.ValidatorConfig{Type: config.ValidatorJava, Path: "/opt/epubcheck.jar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.cfg, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if (v == nil) != tt.wantNil {
				t.Errorf("expected nil validator = %v, got %v", tt.wantNil, v)
			}
		})
	}
}

func TestNew_JavaDefaults(t *testing.T) {
	v, err := New(config.ValidatorConfig{Type: config.ValidatorJava, Path: "/opt/epubcheck.jar"}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	j, ok := v.(*Java)
	if !ok {
		t.Fatalf("expected *Java, got %T", v)
	}
	if j.bin != "java" || j.jar != "/opt/epubcheck.jar" {
		t.Errorf("unexpected java validator %+v", j)
	}
}
