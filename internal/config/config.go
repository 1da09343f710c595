// Package config loads conversion jobs from YAML, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to environment overrides, e.g. X2EPUB_EPUB_VER.
const EnvPrefix = "X2EPUB"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v      *viper.Viper
	logger *slog.Logger

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// An empty cfgFile searches x2epub.yaml in the current directory, then in
// searchPaths, or $HOME/.x2epub when none are given.
func NewManager(cfgFile string, logger *slog.Logger, searchPaths ...string) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cm := &Manager{
		v:         viper.New(),
		logger:    logger,
		callbacks: make([]func(*Config), 0),
	}

	if len(searchPaths) == 0 {
		searchPaths = []string{"$HOME/.x2epub"}
	}
	if err := cm.initViper(cfgFile, searchPaths); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string, searchPaths []string) error {
	v := cm.v
	defaults := DefaultConfig()
	v.SetDefault("epub_ver", defaults.EpubVer)
	v.SetDefault("default_css", defaults.DefaultCSS)
	v.SetDefault("convert_lb_to_br", defaults.ConvertLbToBr)
	v.SetDefault("toc_style", defaults.TOCStyle)
	v.SetDefault("languages", defaults.Languages)
	v.SetDefault("validator.type", defaults.Validator.Type)
	v.SetDefault("validator.java", defaults.Validator.Java)
	v.SetDefault("validator.image", defaults.Validator.Image)

	// Environment variables with X2EPUB_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"xml", "epub_path", "temp_folder", "css", "cover_page", "publisher", "validator.path"} {
		_ = v.BindEnv(key)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("x2epub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load validates the current viper state and parses it into a Config.
func (cm *Manager) load() (*Config, error) {
	if err := Validate(cm.v.AllSettings()); err != nil {
		return nil, err
	}

	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	base := "."
	if used := cm.v.ConfigFileUsed(); used != "" {
		base = filepath.Dir(used)
	}
	cfg.Resolve(base)
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// File returns the config file in use, or "" when running on defaults and env.
func (cm *Manager) File() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. Invalid edits are
// logged and the previous configuration stays active.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			cm.logger.Warn("ignoring config change", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		cm.logger.Info("config reloaded", "file", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// Resolve makes relative paths absolute against base and fills the
// defaults that depend on the source document's location.
func (c *Config) Resolve(base string) {
	for _, p := range []*string{
		&c.XML, &c.EpubPath, &c.TempFolder, &c.GraphicBase, &c.GlyphBase,
		&c.CSS, &c.CoverPage, &c.LicenseTemplate, &c.Validator.Path,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if c.XML == "" {
		return
	}
	dir := filepath.Dir(c.XML)
	if c.GraphicBase == "" {
		c.GraphicBase = dir
	}
	if c.GlyphBase == "" {
		c.GlyphBase = dir
	}
	if c.EpubPath == "" {
		c.EpubPath = strings.TrimSuffix(c.XML, filepath.Ext(c.XML)) + ".epub"
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# x2epub job configuration
# Relative paths are resolved against the directory of this file.
# Any key can be overridden from the environment, e.g. X2EPUB_EPUB_VER=2

`)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, append(header, data...), 0o644)
}
