package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jackzampolin/x2epub/internal/config"
)

// DefaultDebounce is how long the watcher waits for edits to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reruns a conversion whenever one of the job's inputs changes.
// Runs are sequential: events arriving during a run schedule one more run.
type Watcher struct {
	conv   *Converter
	mgr    *config.Manager
	logger *slog.Logger

	// Debounce delays a run after the last event. Defaults to DefaultDebounce.
	Debounce time.Duration

	// OnResult, when set, is called after every run.
	OnResult func(*Result, error)
}

// NewWatcher creates a watcher for the job held by mgr.
func NewWatcher(conv *Converter, mgr *config.Manager, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		conv:     conv,
		mgr:      mgr,
		logger:   logger,
		Debounce: DefaultDebounce,
	}
}

// Inputs lists the files a job reads: xml, stylesheet, cover and license template.
func Inputs(cfg *config.Config) []string {
	var files []string
	for _, p := range []string{cfg.XML, cfg.CSS, cfg.CoverPage, cfg.LicenseTemplate} {
		if p != "" {
			files = append(files, filepath.Clean(p))
		}
	}
	return files
}

// Run converts once, then again after every input or config change, until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	reloaded := make(chan struct{}, 1)
	w.mgr.OnChange(func(*config.Config) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	w.mgr.WatchConfig()

	cfg := w.mgr.Get()
	inputs := w.watch(fw, nil, cfg)
	w.run(ctx, cfg)

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(ev.Name)] || ev.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("input changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-reloaded:
			cfg = w.mgr.Get()
			inputs = w.watch(fw, inputs, cfg)
			timer.Reset(w.Debounce)

		case <-timer.C:
			w.run(ctx, w.mgr.Get())
		}
	}
}

// watch watches the directories holding cfg's inputs, since editors often
// replace files rather than write them in place. It returns the new input set.
func (w *Watcher) watch(fw *fsnotify.Watcher, previous map[string]bool, cfg *config.Config) map[string]bool {
	for file := range previous {
		_ = fw.Remove(filepath.Dir(file))
	}

	inputs := make(map[string]bool)
	for _, file := range Inputs(cfg) {
		inputs[file] = true
		if err := fw.Add(filepath.Dir(file)); err != nil {
			w.logger.Warn("cannot watch input", "file", file, "error", err)
		}
	}
	w.logger.Info("watching inputs", "count", len(inputs))
	return inputs
}

func (w *Watcher) run(ctx context.Context, cfg *config.Config) {
	result, err := w.conv.Convert(ctx, cfg)
	if err != nil {
		w.logger.Error("conversion failed", "xml", cfg.XML, "error", err)
	}
	if w.OnResult != nil {
		w.OnResult(result, err)
	}
}
