package convert

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/x2epub/internal/config"
	"github.com/jackzampolin/x2epub/internal/testutil"
)

func TestInputs(t *testing.T) {
	cfg := &config.Config{XML: "/b/book.xml", CSS: "/b/style.css", LicenseTemplate: "/b/../b/license.tmpl"}
	got := Inputs(cfg)
	want := []string{"/b/book.xml", "/b/style.css", "/b/license.tmpl"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Inputs() = %v, want %v", got, want)
	}
}

func TestWatcher_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	xml := testutil.WriteSampleBook(t, dir)
	configFile := testutil.WriteFile(t, dir, "job.yaml", "xml: sample.xml\ntemp_folder: work\n")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr, err := config.NewManager(configFile, logger)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan *Result, 8)
	w := NewWatcher(newConverter(t), mgr, logger)
	w.Debounce = 50 * time.Millisecond
	w.OnResult = func(r *Result, err error) {
		if err != nil {
			if ctx.Err() == nil {
				t.Errorf("conversion failed: %v", err)
			}
			return
		}
		select {
		case results <- r:
		default:
		}
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	next := func() *Result {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for conversion")
			return nil
		}
	}

	if first := next(); first.Title != "測試經" {
		t.Fatalf("unexpected first title %q", first.Title)
	}

	// Give fsnotify time to settle before editing
	time.Sleep(100 * time.Millisecond)
	edited := strings.Replace(testutil.SampleTEI, "<title>測試經</title>", "<title>改訂版</title>", 1)
	if err := os.WriteFile(xml, []byte(edited), 0o644); err != nil {
		t.Fatalf("failed to edit source: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if r.Title == "改訂版" {
				if r.EpubPath != filepath.Join(dir, "sample.epub") {
					t.Errorf("unexpected epub path %s", r.EpubPath)
				}
				return
			}
		case <-deadline:
			t.Fatal("expected a rerun after the source changed")
		}
	}
}
