package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/index"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

const contentV1 = `site_name: Notes
pages:
  - slug: about
    title: About
`

const contentV2 = `site_name: Notes
pages:
  - slug: about
    title: About
posts:
  - slug: first
    title: First
    published: "2025-01-02"
`

func writeContent(t *testing.T, path, body string, mod time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestContentReloader_ReloadIfChanged(t *testing.T) {
	log := logger.New("error", false)
	path := filepath.Join(t.TempDir(), "content.yaml")
	start := time.Now().Add(-time.Hour)
	writeContent(t, path, contentV1, start)

	idx := index.NewMemoryIndex(nil)
	cr := NewContentReloader(path, idx, log, time.Hour, nil)

	// nothing loaded yet
	changed, err := cr.ReloadIfChanged()
	if err != nil || !changed {
		t.Fatalf("ReloadIfChanged() = %v, %v, want a first load", changed, err)
	}
	changed, err = cr.ReloadIfChanged()
	if err != nil || changed {
		t.Fatalf("ReloadIfChanged() = %v, %v, want no reload of an untouched file", changed, err)
	}

	writeContent(t, path, contentV2, start.Add(time.Minute))
	changed, err = cr.ReloadIfChanged()
	if err != nil || !changed {
		t.Fatalf("ReloadIfChanged() = %v, %v, want a reload", changed, err)
	}
	if got := len(idx.Current().Posts); got != 1 {
		t.Errorf("index has %d posts after reload, want 1", got)
	}
}

func TestContentReloader_WatchesFile(t *testing.T) {
	log := logger.New("error", false)
	path := filepath.Join(t.TempDir(), "content.yaml")
	start := time.Now().Add(-time.Hour)
	writeContent(t, path, contentV1, start)

	idx := index.NewMemoryIndex(nil)
	// the ticker never fires during the test: only file events reload
	cr := NewContentReloader(path, idx, log, time.Hour, nil)
	if err := cr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer cr.Stop()

	writeContent(t, path, contentV2, start.Add(time.Minute))

	deadline := time.Now().Add(5 * time.Second)
	for len(idx.Current().Posts) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("file change did not reload the content")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestContentReloader_BrokenFileKeepsContent(t *testing.T) {
	log := logger.New("error", false)
	path := filepath.Join(t.TempDir(), "content.yaml")
	writeContent(t, path, contentV2, time.Now())

	idx := index.NewMemoryIndex(nil)
	cr := NewContentReloader(path, idx, log, time.Hour, nil)
	if err := cr.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	writeContent(t, path, "posts: [{slug: Not A Slug}]\n", time.Now().Add(time.Minute))
	if _, err := cr.ReloadIfChanged(); err == nil {
		t.Fatal("expected an error for an invalid slug")
	}
	if got := idx.Current().SiteName; got != "Notes" {
		t.Errorf("SiteName = %q, broken content should not replace the index", got)
	}
}

func TestContentReloader_ManualTrigger(t *testing.T) {
	log := logger.New("error", false)
	path := filepath.Join(t.TempDir(), "content.yaml")
	mod := time.Now().Add(-time.Hour)
	writeContent(t, path, contentV1, mod)

	idx := index.NewMemoryIndex(nil)
	trigger := make(chan struct{})
	cr := NewContentReloader(path, idx, log, time.Hour, trigger)
	if err := cr.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer cr.Stop()

	// same modification time: polling alone would miss this
	writeContent(t, path, contentV2, mod)
	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for len(idx.Current().Posts) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("manual trigger did not reload the content")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestContentReloader_StartErrors(t *testing.T) {
	log := logger.New("error", false)
	idx := index.NewMemoryIndex(nil)

	if err := NewContentReloader("missing.yaml", idx, log, time.Second, nil).Start(context.Background()); err == nil {
		t.Error("expected an error for a missing file")
	}
	if err := NewContentReloader("missing.yaml", idx, log, 0, nil).Start(context.Background()); err == nil {
		t.Error("expected an error for a zero interval")
	}
}
