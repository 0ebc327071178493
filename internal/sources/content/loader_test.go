package content

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "content.yaml")

	yamlContent := `---
site_name: Notes
pages:
  - slug: about
    title: About
    body: Hello.
posts:
  - slug: first
    title: First
    published: 2024-01-02
    tags: [Go, Static Sites]
    body: One.
`
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	f, err := NewLoader(yamlPath).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.SiteName != "Notes" {
		t.Errorf("SiteName = %q, want Notes", f.SiteName)
	}
	if len(f.Pages) != 1 || len(f.Posts) != 1 {
		t.Fatalf("Load() returned %d pages and %d posts, want 1 and 1", len(f.Pages), len(f.Posts))
	}
	if f.Posts[0].Published != "2024-01-02" {
		t.Errorf("Published = %q", f.Posts[0].Published)
	}
}

func TestLoaderLoadMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load(); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "content.yaml")
	if err := os.WriteFile(yamlPath, []byte("pages: [unclosed"), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	if _, err := NewLoader(yamlPath).Load(); err == nil {
		t.Error("Load() should fail for invalid yaml")
	}
}
