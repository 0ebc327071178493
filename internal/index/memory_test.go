package index

import (
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

func sample(posts ...string) *domain.Content {
	c := &domain.Content{
		SiteName: "test",
		Pages:    []*domain.Page{{Slug: "about", Title: "About"}},
	}
	for _, slug := range posts {
		c.Posts = append(c.Posts, &domain.Page{Slug: slug, Title: slug})
	}
	return c
}

func TestNewMemoryIndex(t *testing.T) {
	idx := NewMemoryIndex(nil)
	if idx.Current() == nil {
		t.Fatal("NewMemoryIndex(nil) should hold empty content")
	}
	if idx.Count() != 0 {
		t.Errorf("Count() = %d, want 0", idx.Count())
	}
	if idx.GetLastReload().IsZero() {
		t.Error("GetLastReload() should be set")
	}
}

func TestUpdateOverwrites(t *testing.T) {
	idx := NewMemoryIndex(sample("one"))
	if got := idx.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	first := idx.GetLastReload()

	time.Sleep(time.Millisecond)
	idx.Update(sample("two", "three"))

	if got := idx.Count(); got != 3 {
		t.Errorf("Count() after Update = %d, want 3", got)
	}
	if got := len(idx.Current().Posts); got != 2 {
		t.Errorf("Current() has %d posts, want 2", got)
	}
	if !idx.GetLastReload().After(first) {
		t.Error("GetLastReload() should move forward on Update")
	}
}

func TestConcurrentAccess(t *testing.T) {
	idx := NewMemoryIndex(sample("a"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			idx.Update(sample("a", "b"))
		}()
		go func() {
			defer wg.Done()
			_ = idx.Current().SiteName
			_ = idx.Count()
		}()
	}
	wg.Wait()

	if got := idx.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}
