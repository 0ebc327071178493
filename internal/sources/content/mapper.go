package content

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Map converts a parsed content file to domain.Content. Drafts are left
// out and posts are sorted newest first.
func Map(f *File) (*domain.Content, error) {
	c := &domain.Content{SiteName: strings.TrimSpace(f.SiteName)}
	if c.SiteName == "" {
		c.SiteName = "Untitled site"
	}

	var err error
	if c.Pages, err = mapEntries("page", f.Pages); err != nil {
		return nil, err
	}
	if c.Posts, err = mapEntries("post", f.Posts); err != nil {
		return nil, err
	}
	sort.SliceStable(c.Posts, func(i, j int) bool {
		return c.Posts[i].Published.After(c.Posts[j].Published)
	})
	return c, nil
}

func mapEntries(kind string, entries []EntryYAML) ([]*domain.Page, error) {
	seen := make(map[string]bool, len(entries))
	pages := make([]*domain.Page, 0, len(entries))

	for i, e := range entries {
		if e.Draft {
			continue
		}
		if !slugPattern.MatchString(e.Slug) {
			return nil, fmt.Errorf("%s #%d: invalid slug %q", kind, i+1, e.Slug)
		}
		if seen[e.Slug] {
			return nil, fmt.Errorf("%s #%d: duplicate slug %q", kind, i+1, e.Slug)
		}
		seen[e.Slug] = true

		p := &domain.Page{
			Slug:    e.Slug,
			Title:   strings.TrimSpace(e.Title),
			Summary: strings.TrimSpace(e.Summary),
			Body:    e.Body,
			Tags:    normalizeTags(e.Tags),
		}
		if p.Title == "" {
			p.Title = e.Slug
		}
		if e.Published != "" {
			t, err := time.Parse(time.DateOnly, e.Published)
			if err != nil {
				return nil, fmt.Errorf("%s %q: invalid published date %q", kind, e.Slug, e.Published)
			}
			p.Published = t
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// normalizeTags lower-cases tags and turns spaces into dashes so each tag
// can be used as a path segment.
// Example: "Static Sites" -> "static-sites"
func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.Join(strings.Fields(strings.ToLower(t)), "-")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// LoadFile loads and maps path in one step. An empty path yields the
// built-in sample content.
func LoadFile(path string) (*domain.Content, error) {
	if path == "" {
		return Sample(), nil
	}
	f, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return Map(f)
}

// Sample is served when no content file is configured.
func Sample() *domain.Content {
	published := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Content{
		SiteName: "Example site",
		Pages: []*domain.Page{
			{Slug: "about", Title: "About", Body: "This site is rendered to static files."},
		},
		Posts: []*domain.Page{
			{
				Slug:      "hello-world",
				Title:     "Hello world",
				Summary:   "The first post.",
				Body:      "Every page of this site is a route rendered once per language.",
				Published: published,
				Tags:      []string{"meta"},
			},
		},
	}
}
