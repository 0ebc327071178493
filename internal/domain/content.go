package domain

import (
	"slices"
	"sort"
	"time"
)

// Page is one piece of site content, a standalone page or a blog post.
type Page struct {
	Slug      string
	Title     string
	Summary   string
	Body      string
	Published time.Time
	Tags      []string
}

// Content is everything the bundled site serves.
type Content struct {
	SiteName string
	Pages    []*Page
	Posts    []*Page // newest first
}

func (c *Content) Page(slug string) (*Page, bool) {
	return find(c.Pages, slug)
}

func (c *Content) Post(slug string) (*Page, bool) {
	return find(c.Posts, slug)
}

// Tags returns every tag used by a post, sorted.
func (c *Content) Tags() []string {
	var tags []string
	for _, p := range c.Posts {
		for _, t := range p.Tags {
			if !slices.Contains(tags, t) {
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// Tagged returns the posts carrying tag, newest first.
func (c *Content) Tagged(tag string) []*Page {
	var out []*Page
	for _, p := range c.Posts {
		if slices.Contains(p.Tags, tag) {
			out = append(out, p)
		}
	}
	return out
}

func find(pages []*Page, slug string) (*Page, bool) {
	for _, p := range pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return nil, false
}
