package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/staticsite/internal/index"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/render"
	"github.com/MrSnakeDoc/staticsite/internal/sources/content"
)

func newTestSite(t *testing.T) *Site {
	t.Helper()
	site, err := NewSite(deps.Deps{
		Logger:       logger.New("error", false),
		AllowedHosts: []string{"localhost"},
		Languages:    []string{"en", "fr"},
		Content:      index.NewMemoryIndex(content.Sample()),
	})
	require.NoError(t, err)
	return site
}

func get(t *testing.T, h http.Handler, host, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = host
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSiteRoutes(t *testing.T) {
	site := newTestSite(t)

	var names []string
	for _, r := range site.Routes.Static() {
		names = append(names, r.QualifiedName())
	}
	assert.ElementsMatch(t, []string{
		"choose-language", "robots", "sitemap", "not-found",
		"home", "page", "blog:index", "blog:post", "blog:tag",
	}, names)

	uri, err := site.Routes.Reverse("blog", "post", domain.Named(map[string]string{"slug": "hello-world"}), "fr")
	require.NoError(t, err)
	assert.Equal(t, "/fr/blog/hello-world/", uri)
}

func TestPreviewServing(t *testing.T) {
	site := newTestSite(t)

	tests := []struct {
		name   string
		host   string
		path   string
		status int
		body   string
	}{
		{"language chooser", "localhost", "/", http.StatusOK, `hreflang="fr"`},
		{"localized home", "localhost:8000", "/fr/", http.StatusOK, "français"},
		{"page", "localhost", "/en/about/", http.StatusOK, "This site is rendered to static files."},
		{"post", "localhost", "/en/blog/hello-world/", http.StatusOK, "Hello world"},
		{"tag", "localhost", "/en/blog/tags/meta/", http.StatusOK, "/en/blog/hello-world/"},
		{"unknown page", "localhost", "/en/missing/", http.StatusNotFound, "Page not found"},
		{"unknown tag", "localhost", "/en/blog/tags/nope/", http.StatusNotFound, "Page not found"},
		{"unrouted", "localhost", "/a/b/c/d", http.StatusNotFound, "Page not found"},
		{"healthz", "localhost", "/healthz", http.StatusOK, `"status":"ok"`},
		{"robots", "localhost", "/robots.txt", http.StatusOK, "Sitemap: https://localhost/sitemap.xml"},
		{"foreign host", "evil.example", "/", http.StatusBadRequest, "Invalid HTTP_HOST header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, site.Handler, tt.host, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRenderScopeOverridesAllowedHosts(t *testing.T) {
	site := newTestSite(t)
	d := dispatch.New(site.Handler)

	ctx, release := dispatch.Enter(context.Background(), dispatch.Scope{
		AllowedHosts: []string{"www.example.com"},
		Hostname:     "www.example.com",
	})
	defer release()

	resp, err := d.Dispatch(ctx, dispatch.Request{Path: "/robots.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"200 OK"}, resp.Statuses)
	assert.Contains(t, string(resp.Body), "https://www.example.com/sitemap.xml")
}

func TestRenderSiteToDirectory(t *testing.T) {
	site := newTestSite(t)
	dir := t.TempDir()

	s := render.NewSite(site.Routes, dispatch.New(site.Handler), logger.NewNop(), render.Options{
		Languages:   []string{"en", "fr"},
		Concurrency: 4,
	})
	paths, err := s.RenderToDirectory(context.Background(), dir)
	require.NoError(t, err)

	var rel []string
	for _, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.ElementsMatch(t, []string{
		"index.html",
		"robots.txt",
		"sitemap.xml",
		"404.html",
		"en/index.html",
		"fr/index.html",
		"en/about/index.html",
		"fr/about/index.html",
		"en/blog/index.html",
		"fr/blog/index.html",
		"en/blog/hello-world/index.html",
		"fr/blog/hello-world/index.html",
		"en/blog/tags/meta/index.html",
		"fr/blog/tags/meta/index.html",
	}, rel)

	notFound, err := os.ReadFile(filepath.Join(dir, "404.html"))
	require.NoError(t, err)
	assert.Contains(t, string(notFound), "Page not found")

	sitemap, err := os.ReadFile(filepath.Join(dir, "sitemap.xml"))
	require.NoError(t, err)
	assert.Equal(t, 11, strings.Count(string(sitemap), "<loc>"))
	assert.Contains(t, string(sitemap), "<loc>https://localhost/fr/blog/tags/meta/</loc>")
	assert.Contains(t, string(sitemap), "<lastmod>2025-03-01</lastmod>")
}
