package render

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/routing"
)

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRenderToDirectory(t *testing.T) {
	site := testSite(t, Options{Concurrency: 4}, nil)
	out := t.TempDir()

	paths, err := site.RenderToDirectory(context.Background(), out)
	require.NoError(t, err)
	assert.Len(t, paths, 9)

	assert.Equal(t, []string{
		"index.html",
		"path/404/index.html",
		"path/named-file/test.html",
		"path/named-param/test/index.html",
		"path/no-param/index.html",
		"path/positional-file/12345.html",
		"path/positional-file/67890.html",
		"path/positional-param/12345/index.html",
		"path/positional-param/67890/index.html",
	}, listFiles(t, out))

	assert.Equal(t, "/path/positional-param/67890/", readFile(t, filepath.Join(out, "path/positional-param/67890/index.html")))
	assert.Equal(t, "/path/named-file/test/", readFile(t, filepath.Join(out, "path/named-file/test.html")))
	assert.Equal(t, "gone\n", readFile(t, filepath.Join(out, "path/404/index.html")))
	assert.NoFileExists(t, filepath.Join(out, "dynamic", "index.html"))
}

func TestRenderConcurrencyIsDeterministic(t *testing.T) {
	site1 := testSite(t, Options{Concurrency: 1}, nil)
	site8 := testSite(t, Options{Concurrency: 8}, nil)
	out1, out8 := t.TempDir(), t.TempDir()

	_, err := site1.RenderToDirectory(context.Background(), out1)
	require.NoError(t, err)
	_, err = site8.RenderToDirectory(context.Background(), out8)
	require.NoError(t, err)

	files1, files8 := listFiles(t, out1), listFiles(t, out8)
	require.Equal(t, files1, files8)
	for _, f := range files1 {
		assert.Equal(t, readFile(t, filepath.Join(out1, f)), readFile(t, filepath.Join(out8, f)), f)
	}
}

func TestRenderStatusMismatch(t *testing.T) {
	site := testSite(t, Options{Concurrency: 2}, func(g *routing.Group) {
		g.Get("/broken/", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}, routing.Name("broken"), routing.Static())
	})

	_, err := site.RenderToDirectory(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStatusMismatch)
	assert.Contains(t, err.Error(), "Unexpected HTTP status: 500 Internal Server Error for URI: /broken/")
}

func TestRenderWrongStatusFor404Route(t *testing.T) {
	site := testSite(t, Options{}, func(g *routing.Group) {
		g.Get("/expects-404/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("found anyway"))
		}, routing.Name("expects-404"), routing.Static(), routing.StatusCodes(404))
	})

	_, err := site.RenderToDirectory(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrStatusMismatch)
}

func TestRenderPathCollision(t *testing.T) {
	site := testSite(t, Options{}, func(g *routing.Group) {
		g.Get("/clash", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("file"))
		}, routing.Name("clash-file"), routing.Static())
		g.Get("/clash/inner/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("dir"))
		}, routing.Name("clash-dir"), routing.Static())
	})

	_, err := site.RenderToDirectory(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPathCollision)
}

func TestRenderPlanCollision(t *testing.T) {
	site := testSite(t, Options{}, func(g *routing.Group) {
		g.Get("/dup/", func(w http.ResponseWriter, r *http.Request) {}, routing.Name("dup-a"), routing.Filename("same.html"))
		g.Get("/dup2/", func(w http.ResponseWriter, r *http.Request) {}, routing.Name("dup-b"), routing.Filename("same.html"))
	})

	_, err := site.Plan()
	assert.ErrorIs(t, err, domain.ErrPathCollision)
}

func TestRenderLanguages(t *testing.T) {
	site := testSite(t, Options{Languages: []string{"en", "fr"}}, func(g *routing.Group) {
		g.Localized(func(g *routing.Group) {
			g.Get("/hello/", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("hello " + r.Header.Get("Accept-Language") + " " + dispatch.Language(r.Context())))
			}, routing.Name("hello"), routing.Static())
		})
	})
	out := t.TempDir()

	_, err := site.RenderToDirectory(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, "hello en en", readFile(t, filepath.Join(out, "en/hello/index.html")))
	assert.Equal(t, "hello fr fr", readFile(t, filepath.Join(out, "fr/hello/index.html")))
	// non localized routes are written once
	assert.FileExists(t, filepath.Join(out, "path/no-param/index.html"))
}

func TestRenderScopeOverridesHosts(t *testing.T) {
	var seen []string
	site := testSite(t, Options{Hostname: "www.example.test", Debug: true}, func(g *routing.Group) {
		g.Get("/scope/", func(w http.ResponseWriter, r *http.Request) {
			s, _ := dispatch.ScopeFrom(r.Context())
			seen = append(seen, r.Host, strings.Join(s.AllowedHosts, ","))
			_, _ = w.Write(nil)
		}, routing.Name("scope"), routing.Static())
	})

	_, err := site.RenderToDirectory(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"www.example.test", "www.example.test"}, seen)

	assert.Equal(t, []string{"*"}, testSite(t, Options{}, nil).Scope().AllowedHosts)
}

func TestURIs(t *testing.T) {
	uris, err := testSite(t, Options{}, nil).URIs()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/",
		"/path/no-param/",
		"/path/positional-param/12345/",
		"/path/positional-param/67890/",
		"/path/named-param/test/",
		"/path/positional-file/12345/",
		"/path/positional-file/67890/",
		"/path/named-file/test/",
		"/path/404/",
	}, uris)
}

func TestRenderOne(t *testing.T) {
	site := testSite(t, Options{}, nil)
	out := t.TempDir()

	path, err := site.RenderOne(context.Background(), out, "positional-param", domain.Positional("999"), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "path/positional-param/999/index.html"), path)
	assert.Equal(t, []string{"path/positional-param/999/index.html"}, listFiles(t, out))

	_, err = site.RenderOne(context.Background(), out, "dynamic", domain.ParamSet{}, "")
	assert.ErrorIs(t, err, domain.ErrUnknownRoute)

	_, err = site.RenderOne(context.Background(), out, "positional-param", domain.ParamSet{}, "")
	assert.ErrorIs(t, err, domain.ErrNoReverseMatch)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testSite(t, Options{}, nil).RenderToDirectory(ctx, t.TempDir())
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
