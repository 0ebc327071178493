package render

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/routing"
)

// testHost mirrors a small site: parameterless and parameterized routes,
// filename templates, a 404 page, a localized route and a dynamic one.
func testHost(t *testing.T, extra func(*routing.Group)) (*routing.Registry, dispatch.Dispatcher) {
	t.Helper()

	echo := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "%s", r.URL.Path)
	}

	reg := routing.New()
	root := reg.Root()
	root.Get("/", echo, routing.Name("home"), routing.Static())
	root.Get("/dynamic/", echo, routing.Name("dynamic"))
	root.Include("/path", "", func(g *routing.Group) {
		g.Get("/no-param/", echo, routing.Name("no-param"), routing.Static())
		g.Get("/positional-param/{param}/", echo, routing.Name("positional-param"),
			routing.Params(domain.StaticParams([]any{[]string{"12345"}, []string{"67890"}})))
		g.Get("/named-param/{param}/", echo, routing.Name("named-param"),
			routing.Params(domain.StaticParams([]map[string]string{{"param": "test"}})))
		g.Get("/positional-file/{param}/", echo, routing.Name("positional-file"),
			routing.Params(domain.StaticParams([]string{"12345", "67890"})),
			routing.Filename("path/positional-file/{}.html"))
		g.Get("/named-file/{param}/", echo, routing.Name("named-file"),
			routing.Params(domain.StaticParams([]map[string]string{{"param": "test"}})),
			routing.Filename("path/named-file/{param}.html"))
		g.Get("/404/", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}, routing.Name("404"), routing.Static(), routing.StatusCodes(http.StatusNotFound))
	})
	if extra != nil {
		extra(root)
	}
	if err := reg.Err(); err != nil {
		t.Fatalf("route declarations: %v", err)
	}

	router := chi.NewRouter()
	reg.Mount(router)
	return reg, dispatch.New(router)
}

func testSite(t *testing.T, opts Options, extra func(*routing.Group)) *Site {
	t.Helper()
	reg, d := testHost(t, extra)
	return NewSite(reg, d, nil, opts)
}
