package routes

import (
	"net/http"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/staticsite/internal/routing"
)

func init() {
	Register(registerRoot)
	Register(registerPages)
	Register(registerBlog)
}

func registerRoot(g *routing.Group, d deps.Deps) {
	g.Get("/", handlers.ChooseLanguage(d), routing.Name("choose-language"), routing.Static())
	g.Get("/robots.txt", handlers.Robots(d), routing.Name("robots"), routing.Static())
	g.Get("/sitemap.xml", handlers.Sitemap(d), routing.Name("sitemap"), routing.Static())
	g.Get("/404.html", handlers.NotFound(d), routing.Name("not-found"),
		routing.Static(), routing.StatusCodes(http.StatusNotFound))
	g.Get("/healthz", handlers.Healthz(d), routing.Name("healthz"))
}

func registerPages(g *routing.Group, d deps.Deps) {
	g.Localized(func(g *routing.Group) {
		g.Get("/", handlers.Home(d), routing.Name("home"), routing.Static())
		g.Get("/{slug}/", handlers.Page(d), routing.Name("page"),
			routing.Params(slugs(func() []*domain.Page { return d.Content.Current().Pages })))
	})
}

func registerBlog(g *routing.Group, d deps.Deps) {
	g.Localized(func(g *routing.Group) {
		g.Include("/blog/", "blog", func(g *routing.Group) {
			g.Get("/", handlers.BlogIndex(d), routing.Name("index"), routing.Static())
			g.Get("/{slug}/", handlers.Post(d), routing.Name("post"),
				routing.Params(slugs(func() []*domain.Page { return d.Content.Current().Posts })))
			g.Get("/tags/{tag}/", handlers.Tag(d), routing.Name("tag"),
				routing.Params(func(string) (any, error) {
					var out []map[string]string
					for _, t := range d.Content.Current().Tags() {
						out = append(out, map[string]string{"tag": t})
					}
					return out, nil
				}))
		})
	})
}

// slugs yields one {slug} parameter set per page, lazily.
func slugs(pages func() []*domain.Page) domain.Generator {
	return func(string) (any, error) {
		return func(yield func(map[string]string) bool) {
			for _, p := range pages() {
				if !yield(map[string]string{"slug": p.Slug}) {
					return
				}
			}
		}, nil
	}
}
