package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

//go:embed templates
var templateFS embed.FS

var templates = loadTemplates()

var funcs = template.FuncMap{
	"paragraphs": paragraphs,
}

func loadTemplates() map[string]*template.Template {
	base := template.Must(template.New("base.html").Funcs(funcs).
		ParseFS(templateFS, "templates/base.html", "templates/partials.html"))

	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t := template.Must(template.Must(base.Clone()).ParseFS(templateFS, p))
		out[strings.TrimSuffix(path.Base(p), ".html")] = t
	}
	return out
}

// paragraphs turns blank-line separated text into escaped <p> elements.
func paragraphs(body string) template.HTML {
	var b strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			b.WriteString("<p>")
			b.WriteString(template.HTMLEscapeString(para))
			b.WriteString("</p>\n")
		}
	}
	return template.HTML(b.String())
}

type link struct {
	URL     string
	Name    string
	Label   string
	Summary string
}

type view struct {
	Site       string
	Lang       string
	LangName   string
	Title      string
	HomeURL    string
	BlogURL    string
	Alternates []link
	Links      []link
	Posts      []link
	Page       *domain.Page
	Debug      bool
	Error      string
	Year       int
}

// site carries what every page handler needs for one request.
type site struct {
	d    deps.Deps
	r    *http.Request
	lang string
	err  error
}

func newSite(d deps.Deps, r *http.Request) *site {
	return &site{d: d, r: r, lang: dispatch.Language(r.Context())}
}

// url reverses a route for the request's language. The first failure is
// kept and reported by render.
func (s *site) url(qualified string, params domain.ParamSet) string {
	return s.urlIn(s.lang, qualified, params)
}

func (s *site) urlIn(lang, qualified string, params domain.ParamSet) string {
	ns, name := domain.SplitQualified(qualified)
	uri, err := s.d.Routes.Reverse(ns, name, params, lang)
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return "#"
	}
	return uri
}

func (s *site) postLinks(posts []*domain.Page) []link {
	out := make([]link, 0, len(posts))
	for _, p := range posts {
		out = append(out, link{
			URL:     s.url("blog:post", slugParams(p.Slug)),
			Name:    p.Title,
			Summary: p.Summary,
		})
	}
	return out
}

func (s *site) tagLinks(tags []string) []link {
	out := make([]link, 0, len(tags))
	for _, t := range tags {
		out = append(out, link{URL: s.url("blog:tag", domain.Named(map[string]string{"tag": t})), Name: t})
	}
	return out
}

// alternates links the same page in every published language.
func (s *site) alternates(qualified string, params domain.ParamSet) []link {
	if s.lang == "" {
		return nil
	}
	out := make([]link, 0, len(s.d.Languages))
	for _, lang := range s.d.Languages {
		out = append(out, link{URL: s.urlIn(lang, qualified, params), Name: languageName(lang), Label: lang})
	}
	return out
}

func (s *site) view(title string) view {
	v := view{
		Site:     s.d.Content.Current().SiteName,
		Lang:     s.lang,
		LangName: languageName(s.lang),
		Title:    title,
		Debug:    debugEnabled(s.r, s.d),
		Year:     s.d.Now().Year(),
	}
	if s.lang != "" {
		v.HomeURL = s.url("home", domain.ParamSet{})
		v.BlogURL = s.url("blog:index", domain.ParamSet{})
	} else {
		v.HomeURL = s.url("choose-language", domain.ParamSet{})
	}
	if v.Lang == "" {
		v.Lang = "en"
	}
	return v
}

func (s *site) render(w http.ResponseWriter, name string, status int, v view) {
	if s.err != nil {
		s.fail(w, s.err)
		return
	}
	t, ok := templates[name]
	if !ok {
		s.fail(w, domain.Configf(domain.ErrConfig, "no template named %q", name))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", v); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *site) fail(w http.ResponseWriter, err error) {
	s.d.Logger.Error("page rendering failed",
		logger.String("path", s.r.URL.Path),
		logger.Error(err),
	)
	msg := http.StatusText(http.StatusInternalServerError)
	if debugEnabled(s.r, s.d) {
		msg = err.Error()
	}
	http.Error(w, msg, http.StatusInternalServerError)
}

// notFound renders the site's 404 page.
func (s *site) notFound(w http.ResponseWriter, detail string) {
	v := s.view("Page not found")
	v.Error = detail
	s.render(w, "notfound", http.StatusNotFound, v)
}

func languageName(lang string) string {
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return lang
}

// debugEnabled prefers the render pass's setting over the process one.
func debugEnabled(r *http.Request, d deps.Deps) bool {
	if scope, ok := dispatch.ScopeFrom(r.Context()); ok {
		return scope.Debug
	}
	return d.Debug
}
