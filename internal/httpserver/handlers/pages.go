package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
)

// ChooseLanguage lists the home page of every published language.
func ChooseLanguage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := newSite(d, r)
		v := s.view("")
		for _, lang := range d.Languages {
			v.Links = append(v.Links, link{
				URL:   s.urlIn(lang, "home", domain.ParamSet{}),
				Name:  languageName(lang),
				Label: lang,
			})
		}
		s.render(w, "choose", http.StatusOK, v)
	}
}

func Home(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := newSite(d, r)
		v := s.view("")
		v.Alternates = s.alternates("home", domain.ParamSet{})
		for _, p := range d.Content.Current().Pages {
			v.Links = append(v.Links, link{
				URL:  s.url("page", slugParams(p.Slug)),
				Name: p.Title,
			})
		}
		v.Posts = s.postLinks(recent(d.Content.Current().Posts, 5))
		s.render(w, "home", http.StatusOK, v)
	}
}

func Page(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := newSite(d, r)
		slug := chi.URLParam(r, "slug")
		p, ok := d.Content.Current().Page(slug)
		if !ok {
			s.notFound(w, "no page "+slug)
			return
		}
		params := slugParams(slug)
		v := s.view(p.Title)
		v.Page = p
		v.Alternates = s.alternates("page", params)
		s.render(w, "page", http.StatusOK, v)
	}
}

// NotFound is both the router's fallback and the published 404.html.
func NotFound(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		newSite(d, r).notFound(w, r.URL.Path)
	}
}

func recent(posts []*domain.Page, n int) []*domain.Page {
	if len(posts) > n {
		return posts[:n]
	}
	return posts
}
