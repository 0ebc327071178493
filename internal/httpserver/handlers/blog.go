package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
)

func BlogIndex(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := newSite(d, r)
		v := s.view("Blog")
		v.Alternates = s.alternates("blog:index", domain.ParamSet{})
		v.Posts = s.postLinks(d.Content.Current().Posts)
		v.Links = s.tagLinks(d.Content.Current().Tags())
		s.render(w, "blog", http.StatusOK, v)
	}
}

func Post(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := newSite(d, r)
		slug := chi.URLParam(r, "slug")
		p, ok := d.Content.Current().Post(slug)
		if !ok {
			s.notFound(w, "no post "+slug)
			return
		}
		v := s.view(p.Title)
		v.Page = p
		v.Alternates = s.alternates("blog:post", slugParams(slug))
		v.Links = s.tagLinks(p.Tags)
		s.render(w, "post", http.StatusOK, v)
	}
}

func Tag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := newSite(d, r)
		tag := chi.URLParam(r, "tag")
		posts := d.Content.Current().Tagged(tag)
		if len(posts) == 0 {
			s.notFound(w, "no posts tagged "+tag)
			return
		}
		v := s.view("Tagged " + tag)
		v.Alternates = s.alternates("blog:tag", domain.Named(map[string]string{"tag": tag}))
		v.Posts = s.postLinks(posts)
		s.render(w, "blog", http.StatusOK, v)
	}
}
