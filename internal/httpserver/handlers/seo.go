package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
)

func Robots(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := newSite(d, r)
		sitemap := s.urlIn("", "sitemap", domain.ParamSet{})
		if s.err != nil {
			s.fail(w, s.err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: https://%s%s\n", r.Host, sitemap)
	}
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap lists every page of the site in every published language.
func Sitemap(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := newSite(d, r)
		set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
		add := func(uri string, modified time.Time) {
			u := sitemapURL{Loc: "https://" + r.Host + uri}
			if !modified.IsZero() {
				u.LastMod = modified.Format(time.DateOnly)
			}
			set.URLs = append(set.URLs, u)
		}

		add(s.urlIn("", "choose-language", domain.ParamSet{}), time.Time{})
		for _, lang := range d.Languages {
			add(s.urlIn(lang, "home", domain.ParamSet{}), time.Time{})
			for _, p := range d.Content.Current().Pages {
				add(s.urlIn(lang, "page", slugParams(p.Slug)), p.Published)
			}
			add(s.urlIn(lang, "blog:index", domain.ParamSet{}), time.Time{})
			for _, p := range d.Content.Current().Posts {
				add(s.urlIn(lang, "blog:post", slugParams(p.Slug)), p.Published)
			}
			for _, t := range d.Content.Current().Tags() {
				add(s.urlIn(lang, "blog:tag", domain.Named(map[string]string{"tag": t})), time.Time{})
			}
		}
		if s.err != nil {
			s.fail(w, s.err)
			return
		}

		out, err := xml.MarshalIndent(set, "", "  ")
		if err != nil {
			s.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write([]byte(xml.Header))
		_, _ = w.Write(out)
	}
}

func slugParams(slug string) domain.ParamSet {
	return domain.Named(map[string]string{"slug": slug})
}
