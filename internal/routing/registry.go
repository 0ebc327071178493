package routing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/staticsite/internal/dispatch"
	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// LanguageParam is the URL parameter localized routes are mounted under.
const LanguageParam = "lang"

type entry struct {
	desc    *domain.RouteDescriptor
	pattern *pattern
}

// Registry is the route table of the host site. Routes are declared
// through a Group, mounted on a chi router and enumerated by the renderer.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	byName  map[string][]*entry
	errs    []error
}

func New() *Registry {
	return &Registry{byName: make(map[string][]*entry)}
}

// Add validates desc and appends it to the table. Routes are kept in
// declaration order.
func (r *Registry) Add(desc *domain.RouteDescriptor) error {
	p, err := parsePattern(desc.Pattern)
	if err != nil {
		return domain.Configf(nil, "route %q: %v", desc.Name, err)
	}
	if desc.Handler == nil {
		return domain.Configf(nil, "route %s has no handler", desc.Pattern)
	}
	if desc.IsStatic && desc.Name == "" {
		return domain.Configf(nil, "static route %s needs a name", desc.Pattern)
	}
	for _, code := range desc.StatusCodes {
		if code < 100 || code > 599 {
			return domain.Configf(domain.ErrInvalidStatus, "route %s accepts invalid status code %d", desc.QualifiedName(), code)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{desc: desc, pattern: p}
	r.entries = append(r.entries, e)
	if desc.Name != "" {
		q := desc.QualifiedName()
		r.byName[q] = append(r.byName[q], e)
	}
	return nil
}

func (r *Registry) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// Err reports every declaration error collected by groups.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return errors.Join(r.errs...)
}

// Routes returns every declared route in declaration order.
func (r *Registry) Routes() []*domain.RouteDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.RouteDescriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.desc)
	}
	return out
}

// Static returns only the routes marked static, in declaration order.
func (r *Registry) Static() []*domain.RouteDescriptor {
	var out []*domain.RouteDescriptor
	for _, d := range r.Routes() {
		if d.IsStatic {
			out = append(out, d)
		}
	}
	return out
}

// StaticRoute looks a static route up by "namespace:name" or bare name.
func (r *Registry) StaticRoute(qualified string) (*domain.RouteDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.byName[qualified] {
		if e.desc.IsStatic {
			return e.desc, nil
		}
	}
	return nil, domain.Configf(domain.ErrUnknownRoute, "no static route named %q", qualified)
}

// Reverse builds the URI of the route called name. The bare name is tried
// first, then the namespace-qualified one, so a root route shadows a
// namespaced route with the same name.
func (r *Registry) Reverse(namespace, name string, params domain.ParamSet, lang string) (string, error) {
	candidates := []string{name}
	if namespace != "" {
		candidates = append(candidates, domain.Qualify(namespace, name))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var reasons []string
	for _, q := range candidates {
		for _, e := range r.byName[q] {
			uri, err := e.pattern.build(params)
			if err != nil {
				reasons = append(reasons, err.Error())
				continue
			}
			if e.desc.Localized && lang != "" {
				uri = "/" + lang + uri
			}
			return uri, nil
		}
	}

	msg := fmt.Sprintf("Reverse for %q with arguments %s not found", domain.Qualify(namespace, name), params)
	if len(reasons) > 0 {
		msg += ": " + strings.Join(reasons, "; ")
	}
	return "", domain.Configf(domain.ErrNoReverseMatch, "%s", msg)
}

// Mount registers every route on router. Localized routes get a /{lang}
// prefix and the language is put on the request context.
func (r *Registry) Mount(router chi.Router) {
	for _, d := range r.Routes() {
		pattern, h := d.Pattern, d.Handler
		if d.Localized {
			pattern = "/{" + LanguageParam + "}" + pattern
			h = withURLLanguage(h)
		}
		for _, m := range d.HandlerMethods() {
			router.Method(m, pattern, h)
		}
	}
}

func withURLLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lang := chi.URLParam(r, LanguageParam); lang != "" && dispatch.Language(r.Context()) == "" {
			r = r.WithContext(dispatch.WithLanguage(r.Context(), lang))
		}
		next.ServeHTTP(w, r)
	})
}
