package routing

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// Group declares routes under a shared prefix and namespace.
type Group struct {
	reg       *Registry
	prefix    string
	namespace string
	localized bool
}

// Root returns the top level group.
func (r *Registry) Root() *Group {
	return &Group{reg: r}
}

func (g *Group) Registry() *Registry { return g.reg }

// Include declares a nested group. An empty namespace keeps the parent's.
func (g *Group) Include(prefix, namespace string, fn func(*Group)) {
	child := &Group{
		reg:       g.reg,
		prefix:    joinPattern(g.prefix, prefix),
		namespace: g.namespace,
		localized: g.localized,
	}
	if namespace != "" {
		child.namespace = domain.Qualify(g.namespace, namespace)
	}
	fn(child)
}

// Localized declares a group whose routes are reversed and mounted with a
// language prefix.
func (g *Group) Localized(fn func(*Group)) {
	child := *g
	child.localized = true
	fn(&child)
}

// Option tweaks a route while it is declared.
type Option func(*domain.RouteDescriptor)

func Name(name string) Option {
	return func(d *domain.RouteDescriptor) { d.Name = name }
}

// Static marks the route for rendering.
func Static() Option {
	return func(d *domain.RouteDescriptor) { d.IsStatic = true }
}

// Params attaches a parameter generator and marks the route static.
func Params(gen domain.Generator) Option {
	return func(d *domain.RouteDescriptor) {
		d.IsStatic = true
		d.Generator = gen
	}
}

// Filename overrides the output path with a template such as
// "posts/{slug}.html".
func Filename(template string) Option {
	return func(d *domain.RouteDescriptor) {
		d.IsStatic = true
		d.FilenameTemplate = &template
	}
}

// StatusCodes replaces the accepted status codes, {200} by default.
func StatusCodes(codes ...int) Option {
	return func(d *domain.RouteDescriptor) { d.StatusCodes = codes }
}

func Methods(methods ...string) Option {
	return func(d *domain.RouteDescriptor) { d.Methods = methods }
}

// Handle declares a route. Declaration errors are collected on the
// registry and reported by Registry.Err.
func (g *Group) Handle(pattern string, h http.Handler, opts ...Option) *domain.RouteDescriptor {
	d := &domain.RouteDescriptor{
		Namespace: g.namespace,
		Pattern:   joinPattern(g.prefix, pattern),
		Handler:   h,
		Localized: g.localized,
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := g.reg.Add(d); err != nil {
		g.reg.record(err)
	}
	return d
}

func (g *Group) Get(pattern string, h http.HandlerFunc, opts ...Option) *domain.RouteDescriptor {
	return g.Handle(pattern, h, opts...)
}

func joinPattern(prefix, pattern string) string {
	if prefix == "" {
		return pattern
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(pattern, "/")
}
