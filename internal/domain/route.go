package domain

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// RouteDescriptor describes one route of the host site: where it lives,
// which handler serves it and, for static routes, how it is rendered.
type RouteDescriptor struct {
	// Name identifies the route for reverse resolution. Static routes must
	// have one.
	Name string

	// Namespace is inherited from the group the route was declared in.
	// Empty means the root namespace.
	Namespace string

	// Pattern is the full chi pattern, group prefixes included.
	// Example: /blog/{slug}/
	Pattern string

	Handler http.Handler

	// Methods the handler is mounted for. Empty means GET.
	Methods []string

	// Localized routes are prefixed with the active language when reversed
	// and mounted under /{lang}.
	Localized bool

	// ─────────────────────────────
	// Static rendering
	// ─────────────────────────────

	IsStatic bool

	// Generator enumerates the parameter sets. nil means the route takes
	// no parameters and renders exactly once per language.
	Generator Generator

	// FilenameTemplate overrides the output path derived from the URI.
	// nil means "derive from URI".
	FilenameTemplate *string

	// StatusCodes accepted for this route. Empty means {200}.
	StatusCodes []int
}

// QualifiedName returns "namespace:name", or just the name at the root.
func (r *RouteDescriptor) QualifiedName() string {
	return Qualify(r.Namespace, r.Name)
}

// AcceptedStatusCodes returns the status codes a render may produce.
func (r *RouteDescriptor) AcceptedStatusCodes() []int {
	if len(r.StatusCodes) == 0 {
		return []int{http.StatusOK}
	}
	return r.StatusCodes
}

func (r *RouteDescriptor) AcceptsStatus(code int) bool {
	return slices.Contains(r.AcceptedStatusCodes(), code)
}

// HandlerMethods returns the methods the route is mounted for.
func (r *RouteDescriptor) HandlerMethods() []string {
	if len(r.Methods) == 0 {
		return []string{http.MethodGet}
	}
	return r.Methods
}

func (r *RouteDescriptor) String() string {
	var b strings.Builder
	b.WriteString(r.QualifiedName())
	b.WriteString(" (")
	b.WriteString(r.Pattern)
	if r.IsStatic {
		codes := make([]string, 0, len(r.AcceptedStatusCodes()))
		for _, c := range r.AcceptedStatusCodes() {
			codes = append(codes, strconv.Itoa(c))
		}
		b.WriteString(", static ")
		b.WriteString(strings.Join(codes, ","))
	}
	b.WriteString(")")
	return b.String()
}

// Qualify joins a namespace and a name the way reverse lookups expect.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + ":" + name
}

// SplitQualified is the inverse of Qualify. The namespace is everything
// before the last colon so nested namespaces survive.
func SplitQualified(qualified string) (namespace, name string) {
	i := strings.LastIndex(qualified, ":")
	if i < 0 {
		return "", qualified
	}
	return qualified[:i], qualified[i+1:]
}
