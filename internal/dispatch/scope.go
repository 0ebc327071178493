package dispatch

import (
	"context"
)

// Scope is the host-environment state a static render pass runs under.
// It travels on the context so nothing global is toggled and concurrent
// passes with different scopes do not interfere.
type Scope struct {
	// AllowedHosts replaces the host site's allow-list. "*" allows any.
	AllowedHosts []string

	// Debug asks the host site to render detailed error pages.
	Debug bool

	// Hostname is sent as the Host header of synthetic requests.
	Hostname string
}

type scopeKey struct{}
type languageKey struct{}

// Enter installs scope on ctx. The returned release func cancels the
// derived context, so no dispatch can outlive the pass that started it.
func Enter(ctx context.Context, scope Scope) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	return context.WithValue(ctx, scopeKey{}, scope), cancel
}

// ScopeFrom reports the scope installed by Enter, if any.
func ScopeFrom(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}

// WithLanguage activates lang for the requests dispatched under ctx.
// An empty lang leaves the context untouched.
func WithLanguage(ctx context.Context, lang string) context.Context {
	if lang == "" {
		return ctx
	}
	return context.WithValue(ctx, languageKey{}, lang)
}

// Language returns the active language, or "".
func Language(ctx context.Context) string {
	lang, _ := ctx.Value(languageKey{}).(string)
	return lang
}
