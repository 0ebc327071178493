package domain

import (
	"maps"
	"slices"
	"strings"
)

type ParamKind int

const (
	ParamsEmpty ParamKind = iota
	ParamsPositional
	ParamsNamed
)

func (k ParamKind) String() string {
	switch k {
	case ParamsPositional:
		return "positional"
	case ParamsNamed:
		return "named"
	default:
		return "empty"
	}
}

// ParamSet holds the arguments for one render of a route. Only one of
// Positional and Named is ever populated.
type ParamSet struct {
	Positional []string
	Named      map[string]string
}

func Positional(values ...string) ParamSet {
	return ParamSet{Positional: values}
}

func Named(values map[string]string) ParamSet {
	return ParamSet{Named: values}
}

func (p ParamSet) Kind() ParamKind {
	switch {
	case len(p.Positional) > 0:
		return ParamsPositional
	case len(p.Named) > 0:
		return ParamsNamed
	default:
		return ParamsEmpty
	}
}

func (p ParamSet) IsEmpty() bool { return p.Kind() == ParamsEmpty }

// String renders the set for log lines, named keys sorted.
func (p ParamSet) String() string {
	switch p.Kind() {
	case ParamsPositional:
		return "(" + strings.Join(p.Positional, ", ") + ")"
	case ParamsNamed:
		keys := slices.Sorted(maps.Keys(p.Named))
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+p.Named[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "()"
	}
}

// Generator enumerates parameter sets for a static route. It receives the
// route name and returns any of the shapes the expander understands:
// nil, a string, a slice or an iter.Seq of param sets, strings, string
// slices or maps.
type Generator func(routeName string) (any, error)

// StaticParams returns a generator that always yields v.
func StaticParams(v any) Generator {
	return func(string) (any, error) { return v, nil }
}

// NoArgs adapts a generator that does not care about the route name.
func NoArgs(fn func() any) Generator {
	return func(string) (any, error) { return fn(), nil }
}
