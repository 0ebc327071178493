package render

import (
	"fmt"
	"iter"
	"maps"
	"strconv"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// ExpandParams runs the route's generator and normalizes its result into
// a finite list of parameter sets. A route without generator, or a
// generator producing nothing, yields a single empty set.
func ExpandParams(route *domain.RouteDescriptor) (sets []domain.ParamSet, err error) {
	if route.Generator == nil {
		return []domain.ParamSet{{}}, nil
	}

	defer func() {
		if p := recover(); p != nil {
			sets = nil
			err = domain.Renderf(domain.ErrInvalidGeneratorResult, "", "parameter generator for %s panicked: %v", route.QualifiedName(), p)
		}
	}()

	v, err := route.Generator(route.Name)
	if err != nil {
		return nil, &domain.RenderError{
			Kind: domain.ErrInvalidGeneratorResult,
			Msg:  "parameter generator for " + route.QualifiedName() + " failed",
			Err:  err,
		}
	}

	sets, err = normalize(v)
	if err != nil {
		return nil, domain.Renderf(domain.ErrInvalidGeneratorResult, "", "%s: %v", route.QualifiedName(), err)
	}
	if len(sets) == 0 {
		return []domain.ParamSet{{}}, nil
	}
	return sets, nil
}

func normalize(v any) ([]domain.ParamSet, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []domain.ParamSet{domain.Positional(x)}, nil
	case domain.ParamSet:
		return []domain.ParamSet{x}, nil
	case []domain.ParamSet:
		return x, nil
	case []string:
		out := make([]domain.ParamSet, 0, len(x))
		for _, s := range x {
			out = append(out, domain.Positional(s))
		}
		return out, nil
	case [][]string:
		out := make([]domain.ParamSet, 0, len(x))
		for _, s := range x {
			out = append(out, domain.Positional(s...))
		}
		return out, nil
	case []map[string]string:
		out := make([]domain.ParamSet, 0, len(x))
		for _, m := range x {
			out = append(out, domain.Named(maps.Clone(m)))
		}
		return out, nil
	case []map[string]any:
		out := make([]domain.ParamSet, 0, len(x))
		for _, m := range x {
			ps, err := paramSetFrom(m)
			if err != nil {
				return nil, err
			}
			out = append(out, ps)
		}
		return out, nil
	case []any:
		return collect(func(yield func(any) bool) {
			for _, e := range x {
				if !yield(e) {
					return
				}
			}
		})
	case iter.Seq[any]:
		return collect(x)
	case iter.Seq[string]:
		var out []domain.ParamSet
		for s := range x {
			out = append(out, domain.Positional(s))
		}
		return out, nil
	case iter.Seq[domain.ParamSet]:
		var out []domain.ParamSet
		for ps := range x {
			out = append(out, ps)
		}
		return out, nil
	case iter.Seq[map[string]string]:
		var out []domain.ParamSet
		for m := range x {
			out = append(out, domain.Named(maps.Clone(m)))
		}
		return out, nil
	case func(func(any) bool):
		return normalize(iter.Seq[any](x))
	case func(func(string) bool):
		return normalize(iter.Seq[string](x))
	case func(func(domain.ParamSet) bool):
		return normalize(iter.Seq[domain.ParamSet](x))
	case func(func(map[string]string) bool):
		return normalize(iter.Seq[map[string]string](x))
	case chan any:
		return normalize((<-chan any)(x))
	case <-chan any:
		var out []domain.ParamSet
		for e := range x {
			ps, err := paramSetFrom(e)
			if err != nil {
				return nil, err
			}
			out = append(out, ps)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported parameter generator result of type %T", v)
	}
}

// collect drains seq exactly once.
func collect(seq iter.Seq[any]) ([]domain.ParamSet, error) {
	var out []domain.ParamSet
	for e := range seq {
		ps, err := paramSetFrom(e)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, nil
}

// paramSetFrom converts one element of a generator result.
func paramSetFrom(e any) (domain.ParamSet, error) {
	switch x := e.(type) {
	case nil:
		return domain.ParamSet{}, nil
	case domain.ParamSet:
		return x, nil
	case []string:
		return domain.Positional(x...), nil
	case []any:
		values := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := scalar(item)
			if !ok {
				return domain.ParamSet{}, fmt.Errorf("unsupported parameter value of type %T", item)
			}
			values = append(values, s)
		}
		return domain.Positional(values...), nil
	case map[string]string:
		return domain.Named(maps.Clone(x)), nil
	case map[string]any:
		named := make(map[string]string, len(x))
		for k, item := range x {
			s, ok := scalar(item)
			if !ok {
				return domain.ParamSet{}, fmt.Errorf("unsupported value of type %T for parameter %q", item, k)
			}
			named[k] = s
		}
		return domain.Named(named), nil
	default:
		if s, ok := scalar(e); ok {
			return domain.Positional(s), nil
		}
		return domain.ParamSet{}, fmt.Errorf("unsupported parameter set of type %T", e)
	}
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return "", false
	}
}
