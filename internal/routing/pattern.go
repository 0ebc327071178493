package routing

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// segment is either literal text or a placeholder of a chi pattern.
type segment struct {
	literal string
	param   string
	re      *regexp.Regexp
	isParam bool
}

type pattern struct {
	raw      string
	segments []segment
	params   []string
}

const wildcard = "*"

var defaultParam = regexp.MustCompile(`^[^/]+$`)

// parsePattern understands the chi syntax: {name}, {name:regexp} and a
// trailing * catch-all.
func parsePattern(raw string) (*pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("pattern %q must begin with '/'", raw)
	}

	p := &pattern{raw: raw}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.segments = append(p.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; c {
		case '{':
			end, err := closingBrace(raw, i)
			if err != nil {
				return nil, err
			}
			name, expr, hasExpr := strings.Cut(raw[i+1:end], ":")
			if name == "" {
				return nil, fmt.Errorf("pattern %q has an unnamed placeholder", raw)
			}
			re := defaultParam
			if hasExpr {
				compiled, err := regexp.Compile("^(?:" + expr + ")$")
				if err != nil {
					return nil, fmt.Errorf("pattern %q: %w", raw, err)
				}
				re = compiled
			}
			flush()
			p.segments = append(p.segments, segment{param: name, re: re, isParam: true})
			p.params = append(p.params, name)
			i = end
		case '*':
			if i != len(raw)-1 {
				return nil, fmt.Errorf("pattern %q: wildcard must be the last character", raw)
			}
			flush()
			p.segments = append(p.segments, segment{param: wildcard, isParam: true})
			p.params = append(p.params, wildcard)
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return p, nil
}

// closingBrace finds the brace that closes the one at start, allowing
// nested braces inside regexps like {id:[0-9]{4}}.
func closingBrace(raw string, start int) (int, error) {
	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("pattern %q has an unterminated placeholder", raw)
}

// build substitutes params into the pattern. Positional values fill
// placeholders in order; named values must name every placeholder and
// nothing else.
func (p *pattern) build(params domain.ParamSet) (string, error) {
	values := make(map[string]string, len(p.params))

	switch params.Kind() {
	case domain.ParamsEmpty:
		if len(p.params) > 0 {
			return "", fmt.Errorf("%s expects %d argument(s), got none", p.raw, len(p.params))
		}
	case domain.ParamsPositional:
		if len(params.Positional) != len(p.params) {
			return "", fmt.Errorf("%s expects %d argument(s), got %d", p.raw, len(p.params), len(params.Positional))
		}
		for i, name := range p.params {
			values[name] = params.Positional[i]
		}
	case domain.ParamsNamed:
		if len(params.Named) != len(p.params) {
			return "", fmt.Errorf("%s expects arguments %v", p.raw, p.params)
		}
		for _, name := range p.params {
			v, ok := params.Named[name]
			if !ok {
				return "", fmt.Errorf("%s: missing argument %q", p.raw, name)
			}
			values[name] = v
		}
	}

	var b strings.Builder
	for _, seg := range p.segments {
		if !seg.isParam {
			b.WriteString(seg.literal)
			continue
		}
		v := values[seg.param]
		if seg.param == wildcard {
			b.WriteString(escapeWildcard(v))
			continue
		}
		if !seg.re.MatchString(v) {
			return "", fmt.Errorf("%s: argument %s=%q does not match", p.raw, seg.param, v)
		}
		b.WriteString(url.PathEscape(v))
	}
	return b.String(), nil
}

func escapeWildcard(v string) string {
	parts := strings.Split(v, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
