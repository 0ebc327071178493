package render

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// IndexFile is appended to URIs ending with a slash.
const IndexFile = "index.html"

// Filename formats a route's filename template with params. It returns ""
// when the route has no template.
//
// Placeholders: {} (next positional), {0} (positional by index) and
// {name} (named). {{ and }} produce literal braces.
func Filename(template *string, uri string, params domain.ParamSet) (string, error) {
	if template == nil {
		return "", nil
	}
	out, err := formatTemplate(*template, params)
	if err != nil {
		return "", domain.Renderf(domain.ErrTemplateMismatch, uri,
			"filename template %q does not match parameters %s for URI %s: %v", *template, params, uri, err)
	}
	return out, nil
}

func formatTemplate(tpl string, params domain.ParamSet) (string, error) {
	var b strings.Builder
	auto, manual := 0, false
	usedAuto := false

	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		switch {
		case c == '{' && i+1 < len(tpl) && tpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tpl) && tpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '}':
			return "", fmt.Errorf("single '}' at offset %d", i)
		case c == '{':
			end := strings.IndexByte(tpl[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			field := tpl[i+1 : i+end]
			i += end

			var (
				v   string
				err error
			)
			switch {
			case field == "":
				if manual {
					return "", fmt.Errorf("cannot mix automatic and manual field numbering")
				}
				usedAuto = true
				v, err = positional(params, auto)
				auto++
			case isIndex(field):
				if usedAuto {
					return "", fmt.Errorf("cannot mix automatic and manual field numbering")
				}
				manual = true
				n, _ := strconv.Atoi(field)
				v, err = positional(params, n)
			default:
				v, err = named(params, field)
			}
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func positional(params domain.ParamSet, i int) (string, error) {
	if i >= len(params.Positional) {
		return "", fmt.Errorf("positional placeholder %d out of range", i)
	}
	return params.Positional[i], nil
}

func named(params domain.ParamSet, field string) (string, error) {
	if strings.ContainsAny(field, ":!.[") {
		return "", fmt.Errorf("unsupported placeholder {%s}", field)
	}
	v, ok := params.Named[field]
	if !ok {
		return "", fmt.Errorf("no value for placeholder {%s}", field)
	}
	return v, nil
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// OutputPath maps a rendered URI (or its template filename) under root.
// A URI ending in "/" gets index.html appended. The result never leaves
// root. The second value is the slash separated path relative to root.
func OutputPath(root, filename, uri string) (string, string, error) {
	rel := filename
	if rel == "" {
		rel = strings.TrimPrefix(uri, "/")
		if rel == "" || strings.HasSuffix(rel, "/") {
			rel += IndexFile
		}
	}

	if !within(rel) {
		return "", "", domain.Renderf(domain.ErrUnsafePath, uri, "output path %q for URI %s escapes the output directory", rel, uri)
	}
	rel = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")
	if rel == "" {
		return "", "", domain.Renderf(domain.ErrUnsafePath, uri, "empty output path for URI %s", uri)
	}
	return filepath.Join(root, filepath.FromSlash(rel)), rel, nil
}

// within reports whether a relative slash path stays inside its root.
func within(rel string) bool {
	depth := 0
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		switch part {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return false
			}
		default:
			depth++
		}
	}
	return true
}
