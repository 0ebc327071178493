package render

import (
	"html"
	"path"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// RedirectPage is the HTML served at an old path, sending browsers to dest
// with a meta refresh and keeping crawlers from indexing it.
func RedirectPage(dest string) []byte {
	d := html.EscapeString(dest)
	lines := []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<head>",
		`<meta charset="UTF-8">`,
		`<meta http-equiv="refresh" content="0;URL=` + d + `" />`,
		"<title>Redirecting to " + d + "</title>",
		`<meta name="robots" content="noindex" />`,
		"</head>",
		"<body>",
		`<h1>Redirecting to <a href="` + d + `">` + d + "</a></h1>",
		`<p>If you are not redirected automatically, <a href="` + d + `">follow this link</a>.</p>`,
		"</body>",
		"</html>",
		"",
	}
	return []byte(strings.Join(lines, "\n"))
}

// WriteRedirects writes one redirect page per record into dir and returns
// the written paths. Old paths ending in ".html" are written as is, any
// other becomes a directory holding index.html.
func WriteRedirects(dir string, redirects []domain.Redirect, log logger.Logger) ([]string, error) {
	if log == nil {
		log = logger.NewNop()
	}

	paths := make([]string, 0, len(redirects))
	for _, r := range redirects {
		if r.OldPath == "" || r.NewPath == "" {
			return paths, domain.Renderf(nil, r.OldPath, "redirect %q -> %q needs both paths", r.OldPath, r.NewPath)
		}
		full, _, err := OutputPath(dir, redirectFilename(r.OldPath), r.OldPath)
		if err != nil {
			return paths, err
		}
		if err := WriteFile(full, r.OldPath, RedirectPage(r.NewPath)); err != nil {
			return paths, err
		}
		log.Debug("wrote redirect", logger.String("from", r.OldPath), logger.String("to", r.NewPath))
		paths = append(paths, full)
	}
	return paths, nil
}

func redirectFilename(oldPath string) string {
	p := strings.TrimPrefix(oldPath, "/")
	if strings.HasSuffix(strings.ToLower(p), ".html") {
		return p
	}
	return path.Join(p, IndexFile)
}
