package render

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// WriteFile writes body to fullPath, creating parent directories. A path
// component that already exists as a file, or a target that is a
// directory, is reported as a path collision.
func WriteFile(fullPath, uri string, body []byte) error {
	if info, err := os.Stat(fullPath); err == nil && info.IsDir() {
		return dirCollision(fullPath, uri)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if blocker := blockingFile(dir); blocker != "" {
			return domain.Renderf(domain.ErrPathCollision, uri,
				"Cannot create directory %q for URI %s: %q is a file", dir, uri, blocker)
		}
		return &domain.RenderError{URI: uri, Msg: "cannot create output directory " + dir, Err: err}
	}

	return writeBody(fullPath, uri, body)
}

// writeBody writes the file itself. A concurrent task may have created a
// directory at fullPath since WriteFile looked.
func writeBody(fullPath, uri string, body []byte) error {
	err := os.WriteFile(fullPath, body, 0o644)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.EISDIR) {
		return dirCollision(fullPath, uri)
	}
	if info, statErr := os.Stat(fullPath); statErr == nil && info.IsDir() {
		return dirCollision(fullPath, uri)
	}
	return &domain.RenderError{URI: uri, Msg: "cannot write " + fullPath, Err: err}
}

func dirCollision(fullPath, uri string) error {
	return domain.Renderf(domain.ErrPathCollision, uri,
		"Output path %q is a directory. Try adding a filename template to the route for URI %s", fullPath, uri)
}

// blockingFile returns the nearest existing ancestor of dir when it is
// not a directory.
func blockingFile(dir string) string {
	for p := dir; ; {
		if info, err := os.Stat(p); err == nil {
			if info.IsDir() {
				return ""
			}
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return ""
		}
		p = parent
	}
}
