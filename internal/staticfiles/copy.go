package staticfiles

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/utils"
)

// Mount pairs a public URL prefix with the directory serving it.
type Mount struct {
	URL  string
	Root string
}

// CopyTree copies src into dst, keeping file modes and modification times.
// Directories rejected by filter are skipped at any depth. It returns the
// number of files copied.
func CopyTree(src, dst string, filter Filter) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("copy %s: %w", src, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("copy %s: not a directory", src)
	}

	copied := 0
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if rel != "." && filter.Skips(d.Name()) {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer utils.Close(in, "static source", nil)

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CopyMount copies m.Root to the location m.URL maps to inside outputDir.
// A mount that is not configured, or that is served from another host, is
// skipped with a warning.
func CopyMount(outputDir, kind string, m Mount, filter Filter, log logger.Logger) (int, error) {
	if m.Root == "" || m.URL == "" {
		log.Warn("skipping asset copy, root or url not configured", logger.String("kind", kind))
		return 0, nil
	}
	if u, err := url.Parse(m.URL); err != nil || u.IsAbs() || u.Host != "" {
		log.Warn("skipping asset copy, url is not site relative",
			logger.String("kind", kind),
			logger.String("url", m.URL),
		)
		return 0, nil
	}
	if _, err := os.Stat(m.Root); err != nil {
		log.Warn("skipping asset copy, root does not exist",
			logger.String("kind", kind),
			logger.String("root", m.Root),
		)
		return 0, nil
	}

	rel := strings.Trim(m.URL, "/")
	if rel == "" || strings.Contains(rel, "..") {
		return 0, fmt.Errorf("%s url %q cannot be mapped into the output directory", kind, m.URL)
	}

	n, err := CopyTree(m.Root, filepath.Join(outputDir, filepath.FromSlash(rel)), filter)
	if err != nil {
		return n, err
	}
	log.Info("copied assets",
		logger.String("kind", kind),
		logger.String("from", m.Root),
		logger.String("to", rel),
		logger.Int("files", n),
	)
	return n, nil
}

// Collect gathers the files of every source directory into root, later
// directories winning on conflicts.
func Collect(sources []string, root string, filter Filter, log logger.Logger) (int, error) {
	if root == "" {
		return 0, fmt.Errorf("collecting static files needs a static root")
	}
	total := 0
	for _, src := range sources {
		n, err := CopyTree(src, root, filter)
		if err != nil {
			return total, err
		}
		log.Debug("collected", logger.String("from", src), logger.Int("files", n))
		total += n
	}
	return total, nil
}
