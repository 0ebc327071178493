// Package filesystem publishes into a local directory, typically one a web
// server or a synced volume serves from.
package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
	"github.com/MrSnakeDoc/staticsite/internal/utils"
)

const (
	Engine = "filesystem"

	OptionRoot = "ROOT"
	// OptionCreate creates ROOT on authentication when missing.
	OptionCreate = "CREATE"
	// OptionVerifyURL makes CheckFile fetch the public URL instead of
	// reading the published copy back.
	OptionVerifyURL = "VERIFY_URL"
)

func init() {
	publish.Register(Engine, New)
}

type Backend struct {
	*publish.Base
	root      string
	create    bool
	verifyURL bool
}

func New(sourceDir string, target domain.PublishTarget, log logger.Logger) (publish.Backend, error) {
	base, err := publish.NewBase(sourceDir, target, []string{OptionRoot}, log)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(base.Option(OptionRoot))
	if err != nil {
		return nil, base.Errorf(nil, "invalid %s: %v", OptionRoot, err)
	}
	create, err := base.BoolOption(OptionCreate, false)
	if err != nil {
		return nil, err
	}
	verifyURL, err := base.BoolOption(OptionVerifyURL, false)
	if err != nil {
		return nil, err
	}
	if root == base.SourceDir() || strings.HasPrefix(root, base.SourceDir()+string(filepath.Separator)) {
		return nil, base.Errorf(nil, "%s %q must not be inside the source directory", OptionRoot, root)
	}
	return &Backend{Base: base, root: root, create: create, verifyURL: verifyURL}, nil
}

func (b *Backend) AccountContainer() string { return b.root }

func (b *Backend) AccountUsername() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

func (b *Backend) Authenticate(context.Context) error {
	info, err := os.Stat(b.root)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return b.Errorf(nil, "%s %q is not a directory", OptionRoot, b.root)
	case errors.Is(err, fs.ErrNotExist) && b.create:
		return os.MkdirAll(b.root, 0o755)
	default:
		return b.Errorf(nil, "%s %q is not accessible: %v", OptionRoot, b.root, err)
	}
}

func (b *Backend) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", b.Errorf(nil, "object name %q escapes %s", name, b.root)
	}
	return filepath.Join(b.root, clean), nil
}

func (b *Backend) ListRemoteFiles(context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	err := filepath.WalkDir(b.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(b.root, p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	return out, err
}

// DeleteRemoteFile removes the file and any directory it leaves empty.
func (b *Backend) DeleteRemoteFile(_ context.Context, name string) error {
	p, err := b.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for dir := filepath.Dir(p); dir != b.root; dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

func (b *Backend) CompareFile(_ context.Context, localPath, name string) (bool, error) {
	p, err := b.path(name)
	if err != nil {
		return false, err
	}
	local, err := b.LocalFileHash(localPath)
	if err != nil {
		return false, err
	}
	remote, err := b.LocalFileHash(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return local == remote, nil
}

func (b *Backend) CreateRemoteDir(_ context.Context, name string) error {
	p, err := b.path(name)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, 0o755)
}

// UploadFile copies through a temporary file so readers never see a
// partial object.
func (b *Backend) UploadFile(_ context.Context, localPath, name string) error {
	dst, err := b.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer utils.Close(in, localPath, b.Log())

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (b *Backend) CheckFile(ctx context.Context, localPath, url string) (bool, error) {
	if b.verifyURL {
		return b.Base.CheckFile(ctx, localPath, url)
	}
	name, err := b.ObjectName(localPath)
	if err != nil {
		return false, err
	}
	return b.CompareFile(ctx, localPath, name)
}
