package publish

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// memoryBackend keeps objects in a map and verifies uploads against it.
type memoryBackend struct {
	*Base
	mu       sync.Mutex
	objects  map[string][]byte
	dirs     []string
	uploads  []string
	deletes  []string
	failName string
	finalErr error
	finals   int
}

func newMemoryBackend(t *testing.T, objects map[string]string) (*memoryBackend, string) {
	t.Helper()
	b, dir := newTestBase(t, nil)
	m := &memoryBackend{Base: b, objects: make(map[string][]byte)}
	for k, v := range objects {
		m.objects[k] = []byte(v)
	}
	return m, dir
}

func (m *memoryBackend) Authenticate(context.Context) error { return nil }

func (m *memoryBackend) ListRemoteFiles(context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(m.objects))
	for k := range m.objects {
		out[k] = struct{}{}
	}
	return out, nil
}

func (m *memoryBackend) DeleteRemoteFile(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
	m.deletes = append(m.deletes, name)
	return nil
}

func (m *memoryBackend) CompareFile(_ context.Context, localPath, name string) (bool, error) {
	local, err := m.LocalFileMD5(localPath)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := md5.Sum(m.objects[name])
	return hex.EncodeToString(sum[:]) == local, nil
}

func (m *memoryBackend) UploadFile(_ context.Context, localPath, name string) error {
	if name == m.failName {
		return errors.New("quota exceeded")
	}
	body, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = body
	m.uploads = append(m.uploads, name)
	return nil
}

func (m *memoryBackend) CreateRemoteDir(_ context.Context, name string) error {
	m.dirs = append(m.dirs, name)
	return nil
}

func (m *memoryBackend) CheckFile(ctx context.Context, localPath, _ string) (bool, error) {
	name, err := m.ObjectName(localPath)
	if err != nil {
		return false, err
	}
	return m.CompareFile(ctx, localPath, name)
}

func (m *memoryBackend) FinalChecks(context.Context) error {
	m.finals++
	return m.finalErr
}

func TestSync(t *testing.T) {
	m, dir := newMemoryBackend(t, map[string]string{
		"index.html":       "unchanged",
		"about/index.html": "stale",
		"old/gone.html":    "orphan",
	})
	writeFile(t, dir, "index.html", "unchanged")
	writeFile(t, dir, "about/index.html", "fresh")
	writeFile(t, dir, "blog/post.html", "new")

	report, err := Sync(context.Background(), m, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"about/index.html", "blog/post.html"}, report.Uploaded)
	assert.Equal(t, []string{"index.html"}, report.Unchanged)
	assert.Equal(t, []string{"old/gone.html"}, report.Deleted)
	assert.Equal(t, []string{"about", "blog"}, m.dirs)
	assert.Equal(t, 2, report.DirsCreated)
	assert.Equal(t, "fresh", string(m.objects["about/index.html"]))
	assert.NotContains(t, m.objects, "old/gone.html")
	assert.Zero(t, m.finals, "sync leaves final checks to the caller")
}

func TestSyncKeepsSkippedDirectories(t *testing.T) {
	dir := t.TempDir()
	target := testTarget(nil)
	target.SkipDirs = []string{"admin"}
	b, err := NewBase(dir, target, nil, nil)
	require.NoError(t, err)
	m := &memoryBackend{Base: b, objects: map[string][]byte{}}
	for k, v := range map[string]string{"static/admin/a.css": "kept", "static/site.css": "site", "static/old.css": "orphan"} {
		m.objects[k] = []byte(v)
	}
	writeFile(t, dir, "static/admin/a.css", "local admin copy")
	writeFile(t, dir, "static/site.css", "site")

	report, err := Sync(context.Background(), m, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"static/old.css"}, report.Deleted)
	assert.Empty(t, report.Uploaded)
	assert.Equal(t, "kept", string(m.objects["static/admin/a.css"]))
}

func TestSyncIsIdempotent(t *testing.T) {
	m, dir := newMemoryBackend(t, nil)
	writeFile(t, dir, "a.html", "a")
	writeFile(t, dir, "b/c.html", "c")

	_, err := Sync(context.Background(), m, nil)
	require.NoError(t, err)

	report, err := Sync(context.Background(), m, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Uploaded)
	assert.Empty(t, report.Deleted)
	assert.Len(t, report.Unchanged, 2)
}

func TestSyncUploadFailure(t *testing.T) {
	m, dir := newMemoryBackend(t, nil)
	writeFile(t, dir, "a.html", "a")
	m.failName = "a.html"

	_, err := Sync(context.Background(), m, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPublish)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRegistry(t *testing.T) {
	Register("memory-test", func(sourceDir string, target domain.PublishTarget, log logger.Logger) (Backend, error) {
		b, err := NewBase(sourceDir, target, nil, log)
		if err != nil {
			return nil, err
		}
		return &memoryBackend{Base: b, objects: map[string][]byte{}}, nil
	})

	assert.True(t, Supports("MEMORY-TEST"))
	assert.Contains(t, Engines(), "memory-test")
	assert.Panics(t, func() { Register("memory-test", nil) })

	b, err := Open(testTarget(map[string]string{OptionEngine: "memory-test"}), t.TempDir(), nil)
	require.NoError(t, err)
	assert.IsType(t, &memoryBackend{}, b)

	_, err = Open(testTarget(map[string]string{OptionEngine: "carrier-pigeon"}), t.TempDir(), nil)
	assert.ErrorIs(t, err, domain.ErrUnknownEngine)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestTestTargetUnknownEngine(t *testing.T) {
	_, err := TestTarget(context.Background(), testTarget(map[string]string{OptionEngine: "nope"}), nil)
	assert.ErrorIs(t, err, domain.ErrUnknownEngine)
}
