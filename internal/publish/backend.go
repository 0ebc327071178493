package publish

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// Backend is a remote object store a rendered site is synced to.
//
// Remote names are slash separated paths relative to the source directory
// without a leading slash, e.g. "blog/index.html".
type Backend interface {
	Authenticate(ctx context.Context) error
	AccountUsername() string
	AccountContainer() string

	ListRemoteFiles(ctx context.Context) (map[string]struct{}, error)
	DeleteRemoteFile(ctx context.Context, name string) error

	// CompareFile reports whether the remote object already holds the
	// local file's content.
	CompareFile(ctx context.Context, localPath, name string) (bool, error)
	UploadFile(ctx context.Context, localPath, name string) error
	CreateRemoteDir(ctx context.Context, name string) error

	// CheckFile verifies an upload is served at url.
	CheckFile(ctx context.Context, localPath, url string) (bool, error)

	// FinalChecks runs after every upload. Backends deferring
	// verification do it here.
	FinalChecks(ctx context.Context) error

	Core() *Base
}

// Factory builds a backend for sourceDir from a target's options.
type Factory func(sourceDir string, target domain.PublishTarget, log logger.Logger) (Backend, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes an engine available to Open. Backends call it from
// init().
func Register(engine string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	engine = strings.ToLower(engine)
	if _, dup := factories[engine]; dup {
		panic("publish: engine registered twice: " + engine)
	}
	factories[engine] = f
}

// Engines lists registered engine names, sorted.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

func lookup(engine string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := factories[strings.ToLower(engine)]
	return f, ok
}

// Supports reports whether engine has a registered backend.
func Supports(engine string) bool {
	_, ok := lookup(engine)
	return ok
}

// Open builds the backend the target's engine names.
func Open(target domain.PublishTarget, sourceDir string, log logger.Logger) (Backend, error) {
	f, ok := lookup(target.Engine)
	if !ok {
		return nil, domain.Configf(domain.ErrUnknownEngine,
			"Publishing target %q uses unknown engine %q, available: %s",
			target.Name, target.Engine, strings.Join(Engines(), ", "))
	}
	if log == nil {
		log = logger.NewNop()
	}
	return f(sourceDir, target, log)
}
