package publish

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/staticsite/internal/staticfiles"
)

// FileIndex is the local and remote view a sync works from. Local entries
// are absolute paths, remote entries object names.
type FileIndex struct {
	LocalFiles  map[string]struct{}
	LocalDirs   map[string]struct{}
	RemoteFiles map[string]struct{}

	// names maps object names back to local files.
	names map[string]string
	// filter left directories out of the local walk; their remote
	// objects are kept.
	filter staticfiles.Filter
}

// BuildIndex walks the source directory and lists the remote store.
func BuildIndex(ctx context.Context, b Backend) (*FileIndex, error) {
	base := b.Core()

	files, dirs, err := base.IndexLocalFiles()
	if err != nil {
		return nil, err
	}
	remote, err := b.ListRemoteFiles(ctx)
	if err != nil {
		return nil, base.wrap(err, "listing remote files")
	}

	idx := &FileIndex{
		LocalFiles:  files,
		LocalDirs:   dirs,
		RemoteFiles: remote,
		names:       make(map[string]string, len(files)),
		filter:      base.Filter(),
	}
	for f := range files {
		name, err := base.ObjectName(f)
		if err != nil {
			return nil, err
		}
		idx.names[name] = f
	}
	return idx, nil
}

// SortedFiles returns local files in lexical order.
func (i *FileIndex) SortedFiles() []string {
	return slices.Sorted(maps.Keys(i.LocalFiles))
}

// SortedDirs returns local directories, parents before children.
func (i *FileIndex) SortedDirs() []string {
	return slices.Sorted(maps.Keys(i.LocalDirs))
}

func (i *FileIndex) IsRemote(name string) bool {
	_, ok := i.RemoteFiles[name]
	return ok
}

// Orphans are remote objects with no local counterpart, sorted. Objects
// under a skipped directory are never orphans.
func (i *FileIndex) Orphans() []string {
	var out []string
	for name := range i.RemoteFiles {
		if _, ok := i.names[name]; ok || i.skipped(name) {
			continue
		}
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (i *FileIndex) skipped(name string) bool {
	dirs := strings.Split(strings.Trim(name, "/"), "/")
	for _, dir := range dirs[:len(dirs)-1] {
		if i.filter.Skips(dir) {
			return true
		}
	}
	return false
}
