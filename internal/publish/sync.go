package publish

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
)

// SyncReport lists object names by what happened to them.
type SyncReport struct {
	Uploaded    []string
	Unchanged   []string
	Deleted     []string
	DirsCreated int
	Took        time.Duration
}

func (b *Base) wrap(err error, msg string) error {
	return domain.WrapPublish(err, b.target.Name, msg)
}

// Sync makes the remote store mirror the source directory: unchanged
// files are skipped, new or changed files are uploaded and verified,
// orphaned remote files are deleted. b must be authenticated. Deferred
// verification is left to FinalChecks.
func Sync(ctx context.Context, b Backend, log logger.Logger) (*SyncReport, error) {
	if log == nil {
		log = logger.NewNop()
	}
	base := b.Core()
	start := time.Now()

	idx, err := BuildIndex(ctx, b)
	if err != nil {
		return nil, err
	}
	log.Info("indexed files",
		logger.String("target", base.target.Name),
		logger.Int("local", len(idx.LocalFiles)),
		logger.Int("remote", len(idx.RemoteFiles)),
	)

	report := &SyncReport{}

	for _, dir := range idx.SortedDirs() {
		name, err := base.ObjectName(dir)
		if err != nil {
			return report, err
		}
		if err := b.CreateRemoteDir(ctx, name); err != nil {
			return report, base.wrap(err, "creating remote directory "+name)
		}
		report.DirsCreated++
	}

	for _, local := range idx.SortedFiles() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		name, err := base.ObjectName(local)
		if err != nil {
			return report, err
		}

		if idx.IsRemote(name) {
			same, err := b.CompareFile(ctx, local, name)
			if err != nil {
				return report, base.wrap(err, "comparing "+name)
			}
			if same {
				log.Debug("unchanged", logger.String("file", name))
				report.Unchanged = append(report.Unchanged, name)
				continue
			}
		}

		if err := b.UploadFile(ctx, local, name); err != nil {
			return report, base.wrap(err, "uploading "+name)
		}
		url, err := base.RemoteURL(local)
		if err != nil {
			return report, err
		}
		ok, err := b.CheckFile(ctx, local, url)
		if err != nil {
			return report, base.wrap(err, "verifying "+name)
		}
		if !ok {
			return report, base.Errorf(nil, "Uploaded file %q is not served with the expected content at %s", name, url)
		}
		log.Info("uploaded", logger.String("file", name), logger.String("url", url))
		report.Uploaded = append(report.Uploaded, name)
	}

	for _, name := range idx.Orphans() {
		if err := b.DeleteRemoteFile(ctx, name); err != nil {
			return report, base.wrap(err, "deleting "+name)
		}
		log.Info("deleted orphan", logger.String("file", name))
		report.Deleted = append(report.Deleted, name)
	}

	report.Took = time.Since(start)
	return report, nil
}
