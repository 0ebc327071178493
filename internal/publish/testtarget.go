package publish

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/utils"
)

// TestReport is the outcome of a round trip through a target.
type TestReport struct {
	Target     string
	Engine     string
	Name       string
	URL        string
	LocalHash  string
	RemoteHash string
	Match      bool
}

// TestTarget uploads a random probe file, fetches it back over the public
// URL and compares digests. The probe is removed locally and remotely
// whatever the outcome.
func TestTarget(ctx context.Context, target domain.PublishTarget, log logger.Logger) (report *TestReport, err error) {
	if log == nil {
		log = logger.NewNop()
	}

	dir, err := os.MkdirTemp("", "staticsite-probe-")
	if err != nil {
		return nil, &domain.PublishError{Target: target.Name, Msg: "cannot create probe directory", Err: err}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	token := make([]byte, 16)
	if _, err := rand.Read(token); err != nil {
		return nil, err
	}
	content := hex.EncodeToString(token)
	probe := filepath.Join(dir, "staticsite-probe-"+content[:8]+".txt")
	if err := os.WriteFile(probe, []byte(content), 0o644); err != nil {
		return nil, &domain.PublishError{Target: target.Name, Msg: "cannot write probe file", Err: err}
	}

	b, err := Open(target, dir, log)
	if err != nil {
		return nil, err
	}
	base := b.Core()
	if c, ok := b.(io.Closer); ok {
		defer utils.Close(c, "publishing backend", log)
	}

	if err := b.Authenticate(ctx); err != nil {
		return nil, base.wrap(err, "authentication failed")
	}

	name, err := base.ObjectName(probe)
	if err != nil {
		return nil, err
	}
	url, err := base.RemoteURL(probe)
	if err != nil {
		return nil, err
	}
	report = &TestReport{Target: target.Name, Engine: target.Engine, Name: name, URL: url}

	defer func() {
		// cleanup must run even when ctx was cancelled mid test
		if derr := b.DeleteRemoteFile(context.WithoutCancel(ctx), name); derr != nil {
			log.Warn("failed to delete probe file", logger.String("file", name), logger.Error(derr))
		}
	}()

	log.Info("uploading probe file", logger.String("target", target.Name), logger.String("file", name))
	if err := b.UploadFile(ctx, probe, name); err != nil {
		return report, base.wrap(err, "uploading probe file")
	}
	if err := b.FinalChecks(ctx); err != nil {
		return report, err
	}

	if report.LocalHash, err = base.LocalFileHash(probe); err != nil {
		return report, err
	}
	remote, found, err := base.URLHash(ctx, url)
	if err != nil {
		return report, err
	}
	if found {
		report.RemoteHash = remote
	}
	report.Match = found && remote == report.LocalHash
	return report, nil
}
