// Package azure publishes to the static website container of an Azure
// storage account.
package azure

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
	"github.com/MrSnakeDoc/staticsite/internal/utils"
)

const (
	Engine = "azure"

	// Container is the container Azure serves static websites from.
	Container = "$web"

	OptionConnectionString = "CONNECTION_STRING"
	OptionRetryAttempts    = "RETRY_ATTEMPTS"
	OptionRetryDelay       = "RETRY_DELAY"

	defaultRetryAttempts = 30
	defaultRetryDelay    = 3 * time.Second
	defaultMimetype      = "application/octet-stream"
)

func init() {
	publish.Register(Engine, New)
}

// Backend uploads blobs and verifies them once every upload is done: the
// CDN in front of $web takes a while to serve new content, so checking
// file by file would stall the sync.
type Backend struct {
	*publish.Base
	client *azblob.Client
	policy publish.RetryPolicy

	mu      sync.Mutex
	pending []publish.Pending
}

func New(sourceDir string, target domain.PublishTarget, log logger.Logger) (publish.Backend, error) {
	base, err := publish.NewBase(sourceDir, target, []string{OptionConnectionString}, log)
	if err != nil {
		return nil, err
	}
	attempts, err := base.IntOption(OptionRetryAttempts, defaultRetryAttempts)
	if err != nil {
		return nil, err
	}
	delay, err := base.DurationOption(OptionRetryDelay, defaultRetryDelay)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Base:   base,
		policy: publish.RetryPolicy{Attempts: attempts, Delay: delay},
	}, nil
}

func (b *Backend) Authenticate(ctx context.Context) error {
	client, err := azblob.NewClientFromConnectionString(b.Option(OptionConnectionString), nil)
	if err != nil {
		return b.Errorf(nil, "invalid Azure connection string: %v", err)
	}
	if _, err := client.ServiceClient().NewContainerClient(Container).GetProperties(ctx, nil); err != nil {
		return b.Errorf(nil, "cannot access container %s of account %s: %v", Container, b.AccountUsername(), err)
	}
	b.client = client
	return nil
}

// AccountUsername is the storage account name from the connection string.
func (b *Backend) AccountUsername() string {
	return connectionStringValue(b.Option(OptionConnectionString), "AccountName")
}

func (b *Backend) AccountContainer() string { return Container }

func connectionStringValue(conn, key string) string {
	for _, part := range strings.Split(conn, ";") {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (b *Backend) ListRemoteFiles(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	pager := b.client.NewListBlobsFlatPager(Container, nil)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Segment.BlobItems {
			if item.Name != nil {
				out[*item.Name] = struct{}{}
			}
		}
	}
	return out, nil
}

func (b *Backend) DeleteRemoteFile(ctx context.Context, name string) error {
	_, err := b.client.DeleteBlob(ctx, Container, name, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil
	}
	return err
}

func (b *Backend) CompareFile(ctx context.Context, localPath, name string) (bool, error) {
	props, err := b.client.ServiceClient().NewContainerClient(Container).NewBlobClient(name).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(props.ContentMD5) == 0 {
		return false, nil
	}
	local, err := b.LocalFileMD5(localPath)
	if err != nil {
		return false, err
	}
	return hex.EncodeToString(props.ContentMD5) == local, nil
}

// UploadFile sets Content-MD5 explicitly; block uploads do not get one
// from the service.
func (b *Backend) UploadFile(ctx context.Context, localPath, name string) error {
	sum, err := b.LocalFileMD5(localPath)
	if err != nil {
		return err
	}
	digest, err := hex.DecodeString(sum)
	if err != nil || len(digest) != md5.Size {
		return b.Errorf(nil, "unexpected digest %q for %s", sum, localPath)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer utils.Close(f, localPath, b.Log())

	contentType := b.DetectMimetype(localPath, defaultMimetype)
	_, err = b.client.UploadFile(ctx, Container, name, f, &azblob.UploadFileOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
			BlobContentMD5:  digest,
		},
	})
	if err != nil {
		return err
	}

	url, err := b.RemoteURL(localPath)
	if err != nil {
		return err
	}
	b.enqueue(publish.Pending{LocalPath: localPath, Name: name, URL: url})
	return nil
}

func (b *Backend) enqueue(p publish.Pending) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, p)
}

// CheckFile always succeeds; see FinalChecks.
func (b *Backend) CheckFile(context.Context, string, string) (bool, error) {
	return true, nil
}

// FinalChecks polls every uploaded file's public URL until it serves the
// uploaded content.
func (b *Backend) FinalChecks(ctx context.Context) error {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	b.Log().Info("verifying uploads over the public URL",
		logger.Int("files", len(pending)),
		logger.Int("attempts", b.policy.Attempts),
		logger.Duration("delay", b.policy.Delay))

	for _, p := range pending {
		if err := b.VerifyWithRetry(ctx, p, b.policy); err != nil {
			return err
		}
	}
	return nil
}
