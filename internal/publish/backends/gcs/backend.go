// Package gcs publishes to a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
	"github.com/MrSnakeDoc/staticsite/internal/utils"
)

const (
	Engine = "gcs"

	OptionBucket = "BUCKET"
	// OptionJSONCredentials is the path of a service account key file.
	// Application default credentials are used without it.
	OptionJSONCredentials = "JSON_CREDENTIALS"
	// OptionMakePublic grants allUsers read access to every upload. Turn
	// it off for buckets with uniform bucket-level access.
	OptionMakePublic = "MAKE_PUBLIC"

	defaultMimetype = "application/octet-stream"
)

func init() {
	publish.Register(Engine, New)
}

type Backend struct {
	*publish.Base
	client      *storage.Client
	bucket      *storage.BucketHandle
	bucketName  string
	credentials string
	makePublic  bool
}

func New(sourceDir string, target domain.PublishTarget, log logger.Logger) (publish.Backend, error) {
	base, err := publish.NewBase(sourceDir, target, []string{OptionBucket}, log)
	if err != nil {
		return nil, err
	}

	creds := base.Option(OptionJSONCredentials)
	if creds != "" {
		if info, err := os.Stat(creds); err != nil || info.IsDir() {
			return nil, domain.Configf(domain.ErrConfig, "%s %q for the %q publishing target is not a file",
				OptionJSONCredentials, creds, target.Name)
		}
	}
	makePublic, err := base.BoolOption(OptionMakePublic, true)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Base:        base,
		bucketName:  base.Option(OptionBucket),
		credentials: creds,
		makePublic:  makePublic,
	}, nil
}

func (b *Backend) Authenticate(ctx context.Context) error {
	var opts []option.ClientOption
	if b.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(b.credentials))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return b.Errorf(nil, "cannot create storage client: %v", err)
	}

	bucket := client.Bucket(b.bucketName)
	if _, err := bucket.Attrs(ctx); err != nil {
		utils.Close(client, "storage client", b.Log())
		return b.Errorf(nil, "cannot access bucket %q: %v", b.bucketName, err)
	}
	b.client, b.bucket = client, bucket
	return nil
}

// Close releases the client opened by Authenticate.
func (b *Backend) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func (b *Backend) AccountUsername() string {
	if b.credentials != "" {
		return b.credentials
	}
	return "application default credentials"
}

func (b *Backend) AccountContainer() string { return b.bucketName }

func (b *Backend) ListRemoteFiles(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	it := b.bucket.Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out[attrs.Name] = struct{}{}
	}
}

func (b *Backend) DeleteRemoteFile(ctx context.Context, name string) error {
	err := b.bucket.Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// CompareFile uses the MD5 the service keeps in object metadata. Composite
// objects have none and always compare as changed.
func (b *Backend) CompareFile(ctx context.Context, localPath, name string) (bool, error) {
	attrs, err := b.bucket.Object(name).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}
	if len(attrs.MD5) == 0 {
		return false, nil
	}
	local, err := b.LocalFileMD5(localPath)
	if err != nil {
		return false, err
	}
	return hex.EncodeToString(attrs.MD5) == local, nil
}

func (b *Backend) UploadFile(ctx context.Context, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer utils.Close(f, localPath, b.Log())

	obj := b.bucket.Object(name)
	w := obj.NewWriter(ctx)
	w.ContentType = b.DetectMimetype(localPath, defaultMimetype)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if b.makePublic {
		if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
			return b.Errorf(nil, "cannot make %s public: %v", name, err)
		}
	}
	return nil
}
