// Package s3 publishes to an S3 compatible bucket.
package s3

import (
	"context"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
)

const (
	Engine = "s3"

	OptionBucket          = "BUCKET"
	OptionEndpoint        = "ENDPOINT"
	OptionEndpointURL     = "ENDPOINT_URL"
	OptionRegion          = "REGION"
	OptionAccessKeyID     = "ACCESS_KEY_ID"
	OptionSecretAccessKey = "SECRET_ACCESS_KEY"
	OptionUseSSL          = "USE_SSL"
	// OptionACL is sent as x-amz-acl with every upload. Empty disables it.
	OptionACL            = "ACL"
	OptionDefaultContent = "DEFAULT_CONTENT_TYPE"

	defaultEndpoint = "s3.amazonaws.com"
	defaultACL      = "public-read"
	defaultMimetype = "application/octet-stream"
)

func init() {
	publish.Register(Engine, New)
}

type Backend struct {
	*publish.Base
	client   *minio.Client
	bucket   string
	endpoint string
	region   string
	useSSL   bool
	acl      string
	mimetype string
}

func New(sourceDir string, target domain.PublishTarget, log logger.Logger) (publish.Backend, error) {
	base, err := publish.NewBase(sourceDir, target, []string{OptionBucket}, log)
	if err != nil {
		return nil, err
	}
	useSSL, err := base.BoolOption(OptionUseSSL, true)
	if err != nil {
		return nil, err
	}
	endpoint := base.OptionDefault(OptionEndpoint, defaultEndpoint)
	if raw := base.Option(OptionEndpointURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, domain.Configf(domain.ErrConfig, "Invalid %s %q for the %q publishing target",
				OptionEndpointURL, raw, target.Name)
		}
		endpoint, useSSL = u.Host, u.Scheme != "http"
	}
	acl := defaultACL
	if base.HasOption(OptionACL) {
		acl = base.Option(OptionACL)
	}
	return &Backend{
		Base:     base,
		bucket:   strings.TrimSpace(base.Option(OptionBucket)),
		endpoint: endpoint,
		region:   base.Option(OptionRegion),
		useSSL:   useSSL,
		acl:      acl,
		mimetype: base.OptionDefault(OptionDefaultContent, defaultMimetype),
	}, nil
}

// credentials uses the target's keys when given, otherwise the usual AWS
// environment variables, shared credentials file and instance role.
func (b *Backend) credentials() *credentials.Credentials {
	access, secret := b.Option(OptionAccessKeyID), b.Option(OptionSecretAccessKey)
	if access != "" && secret != "" {
		return credentials.NewStaticV4(access, secret, "")
	}
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{},
	})
}

func (b *Backend) Authenticate(ctx context.Context) error {
	client, err := minio.New(b.endpoint, &minio.Options{
		Creds:  b.credentials(),
		Secure: b.useSSL,
		Region: b.region,
	})
	if err != nil {
		return b.Errorf(nil, "init s3 client for %s: %v", b.endpoint, err)
	}

	exists, err := client.BucketExists(ctx, b.bucket)
	if err != nil {
		return b.Errorf(nil, "cannot access bucket %q: %v", b.bucket, err)
	}
	if !exists {
		return b.Errorf(nil, "bucket %q does not exist at %s", b.bucket, b.endpoint)
	}
	b.client = client
	return nil
}

func (b *Backend) AccountUsername() string {
	if id := b.Option(OptionAccessKeyID); id != "" {
		return id
	}
	return "default credentials"
}

func (b *Backend) AccountContainer() string { return b.bucket }

func (b *Backend) ListRemoteFiles(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key == "" || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out[obj.Key] = struct{}{}
	}
	return out, nil
}

func (b *Backend) DeleteRemoteFile(ctx context.Context, name string) error {
	return b.client.RemoveObject(ctx, b.bucket, name, minio.RemoveObjectOptions{})
}

// CompareFile compares the object's ETag, which is the MD5 of single part
// uploads, with the local digest.
func (b *Backend) CompareFile(ctx context.Context, localPath, name string) (bool, error) {
	info, err := b.client.StatObject(ctx, b.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	local, err := b.LocalFileMD5(localPath)
	if err != nil {
		return false, err
	}
	return normalizeETag(info.ETag) == local, nil
}

func normalizeETag(etag string) string {
	return strings.ToLower(strings.Trim(etag, `"`))
}

func (b *Backend) UploadFile(ctx context.Context, localPath, name string) error {
	opts := minio.PutObjectOptions{
		ContentType:    b.DetectMimetype(localPath, b.mimetype),
		SendContentMd5: true,
	}
	if b.acl != "" {
		opts.UserMetadata = map[string]string{"x-amz-acl": b.acl}
	}
	_, err := b.client.FPutObject(ctx, b.bucket, name, localPath, opts)
	return err
}
