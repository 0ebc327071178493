// Package redis publishes into Redis hashes, for sites served by a small
// front end reading straight from Redis.
package redis

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
	redisconn "github.com/MrSnakeDoc/staticsite/internal/redis"
	redisstore "github.com/MrSnakeDoc/staticsite/internal/store/redis"
)

const (
	Engine = "redis"

	OptionAddr           = "ADDR"
	OptionUsername       = "USERNAME"
	OptionPassword       = "PASSWORD"
	OptionDB             = "DB"
	OptionKeyPrefix      = "KEY_PREFIX"
	OptionConnectTimeout = "CONNECT_TIMEOUT"

	defaultConnectTimeout = 10 * time.Second
	defaultMimetype       = "application/octet-stream"
)

func init() {
	publish.Register(Engine, New)
}

type Backend struct {
	*publish.Base
	opts  redisconn.ConnectOptions
	store *redisstore.Store
}

func New(sourceDir string, target domain.PublishTarget, log logger.Logger) (publish.Backend, error) {
	base, err := publish.NewBase(sourceDir, target, []string{OptionAddr}, log)
	if err != nil {
		return nil, err
	}
	db, err := base.IntOption(OptionDB, 0)
	if err != nil {
		return nil, err
	}
	timeout, err := base.DurationOption(OptionConnectTimeout, defaultConnectTimeout)
	if err != nil {
		return nil, err
	}

	opts := redisconn.DefaultConnectOptions(base.Option(OptionAddr))
	opts.User = base.Option(OptionUsername)
	opts.Password = base.Option(OptionPassword)
	opts.DB = db
	opts.ConnectTimeout = timeout

	return &Backend{Base: base, opts: opts}, nil
}

func (b *Backend) Authenticate(ctx context.Context) error {
	client, err := redisconn.Connect(ctx, b.opts, b.Log())
	if err != nil {
		return b.Errorf(nil, "cannot connect to redis: %v", err)
	}
	b.store = redisstore.NewStore(client, b.Option(OptionKeyPrefix))
	return nil
}

// Close releases the connection opened by Authenticate.
func (b *Backend) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

func (b *Backend) AccountUsername() string {
	if b.opts.User != "" {
		return b.opts.User
	}
	return "default"
}

func (b *Backend) AccountContainer() string {
	prefix := b.OptionDefault(OptionKeyPrefix, redisstore.DefaultPrefix)
	return b.opts.Addr + "/" + strconv.Itoa(b.opts.DB) + " " + prefix
}

func (b *Backend) ListRemoteFiles(ctx context.Context) (map[string]struct{}, error) {
	names, err := b.store.ListObjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out, nil
}

func (b *Backend) DeleteRemoteFile(ctx context.Context, name string) error {
	return b.store.DeleteObject(ctx, name)
}

// CompareFile decodes the stored base64 Content-MD5 instead of fetching
// the body back.
func (b *Backend) CompareFile(ctx context.Context, localPath, name string) (bool, error) {
	meta, err := b.store.GetObjectMeta(ctx, name)
	if err != nil {
		if errors.Is(err, redisstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	remote, err := publish.HexFromBase64(meta.ContentMD5)
	if err != nil {
		return false, nil
	}
	local, err := b.LocalFileMD5(localPath)
	if err != nil {
		return false, err
	}
	return remote == local, nil
}

func (b *Backend) UploadFile(ctx context.Context, localPath, name string) error {
	body, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	sum := md5.Sum(body)
	return b.store.PutObject(ctx, &redisstore.Object{
		Name:        name,
		Body:        body,
		ContentType: b.DetectMimetype(localPath, defaultMimetype),
		ContentMD5:  base64.StdEncoding.EncodeToString(sum[:]),
	})
}

// CheckFile reads the stored digest back; the public URL is served by a
// separate front end that may not be deployed yet.
func (b *Backend) CheckFile(ctx context.Context, localPath, _ string) (bool, error) {
	name, err := b.ObjectName(localPath)
	if err != nil {
		return false, err
	}
	return b.CompareFile(ctx, localPath, name)
}
