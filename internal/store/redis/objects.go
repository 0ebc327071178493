package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for objects that are not stored.
var ErrNotFound = errors.New("object not found")

const (
	fieldBody        = "body"
	fieldContentType = "content_type"
	fieldContentMD5  = "content_md5"
	fieldSize        = "size"
	fieldUpdatedAt   = "updated_at"
)

// Object is a published file. ContentMD5 is base64 encoded, the way the
// Content-MD5 header carries it.
type Object struct {
	Name        string
	Body        []byte
	ContentType string
	ContentMD5  string
	Size        int64
	UpdatedAt   time.Time
}

// Store keeps published files as Redis hashes plus a set index, so a
// front end can serve them straight from Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a new Redis store. An empty prefix uses DefaultPrefix.
func NewStore(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		client: client,
		prefix: prefix,
	}
}

func (s *Store) Prefix() string { return s.prefix }

// Close releases the underlying client.
func (s *Store) Close() error { return s.client.Close() }

// PutObject writes the object and indexes its name in one transaction.
func (s *Store) PutObject(ctx context.Context, obj *Object) error {
	if obj.UpdatedAt.IsZero() {
		obj.UpdatedAt = time.Now().UTC()
	}
	obj.Size = int64(len(obj.Body))

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, ObjectKey(s.prefix, obj.Name), map[string]any{
			fieldBody:        obj.Body,
			fieldContentType: obj.ContentType,
			fieldContentMD5:  obj.ContentMD5,
			fieldSize:        obj.Size,
			fieldUpdatedAt:   obj.UpdatedAt.Format(time.RFC3339Nano),
		})
		pipe.SAdd(ctx, AllObjectsKey(s.prefix), obj.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save object %s: %w", obj.Name, err)
	}
	return nil
}

// GetObjectMeta returns everything but the body.
func (s *Store) GetObjectMeta(ctx context.Context, name string) (*Object, error) {
	vals, err := s.client.HMGet(ctx, ObjectKey(s.prefix, name),
		fieldContentType, fieldContentMD5, fieldSize, fieldUpdatedAt).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", name, err)
	}
	if vals[1] == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	obj := &Object{Name: name}
	obj.ContentType, _ = vals[0].(string)
	obj.ContentMD5, _ = vals[1].(string)
	if raw, ok := vals[2].(string); ok {
		obj.Size, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw, ok := vals[3].(string); ok {
		obj.UpdatedAt, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return obj, nil
}

// GetObject returns the object with its body.
func (s *Store) GetObject(ctx context.Context, name string) (*Object, error) {
	obj, err := s.GetObjectMeta(ctx, name)
	if err != nil {
		return nil, err
	}
	body, err := s.client.HGet(ctx, ObjectKey(s.prefix, name), fieldBody).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get object body %s: %w", name, err)
	}
	obj.Body = body
	return obj, nil
}

// DeleteObject removes the object and its index entry.
func (s *Store) DeleteObject(ctx context.Context, name string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, ObjectKey(s.prefix, name))
		pipe.SRem(ctx, AllObjectsKey(s.prefix), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", name, err)
	}
	return nil
}

// ListObjects returns every indexed object name.
func (s *Store) ListObjects(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, AllObjectsKey(s.prefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	return names, nil
}
