package redis

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
)

func target(extra map[string]string) domain.PublishTarget {
	opts := map[string]string{
		publish.OptionEngine:    Engine,
		publish.OptionPublicURL: "https://site.example.test/",
		OptionAddr:              "localhost:6379",
	}
	for k, v := range extra {
		opts[k] = v
	}
	return domain.PublishTarget{Name: "cache", Engine: Engine, Options: opts}
}

func TestNew(t *testing.T) {
	b, err := New(t.TempDir(), target(map[string]string{
		OptionDB:             "2",
		OptionUsername:       "publisher",
		OptionKeyPrefix:      "blog",
		OptionConnectTimeout: "3s",
	}), nil)
	require.NoError(t, err)

	rb := b.(*Backend)
	assert.Equal(t, 2, rb.opts.DB)
	assert.Equal(t, 3*time.Second, rb.opts.ConnectTimeout)
	assert.Equal(t, "publisher", rb.AccountUsername())
	assert.Equal(t, "localhost:6379/2 blog", rb.AccountContainer())
}

func TestNewDefaults(t *testing.T) {
	b, err := New(t.TempDir(), target(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "default", b.AccountUsername())
	assert.Equal(t, "localhost:6379/0 staticsite", b.AccountContainer())
}

func TestNewValidation(t *testing.T) {
	tgt := target(nil)
	delete(tgt.Options, OptionAddr)
	_, err := New(t.TempDir(), tgt, nil)
	assert.ErrorIs(t, err, domain.ErrMissingOption)

	_, err = New(t.TempDir(), target(map[string]string{OptionDB: "zero"}), nil)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestAuthenticateUnreachable(t *testing.T) {
	b, err := New(t.TempDir(), target(map[string]string{
		OptionAddr:           "127.0.0.1:1",
		OptionConnectTimeout: "100ms",
	}), nil)
	require.NoError(t, err)

	err = b.Authenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPublish)

	// nothing was opened
	c, ok := b.(io.Closer)
	require.True(t, ok)
	assert.NoError(t, c.Close())
}
