package gcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
)

func target(extra map[string]string) domain.PublishTarget {
	opts := map[string]string{
		publish.OptionEngine:    Engine,
		publish.OptionPublicURL: "https://storage.googleapis.com/site/",
		OptionBucket:            "site",
	}
	for k, v := range extra {
		opts[k] = v
	}
	return domain.PublishTarget{Name: "gcs", Engine: Engine, Options: opts}
}

func TestNew(t *testing.T) {
	b, err := New(t.TempDir(), target(nil), nil)
	require.NoError(t, err)

	g := b.(*Backend)
	assert.Equal(t, "site", g.AccountContainer())
	assert.Equal(t, "application default credentials", g.AccountUsername())
	assert.True(t, g.makePublic)
}

func TestNewCredentialsFile(t *testing.T) {
	creds := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(creds, []byte(`{"type":"service_account"}`), 0o600))

	b, err := New(t.TempDir(), target(map[string]string{OptionJSONCredentials: creds, OptionMakePublic: "false"}), nil)
	require.NoError(t, err)
	assert.Equal(t, creds, b.AccountUsername())
	assert.False(t, b.(*Backend).makePublic)

	_, err = New(t.TempDir(), target(map[string]string{OptionJSONCredentials: filepath.Join(t.TempDir(), "missing.json")}), nil)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestNewRequiresBucket(t *testing.T) {
	tgt := target(nil)
	delete(tgt.Options, OptionBucket)
	_, err := New(t.TempDir(), tgt, nil)
	assert.ErrorIs(t, err, domain.ErrMissingOption)
}
