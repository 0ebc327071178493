package azure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/publish"
)

const connString = "DefaultEndpointsProtocol=https;AccountName=mysite;AccountKey=a2V5;EndpointSuffix=core.windows.net"

func target(publicURL string, extra map[string]string) domain.PublishTarget {
	opts := map[string]string{
		publish.OptionEngine:    Engine,
		publish.OptionPublicURL: publicURL,
		OptionConnectionString:  connString,
	}
	for k, v := range extra {
		opts[k] = v
	}
	return domain.PublishTarget{Name: "azure", Engine: Engine, Options: opts}
}

func TestNewDefaults(t *testing.T) {
	b, err := New(t.TempDir(), target("https://mysite.z6.web.core.windows.net/", nil), nil)
	require.NoError(t, err)

	az := b.(*Backend)
	assert.Equal(t, 30, az.policy.Attempts)
	assert.Equal(t, 3*time.Second, az.policy.Delay)
	assert.Equal(t, "mysite", az.AccountUsername())
	assert.Equal(t, "$web", az.AccountContainer())
}

func TestNewRequiresConnectionString(t *testing.T) {
	tgt := target("https://x.test/", nil)
	delete(tgt.Options, OptionConnectionString)

	_, err := New(t.TempDir(), tgt, nil)
	assert.ErrorIs(t, err, domain.ErrMissingOption)

	_, err = New(t.TempDir(), target("https://x.test/", map[string]string{OptionRetryAttempts: "many"}), nil)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestConnectionStringValue(t *testing.T) {
	assert.Equal(t, "mysite", connectionStringValue(connString, "accountname"))
	assert.Equal(t, "core.windows.net", connectionStringValue(connString, "EndpointSuffix"))
	assert.Empty(t, connectionStringValue(connString, "Missing"))
}

func newPendingBackend(t *testing.T, handler http.Handler, attempts int) (*Backend, publish.Pending) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src := t.TempDir()
	local := filepath.Join(src, "index.html")
	require.NoError(t, os.WriteFile(local, []byte("test"), 0o644))

	b, err := New(src, target(srv.URL+"/", map[string]string{
		OptionRetryAttempts: "4",
		OptionRetryDelay:    "1ms",
	}), nil)
	require.NoError(t, err)
	az := b.(*Backend)
	az.policy.Attempts = attempts

	url, err := az.RemoteURL(local)
	require.NoError(t, err)
	p := publish.Pending{LocalPath: local, Name: "index.html", URL: url}
	az.enqueue(p)
	return az, p
}

func TestFinalChecksWaitsForPropagation(t *testing.T) {
	var hits atomic.Int32
	az, _ := newPendingBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("test"))
	}), 4)

	ok, err := az.CheckFile(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, ok, "per file checks are deferred")

	require.NoError(t, az.FinalChecks(context.Background()))
	assert.Equal(t, int32(3), hits.Load())

	// pending uploads are consumed
	require.NoError(t, az.FinalChecks(context.Background()))
	assert.Equal(t, int32(3), hits.Load())
}

func TestFinalChecksExhausted(t *testing.T) {
	az, p := newPendingBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stale content"))
	}), 2)

	err := az.FinalChecks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVerificationExhausted)
	assert.Contains(t, err.Error(), p.LocalPath)
	assert.Contains(t, err.Error(), "after 2 attempts")
}
