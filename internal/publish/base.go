package publish

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/staticfiles"
	"github.com/MrSnakeDoc/staticsite/internal/utils"
)

// Option keys every target must define.
const (
	OptionEngine    = "ENGINE"
	OptionPublicURL = "PUBLIC_URL"

	// OptionHTTPTimeout bounds verification fetches, e.g. "15s".
	OptionHTTPTimeout = "HTTP_TIMEOUT"

	// OptionDigest names the digest used to verify uploads over their
	// public URL: md5 (default), sha1 or sha256.
	OptionDigest = "DIGEST"
)

// Digests selectable with OptionDigest.
var Digests = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
}

const (
	defaultHTTPTimeout = 10 * time.Second
	digestCacheSize    = 4096
)

// Base holds what every backend shares: the local tree, the target's
// options and the helpers that hash, name and verify files.
type Base struct {
	target    domain.PublishTarget
	sourceDir string
	publicURL *url.URL
	filter    staticfiles.Filter
	client    *http.Client
	digest    string
	newHash   func() hash.Hash
	digests   *lru.Cache[string, string]
	log       logger.Logger
}

type BaseOption func(*Base)

// WithDigest replaces the digest used by LocalFileHash and URLHash. name
// keys memoised digests and must differ between hash functions.
func WithDigest(name string, newHash func() hash.Hash) BaseOption {
	return func(b *Base) {
		b.digest = name
		b.newHash = newHash
	}
}

// WithHTTPClient replaces the client used for verification fetches.
func WithHTTPClient(c *http.Client) BaseOption {
	return func(b *Base) { b.client = c }
}

// NewBase validates the target's options against required (ENGINE and
// PUBLIC_URL are always required) and that sourceDir is a directory.
func NewBase(sourceDir string, target domain.PublishTarget, required []string, log logger.Logger, opts ...BaseOption) (*Base, error) {
	for _, key := range append([]string{OptionEngine, OptionPublicURL}, required...) {
		if _, ok := target.Options[key]; !ok {
			return nil, domain.Configf(domain.ErrMissingOption,
				"Missing required settings value for the %q publishing target: %s", target.Name, key)
		}
	}

	publicURL, err := url.Parse(target.Options[OptionPublicURL])
	if err != nil || publicURL.Host == "" {
		return nil, domain.Configf(domain.ErrConfig, "Invalid %s %q for the %q publishing target",
			OptionPublicURL, target.Options[OptionPublicURL], target.Name)
	}

	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, &domain.PublishError{Target: target.Name, Msg: "cannot resolve source directory", Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, domain.Publishf(nil, target.Name, "Source directory %q does not exist or is not a directory", sourceDir)
	}

	timeout := defaultHTTPTimeout
	if raw := target.Options[OptionHTTPTimeout]; raw != "" {
		if timeout, err = time.ParseDuration(raw); err != nil {
			return nil, domain.Configf(domain.ErrConfig, "Invalid %s %q: %v", OptionHTTPTimeout, raw, err)
		}
	}

	digest := strings.ToLower(target.Options[OptionDigest])
	if digest == "" {
		digest = "md5"
	}
	newHash, ok := Digests[digest]
	if !ok {
		return nil, domain.Configf(domain.ErrConfig, "Unsupported %s %q for the %q publishing target, use md5, sha1 or sha256",
			OptionDigest, target.Options[OptionDigest], target.Name)
	}

	digests, err := lru.New[string, string](digestCacheSize)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	b := &Base{
		target:    target,
		sourceDir: abs,
		publicURL: publicURL,
		filter:    staticfiles.Filter{Skip: target.SkipDirs},
		client:    &http.Client{Timeout: timeout},
		digest:    digest,
		newHash:   newHash,
		digests:   digests,
		log:       log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Base) Core() *Base                  { return b }
func (b *Base) Target() domain.PublishTarget { return b.target }
func (b *Base) SourceDir() string            { return b.sourceDir }
func (b *Base) Log() logger.Logger           { return b.log }
func (b *Base) Filter() staticfiles.Filter   { return b.filter }
func (b *Base) HTTPClient() *http.Client     { return b.client }
func (b *Base) Option(key string) string     { return b.target.Options[key] }
func (b *Base) AccountUsername() string      { return "" }
func (b *Base) AccountContainer() string     { return "" }

func (b *Base) HasOption(key string) bool {
	_, ok := b.target.Options[key]
	return ok
}

// PublicURL returns a copy of the target's public base URL.
func (b *Base) PublicURL() *url.URL {
	u := *b.publicURL
	return &u
}

// Errorf builds a publish error naming this target.
func (b *Base) Errorf(kind error, format string, args ...any) error {
	return domain.Publishf(kind, b.target.Name, format, args...)
}

// OptionDefault returns the option or def when it is unset or empty.
func (b *Base) OptionDefault(key, def string) string {
	if v := b.target.Options[key]; v != "" {
		return v
	}
	return def
}

// IntOption parses an integer option.
func (b *Base) IntOption(key string, def int) (int, error) {
	raw := b.target.Options[key]
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Configf(domain.ErrConfig, "Invalid %s %q for the %q publishing target", key, raw, b.target.Name)
	}
	return n, nil
}

// BoolOption parses a boolean option.
func (b *Base) BoolOption(key string, def bool) (bool, error) {
	raw := b.target.Options[key]
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.Configf(domain.ErrConfig, "Invalid %s %q for the %q publishing target", key, raw, b.target.Name)
	}
	return v, nil
}

// DurationOption parses a duration option such as "3s".
func (b *Base) DurationOption(key string, def time.Duration) (time.Duration, error) {
	raw := b.target.Options[key]
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, domain.Configf(domain.ErrConfig, "Invalid %s %q for the %q publishing target", key, raw, b.target.Name)
	}
	return d, nil
}

// CreateRemoteDir does nothing; flat object stores have no directories.
func (b *Base) CreateRemoteDir(context.Context, string) error { return nil }

// FinalChecks does nothing by default.
func (b *Base) FinalChecks(context.Context) error { return nil }

// CheckFile fetches url and compares its digest with the local file.
func (b *Base) CheckFile(ctx context.Context, localPath, url string) (bool, error) {
	local, err := b.LocalFileHash(localPath)
	if err != nil {
		return false, err
	}
	remote, found, err := b.URLHash(ctx, url)
	if err != nil || !found {
		return false, err
	}
	return local == remote, nil
}

// IndexLocalFiles walks the source directory and returns absolute paths
// of files and directories, skipping filtered directories.
func (b *Base) IndexLocalFiles() (files, dirs map[string]struct{}, err error) {
	files = make(map[string]struct{})
	dirs = make(map[string]struct{})

	err = filepath.WalkDir(b.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == b.sourceDir {
				return nil
			}
			if b.filter.Skips(d.Name()) {
				return filepath.SkipDir
			}
			dirs[path] = struct{}{}
			return nil
		}
		if d.Type().IsRegular() {
			files[path] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, nil, &domain.PublishError{Target: b.target.Name, Msg: "cannot index " + b.sourceDir, Err: err}
	}
	return files, dirs, nil
}

// RemotePath is the local path relative to the source directory, slash
// separated with a leading slash.
func (b *Base) RemotePath(localPath string) (string, error) {
	abs, err := filepath.Abs(localPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(b.sourceDir, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", b.Errorf(nil, "%q is not inside the source directory %q", localPath, b.sourceDir)
	}
	return "/" + filepath.ToSlash(rel), nil
}

// ObjectName is RemotePath without its leading slash.
func (b *Base) ObjectName(localPath string) (string, error) {
	p, err := b.RemotePath(localPath)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(p, "/"), nil
}

// RemoteURL is where localPath is served once published.
func (b *Base) RemoteURL(localPath string) (string, error) {
	p, err := b.RemotePath(localPath)
	if err != nil {
		return "", err
	}
	u := b.PublicURL()
	u.Path = strings.TrimSuffix(u.Path, "/") + p
	u.RawPath = ""
	return u.String(), nil
}

// DetectMimetype guesses from the extension, falling back to def.
func (b *Base) DetectMimetype(localPath, def string) string {
	return DetectMimetype(localPath, def)
}

func DetectMimetype(localPath, def string) string {
	t := mime.TypeByExtension(filepath.Ext(localPath))
	if t == "" {
		return def
	}
	media, _, _ := strings.Cut(t, ";")
	return strings.TrimSpace(media)
}

// LocalFileHash is the hex digest of a local file, with the target's
// digest (MD5 unless configured). Digests are memoised by digest, path,
// size and modification time.
func (b *Base) LocalFileHash(path string) (string, error) {
	return b.localDigest(path, b.digest, b.newHash)
}

// LocalFileMD5 is the hex MD5 of a local file whatever the target's digest.
// Stores keep MD5 metadata, so remote comparisons use it.
func (b *Base) LocalFileMD5(path string) (string, error) {
	return b.localDigest(path, "md5", md5.New)
}

func (b *Base) localDigest(path, name string, newHash func() hash.Hash) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &domain.PublishError{Target: b.target.Name, Msg: "cannot hash " + path, Err: err}
	}
	key := name + "\x00" + path + "\x00" + strconv.FormatInt(info.Size(), 10) + "\x00" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
	if sum, ok := b.digests.Get(key); ok {
		return sum, nil
	}

	sum, err := FileDigest(path, newHash())
	if err != nil {
		return "", &domain.PublishError{Target: b.target.Name, Msg: "cannot hash " + path, Err: err}
	}
	b.digests.Add(key, sum)
	return sum, nil
}

// FileDigest streams path through h and returns the hex digest.
func FileDigest(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer utils.Close(f, path, nil)

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// URLHash fetches rawURL with a cache busting query and returns the hex
// digest of the body, computed like LocalFileHash. A 404 reports found=false without error.
func (b *Base) URLHash(ctx context.Context, rawURL string) (sum string, found bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false, b.Errorf(nil, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false, b.Errorf(domain.ErrUnsupportedScheme, "Unsupported URL scheme %q in %s", u.Scheme, rawURL)
	}

	q := u.Query()
	q.Set("_", cacheBuster())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", false, b.Errorf(nil, "cannot build request for %s: %v", rawURL, err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", false, &domain.PublishError{Target: b.target.Name, Msg: "fetching " + rawURL, Err: err}
	}
	defer utils.Close(resp.Body, "response body", b.log)

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}

	h := b.newHash()
	if _, err := io.Copy(h, resp.Body); err != nil {
		return "", false, &domain.PublishError{Target: b.target.Name, Msg: "reading " + rawURL, Err: err}
	}
	return hex.EncodeToString(h.Sum(nil)), true, nil
}

func cacheBuster() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf[:])
}

// HexFromBase64 converts a base64 digest, as stored in Content-MD5
// metadata, into the hex form LocalFileHash returns.
func HexFromBase64(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("invalid base64 digest %q: %w", s, err)
	}
	return hex.EncodeToString(raw), nil
}
