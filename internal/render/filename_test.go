package render

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

func ptr(s string) *string { return &s }

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		template *string
		params   domain.ParamSet
		want     string
	}{
		{"no template", nil, domain.Positional("x"), ""},
		{"literal", ptr("robots.txt"), domain.ParamSet{}, "robots.txt"},
		{"auto positional", ptr("path/x/{}.html"), domain.Positional("12345"), "path/x/12345.html"},
		{"indexed", ptr("{1}/{0}.html"), domain.Positional("a", "b"), "b/a.html"},
		{"named", ptr("path/x/{param}.html"), domain.Named(map[string]string{"param": "test"}), "path/x/test.html"},
		{"escaped braces", ptr("{{lit}}-{}.json"), domain.Positional("v"), "{lit}-v.json"},
		{"extra params ignored", ptr("{}.html"), domain.Positional("a", "b"), "a.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filename(tt.template, "/uri/", tt.params)
			if err != nil {
				t.Fatalf("Filename() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilenameMismatch(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   domain.ParamSet
	}{
		{"positional template, named params", "{}.html", domain.Named(map[string]string{"a": "b"})},
		{"named template, positional params", "{slug}.html", domain.Positional("x")},
		{"out of range", "{2}.html", domain.Positional("x")},
		{"placeholders without params", "{}.html", domain.ParamSet{}},
		{"mixed numbering", "{}-{0}", domain.Positional("a")},
		{"unterminated", "{slug", domain.Named(map[string]string{"slug": "x"})},
		{"stray close", "a}b", domain.ParamSet{}},
		{"format spec", "{slug:>5}", domain.Named(map[string]string{"slug": "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Filename(&tt.template, "/uri/", tt.params)
			if !errors.Is(err, domain.ErrTemplateMismatch) {
				t.Fatalf("Filename() error = %v, want template mismatch", err)
			}
			var re *domain.RenderError
			if !errors.As(err, &re) || re.URI != "/uri/" {
				t.Errorf("error does not carry the URI: %#v", err)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name     string
		filename string
		uri      string
		want     string
	}{
		{"root", "", "/", "index.html"},
		{"trailing slash", "", "/path/no-param/", "path/no-param/index.html"},
		{"file uri", "", "/robots.txt", "robots.txt"},
		{"template wins", "path/x/1.html", "/path/x/1/", "path/x/1.html"},
		{"dot segments inside root", "", "/a/./b/../c/", "a/c/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, rel, err := OutputPath(root, tt.filename, tt.uri)
			if err != nil {
				t.Fatalf("OutputPath() error = %v", err)
			}
			if rel != tt.want {
				t.Errorf("rel = %q, want %q", rel, tt.want)
			}
			if full != filepath.Join(root, filepath.FromSlash(tt.want)) {
				t.Errorf("full = %q", full)
			}
		})
	}
}

func TestOutputPathRejectsEscapes(t *testing.T) {
	for _, tc := range []struct{ filename, uri string }{
		{"", "/../etc/passwd"},
		{"../outside.html", "/x/"},
		{"a/../../b", "/x/"},
	} {
		_, _, err := OutputPath(t.TempDir(), tc.filename, tc.uri)
		if !errors.Is(err, domain.ErrUnsafePath) {
			t.Errorf("OutputPath(%q, %q) error = %v, want unsafe path", tc.filename, tc.uri, err)
		}
	}
}

func TestOutputPathProperties(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "out")
	properties := gopter.NewProperties(nil)

	properties.Property("never leaves the output root", prop.ForAll(
		func(parts []string) bool {
			uri := "/" + strings.Join(parts, "/")
			full, _, err := OutputPath(root, "", uri)
			if err != nil {
				return errors.Is(err, domain.ErrUnsafePath)
			}
			return strings.HasPrefix(full, root+string(filepath.Separator))
		},
		gen.SliceOf(gen.OneConstOf("..", ".", "a", "b", "", "index.html")),
	))

	properties.TestingRun(t)
}
