package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
	"github.com/MrSnakeDoc/staticsite/internal/staticfiles"
)

// Settings is the site description read from staticsite.yaml. Every key can
// be overridden with a STATICSITE_<KEY> environment variable.
type Settings struct {
	OutputDirectory string `mapstructure:"output_directory"`
	Hostname        string `mapstructure:"hostname"`
	Debug           bool   `mapstructure:"debug"`

	LanguageCode   string   `mapstructure:"language_code"`
	Languages      []string `mapstructure:"languages"`
	ExtraLanguages []string `mapstructure:"extra_languages"`

	StaticURL             string   `mapstructure:"static_url"`
	StaticRoot            string   `mapstructure:"static_root"`
	StaticDirs            []string `mapstructure:"static_dirs"`
	MediaURL              string   `mapstructure:"media_url"`
	MediaRoot             string   `mapstructure:"media_root"`
	SkipAdminDirectories  bool     `mapstructure:"skip_admin_directories"`
	SkipStaticDirectories []string `mapstructure:"skip_static_directories"`

	ContentFile   string `mapstructure:"content_file"`
	RedirectsFile string `mapstructure:"redirects_file"`

	PublishingTargets map[string]map[string]any `mapstructure:"publishing_targets"`

	// File is the settings file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

var settingsDefaults = map[string]any{
	"output_directory":        "",
	"hostname":                "",
	"debug":                   false,
	"language_code":           "en",
	"languages":               []string{},
	"extra_languages":         []string{},
	"static_url":              "/static/",
	"static_root":             "",
	"static_dirs":             []string{},
	"media_url":               "/media/",
	"media_root":              "",
	"skip_admin_directories":  true,
	"skip_static_directories": []string{},
	"content_file":            "",
	"redirects_file":          "",
	"publishing_targets":      map[string]any{},
}

// LoadSettings reads path, or ./staticsite.yaml when path is empty. A missing
// default file is not an error: the defaults apply.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("staticsite")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("STATICSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, def := range settingsDefaults {
		v.SetDefault(key, def)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, domain.WrapConfig(err, "cannot read settings file")
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, domain.WrapConfig(err, "invalid settings")
	}
	s.File = v.ConfigFileUsed()
	return s, nil
}

// Langs returns the languages every static route is rendered in: the
// configured languages, then the default language when neither list has
// it, then the extra languages. Each tag must be a valid BCP 47 tag.
func (s *Settings) Langs() ([]string, error) {
	langs := make([]string, 0, len(s.Languages)+len(s.ExtraLanguages)+1)
	add := func(tag string) error {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(langs, tag) {
			return nil
		}
		if _, err := language.Parse(tag); err != nil {
			return domain.Configf(domain.ErrConfig, "invalid language %q: %v", tag, err)
		}
		langs = append(langs, tag)
		return nil
	}

	for _, tag := range s.Languages {
		if err := add(tag); err != nil {
			return nil, err
		}
	}
	if s.LanguageCode != "" && !slices.Contains(s.ExtraLanguages, s.LanguageCode) {
		if err := add(s.LanguageCode); err != nil {
			return nil, err
		}
	}
	for _, tag := range s.ExtraLanguages {
		if err := add(tag); err != nil {
			return nil, err
		}
	}
	return langs, nil
}

// Filter is the directory filter shared by asset copying and publishing.
func (s *Settings) Filter() staticfiles.Filter {
	return staticfiles.Filter{
		SkipAdmin: s.SkipAdminDirectories,
		Skip:      slices.Clone(s.SkipStaticDirectories),
	}
}

// TargetNames lists the configured publishing targets, sorted.
func (s *Settings) TargetNames() []string {
	names := make([]string, 0, len(s.PublishingTargets))
	for name := range s.PublishingTargets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target resolves a publishing target by name. Option keys are upper-cased
// and values formatted as strings.
func (s *Settings) Target(name string) (domain.PublishTarget, error) {
	raw, ok := s.PublishingTargets[name]
	if !ok {
		raw, ok = s.PublishingTargets[strings.ToLower(name)]
	}
	if !ok {
		return domain.PublishTarget{}, domain.Configf(domain.ErrUnknownTarget,
			"Static site publishing target %q not defined, check your settings publishing_targets", name)
	}

	opts := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			opts[strings.ToUpper(k)] = ""
			continue
		}
		opts[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	engine := opts["ENGINE"]
	if engine == "" {
		return domain.PublishTarget{}, domain.Configf(domain.ErrMissingOption,
			"Missing required settings value for the %q publishing target: ENGINE", name)
	}

	skip := slices.Clone(s.SkipStaticDirectories)
	if s.SkipAdminDirectories {
		skip = append(skip, staticfiles.AdminDirectories...)
	}
	return domain.PublishTarget{
		Name:      name,
		Engine:    engine,
		PublicURL: opts["PUBLIC_URL"],
		Options:   opts,
		SkipDirs:  skip,
	}, nil
}
