package domain

import "net/http"

// RenderedArtifact is what one dispatch produced for one route, parameter
// set and language.
type RenderedArtifact struct {
	Route    *RouteDescriptor
	Params   ParamSet
	Language string

	URI    string
	Status int
	Header http.Header
	Body   []byte

	// Filename is the template result, empty when the output path is
	// derived from URI.
	Filename string
}

// Redirect is one legacy path that must keep working after publishing.
type Redirect struct {
	OldPath string `yaml:"old_path"`
	NewPath string `yaml:"new_path"`
}

// PublishTarget is a named remote destination read from settings.
type PublishTarget struct {
	Name      string
	Engine    string
	PublicURL string

	// Options holds every key of the target, upper-cased. ENGINE and
	// PUBLIC_URL are included.
	Options map[string]string

	// SkipDirs names local directories that are neither uploaded nor
	// treated as orphans.
	SkipDirs []string
}
