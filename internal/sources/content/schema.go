package content

// File is the top-level structure of content.yaml.
type File struct {
	SiteName string      `yaml:"site_name"`
	Pages    []EntryYAML `yaml:"pages"`
	Posts    []EntryYAML `yaml:"posts"`
}

// EntryYAML is one page or post as written in the file.
type EntryYAML struct {
	Slug      string   `yaml:"slug"`
	Title     string   `yaml:"title"`
	Summary   string   `yaml:"summary,omitempty"`
	Body      string   `yaml:"body"`
	Published string   `yaml:"published,omitempty"` // YYYY-MM-DD
	Tags      []string `yaml:"tags,omitempty"`
	Draft     bool     `yaml:"draft,omitempty"`
}
