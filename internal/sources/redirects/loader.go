package redirects

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// Loader reads redirect records from a YAML file, either a bare list of
// {old_path, new_path} mappings or a document holding that list under a
// top level "redirects" key.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

type document struct {
	Redirects []domain.Redirect `yaml:"redirects"`
}

// Load reads and validates the file.
func (l *Loader) Load() ([]domain.Redirect, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read redirects file: %w", err)
	}
	return Parse(expandTemplateVariables(data))
}

func Parse(data []byte) ([]domain.Redirect, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse redirects yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var records []domain.Redirect
	switch node := root.Content[0]; node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode redirects: %w", err)
		}
	case yaml.MappingNode:
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode redirects: %w", err)
		}
		records = doc.Redirects
	default:
		return nil, fmt.Errorf("redirects yaml must be a list or a mapping, line %d", node.Line)
	}

	for i, r := range records {
		if r.OldPath == "" || r.NewPath == "" {
			return nil, fmt.Errorf("redirect #%d needs both old_path and new_path", i+1)
		}
		if !strings.HasPrefix(r.OldPath, "/") {
			return nil, fmt.Errorf("redirect #%d: old_path %q must start with '/'", i+1, r.OldPath)
		}
	}
	return records, nil
}

var templateVariable = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// expandTemplateVariables substitutes {{NAME}} with the environment value.
// Example: {{SITE_URL}}/docs/ -> https://example.org/docs/
func expandTemplateVariables(data []byte) []byte {
	return templateVariable.ReplaceAllFunc(data, func(m []byte) []byte {
		name := templateVariable.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
