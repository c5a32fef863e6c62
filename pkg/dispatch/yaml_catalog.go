package dispatch

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/notifykit/pkg/channel"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// Catalog is a read-only TemplateStore loaded from a YAML file. It suits
// deployments that version their templates alongside configuration instead
// of a database.
type Catalog struct {
	templates map[string]channel.Template
}

type catalogFile struct {
	Templates []catalogEntry `yaml:"templates"`
}

type catalogEntry struct {
	ID        string         `yaml:"id"`
	Channel   string         `yaml:"channel"`
	Subject   string         `yaml:"subject"`
	Body      string         `yaml:"body"`
	Variables []string       `yaml:"variables"`
	Metadata  map[string]any `yaml:"metadata"`
	Active    *bool          `yaml:"active"`
}

// LoadCatalog reads and validates a YAML template catalog. Every body and
// subject must pass static template validation; a catalog with one broken
// template is rejected whole.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dispatch: read template catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog builds a catalog from raw YAML bytes.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("dispatch: parse template catalog: %w", err)
	}

	templates := make(map[string]channel.Template, len(file.Templates))
	for _, entry := range file.Templates {
		if entry.ID == "" {
			return nil, fmt.Errorf("dispatch: catalog entry without id")
		}
		if _, exists := templates[entry.ID]; exists {
			return nil, fmt.Errorf("dispatch: duplicate template id %q in catalog", entry.ID)
		}
		ch := channel.Channel(entry.Channel)
		if !ch.Valid() {
			return nil, fmt.Errorf("dispatch: template %q has unknown channel %q", entry.ID, entry.Channel)
		}
		if err := template.Validate(entry.Body); err != nil {
			return nil, fmt.Errorf("dispatch: template %q body: %w", entry.ID, err)
		}
		if entry.Subject != "" {
			if err := template.Validate(entry.Subject); err != nil {
				return nil, fmt.Errorf("dispatch: template %q subject: %w", entry.ID, err)
			}
		}

		// Templates are active unless the catalog says otherwise.
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		templates[entry.ID] = channel.Template{
			ID:        entry.ID,
			Channel:   ch,
			Subject:   entry.Subject,
			Body:      entry.Body,
			Variables: entry.Variables,
			Metadata:  entry.Metadata,
			Active:    active,
		}
	}
	return &Catalog{templates: templates}, nil
}

// Len returns the number of templates in the catalog.
func (c *Catalog) Len() int { return len(c.templates) }

func (c *Catalog) GetTemplate(_ context.Context, id string) (channel.Template, error) {
	tmpl, exists := c.templates[id]
	if !exists {
		return channel.Template{}, ErrTemplateNotFound
	}
	return tmpl, nil
}
