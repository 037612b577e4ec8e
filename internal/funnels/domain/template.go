package domain

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Template is a predefined funnel layout.
type Template struct {
	Key         string          `yaml:"key"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Stages      []TemplateStage `yaml:"stages"`
}

// TemplateStage seeds one stage; its order is its position in the list.
type TemplateStage struct {
	Name     string    `yaml:"name"`
	Type     StageType `yaml:"type"`
	Color    string    `yaml:"color"`
	SLAHours int       `yaml:"sla_hours"`
}

var (
	templatesOnce sync.Once
	templates     map[string]Template
	templatesErr  error
)

// Templates returns the built-in templates sorted by key.
func Templates() ([]Template, error) {
	all, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	out := make([]Template, 0, len(all))
	for _, t := range all {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// FindTemplate looks a template up by key.
func FindTemplate(key string) (Template, error) {
	all, err := loadTemplates()
	if err != nil {
		return Template{}, err
	}
	t, ok := all[key]
	if !ok {
		return Template{}, ErrTemplateNotFound
	}
	return t, nil
}

func loadTemplates() (map[string]Template, error) {
	templatesOnce.Do(func() {
		templates, templatesErr = parseTemplates()
	})
	return templates, templatesErr
}

func parseTemplates() (map[string]Template, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read funnel templates: %w", err)
	}

	out := make(map[string]Template, len(entries))
	for _, entry := range entries {
		raw, err := templateFS.ReadFile(path.Join("templates", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read funnel template %s: %w", entry.Name(), err)
		}
		var t Template
		if err := yaml.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("parse funnel template %s: %w", entry.Name(), err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("funnel template %s: %w", entry.Name(), err)
		}
		out[t.Key] = t
	}
	return out, nil
}

// Validate requires a key, at least one stage, known stage types and exactly
// one entry stage.
func (t Template) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("missing key")
	}
	if len(t.Stages) == 0 {
		return fmt.Errorf("no stages")
	}
	entries := 0
	for _, s := range t.Stages {
		if s.Name == "" {
			return fmt.Errorf("stage without name")
		}
		if !IsKnownStageType(s.Type) {
			return fmt.Errorf("stage %q has unknown type %q", s.Name, s.Type)
		}
		if s.Type == StageTypeEntry {
			entries++
		}
	}
	if entries != 1 {
		return fmt.Errorf("want exactly one entry stage, got %d", entries)
	}
	return nil
}

// StageSeeds converts the template into ordered stages. IDs and timestamps
// are filled in by storage.
func (t Template) StageSeeds() []Stage {
	out := make([]Stage, 0, len(t.Stages))
	for i, s := range t.Stages {
		color := s.Color
		if color == "" {
			color = DefaultStageColor
		}
		out = append(out, Stage{
			Name:     s.Name,
			Type:     s.Type,
			Color:    color,
			Order:    i + 1,
			IsActive: true,
			Settings: StageSettings{SLAHours: s.SLAHours},
		})
	}
	return out
}
