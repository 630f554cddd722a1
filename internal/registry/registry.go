package registry

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"hawk/internal/config"
)

// Project bundles a generation target with its display metadata. Projects are
// immutable for the process lifetime.
type Project struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Model       string `yaml:"model"`
	Trigger     string `yaml:"trigger,omitempty"`
	Description string `yaml:"description,omitempty"`
}

var builtinProjects = []Project{
	{
		Slug:        "wedding-vision",
		Name:        "Wedding Vision",
		Model:       "black-forest-labs/flux-schnell",
		Trigger:     "WEDVIS",
		Description: "Dreamy wedding moodboards and venue concepts",
	},
	{
		Slug:        "latin-bible",
		Name:        "Latin Bible",
		Model:       "stability-ai/sdxl",
		Trigger:     "VULGATA",
		Description: "Illuminated manuscript scenes with Latin captions",
	},
	{
		Slug:        "dxp-albs",
		Name:        "DXP Albums",
		Model:       "black-forest-labs/flux-dev",
		Description: "Album cover art in the DXP house style",
	},
}

type Registry struct {
	projects []Project
	bySlug   map[string]Project
}

// Load returns the builtin registry, replaced by the contents of path when
// the file exists. An empty path skips the override entirely.
func Load(path string) (*Registry, error) {
	projects := builtinProjects
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			var file struct {
				Projects []Project `yaml:"projects"`
			}
			if err := yaml.Unmarshal(data, &file); err != nil {
				return nil, &config.ConfigurationError{
					Field: path,
					Msg:   fmt.Sprintf("invalid registry file: %v", err),
				}
			}
			if len(file.Projects) > 0 {
				projects = file.Projects
			}
		}
	}
	return New(projects)
}

func New(projects []Project) (*Registry, error) {
	if len(projects) == 0 {
		return nil, &config.ConfigurationError{Msg: "registry has no projects"}
	}
	bySlug := make(map[string]Project, len(projects))
	for _, p := range projects {
		if p.Slug == "" || p.Name == "" || p.Model == "" {
			return nil, &config.ConfigurationError{
				Field: p.Slug,
				Msg:   "project needs slug, name, and model",
			}
		}
		if _, dup := bySlug[p.Slug]; dup {
			return nil, &config.ConfigurationError{
				Field: p.Slug,
				Msg:   "duplicate project slug",
			}
		}
		bySlug[p.Slug] = p
	}
	ordered := append([]Project(nil), projects...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Slug < ordered[j].Slug })
	return &Registry{projects: ordered, bySlug: bySlug}, nil
}

// Lookup resolves a slug; unknown slugs are a configuration error.
func (r *Registry) Lookup(slug string) (Project, error) {
	p, ok := r.bySlug[slug]
	if !ok {
		return Project{}, &config.ConfigurationError{
			Field: slug,
			Msg:   "unknown project",
		}
	}
	return p, nil
}

// All returns projects in stable slug order.
func (r *Registry) All() []Project {
	return append([]Project(nil), r.projects...)
}

func (r *Registry) Len() int {
	return len(r.projects)
}
