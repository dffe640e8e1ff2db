// Package profile holds the static portfolio content and decides which
// sections a page variant shows.
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devkumarp/portfolio/internal/tracker"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrUnknownVariant = errors.New("profile: unknown variant")

// Person is the hero and footer identity.
type Person struct {
	Name      string `yaml:"name"`
	Tagline   string `yaml:"tagline"`
	Logo      string `yaml:"logo"`
	Resume    string `yaml:"resume"`
	Email     string `yaml:"email"`
	GitHub    string `yaml:"github"`
	LinkedIn  string `yaml:"linkedin"`
	HeroImage string `yaml:"hero_image"`
}

type Highlight struct {
	Icon  string `yaml:"icon"`
	Title string `yaml:"title"`
	Desc  string `yaml:"desc"`
}

type Job struct {
	Title   string   `yaml:"title"`
	Company string   `yaml:"company"`
	Period  string   `yaml:"period"`
	Bullets []string `yaml:"bullets"`
}

type Project struct {
	Name    string   `yaml:"name"`
	Link    string   `yaml:"link"`
	Summary string   `yaml:"summary"` // markdown
	Tasks   []string `yaml:"tasks"`
}

type Certification struct {
	Name   string `yaml:"name"`
	Issuer string `yaml:"issuer"`
	Date   string `yaml:"date"`
	Link   string `yaml:"link"`
}

type School struct {
	Degree      string   `yaml:"degree"`
	Institution string   `yaml:"institution"`
	Period      string   `yaml:"period"`
	Notes       []string `yaml:"notes"`
}

type Contact struct {
	Heading string `yaml:"heading"`
	Blurb   string `yaml:"blurb"`
	Button  string `yaml:"button"`
}

// Profile is everything the page renders. It is read once at startup and
// never changes afterwards.
type Profile struct {
	Person          Person          `yaml:"person"`
	About           string          `yaml:"about"` // markdown
	Highlights      []Highlight     `yaml:"highlights"`
	Skills          []string        `yaml:"skills"`
	Experience      []Job           `yaml:"experience"`
	ProjectsHeading string          `yaml:"projects_heading"`
	ProjectsImage   string          `yaml:"projects_image"`
	Projects        []Project       `yaml:"projects"`
	Certifications  []Certification `yaml:"certifications"`
	Education       []School        `yaml:"education"`
	Contact         Contact         `yaml:"contact"`

	// Nav replaces the derived navigation when set. Entries may point at
	// sections the page does not render.
	Nav []tracker.Section `yaml:"nav"`
}

// Default returns the built-in profile.
func Default() (*Profile, error) {
	return Parse(defaultYAML)
}

// Load reads a profile from a YAML file. An empty path yields Default().
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields the page cannot do without.
func (p *Profile) Validate() error {
	if p.Person.Name == "" {
		return errors.New("person.name is required")
	}
	seen := make(map[string]bool, len(p.Projects))
	for _, proj := range p.Projects {
		if proj.Name == "" {
			return errors.New("project name is required")
		}
		if seen[proj.Name] {
			return fmt.Errorf("duplicate project %q", proj.Name)
		}
		seen[proj.Name] = true
	}
	seenNav := make(map[string]bool, len(p.Nav))
	for _, s := range p.Nav {
		if s.ID == "" || s.Label == "" {
			return errors.New("nav entries need an id and a label")
		}
		if seenNav[s.ID] {
			return fmt.Errorf("duplicate nav id %q", s.ID)
		}
		seenNav[s.ID] = true
	}
	return nil
}
