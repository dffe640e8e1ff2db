package profile

import (
	"fmt"
	"sort"

	"github.com/devkumarp/portfolio/internal/tracker"
)

// Section ids double as element ids on the page.
const (
	SectionHero       = "hero"
	SectionAbout      = "about"
	SectionSkills     = "skills"
	SectionExperience = "experience"
	SectionProjects   = "projects"
	SectionCerts      = "certs"
	SectionEducation  = "education"
	SectionContact    = "contact"
)

// Features switches the optional parts of the page on.
type Features struct {
	Resume      bool `json:"resume"`
	MobileMenu  bool `json:"mobile_menu"`
	Credentials bool `json:"credentials"` // certifications and education blocks
}

var presets = map[string]Features{
	"essential": {},
	"resume":    {Resume: true, MobileMenu: true},
	"complete":  {Resume: true, MobileMenu: true, Credentials: true},
}

// PresetFeatures returns the feature set of a named variant.
func PresetFeatures(variant string) (Features, error) {
	f, ok := presets[variant]
	if !ok {
		return Features{}, fmt.Errorf("%w %q", ErrUnknownVariant, variant)
	}
	return f, nil
}

// Variants lists the preset names in sorted order.
func Variants() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sections is the ordered navigation list for the given features.
func (p *Profile) Sections(f Features) []tracker.Section {
	if len(p.Nav) > 0 {
		return append([]tracker.Section(nil), p.Nav...)
	}
	sections := []tracker.Section{
		{ID: SectionAbout, Label: "About"},
		{ID: SectionSkills, Label: "Skills"},
		{ID: SectionExperience, Label: "Experience"},
		{ID: SectionProjects, Label: "Projects"},
	}
	if f.Credentials {
		sections = append(sections,
			tracker.Section{ID: SectionCerts, Label: "Certifications"},
			tracker.Section{ID: SectionEducation, Label: "Education"},
		)
	}
	return append(sections, tracker.Section{ID: SectionContact, Label: "Contact"})
}

// Anchors is the set of element ids the page renders for the given features.
func (p *Profile) Anchors(f Features) tracker.AnchorSet {
	ids := []string{SectionHero, SectionAbout, SectionSkills, SectionExperience, SectionProjects, SectionContact}
	if f.Credentials {
		ids = append(ids, SectionCerts, SectionEducation)
	}
	return tracker.NewAnchorSet(ids...)
}
