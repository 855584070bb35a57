// Package outreach generates three-email cold sequences for validated
// contacts, personalized from a client profile and stored research.
package outreach

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ClientProfile describes the client the outreach is written for: who
// they are, what they sell, and where each email's call to action
// should point. One YAML file per client under clients/.
type ClientProfile struct {
	Name       string   `yaml:"name"`
	Product    string   `yaml:"product"`
	Industry   string   `yaml:"industry"`
	ValueProps []string `yaml:"value_props"`

	// WebsiteURL is the CTA link for the second email; SampleURL for
	// the third. The first email always asks for a reply.
	WebsiteURL string `yaml:"website_url"`
	SampleURL  string `yaml:"sample_url"`

	// Tone holds free-form writing guidance appended to the prompt.
	Tone string `yaml:"tone,omitempty"`
}

// LoadProfile reads a client profile YAML file.
func LoadProfile(path string) (*ClientProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: read profile %s", path)
	}
	var p ClientProfile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, eris.Wrapf(err, "outreach: parse profile %s", path)
	}
	if p.Name == "" || p.Product == "" {
		return nil, eris.Errorf("outreach: profile %s missing name or product", path)
	}
	return &p, nil
}
