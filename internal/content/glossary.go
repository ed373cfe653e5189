package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Technique is one of the five empathic communication techniques.
type Technique struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Example     string `yaml:"example" json:"example"`
	WhenToUse   string `yaml:"when_to_use" json:"when_to_use"`
}

// Distortion is a cognitive distortion with a reframing question.
type Distortion struct {
	ID              string `yaml:"id" json:"id"`
	Name            string `yaml:"name" json:"name"`
	Description     string `yaml:"description" json:"description"`
	Example         string `yaml:"example" json:"example"`
	ReframeQuestion string `yaml:"reframe_question" json:"reframe_question"`
}

// GlossaryData is the reference material exposed to hosts.
type GlossaryData struct {
	Techniques  []Technique  `yaml:"techniques" json:"techniques"`
	Distortions []Distortion `yaml:"distortions" json:"distortions"`
}

//go:embed glossary.yaml
var glossaryYAML []byte

// Glossary decodes the embedded glossary.
func Glossary() (*GlossaryData, error) {
	var g GlossaryData
	if err := yaml.Unmarshal(glossaryYAML, &g); err != nil {
		return nil, fmt.Errorf("parsing glossary: %w", err)
	}
	return &g, nil
}

// Distortion looks up a cognitive distortion by id.
func (g *GlossaryData) Distortion(id string) (Distortion, bool) {
	for _, d := range g.Distortions {
		if d.ID == id {
			return d, true
		}
	}
	return Distortion{}, false
}
