// Package agent provides sub-agent delegation: a persona catalog, a prompt
// router, delegation helpers exposed as tools, and the pipeline that plans
// and executes a delegated prompt as its own workflow run.
package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona is a named delegate agent. SystemPrompt is prefixed onto delegated
// prompts so the sub-agent plans in character.
type Persona struct {
	Name         string `yaml:"name" json:"name"`
	Description  string `yaml:"description" json:"description"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
}

// Catalog holds the available personas in declaration order.
type Catalog struct {
	personas map[string]Persona
	order    []string
}

// catalogFile is the YAML document shape.
type catalogFile struct {
	Agents []Persona `yaml:"agents"`
}

// NewCatalog builds a catalog from personas. Later duplicates overwrite.
func NewCatalog(personas []Persona) *Catalog {
	c := &Catalog{personas: make(map[string]Persona, len(personas))}
	for _, p := range personas {
		if _, exists := c.personas[p.Name]; !exists {
			c.order = append(c.order, p.Name)
		}
		c.personas[p.Name] = p
	}
	return c
}

// LoadCatalog reads a YAML persona file:
//
//	agents:
//	  - name: calculator
//	    description: ...
//	    system_prompt: ...
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent catalog: read %s: %w", path, err)
	}
	var doc catalogFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("agent catalog: parse %s: %w", path, err)
	}
	if len(doc.Agents) == 0 {
		return nil, fmt.Errorf("agent catalog: %s declares no agents", path)
	}
	for _, p := range doc.Agents {
		if p.Name == "" {
			return nil, fmt.Errorf("agent catalog: %s has an agent with no name", path)
		}
	}
	return NewCatalog(doc.Agents), nil
}

// DefaultCatalog returns the built-in personas used when no catalog file is
// configured.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Persona{
		{
			Name:         "calculator",
			Description:  "Evaluates arithmetic and numeric questions.",
			SystemPrompt: "You are a careful calculator. Reduce the request to arithmetic steps and compute them.",
		},
		{
			Name:         "researcher",
			Description:  "Gathers and structures factual information.",
			SystemPrompt: "You are a researcher. Break the request into lookup steps and collect concise findings.",
		},
		{
			Name:         "summarizer",
			Description:  "Condenses text into its key points.",
			SystemPrompt: "You are a summarizer. Reduce the input to its essential points without losing meaning.",
		},
	})
}

// Get returns the persona for name.
func (c *Catalog) Get(name string) (Persona, bool) {
	p, ok := c.personas[name]
	return p, ok
}

// Names returns persona names in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
