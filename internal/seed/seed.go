// Package seed loads a starter ontology from a YAML file so a fresh
// deployment has a catalog before anyone creates concepts by hand.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/veridoc/ontology-backend/internal/ontology"
)

type file struct {
	Concepts []concept `yaml:"concepts"`
}

type concept struct {
	ID            string         `yaml:"id"`
	Layer         int            `yaml:"layer"`
	Label         string         `yaml:"label"`
	Description   string         `yaml:"description"`
	Abstract      bool           `yaml:"abstract"`
	Pillar        string         `yaml:"pillar"`
	Inherits      string         `yaml:"inherits"`
	Mixins        []string       `yaml:"mixins"`
	Synonyms      []string       `yaml:"synonyms"`
	Properties    []property     `yaml:"properties"`
	Relationships []relationship `yaml:"relationships"`
	Template      *template      `yaml:"extraction_template"`
}

type property struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	Required    bool        `yaml:"required"`
	Default     interface{} `yaml:"default_value"`
	Description string      `yaml:"description"`
}

type relationship struct {
	Name        string `yaml:"name"`
	Target      string `yaml:"target"`
	Cardinality string `yaml:"cardinality"`
	Inverse     string `yaml:"inverse"`
	Description string `yaml:"description"`
}

type template struct {
	ClassificationHints []string `yaml:"classification_hints"`
	FilePatterns        []string `yaml:"file_patterns"`
}

// Load parses a seed file into engine concepts. Validation is left to the
// store, which checks the catalog as a unit on Replace.
func Load(path string) ([]*ontology.Concept, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]*ontology.Concept, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	out := make([]*ontology.Concept, 0, len(f.Concepts))
	for _, sc := range f.Concepts {
		c, err := sc.toConcept()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (sc concept) toConcept() (*ontology.Concept, error) {
	c := &ontology.Concept{
		ID:          sc.ID,
		Layer:       sc.Layer,
		Label:       sc.Label,
		Description: sc.Description,
		Abstract:    sc.Abstract,
		Pillar:      sc.Pillar,
		Inherits:    sc.Inherits,
		Mixins:      sc.Mixins,
		Synonyms:    sc.Synonyms,
	}
	for _, p := range sc.Properties {
		prop := ontology.Property{
			Name:        p.Name,
			Type:        ontology.PropertyType(p.Type),
			Required:    p.Required,
			Description: p.Description,
		}
		if p.Default != nil {
			v, err := toValue(p.Default)
			if err != nil {
				return nil, fmt.Errorf("concept %q property %q: %w", sc.ID, p.Name, err)
			}
			prop.Default = v
		}
		c.Properties = append(c.Properties, prop)
	}
	for _, r := range sc.Relationships {
		c.Relationships = append(c.Relationships, ontology.Relationship{
			Name:        r.Name,
			Target:      r.Target,
			Cardinality: r.Cardinality,
			Inverse:     r.Inverse,
			Description: r.Description,
		})
	}
	if sc.Template != nil {
		c.Template = &ontology.ExtractionTemplate{
			ClassificationHints: sc.Template.ClassificationHints,
			FilePatterns:        sc.Template.FilePatterns,
		}
	}
	return c, nil
}

func toValue(raw interface{}) (*ontology.Value, error) {
	switch x := raw.(type) {
	case string:
		return ontology.StringValue(x), nil
	case int:
		return ontology.NumberValue(float64(x)), nil
	case float64:
		return ontology.NumberValue(x), nil
	case bool:
		return ontology.BoolValue(x), nil
	case []interface{}:
		list := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("default list element %v is not a string", e)
			}
			list = append(list, s)
		}
		return ontology.ListValue(list), nil
	default:
		return nil, fmt.Errorf("unsupported default value %v (%T)", raw, raw)
	}
}
