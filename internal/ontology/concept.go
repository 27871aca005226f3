// Package ontology implements the concept hierarchy engine: a typed catalog
// of concepts organized into layers, related by single inheritance plus
// mixins, with inheritance resolution, tree projection, and deterministic
// document classification against extraction templates.
package ontology

import (
	"encoding/json"
	"fmt"
)

// PropertyType enumerates the scalar kinds a concept property can declare.
type PropertyType string

const (
	TypeString     PropertyType = "string"
	TypeNumber     PropertyType = "number"
	TypeBoolean    PropertyType = "boolean"
	TypeStringList PropertyType = "string_list"
)

func (t PropertyType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeStringList:
		return true
	default:
		return false
	}
}

// Value is a tagged variant over the property scalar kinds. Exactly one of
// the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind PropertyType `json:"kind"`
	Str  string       `json:"str,omitempty"`
	Num  float64      `json:"num,omitempty"`
	Bool bool         `json:"bool,omitempty"`
	List []string     `json:"list,omitempty"`
}

func StringValue(s string) *Value  { return &Value{Kind: TypeString, Str: s} }
func NumberValue(n float64) *Value { return &Value{Kind: TypeNumber, Num: n} }
func BoolValue(b bool) *Value      { return &Value{Kind: TypeBoolean, Bool: b} }
func ListValue(l []string) *Value  { return &Value{Kind: TypeStringList, List: l} }

// UnmarshalJSON accepts either the tagged form or a bare JSON scalar/array,
// so drafts arriving from loosely typed producers still parse.
func (v *Value) UnmarshalJSON(data []byte) error {
	type tagged Value
	var tv tagged
	if err := json.Unmarshal(data, &tv); err == nil && tv.Kind != "" {
		*v = Value(tv)
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = Value{Kind: TypeString, Str: x}
	case float64:
		*v = Value{Kind: TypeNumber, Num: x}
	case bool:
		*v = Value{Kind: TypeBoolean, Bool: x}
	case []interface{}:
		list := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("value list element %v is not a string", e)
			}
			list = append(list, s)
		}
		*v = Value{Kind: TypeStringList, List: list}
	default:
		return fmt.Errorf("unsupported value payload %T", raw)
	}
	return nil
}

// Property is one declared attribute on a concept.
type Property struct {
	Name        string       `json:"name"`
	Type        PropertyType `json:"type"`
	Required    bool         `json:"required"`
	Default     *Value       `json:"default_value,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Relationship is a named, directed link from a concept to a target concept.
type Relationship struct {
	Name        string `json:"name"`
	Target      string `json:"target"`
	Cardinality string `json:"cardinality,omitempty"`
	Inverse     string `json:"inverse,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExtractionTemplate carries the deterministic classification signals for a
// concept: keyword phrases matched against document text and glob patterns
// matched against filenames.
type ExtractionTemplate struct {
	ClassificationHints []string `json:"classification_hints,omitempty"`
	FilePatterns        []string `json:"file_patterns,omitempty"`
}

func (t *ExtractionTemplate) Empty() bool {
	return t == nil || (len(t.ClassificationHints) == 0 && len(t.FilePatterns) == 0)
}

// Concept is a node in the ontology. ID, Layer, Inherits, and Mixins are
// fixed at creation; everything else is mutable through the store.
type Concept struct {
	ID            string              `json:"id"`
	Layer         int                 `json:"layer"`
	Label         string              `json:"label"`
	Description   string              `json:"description,omitempty"`
	Abstract      bool                `json:"abstract"`
	Pillar        string              `json:"pillar,omitempty"`
	Inherits      string              `json:"inherits,omitempty"`
	Mixins        []string            `json:"mixins,omitempty"`
	Synonyms      []string            `json:"synonyms,omitempty"`
	Properties    []Property          `json:"properties,omitempty"`
	Relationships []Relationship      `json:"relationships,omitempty"`
	Template      *ExtractionTemplate `json:"extraction_template,omitempty"`
}

// Clone returns a deep copy. Snapshots hand out concept pointers that must
// never be mutated, so every write path works on a clone.
func (c *Concept) Clone() *Concept {
	if c == nil {
		return nil
	}
	out := *c
	out.Mixins = append([]string(nil), c.Mixins...)
	out.Synonyms = append([]string(nil), c.Synonyms...)
	out.Properties = cloneProperties(c.Properties)
	out.Relationships = append([]Relationship(nil), c.Relationships...)
	if c.Template != nil {
		out.Template = &ExtractionTemplate{
			ClassificationHints: append([]string(nil), c.Template.ClassificationHints...),
			FilePatterns:        append([]string(nil), c.Template.FilePatterns...),
		}
	}
	return &out
}

func cloneProperties(props []Property) []Property {
	if props == nil {
		return nil
	}
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = p
		if p.Default != nil {
			d := *p.Default
			d.List = append([]string(nil), p.Default.List...)
			out[i].Default = &d
		}
	}
	return out
}

// LayerPolicy controls how layer ordinals must relate along inherits edges.
type LayerPolicy int

const (
	// LayerPolicyStrict requires parent.Layer < child.Layer.
	LayerPolicyStrict LayerPolicy = iota
	// LayerPolicyAllowEqual permits parent.Layer == child.Layer.
	LayerPolicyAllowEqual
)

func ParseLayerPolicy(s string) LayerPolicy {
	if s == "allow_equal" {
		return LayerPolicyAllowEqual
	}
	return LayerPolicyStrict
}
