package types

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/veridoc/ontology-backend/internal/ontology"
)

// ConceptRecord is the persisted form of one ontology concept: a row per
// concept id with the list-shaped fields stored as JSON columns.
type ConceptRecord struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Layer       int    `gorm:"column:layer;not null;index" json:"layer"`
	Label       string `gorm:"column:label;not null" json:"label"`
	Description string `gorm:"column:description" json:"description"`
	Abstract    bool   `gorm:"column:abstract;not null;default:false" json:"abstract"`
	Pillar      string `gorm:"column:pillar;index" json:"pillar"`
	Inherits    string `gorm:"column:inherits;index" json:"inherits"`

	Mixins        datatypes.JSON `gorm:"column:mixins;type:jsonb" json:"mixins"`                 // []string
	Synonyms      datatypes.JSON `gorm:"column:synonyms;type:jsonb" json:"synonyms"`             // []string
	Properties    datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties"`         // []ontology.Property
	Relationships datatypes.JSON `gorm:"column:relationships;type:jsonb" json:"relationships"`   // []ontology.Relationship
	Template      datatypes.JSON `gorm:"column:extraction_template;type:jsonb" json:"template"`  // *ontology.ExtractionTemplate

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ConceptRecord) TableName() string { return "concept" }

// FromConcept flattens an engine concept into its persisted row.
func FromConcept(c *ontology.Concept) (*ConceptRecord, error) {
	rec := &ConceptRecord{
		ID:          c.ID,
		Layer:       c.Layer,
		Label:       c.Label,
		Description: c.Description,
		Abstract:    c.Abstract,
		Pillar:      c.Pillar,
		Inherits:    c.Inherits,
	}
	var err error
	if rec.Mixins, err = marshalJSON(c.Mixins); err != nil {
		return nil, err
	}
	if rec.Synonyms, err = marshalJSON(c.Synonyms); err != nil {
		return nil, err
	}
	if rec.Properties, err = marshalJSON(c.Properties); err != nil {
		return nil, err
	}
	if rec.Relationships, err = marshalJSON(c.Relationships); err != nil {
		return nil, err
	}
	if c.Template != nil {
		if rec.Template, err = marshalJSON(c.Template); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// ToConcept rebuilds the engine concept from a persisted row.
func (r *ConceptRecord) ToConcept() (*ontology.Concept, error) {
	c := &ontology.Concept{
		ID:          r.ID,
		Layer:       r.Layer,
		Label:       r.Label,
		Description: r.Description,
		Abstract:    r.Abstract,
		Pillar:      r.Pillar,
		Inherits:    r.Inherits,
	}
	if err := unmarshalJSON(r.Mixins, &c.Mixins); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(r.Synonyms, &c.Synonyms); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(r.Properties, &c.Properties); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(r.Relationships, &c.Relationships); err != nil {
		return nil, err
	}
	if len(r.Template) > 0 {
		var tpl ontology.ExtractionTemplate
		if err := json.Unmarshal(r.Template, &tpl); err != nil {
			return nil, err
		}
		c.Template = &tpl
	}
	return c, nil
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalJSON(data datatypes.JSON, out interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
