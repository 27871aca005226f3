package services

import (
	"github.com/veridoc/ontology-backend/internal/ontology"
)

// ConceptSummary is the listing/search shape: enough to render a row without
// resolving the full schema.
type ConceptSummary struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Layer    int    `json:"layer"`
	Abstract bool   `json:"abstract"`
	Pillar   string `json:"pillar,omitempty"`
	Inherits string `json:"inherits,omitempty"`
}

// ConceptDetail is the full read shape: the stored concept plus its resolved
// ancestors, effective schema, and provenance groups.
type ConceptDetail struct {
	Concept                *ontology.Concept           `json:"concept"`
	Pillar                 string                      `json:"pillar,omitempty"`
	Ancestors              []ConceptSummary            `json:"ancestors"`
	EffectiveProperties    []ontology.Property         `json:"effective_properties"`
	EffectiveRelationships []ontology.Relationship     `json:"effective_relationships"`
	EffectiveTemplate      ontology.ExtractionTemplate `json:"effective_template"`
	InheritedGroups        []InheritedGroup            `json:"inherited_properties"`
}

// InheritedGroup mirrors ontology.InheritedGroup with wire tags.
type InheritedGroup struct {
	SourceID      string                  `json:"source_id"`
	SourceLabel   string                  `json:"source_label"`
	SourceLayer   int                     `json:"source_layer"`
	Properties    []ontology.Property     `json:"properties,omitempty"`
	Relationships []ontology.Relationship `json:"relationships,omitempty"`
}

func summarize(snap *ontology.Snapshot, c *ontology.Concept) ConceptSummary {
	return ConceptSummary{
		ID:       c.ID,
		Label:    c.Label,
		Layer:    c.Layer,
		Abstract: c.Abstract,
		Pillar:   snap.PillarOf(c.ID),
		Inherits: c.Inherits,
	}
}

func newConceptDetail(snap *ontology.Snapshot, r *ontology.Resolved) *ConceptDetail {
	detail := &ConceptDetail{
		Concept:                r.Concept,
		Pillar:                 snap.PillarOf(r.Concept.ID),
		Ancestors:              make([]ConceptSummary, 0, len(r.Ancestors)),
		EffectiveProperties:    r.Properties,
		EffectiveRelationships: r.Relationships,
		EffectiveTemplate:      r.Template,
		InheritedGroups:        make([]InheritedGroup, 0, len(r.Groups)),
	}
	for _, a := range r.Ancestors {
		detail.Ancestors = append(detail.Ancestors, summarize(snap, a))
	}
	for _, g := range r.Groups {
		detail.InheritedGroups = append(detail.InheritedGroups, InheritedGroup{
			SourceID:      g.SourceID,
			SourceLabel:   g.SourceLabel,
			SourceLayer:   g.SourceLayer,
			Properties:    g.Properties,
			Relationships: g.Relationships,
		})
	}
	return detail
}
