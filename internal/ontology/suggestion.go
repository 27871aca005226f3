package ontology

import (
	"fmt"
	"regexp"
	"strings"
)

var slugifyRe = regexp.MustCompile(`[^a-z0-9]+`)

// SuggestionDraft is the loosely shaped concept draft produced by an external
// assistant. The assembler normalizes it into a storable Concept without
// persisting anything.
type SuggestionDraft struct {
	ID            string              `json:"id"`
	Layer         int                 `json:"layer"`
	Label         string              `json:"label"`
	Description   string              `json:"description"`
	Abstract      bool                `json:"abstract"`
	Pillar        string              `json:"pillar"`
	Inherits      string              `json:"inherits"`
	Mixins        []string            `json:"mixins"`
	Synonyms      []string            `json:"synonyms"`
	Properties    []Property          `json:"properties"`
	Relationships []Relationship      `json:"relationships"`
	Template      *ExtractionTemplate `json:"extraction_template"`
}

// AssembledSuggestion is the dry-run outcome: the normalized payload a real
// create would accept, plus advisory warnings that do not block creation.
type AssembledSuggestion struct {
	Concept  Concept  `json:"concept"`
	Warnings []string `json:"warnings"`
}

// AssembleSuggestion validates and normalizes a draft against the snapshot.
// It surfaces exactly the ValidationError set a real create would, and never
// mutates the catalog.
func AssembleSuggestion(snap *Snapshot, draft SuggestionDraft, policy LayerPolicy) (*AssembledSuggestion, error) {
	c := Concept{
		ID:            strings.TrimSpace(draft.ID),
		Layer:         draft.Layer,
		Label:         strings.TrimSpace(draft.Label),
		Description:   draft.Description,
		Abstract:      draft.Abstract,
		Pillar:        draft.Pillar,
		Inherits:      strings.TrimSpace(draft.Inherits),
		Mixins:        draft.Mixins,
		Synonyms:      draft.Synonyms,
		Properties:    draft.Properties,
		Relationships: draft.Relationships,
		Template:      draft.Template,
	}

	if c.ID == "" && c.Label != "" {
		c.ID = Slugify(c.Label)
	}
	if c.Layer == 0 && c.Inherits != "" {
		if parent, ok := snap.concepts[c.Inherits]; ok {
			c.Layer = parent.Layer + 1
		}
	}
	normalizeConcept(&c)

	if violations := validateDraft(snap, &c, policy); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return &AssembledSuggestion{
		Concept:  c,
		Warnings: suggestionWarnings(snap, &c),
	}, nil
}

// Slugify derives a catalog id from a display label.
func Slugify(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = slugifyRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// suggestionWarnings collects advisory findings: near-duplicate labels and
// concrete concepts without classification signals. None of these block a
// create.
func suggestionWarnings(snap *Snapshot, c *Concept) []string {
	var warnings []string
	label := strings.ToLower(c.Label)

	for _, id := range snap.ids {
		existing := snap.concepts[id]
		existingLabel := strings.ToLower(existing.Label)
		if existingLabel == label {
			warnings = append(warnings, fmt.Sprintf("label is identical to existing concept %q", existing.ID))
			continue
		}
		if strings.Contains(existingLabel, label) || strings.Contains(label, existingLabel) {
			warnings = append(warnings, fmt.Sprintf("label is very similar to existing concept %q (%s)", existing.ID, existing.Label))
			continue
		}
		for _, syn := range existing.Synonyms {
			if strings.EqualFold(syn, c.Label) {
				warnings = append(warnings, fmt.Sprintf("label matches a synonym of existing concept %q", existing.ID))
				break
			}
		}
	}

	if !c.Abstract {
		if r, err := snapResolveDraft(snap, c); err == nil && r.Template.Empty() {
			warnings = append(warnings, "concrete concept has no classification signals after inheritance; it will never be a classification target")
		}
	}
	return warnings
}

// snapResolveDraft computes the draft's effective template as if it were in
// the catalog, without inserting it.
func snapResolveDraft(snap *Snapshot, c *Concept) (*Resolved, error) {
	probe := snap.withConcept(c.Clone(), snap.policy)
	return probe.Resolve(c.ID)
}
