package ontology

import (
	"fmt"
	"regexp"
	"strings"
)

var slugRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

const (
	cardinalityOne  = "one"
	cardinalityMany = "many"
)

// normalizeConcept trims whitespace from user-facing strings and drops empty
// template entries. It never changes identity or topology fields.
func normalizeConcept(c *Concept) {
	c.ID = strings.TrimSpace(c.ID)
	c.Label = strings.TrimSpace(c.Label)
	c.Description = strings.TrimSpace(c.Description)
	c.Pillar = strings.TrimSpace(c.Pillar)
	c.Inherits = strings.TrimSpace(c.Inherits)
	c.Synonyms = trimNonEmpty(c.Synonyms)
	c.Mixins = trimNonEmpty(c.Mixins)
	if c.Template != nil {
		c.Template.ClassificationHints = trimNonEmpty(c.Template.ClassificationHints)
		c.Template.FilePatterns = trimNonEmpty(c.Template.FilePatterns)
		if c.Template.Empty() {
			c.Template = nil
		}
	}
}

func trimNonEmpty(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateDraft checks every creation invariant against the snapshot and
// returns the full list of violations, not just the first.
func validateDraft(snap *Snapshot, c *Concept, policy LayerPolicy) []string {
	var v []string

	if c.ID == "" {
		v = append(v, "id is required")
	} else if !slugRe.MatchString(c.ID) {
		v = append(v, fmt.Sprintf("id %q is not a valid slug (lowercase letters, digits, '_', '-')", c.ID))
	}
	if _, exists := snap.concepts[c.ID]; exists && c.ID != "" {
		v = append(v, fmt.Sprintf("id %q already exists", c.ID))
	}
	if c.Label == "" {
		v = append(v, "label is required")
	}
	if c.Layer < 1 {
		v = append(v, fmt.Sprintf("layer must be >= 1, got %d", c.Layer))
	}

	v = append(v, validateTopology(snap, c, policy)...)
	v = append(v, validateLists(snap, c)...)
	return v
}

// validateUpdated re-checks the invariants an update can break: referential
// integrity of relationship targets and name uniqueness within the concept's
// own lists. Topology is immutable post-creation so the full-catalog checks
// are skipped.
func validateUpdated(snap *Snapshot, c *Concept) []string {
	var v []string
	if c.Label == "" {
		v = append(v, "label is required")
	}
	v = append(v, validateLists(snap, c)...)
	return v
}

func validateTopology(snap *Snapshot, c *Concept, policy LayerPolicy) []string {
	var v []string

	if c.Inherits == "" {
		if !c.Abstract {
			v = append(v, "root concepts (no inherits) must be abstract")
		}
	} else {
		parent, ok := snap.concepts[c.Inherits]
		switch {
		case c.Inherits == c.ID:
			v = append(v, fmt.Sprintf("concept %q cannot inherit from itself", c.ID))
		case !ok:
			v = append(v, fmt.Sprintf("inherits references unknown concept %q", c.Inherits))
		case policy == LayerPolicyStrict && parent.Layer >= c.Layer:
			v = append(v, fmt.Sprintf("parent %q layer %d must be less than child layer %d", parent.ID, parent.Layer, c.Layer))
		case policy == LayerPolicyAllowEqual && parent.Layer > c.Layer:
			v = append(v, fmt.Sprintf("parent %q layer %d must not exceed child layer %d", parent.ID, parent.Layer, c.Layer))
		}
	}

	seen := make(map[string]bool, len(c.Mixins))
	for _, m := range c.Mixins {
		if m == c.ID {
			v = append(v, fmt.Sprintf("concept %q cannot mix in itself", c.ID))
			continue
		}
		if seen[m] {
			v = append(v, fmt.Sprintf("duplicate mixin %q", m))
			continue
		}
		seen[m] = true
		if _, ok := snap.concepts[m]; !ok {
			v = append(v, fmt.Sprintf("mixin references unknown concept %q", m))
		}
	}

	if path := detectCycle(snap, c); len(path) > 0 {
		v = append(v, fmt.Sprintf("inheritance cycle: %s", strings.Join(path, " -> ")))
	}
	return v
}

// detectCycle walks the inherits and mixin edges upward from the draft and
// reports a path back to the draft's own id if one exists. Existing concepts
// are already acyclic among themselves, so reaching the draft id is the only
// way a new edge set can close a cycle.
func detectCycle(snap *Snapshot, c *Concept) []string {
	starts := make([]string, 0, len(c.Mixins)+1)
	if c.Inherits != "" && c.Inherits != c.ID {
		starts = append(starts, c.Inherits)
	}
	starts = append(starts, c.Mixins...)

	for _, start := range starts {
		visited := map[string]bool{}
		if path := walkToTarget(snap, start, c.ID, visited, []string{c.ID}); path != nil {
			return path
		}
	}
	return nil
}

func walkToTarget(snap *Snapshot, cur, target string, visited map[string]bool, path []string) []string {
	if cur == target {
		return append(path, cur)
	}
	if visited[cur] {
		return nil
	}
	visited[cur] = true
	c, ok := snap.concepts[cur]
	if !ok {
		return nil
	}
	path = append(path, cur)
	if c.Inherits != "" {
		if found := walkToTarget(snap, c.Inherits, target, visited, path); found != nil {
			return found
		}
	}
	for _, m := range c.Mixins {
		if found := walkToTarget(snap, m, target, visited, path); found != nil {
			return found
		}
	}
	return nil
}

func validateLists(snap *Snapshot, c *Concept) []string {
	var v []string

	names := make(map[string]bool, len(c.Properties))
	for _, p := range c.Properties {
		if p.Name == "" {
			v = append(v, "property name is required")
			continue
		}
		if names[p.Name] {
			v = append(v, fmt.Sprintf("duplicate property name %q", p.Name))
		}
		names[p.Name] = true
		if !p.Type.Valid() {
			v = append(v, fmt.Sprintf("property %q has unknown type %q", p.Name, p.Type))
		}
		if p.Default != nil && p.Type.Valid() && p.Default.Kind != p.Type {
			v = append(v, fmt.Sprintf("property %q default value kind %q does not match declared type %q", p.Name, p.Default.Kind, p.Type))
		}
	}

	relNames := make(map[string]bool, len(c.Relationships))
	for _, r := range c.Relationships {
		if r.Name == "" {
			v = append(v, "relationship name is required")
			continue
		}
		if relNames[r.Name] {
			v = append(v, fmt.Sprintf("duplicate relationship name %q", r.Name))
		}
		relNames[r.Name] = true
		if r.Target == "" {
			v = append(v, fmt.Sprintf("relationship %q has no target", r.Name))
		} else if r.Target != c.ID {
			if _, ok := snap.concepts[r.Target]; !ok {
				v = append(v, fmt.Sprintf("relationship %q targets unknown concept %q", r.Name, r.Target))
			}
		}
		if r.Cardinality != "" && r.Cardinality != cardinalityOne && r.Cardinality != cardinalityMany {
			v = append(v, fmt.Sprintf("relationship %q has invalid cardinality %q", r.Name, r.Cardinality))
		}
	}
	return v
}

// validateExisting runs the full invariant set for a concept already in the
// snapshot, used when installing a persisted catalog wholesale.
func validateExisting(snap *Snapshot, c *Concept, policy LayerPolicy) []string {
	var v []string
	if c.ID == "" || !slugRe.MatchString(c.ID) {
		v = append(v, fmt.Sprintf("id %q is not a valid slug", c.ID))
	}
	if c.Label == "" {
		v = append(v, fmt.Sprintf("concept %q has no label", c.ID))
	}
	if c.Layer < 1 {
		v = append(v, fmt.Sprintf("concept %q layer must be >= 1, got %d", c.ID, c.Layer))
	}
	v = append(v, validateTopology(snap, c, policy)...)
	v = append(v, prefixViolations(c.ID, validateLists(snap, c))...)
	return v
}

func prefixViolations(id string, violations []string) []string {
	out := make([]string, len(violations))
	for i, s := range violations {
		out[i] = fmt.Sprintf("concept %q: %s", id, s)
	}
	return out
}
