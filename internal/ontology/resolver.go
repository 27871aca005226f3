package ontology

const maxChainDepth = 64

// Resolved is the effective view of a concept after inheritance resolution:
// the ordered ancestor chain, the merged property/relationship set, the
// unioned extraction template, and per-source provenance groups.
type Resolved struct {
	Concept       *Concept
	Ancestors     []*Concept // root -> parent, excludes the concept itself
	Properties    []Property
	Relationships []Relationship
	Template      ExtractionTemplate
	Groups        []InheritedGroup
}

// InheritedGroup tags the surviving properties and relationships contributed
// by one source in the merge order, so callers can display provenance.
type InheritedGroup struct {
	SourceID      string
	SourceLabel   string
	SourceLayer   int
	Properties    []Property
	Relationships []Relationship
}

// Ancestors returns the inherits chain root -> parent for the given concept.
// The chain is bounded defensively: a repeated id means the stored catalog is
// corrupt and resolution fails with CycleError instead of looping.
func (s *Snapshot) Ancestors(id string) ([]*Concept, error) {
	c, ok := s.concepts[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	var chain []*Concept
	seen := map[string]bool{id: true}
	for cur := c.Inherits; cur != ""; {
		if seen[cur] || len(chain) >= maxChainDepth {
			return nil, &CycleError{Path: chainPath(id, chain, cur)}
		}
		seen[cur] = true
		parent, ok := s.concepts[cur]
		if !ok {
			return nil, &NotFoundError{ID: cur}
		}
		chain = append(chain, parent)
		cur = parent.Inherits
	}
	// reverse: collected parent -> root, callers want root -> parent
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func chainPath(id string, chain []*Concept, repeat string) []string {
	path := []string{id}
	for _, c := range chain {
		path = append(path, c.ID)
	}
	return append(path, repeat)
}

// Resolve computes the effective schema of a concept. Results are memoized on
// the snapshot; mutation publishes a fresh snapshot, which discards the cache
// wholesale.
func (s *Snapshot) Resolve(id string) (*Resolved, error) {
	s.resolveMu.Lock()
	if r, ok := s.resolved[id]; ok {
		s.resolveMu.Unlock()
		return r, nil
	}
	s.resolveMu.Unlock()

	r, err := s.resolve(id, map[string]bool{}, nil)
	if err != nil {
		return nil, err
	}

	s.resolveMu.Lock()
	s.resolved[id] = r
	s.resolveMu.Unlock()
	return r, nil
}

// mergeSource is one contributor in the merge order.
type mergeSource struct {
	concept       *Concept
	properties    []Property
	relationships []Relationship
	template      *ExtractionTemplate
}

// resolve builds the merge order and folds it into the effective schema.
// Merge order: ancestor chain root -> parent (each contributing its declared
// schema), then each mixin's own resolved schema flattened in listed order,
// then the concept's own declarations. Later sources override earlier ones on
// property/relationship name collisions; templates union instead.
func (s *Snapshot) resolve(id string, inFlight map[string]bool, trail []string) (*Resolved, error) {
	if inFlight[id] {
		path := append(append([]string(nil), trail...), id)
		return nil, &CycleError{Path: path}
	}
	inFlight[id] = true
	defer delete(inFlight, id)
	trail = append(trail, id)

	c, ok := s.concepts[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	ancestors, err := s.Ancestors(id)
	if err != nil {
		return nil, err
	}

	sources := make([]mergeSource, 0, len(ancestors)+len(c.Mixins)+1)
	for _, a := range ancestors {
		sources = append(sources, mergeSource{
			concept:       a,
			properties:    a.Properties,
			relationships: a.Relationships,
			template:      a.Template,
		})
	}
	for _, m := range c.Mixins {
		mr, err := s.resolve(m, inFlight, trail)
		if err != nil {
			return nil, err
		}
		sources = append(sources, mergeSource{
			concept:       mr.Concept,
			properties:    mr.Properties,
			relationships: mr.Relationships,
			template:      &mr.Template,
		})
	}
	sources = append(sources, mergeSource{
		concept:       c,
		properties:    c.Properties,
		relationships: c.Relationships,
		template:      c.Template,
	})

	return &Resolved{
		Concept:       c,
		Ancestors:     ancestors,
		Properties:    mergedProperties(sources),
		Relationships: mergedRelationships(sources),
		Template:      unionTemplate(sources),
		Groups:        provenanceGroups(sources),
	}, nil
}

// mergedProperties keeps first-seen order for names and the last-seen entry's
// content: the source closest to the target concept wins on collision.
func mergedProperties(sources []mergeSource) []Property {
	var order []string
	byName := map[string]Property{}
	for _, src := range sources {
		for _, p := range src.properties {
			if _, seen := byName[p.Name]; !seen {
				order = append(order, p.Name)
			}
			byName[p.Name] = p
		}
	}
	out := make([]Property, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

func mergedRelationships(sources []mergeSource) []Relationship {
	var order []string
	byName := map[string]Relationship{}
	for _, src := range sources {
		for _, r := range src.relationships {
			if _, seen := byName[r.Name]; !seen {
				order = append(order, r.Name)
			}
			byName[r.Name] = r
		}
	}
	out := make([]Relationship, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

// unionTemplate accumulates hints and file patterns across the whole merge
// order. Inherited classification signals add up rather than replace.
func unionTemplate(sources []mergeSource) ExtractionTemplate {
	var out ExtractionTemplate
	seenHints := map[string]bool{}
	seenPatterns := map[string]bool{}
	for _, src := range sources {
		if src.template == nil {
			continue
		}
		for _, h := range src.template.ClassificationHints {
			if !seenHints[h] {
				seenHints[h] = true
				out.ClassificationHints = append(out.ClassificationHints, h)
			}
		}
		for _, p := range src.template.FilePatterns {
			if !seenPatterns[p] {
				seenPatterns[p] = true
				out.FilePatterns = append(out.FilePatterns, p)
			}
		}
	}
	return out
}

// provenanceGroups reports, per merge-order source, the entries of that
// source that survived the merge (were not overridden by a later source).
func provenanceGroups(sources []mergeSource) []InheritedGroup {
	winner := map[string]int{}    // property name -> source index
	relWinner := map[string]int{} // relationship name -> source index
	for i, src := range sources {
		for _, p := range src.properties {
			winner[p.Name] = i
		}
		for _, r := range src.relationships {
			relWinner[r.Name] = i
		}
	}

	var groups []InheritedGroup
	for i, src := range sources {
		g := InheritedGroup{
			SourceID:    src.concept.ID,
			SourceLabel: src.concept.Label,
			SourceLayer: src.concept.Layer,
		}
		for _, p := range src.properties {
			if winner[p.Name] == i {
				g.Properties = append(g.Properties, p)
			}
		}
		for _, r := range src.relationships {
			if relWinner[r.Name] == i {
				g.Relationships = append(g.Relationships, r)
			}
		}
		if len(g.Properties) > 0 || len(g.Relationships) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}
