package ontology

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/veridoc/ontology-backend/internal/platform/logger"
)

// Store is the single owner of catalog state. Mutations are serialized under
// a mutex and published as immutable copy-on-write snapshots, so reads never
// block and always observe a consistent catalog.
type Store struct {
	log    *logger.Logger
	policy LayerPolicy

	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

func NewStore(log *logger.Logger, policy LayerPolicy) *Store {
	s := &Store{
		log:    log.With("component", "ConceptStore"),
		policy: policy,
	}
	s.snap.Store(newSnapshot(map[string]*Concept{}, policy))
	return s
}

// Policy reports the layer ordering policy this store enforces.
func (s *Store) Policy() LayerPolicy {
	return s.policy
}

// Snapshot returns the current immutable catalog view. Resolution, tree
// building, and classification should all run against one snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Replace swaps the whole catalog, validating it as a unit. Used at startup
// to install the persisted state.
func (s *Store) Replace(concepts []*Concept) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*Concept, len(concepts))
	var violations []string
	for _, c := range concepts {
		if _, dup := next[c.ID]; dup {
			violations = append(violations, "duplicate concept id "+c.ID)
			continue
		}
		next[c.ID] = c.Clone()
	}
	snap := newSnapshot(next, s.policy)
	for _, id := range snap.ids {
		violations = append(violations, validateExisting(snap, snap.concepts[id], s.policy)...)
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	s.snap.Store(snap)
	s.log.Info("catalog replaced", "concepts", len(snap.ids))
	return nil
}

// Create validates the draft against the current catalog and inserts it.
// All violated invariants are reported together; nothing is applied on error.
func (s *Store) Create(draft Concept) (*Concept, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snap.Load()
	c := draft.Clone()
	normalizeConcept(c)
	if violations := validateDraft(snap, c, s.policy); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	next := snap.withConcept(c, s.policy)
	s.snap.Store(next)
	s.log.Debug("concept created", "concept_id", c.ID, "layer", c.Layer)
	return c.Clone(), nil
}

// Update applies a partial change to one concept. Identity and topology
// (id, layer, inherits, mixins) are immutable after creation, so only the
// touched concept needs re-validation.
func (s *Store) Update(id string, patch Patch) (*Concept, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snap.Load()
	existing, ok := snap.concepts[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	c := existing.Clone()
	patch.apply(c)
	normalizeConcept(c)
	if violations := validateUpdated(snap, c); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	next := snap.withConcept(c, s.policy)
	s.snap.Store(next)
	s.log.Debug("concept updated", "concept_id", id)
	return c.Clone(), nil
}

// Delete removes an unreferenced concept. Deletion never cascades: while any
// other concept references the id the delete is rejected with the full list
// of referencing concepts.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snap.Load()
	if _, ok := snap.concepts[id]; !ok {
		return &NotFoundError{ID: id}
	}
	if refs := snap.referencesTo(id); len(refs) > 0 {
		return &ConflictError{ID: id, ReferencedBy: refs}
	}

	next := snap.withoutConcept(id, s.policy)
	s.snap.Store(next)
	s.log.Debug("concept deleted", "concept_id", id)
	return nil
}

func (s *Store) Get(id string) (*Concept, error)   { return s.Snapshot().Get(id) }
func (s *Store) List(filter ListFilter) []*Concept { return s.Snapshot().List(filter) }
func (s *Store) Search(query string) []*Concept    { return s.Snapshot().Search(query) }

// Patch carries the updatable fields of a concept. Nil fields are untouched.
type Patch struct {
	Label         *string
	Description   *string
	Synonyms      *[]string
	Properties    *[]Property
	Relationships *[]Relationship
	Template      *ExtractionTemplate
	ClearTemplate bool
}

func (p Patch) apply(c *Concept) {
	if p.Label != nil {
		c.Label = *p.Label
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Synonyms != nil {
		c.Synonyms = append([]string(nil), (*p.Synonyms)...)
	}
	if p.Properties != nil {
		c.Properties = cloneProperties(*p.Properties)
	}
	if p.Relationships != nil {
		c.Relationships = append([]Relationship(nil), (*p.Relationships)...)
	}
	if p.ClearTemplate {
		c.Template = nil
	} else if p.Template != nil {
		c.Template = &ExtractionTemplate{
			ClassificationHints: append([]string(nil), p.Template.ClassificationHints...),
			FilePatterns:        append([]string(nil), p.Template.FilePatterns...),
		}
	}
}

// Snapshot is an immutable catalog view. Concept pointers handed out by a
// snapshot must be treated as read-only.
type Snapshot struct {
	concepts map[string]*Concept
	ids      []string
	policy   LayerPolicy

	resolveMu sync.Mutex
	resolved  map[string]*Resolved
}

func newSnapshot(concepts map[string]*Concept, policy LayerPolicy) *Snapshot {
	ids := make([]string, 0, len(concepts))
	for id := range concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Snapshot{
		concepts: concepts,
		ids:      ids,
		policy:   policy,
		resolved: make(map[string]*Resolved),
	}
}

func (s *Snapshot) withConcept(c *Concept, policy LayerPolicy) *Snapshot {
	next := make(map[string]*Concept, len(s.concepts)+1)
	for id, existing := range s.concepts {
		next[id] = existing
	}
	next[c.ID] = c
	return newSnapshot(next, policy)
}

func (s *Snapshot) withoutConcept(id string, policy LayerPolicy) *Snapshot {
	next := make(map[string]*Concept, len(s.concepts))
	for cid, existing := range s.concepts {
		if cid != id {
			next[cid] = existing
		}
	}
	return newSnapshot(next, policy)
}

func (s *Snapshot) Len() int { return len(s.ids) }

func (s *Snapshot) Get(id string) (*Concept, error) {
	c, ok := s.concepts[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return c, nil
}

// ListFilter narrows List output. Pillar matches the concept's effective
// pillar, i.e. its own or the one inherited from its root.
type ListFilter struct {
	Layer  *int
	Pillar string
}

// List returns concepts ordered by id ascending regardless of insertion
// order. Callers rely on reproducible ordering.
func (s *Snapshot) List(filter ListFilter) []*Concept {
	out := make([]*Concept, 0, len(s.ids))
	for _, id := range s.ids {
		c := s.concepts[id]
		if filter.Layer != nil && c.Layer != *filter.Layer {
			continue
		}
		if filter.Pillar != "" && !strings.EqualFold(s.PillarOf(id), filter.Pillar) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// PillarOf resolves the effective pillar of a concept: its own when set,
// otherwise the nearest ancestor's. Empty when no ancestor carries one or
// the chain is broken.
func (s *Snapshot) PillarOf(id string) string {
	seen := make(map[string]bool)
	for cur := id; cur != "" && !seen[cur]; {
		seen[cur] = true
		c, ok := s.concepts[cur]
		if !ok {
			return ""
		}
		if c.Pillar != "" {
			return c.Pillar
		}
		cur = c.Inherits
	}
	return ""
}

// referencesTo lists ids of concepts referencing the given id via inherits,
// mixins, or relationship targets, sorted ascending.
func (s *Snapshot) referencesTo(id string) []string {
	var refs []string
	for _, cid := range s.ids {
		if cid == id {
			continue
		}
		c := s.concepts[cid]
		if c.Inherits == id {
			refs = append(refs, cid)
			continue
		}
		found := false
		for _, m := range c.Mixins {
			if m == id {
				found = true
				break
			}
		}
		if !found {
			for _, r := range c.Relationships {
				if r.Target == id {
					found = true
					break
				}
			}
		}
		if found {
			refs = append(refs, cid)
		}
	}
	return refs
}

// Search ranks concepts by match quality: exact label, label prefix, label
// substring, synonym substring, classification hint substring. Ties break by
// id ascending. Matching is case-insensitive.
func (s *Snapshot) Search(query string) []*Concept {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	type ranked struct {
		c    *Concept
		tier int
	}
	var hits []ranked
	for _, id := range s.ids {
		c := s.concepts[id]
		tier := searchTier(c, q)
		if tier < 0 {
			continue
		}
		hits = append(hits, ranked{c: c, tier: tier})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].tier != hits[j].tier {
			return hits[i].tier < hits[j].tier
		}
		return hits[i].c.ID < hits[j].c.ID
	})
	out := make([]*Concept, len(hits))
	for i, h := range hits {
		out[i] = h.c
	}
	return out
}

func searchTier(c *Concept, q string) int {
	label := strings.ToLower(c.Label)
	switch {
	case label == q:
		return 0
	case strings.HasPrefix(label, q):
		return 1
	case strings.Contains(label, q):
		return 2
	}
	for _, syn := range c.Synonyms {
		if strings.Contains(strings.ToLower(syn), q) {
			return 3
		}
	}
	if c.Template != nil {
		for _, hint := range c.Template.ClassificationHints {
			if strings.Contains(strings.ToLower(hint), q) {
				return 4
			}
		}
	}
	return -1
}
