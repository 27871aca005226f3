package services

import (
	"context"
	"fmt"

	"github.com/veridoc/ontology-backend/internal/ontology"
	"github.com/veridoc/ontology-backend/internal/platform/logger"
	"github.com/veridoc/ontology-backend/internal/repos"
	"github.com/veridoc/ontology-backend/internal/seed"
	"github.com/veridoc/ontology-backend/internal/types"
)

// OntologyService owns the in-memory catalog and keeps the persisted copy in
// sync after each mutation. The catalog is authoritative; persistence runs
// off the critical path of reads and resolution.
type OntologyService struct {
	log   *logger.Logger
	store *ontology.Store
	repo  repos.ConceptRepo
}

func NewOntologyService(log *logger.Logger, store *ontology.Store, repo repos.ConceptRepo) *OntologyService {
	return &OntologyService{
		log:   log.With("service", "OntologyService"),
		store: store,
		repo:  repo,
	}
}

// Load installs the persisted catalog into the store. When the database is
// empty and a seed file is configured, the seed catalog is loaded and
// persisted instead.
func (s *OntologyService) Load(ctx context.Context, seedPath string) error {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load concepts: %w", err)
	}

	if len(records) == 0 && seedPath != "" {
		return s.loadSeed(ctx, seedPath)
	}

	concepts := make([]*ontology.Concept, 0, len(records))
	for _, rec := range records {
		c, err := rec.ToConcept()
		if err != nil {
			return fmt.Errorf("decode concept %q: %w", rec.ID, err)
		}
		concepts = append(concepts, c)
	}
	if err := s.store.Replace(concepts); err != nil {
		return fmt.Errorf("install catalog: %w", err)
	}
	s.log.Info("catalog loaded", "concepts", len(concepts))
	return nil
}

func (s *OntologyService) loadSeed(ctx context.Context, path string) error {
	concepts, err := seed.Load(path)
	if err != nil {
		return err
	}
	if err := s.store.Replace(concepts); err != nil {
		return fmt.Errorf("install seed catalog: %w", err)
	}
	for _, c := range concepts {
		s.persist(ctx, c)
	}
	s.log.Info("seed catalog installed", "concepts", len(concepts), "path", path)
	return nil
}

func (s *OntologyService) List(filter ontology.ListFilter) []ConceptSummary {
	snap := s.store.Snapshot()
	concepts := snap.List(filter)
	out := make([]ConceptSummary, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, summarize(snap, c))
	}
	return out
}

func (s *OntologyService) Search(query string) []ConceptSummary {
	snap := s.store.Snapshot()
	concepts := snap.Search(query)
	out := make([]ConceptSummary, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, summarize(snap, c))
	}
	return out
}

func (s *OntologyService) Tree() ([]*ontology.TreeNode, error) {
	return s.store.Snapshot().Tree()
}

func (s *OntologyService) Stats() (ontology.Stats, error) {
	return s.store.Snapshot().Stats()
}

// Detail returns the concept with its resolved ancestors and inherited
// groups, all computed against one snapshot.
func (s *OntologyService) Detail(id string) (*ConceptDetail, error) {
	snap := s.store.Snapshot()
	resolved, err := snap.Resolve(id)
	if err != nil {
		return nil, err
	}
	return newConceptDetail(snap, resolved), nil
}

func (s *OntologyService) Create(ctx context.Context, draft ontology.Concept) (*ConceptDetail, error) {
	created, err := s.store.Create(draft)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, created)
	return s.Detail(created.ID)
}

func (s *OntologyService) Update(ctx context.Context, id string, patch ontology.Patch) (*ConceptDetail, error) {
	updated, err := s.store.Update(id, patch)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, updated)
	return s.Detail(updated.ID)
}

func (s *OntologyService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete persisted concept", "concept_id", id, "error", err)
	}
	return nil
}

// ValidateSuggestion is the dry-run path for externally generated drafts. It
// never touches the store.
func (s *OntologyService) ValidateSuggestion(draft ontology.SuggestionDraft) (*ontology.AssembledSuggestion, error) {
	snap := s.store.Snapshot()
	return ontology.AssembleSuggestion(snap, draft, s.store.Policy())
}

// persist writes the concept through to the repo. The in-memory catalog stays
// authoritative; a persistence failure is logged and the mutation stands.
func (s *OntologyService) persist(ctx context.Context, c *ontology.Concept) {
	rec, err := types.FromConcept(c)
	if err != nil {
		s.log.Error("failed to encode concept for persistence", "concept_id", c.ID, "error", err)
		return
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		s.log.Error("failed to persist concept", "concept_id", c.ID, "error", err)
	}
}
