package services

import (
	"github.com/veridoc/ontology-backend/internal/ontology"
	"github.com/veridoc/ontology-backend/internal/platform/logger"
)

// ClassificationService scores incoming documents against the catalog.
type ClassificationService struct {
	log        *logger.Logger
	store      *ontology.Store
	classifier *ontology.Classifier
}

func NewClassificationService(log *logger.Logger, store *ontology.Store) *ClassificationService {
	return &ClassificationService{
		log:        log.With("service", "ClassificationService"),
		store:      store,
		classifier: ontology.NewClassifier(),
	}
}

// Classify runs the document against one catalog snapshot. A result with no
// primary concept is the normal unclassified outcome.
func (s *ClassificationService) Classify(text, filename string) (*ontology.ClassificationResult, error) {
	snap := s.store.Snapshot()
	result, err := s.classifier.Classify(snap, text, filename)
	if err != nil {
		return nil, err
	}
	if result.PrimaryConceptID == nil {
		s.log.Debug("document unclassified", "filename", filename)
	} else {
		s.log.Debug("document classified",
			"filename", filename,
			"concept_id", *result.PrimaryConceptID,
			"confidence", result.Confidence,
		)
	}
	return result, nil
}
