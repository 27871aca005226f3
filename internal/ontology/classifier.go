package ontology

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	hintWeight    = 0.7
	patternWeight = 0.3

	methodHints    = "classification_hints"
	methodPatterns = "file_patterns"
)

// Signal is one per-method score for one concept, kept so callers can audit
// why a classification was chosen.
type Signal struct {
	Method    string  `json:"method"`
	ConceptID string  `json:"concept_id"`
	Score     float64 `json:"score"`
	Details   string  `json:"details"`
}

// ClassificationResult ranks concrete concepts against a document. A nil
// PrimaryConceptID with zero confidence is the normal "unclassified" outcome,
// not an error.
type ClassificationResult struct {
	PrimaryConceptID *string  `json:"primary_concept_id"`
	Confidence       float64  `json:"confidence"`
	Signals          []Signal `json:"signals"`
}

// Classifier scores documents against the effective extraction templates of
// every concrete concept in a snapshot.
type Classifier struct {
	HintWeight    float64
	PatternWeight float64
}

func NewClassifier() *Classifier {
	return &Classifier{HintWeight: hintWeight, PatternWeight: patternWeight}
}

// Classify scores the document text and filename against each concrete
// concept and returns concepts ranked by combined score descending, ties
// broken by id ascending.
func (cl *Classifier) Classify(snap *Snapshot, text, filename string) (*ClassificationResult, error) {
	lowerText := strings.ToLower(text)
	base := strings.ToLower(path.Base(filename))

	type scored struct {
		id       string
		combined float64
		signals  []Signal
	}
	var hits []scored

	for _, c := range snap.List(ListFilter{}) {
		if c.Abstract {
			continue
		}
		r, err := snap.Resolve(c.ID)
		if err != nil {
			return nil, err
		}
		if r.Template.Empty() {
			continue
		}

		hintScore, hintDetail := scoreHints(r.Template.ClassificationHints, lowerText)
		patternScore, patternDetail := scorePatterns(r.Template.FilePatterns, base)
		combined := cl.HintWeight*hintScore + cl.PatternWeight*patternScore
		if combined <= 0 {
			continue
		}

		sc := scored{id: c.ID, combined: combined}
		if hintScore > 0 {
			sc.signals = append(sc.signals, Signal{
				Method:    methodHints,
				ConceptID: c.ID,
				Score:     hintScore,
				Details:   hintDetail,
			})
		}
		if patternScore > 0 {
			sc.signals = append(sc.signals, Signal{
				Method:    methodPatterns,
				ConceptID: c.ID,
				Score:     patternScore,
				Details:   patternDetail,
			})
		}
		hits = append(hits, sc)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].combined != hits[j].combined {
			return hits[i].combined > hits[j].combined
		}
		return hits[i].id < hits[j].id
	})

	result := &ClassificationResult{}
	for _, h := range hits {
		result.Signals = append(result.Signals, h.signals...)
	}
	if len(hits) > 0 {
		top := hits[0]
		result.PrimaryConceptID = &top.id
		result.Confidence = top.combined
	}
	return result, nil
}

// scoreHints is the fraction of hint phrases found in the document text as
// case-insensitive substrings, capped at 1.0.
func scoreHints(hints []string, lowerText string) (float64, string) {
	if len(hints) == 0 || lowerText == "" {
		return 0, ""
	}
	var matched []string
	for _, h := range hints {
		if strings.Contains(lowerText, strings.ToLower(h)) {
			matched = append(matched, h)
		}
	}
	if len(matched) == 0 {
		return 0, ""
	}
	score := float64(len(matched)) / float64(len(hints))
	if score > 1.0 {
		score = 1.0
	}
	detail := fmt.Sprintf("matched %d/%d hints: %s", len(matched), len(hints), strings.Join(matched, ", "))
	return score, detail
}

// scorePatterns is binary: 1.0 when any file pattern matches the filename.
// Patterns are doublestar globs; a pattern that is not a valid glob falls
// back to case-insensitive substring matching.
func scorePatterns(patterns []string, base string) (float64, string) {
	if len(patterns) == 0 || base == "" {
		return 0, ""
	}
	for _, p := range patterns {
		if matchPattern(p, base) {
			return 1.0, fmt.Sprintf("filename matched pattern %q", p)
		}
	}
	return 0, ""
}

func matchPattern(pattern, base string) bool {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if p == "" {
		return false
	}
	if doublestar.ValidatePattern(p) {
		if ok, err := doublestar.Match(p, base); err == nil && ok {
			return true
		}
	}
	return strings.Contains(base, p)
}
