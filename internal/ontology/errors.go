package ontology

import (
	"fmt"
	"strings"
)

// NotFoundError reports an absent concept id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("concept %q not found", e.ID)
}

// ValidationError aggregates every invariant violated by a mutation. The
// mutation is never partially applied.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}

// ConflictError blocks a delete while other concepts still reference the id
// through inherits, mixins, or relationship targets.
type ConflictError struct {
	ID           string
	ReferencedBy []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concept %q is referenced by %s", e.ID, strings.Join(e.ReferencedBy, ", "))
}

// CycleError signals a cycle in the inherits/mixin graph. The store rejects
// cyclic topologies at mutation time, so hitting this during resolution or
// tree building means the catalog state is corrupt.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("inheritance cycle detected: %s", strings.Join(e.Path, " -> "))
}
