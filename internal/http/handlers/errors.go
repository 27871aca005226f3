package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridoc/ontology-backend/internal/http/response"
	"github.com/veridoc/ontology-backend/internal/ontology"
)

// respondEngineError maps the engine's error taxonomy onto HTTP statuses:
// NotFound 404, ValidationError 422 with every violation, Conflict 409 with
// the referencing ids, CycleDetected 500 (catalog corruption, never hidden).
func respondEngineError(c *gin.Context, err error) {
	var (
		notFound   *ontology.NotFoundError
		validation *ontology.ValidationError
		conflict   *ontology.ConflictError
		cycle      *ontology.CycleError
	)
	switch {
	case errors.As(err, &notFound):
		response.RespondError(c, http.StatusNotFound, "concept_not_found", err)
	case errors.As(err, &validation):
		response.RespondErrorDetails(c, http.StatusUnprocessableEntity, "validation_failed", err, validation.Violations)
	case errors.As(err, &conflict):
		response.RespondErrorDetails(c, http.StatusConflict, "concept_referenced", err, conflict.ReferencedBy)
	case errors.As(err, &cycle):
		response.RespondError(c, http.StatusInternalServerError, "catalog_corrupt", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
