package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veridoc/ontology-backend/internal/http/response"
	"github.com/veridoc/ontology-backend/internal/ontology"
	"github.com/veridoc/ontology-backend/internal/platform/logger"
	"github.com/veridoc/ontology-backend/internal/services"
)

type SuggestionHandler struct {
	log      *logger.Logger
	ontology *services.OntologyService
}

func NewSuggestionHandler(log *logger.Logger, ontologySvc *services.OntologyService) *SuggestionHandler {
	return &SuggestionHandler{
		log:      log.With("handler", "SuggestionHandler"),
		ontology: ontologySvc,
	}
}

// POST /api/suggestions/validate
//
// Dry-run validation of an externally generated concept draft. Returns the
// normalized payload plus advisory warnings; nothing is persisted.
func (h *SuggestionHandler) ValidateSuggestion(c *gin.Context) {
	var draft ontology.SuggestionDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	assembled, err := h.ontology.ValidateSuggestion(draft)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, assembled)
}
