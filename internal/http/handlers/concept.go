package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/veridoc/ontology-backend/internal/http/response"
	"github.com/veridoc/ontology-backend/internal/ontology"
	"github.com/veridoc/ontology-backend/internal/platform/logger"
	"github.com/veridoc/ontology-backend/internal/services"
)

type ConceptHandler struct {
	log      *logger.Logger
	ontology *services.OntologyService
}

func NewConceptHandler(log *logger.Logger, ontologySvc *services.OntologyService) *ConceptHandler {
	return &ConceptHandler{
		log:      log.With("handler", "ConceptHandler"),
		ontology: ontologySvc,
	}
}

// GET /api/concepts?layer=&pillar=
func (h *ConceptHandler) ListConcepts(c *gin.Context) {
	var filter ontology.ListFilter
	if raw := strings.TrimSpace(c.Query("layer")); raw != "" {
		layer, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_layer", err)
			return
		}
		filter.Layer = &layer
	}
	filter.Pillar = strings.TrimSpace(c.Query("pillar"))

	response.RespondOK(c, gin.H{"concepts": h.ontology.List(filter)})
}

// GET /api/concepts/tree
func (h *ConceptHandler) GetTree(c *gin.Context) {
	forest, err := h.ontology.Tree()
	if err != nil {
		h.log.Error("GetTree failed", "error", err)
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tree": forest})
}

// GET /api/concepts/stats
func (h *ConceptHandler) GetStats(c *gin.Context) {
	stats, err := h.ontology.Stats()
	if err != nil {
		h.log.Error("GetStats failed", "error", err)
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/concepts/search?q=
func (h *ConceptHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_query", nil)
		return
	}
	response.RespondOK(c, gin.H{"concepts": h.ontology.Search(query)})
}

// GET /api/concepts/:id
func (h *ConceptHandler) GetConcept(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	detail, err := h.ontology.Detail(id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// POST /api/concepts
func (h *ConceptHandler) CreateConcept(c *gin.Context) {
	var draft ontology.Concept
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	detail, err := h.ontology.Create(c.Request.Context(), draft)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	h.log.Info("concept created", "concept_id", detail.Concept.ID)
	response.RespondCreated(c, detail)
}

type conceptPatchPayload struct {
	Label         *string                      `json:"label"`
	Description   *string                      `json:"description"`
	Synonyms      *[]string                    `json:"synonyms"`
	Properties    *[]ontology.Property         `json:"properties"`
	Relationships *[]ontology.Relationship     `json:"relationships"`
	Template      *ontology.ExtractionTemplate `json:"extraction_template"`
	ClearTemplate bool                         `json:"clear_template"`
}

// PATCH /api/concepts/:id
func (h *ConceptHandler) UpdateConcept(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var payload conceptPatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	patch := ontology.Patch{
		Label:         payload.Label,
		Description:   payload.Description,
		Synonyms:      payload.Synonyms,
		Properties:    payload.Properties,
		Relationships: payload.Relationships,
		Template:      payload.Template,
		ClearTemplate: payload.ClearTemplate,
	}
	detail, err := h.ontology.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	h.log.Info("concept updated", "concept_id", id)
	response.RespondOK(c, detail)
}

// DELETE /api/concepts/:id
func (h *ConceptHandler) DeleteConcept(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.ontology.Delete(c.Request.Context(), id); err != nil {
		respondEngineError(c, err)
		return
	}
	h.log.Info("concept deleted", "concept_id", id)
	response.RespondOK(c, gin.H{"deleted": id})
}
