package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/veridoc/ontology-backend/internal/http/response"
	"github.com/veridoc/ontology-backend/internal/platform/logger"
	"github.com/veridoc/ontology-backend/internal/services"
)

type ClassifyHandler struct {
	log            *logger.Logger
	classification *services.ClassificationService
}

func NewClassifyHandler(log *logger.Logger, classification *services.ClassificationService) *ClassifyHandler {
	return &ClassifyHandler{
		log:            log.With("handler", "ClassifyHandler"),
		classification: classification,
	}
}

type classifyPayload struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// POST /api/classify
func (h *ClassifyHandler) Classify(c *gin.Context) {
	var payload classifyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	if strings.TrimSpace(payload.Text) == "" && strings.TrimSpace(payload.Filename) == "" {
		response.RespondError(c, http.StatusBadRequest, "empty_document", nil)
		return
	}
	result, err := h.classification.Classify(payload.Text, payload.Filename)
	if err != nil {
		h.log.Error("Classify failed", "error", err, "filename", payload.Filename)
		respondEngineError(c, err)
		return
	}
	response.RespondOK(c, result)
}
