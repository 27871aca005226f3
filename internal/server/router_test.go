package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/veridoc/ontology-backend/internal/http/handlers"
	"github.com/veridoc/ontology-backend/internal/ontology"
	"github.com/veridoc/ontology-backend/internal/platform/logger"
	"github.com/veridoc/ontology-backend/internal/services"
	"github.com/veridoc/ontology-backend/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// nopConceptRepo satisfies the repo interface without a database; router
// tests exercise the HTTP surface against the in-memory catalog only.
type nopConceptRepo struct{}

func (nopConceptRepo) LoadAll(ctx context.Context) ([]*types.ConceptRecord, error) { return nil, nil }
func (nopConceptRepo) Upsert(ctx context.Context, rec *types.ConceptRecord) error  { return nil }
func (nopConceptRepo) Delete(ctx context.Context, id string) error                 { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testLogger()
	store := ontology.NewStore(log, ontology.LayerPolicyStrict)
	err := store.Replace([]*ontology.Concept{
		{ID: "document", Layer: 1, Label: "Document", Abstract: true, Pillar: "Documents"},
		{
			ID: "invoice", Layer: 2, Label: "Invoice", Inherits: "document",
			Template: &ontology.ExtractionTemplate{
				ClassificationHints: []string{"invoice", "amount due"},
				FilePatterns:        []string{"*invoice*"},
			},
		},
	})
	if err != nil {
		t.Fatalf("install catalog: %v", err)
	}

	ontologySvc := services.NewOntologyService(log, store, nopConceptRepo{})
	classificationSvc := services.NewClassificationService(log, store)

	return NewRouter(RouterConfig{
		ServiceName:       "ontology-backend-test",
		Log:               log,
		HealthHandler:     handlers.NewHealthHandler(),
		ConceptHandler:    handlers.NewConceptHandler(log, ontologySvc),
		ClassifyHandler:   handlers.NewClassifyHandler(log, classificationSvc),
		SuggestionHandler: handlers.NewSuggestionHandler(log, ontologySvc),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthcheck(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/healthcheck", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected healthcheck response: %d %q", w.Code, w.Body.String())
	}
}

func TestListAndGetConcept(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/concepts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	var list struct {
		Concepts []json.RawMessage `json:"concepts"`
	}
	decodeBody(t, w, &list)
	if len(list.Concepts) != 2 {
		t.Fatalf("expected 2 concepts, got %d", len(list.Concepts))
	}

	w = doJSON(t, router, http.MethodGet, "/api/concepts/invoice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}
	var detail struct {
		Concept struct {
			ID string `json:"id"`
		} `json:"concept"`
		Pillar string `json:"pillar"`
	}
	decodeBody(t, w, &detail)
	if detail.Concept.ID != "invoice" || detail.Pillar != "Documents" {
		t.Fatalf("unexpected detail: %s", w.Body.String())
	}
}

func TestGetConceptNotFound(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/concepts/ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", w.Code, w.Body.String())
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, w, &envelope)
	if envelope.Error.Code != "concept_not_found" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestTreeAndStaticRoutesDoNotShadowParam(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/api/concepts/tree", "/api/concepts/stats"} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, w.Code, w.Body.String())
		}
	}
}

func TestCreateConceptRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/concepts", map[string]any{
		"id":       "receipt",
		"layer":    2,
		"label":    "Receipt",
		"inherits": "document",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/concepts/receipt", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get after create: %d %s", w.Code, w.Body.String())
	}
}

func TestCreateConceptValidationFailure(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/concepts", map[string]any{
		"id":       "Bad ID",
		"layer":    2,
		"inherits": "missing",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", w.Code, w.Body.String())
	}
	var envelope struct {
		Error struct {
			Code    string   `json:"code"`
			Details []string `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, w, &envelope)
	if envelope.Error.Code != "validation_failed" || len(envelope.Error.Details) < 3 {
		t.Fatalf("expected aggregated violations, got %s", w.Body.String())
	}
}

func TestDeleteReferencedConceptConflicts(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodDelete, "/api/concepts/document", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", w.Code, w.Body.String())
	}
	var envelope struct {
		Error struct {
			Code    string   `json:"code"`
			Details []string `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, w, &envelope)
	if envelope.Error.Code != "concept_referenced" || len(envelope.Error.Details) != 1 || envelope.Error.Details[0] != "invoice" {
		t.Fatalf("expected referencing ids in details, got %s", w.Body.String())
	}
}

func TestClassifyEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/classify", map[string]any{
		"text":     "INVOICE #42: amount due is 100 EUR",
		"filename": "scan.pdf",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("classify: %d %s", w.Code, w.Body.String())
	}
	var result struct {
		PrimaryConceptID *string `json:"primary_concept_id"`
	}
	decodeBody(t, w, &result)
	if result.PrimaryConceptID == nil || *result.PrimaryConceptID != "invoice" {
		t.Fatalf("expected invoice, got %s", w.Body.String())
	}
}

func TestClassifyRejectsEmptyDocument(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/classify", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
	}
}

func TestValidateSuggestionEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/suggestions/validate", map[string]any{
		"label":    "Purchase Order",
		"inherits": "document",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("validate: %d %s", w.Code, w.Body.String())
	}
	var assembled struct {
		Concept struct {
			ID    string `json:"id"`
			Layer int    `json:"layer"`
		} `json:"concept"`
	}
	decodeBody(t, w, &assembled)
	if assembled.Concept.ID != "purchase_order" || assembled.Concept.Layer != 2 {
		t.Fatalf("draft not normalized: %s", w.Body.String())
	}
}
