package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/veridoc/ontology-backend/internal/http/handlers"
	"github.com/veridoc/ontology-backend/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName       string
	Log               *logger.Logger
	AllowOrigins      []string
	HealthHandler     *handlers.HealthHandler
	ConceptHandler    *handlers.ConceptHandler
	ClassifyHandler   *handlers.ClassifyHandler
	SuggestionHandler *handlers.SuggestionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(RequestLogger(cfg.Log))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/concepts", cfg.ConceptHandler.ListConcepts)
		api.GET("/concepts/tree", cfg.ConceptHandler.GetTree)
		api.GET("/concepts/stats", cfg.ConceptHandler.GetStats)
		api.GET("/concepts/search", cfg.ConceptHandler.Search)
		api.GET("/concepts/:id", cfg.ConceptHandler.GetConcept)
		api.POST("/concepts", cfg.ConceptHandler.CreateConcept)
		api.PATCH("/concepts/:id", cfg.ConceptHandler.UpdateConcept)
		api.DELETE("/concepts/:id", cfg.ConceptHandler.DeleteConcept)

		api.POST("/suggestions/validate", cfg.SuggestionHandler.ValidateSuggestion)
		api.POST("/classify", cfg.ClassifyHandler.Classify)
	}

	return router
}
