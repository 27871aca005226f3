package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/veridoc/ontology-backend/internal/db"
	"github.com/veridoc/ontology-backend/internal/http/handlers"
	"github.com/veridoc/ontology-backend/internal/observability"
	"github.com/veridoc/ontology-backend/internal/ontology"
	"github.com/veridoc/ontology-backend/internal/platform/logger"
	"github.com/veridoc/ontology-backend/internal/repos"
	"github.com/veridoc/ontology-backend/internal/server"
	"github.com/veridoc/ontology-backend/internal/services"
)

const serviceName = "ontology-backend"

type App struct {
	Log    *logger.Logger
	Cfg    Config
	Store  *ontology.Store
	Router *gin.Engine

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	dbService, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	conceptRepo := repos.NewConceptRepo(dbService.DB(), log)
	store := ontology.NewStore(log, cfg.LayerPolicy)

	ontologyService := services.NewOntologyService(log, store, conceptRepo)
	if err := ontologyService.Load(ctx, cfg.SeedFile); err != nil {
		log.Sync()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	classificationService := services.NewClassificationService(log, store)

	router := server.NewRouter(server.RouterConfig{
		ServiceName:       serviceName,
		Log:               log,
		AllowOrigins:      cfg.AllowOrigins,
		HealthHandler:     handlers.NewHealthHandler(),
		ConceptHandler:    handlers.NewConceptHandler(log, ontologyService),
		ClassifyHandler:   handlers.NewClassifyHandler(log, classificationService),
		SuggestionHandler: handlers.NewSuggestionHandler(log, ontologyService),
	})

	return &App{
		Log:          log,
		Cfg:          cfg,
		Store:        store,
		Router:       router,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.Cfg.Addr,
		Handler: a.Router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("http server listening", "addr", a.Cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
