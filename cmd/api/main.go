package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/cds-engine/internal/config"
	"github.com/jwalitptl/cds-engine/internal/enrichment"
	"github.com/jwalitptl/cds-engine/internal/handler"
	diagnosisHandler "github.com/jwalitptl/cds-engine/internal/handler/diagnosis"
	knowledgeHandler "github.com/jwalitptl/cds-engine/internal/handler/knowledge"
	outcomeHandler "github.com/jwalitptl/cds-engine/internal/handler/outcome"
	safetyHandler "github.com/jwalitptl/cds-engine/internal/handler/safety"
	"github.com/jwalitptl/cds-engine/internal/knowledge"
	"github.com/jwalitptl/cds-engine/internal/middleware"
	"github.com/jwalitptl/cds-engine/internal/repository/postgres"
	"github.com/jwalitptl/cds-engine/internal/router"
	auditService "github.com/jwalitptl/cds-engine/internal/service/audit"
	diagnosisService "github.com/jwalitptl/cds-engine/internal/service/diagnosis"
	outcomeService "github.com/jwalitptl/cds-engine/internal/service/outcome"
	safetyService "github.com/jwalitptl/cds-engine/internal/service/safety"
	"github.com/jwalitptl/cds-engine/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := handler.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register request validators")
	}

	m := metrics.NewMetrics("cds", "engine")
	catalog := knowledge.New()
	log.Info().Str("version", catalog.Version).Msg("clinical knowledge catalog loaded")

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	findingRepo := postgres.NewFindingRepository(db)
	alertRepo := postgres.NewAlertRepository(db)
	suggestionRepo := postgres.NewSuggestionRepository(db)
	diagnosisRepo := postgres.NewDiagnosisRepository(db)
	predictionRepo := postgres.NewPredictionRepository(db)
	caseRepo := postgres.NewCaseOutcomeRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Enrichment is optional; without an API key the engine runs rule-based.
	enricher := enrichment.New(enrichment.Config{
		BaseURL: cfg.Enrichment.BaseURL,
		APIKey:  cfg.Enrichment.APIKey,
		Model:   cfg.Enrichment.Model,
		Timeout: time.Duration(cfg.Enrichment.TimeoutSeconds) * time.Second,
	}, log.Logger, m)
	enrichTimeout := time.Duration(cfg.Enrichment.TimeoutSeconds) * time.Second

	// Services
	auditor := auditService.NewService(auditRepo)
	diagnosisSvc := diagnosisService.NewService(catalog, patientRepo, suggestionRepo, diagnosisRepo, enricher, auditor, m, enrichTimeout)
	safetySvc := safetyService.NewService(catalog, patientRepo, findingRepo, alertRepo, outboxRepo, enricher, auditor, m, enrichTimeout)
	outcomeSvc := outcomeService.NewService(catalog, patientRepo, predictionRepo, caseRepo, alertRepo, outboxRepo, enricher, auditor, m, enrichTimeout)

	// Handlers
	h := handler.NewHandler(db, catalog)
	diagnosisH := diagnosisHandler.NewHandler(diagnosisSvc)
	safetyH := safetyHandler.NewHandler(safetySvc)
	outcomeH := outcomeHandler.NewHandler(outcomeSvc)
	knowledgeH := knowledgeHandler.NewHandler(catalog)

	r := router.NewRouter(h, diagnosisH, safetyH, outcomeH, knowledgeH, router.RouterConfig{
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPrefix:  "cds_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
