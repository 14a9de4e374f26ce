package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/greenwayb/replit-casevault-sub000/internal/api"
	"github.com/greenwayb/replit-casevault-sub000/internal/config"
	"github.com/greenwayb/replit-casevault-sub000/internal/docs"
	"github.com/greenwayb/replit-casevault-sub000/internal/repository"
	"github.com/greenwayb/replit-casevault-sub000/internal/review"
)

func main() {
	cfg := config.NewConfig()

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Infof("Initializing database at %s", cfg.DBPath)
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	docRepo := repository.NewDocumentRepo(db)
	annRepo := repository.NewAnnotationRepo(db)

	// Create services.
	docsSvc := docs.NewService(docRepo, logger)
	reviewSvc := review.NewService(docRepo, annRepo, logger)

	// Create router.
	router := api.NewRouter(docsSvc, reviewSvc, logger)

	logger.Info("CaseVault banking statement service")
	logger.Infof("Listening on http://localhost:%s", cfg.Port)
	logger.Infof("API base: http://localhost:%s/api/v1", cfg.Port)
	logger.Info("Endpoints:")
	logger.Info("  POST   /api/v1/cases/{caseID}/documents")
	logger.Info("  GET    /api/v1/cases/{caseID}/documents")
	logger.Info("  GET    /api/v1/documents/{id}")
	logger.Info("  GET    /api/v1/documents/{id}/csv")
	logger.Info("  GET    /api/v1/documents/{id}/flows")
	logger.Info("  GET    /api/v1/documents/{id}/periods")
	logger.Info("  GET    /api/v1/documents/{id}/transactions")
	logger.Info("  PATCH  /api/v1/documents/{id}/transactions/review")
	logger.Info("  GET    /api/v1/documents/{id}/transactions/flagged.csv")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
