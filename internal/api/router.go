package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/greenwayb/replit-casevault-sub000/internal/docs"
	"github.com/greenwayb/replit-casevault-sub000/internal/review"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(docsSvc *docs.Service, reviewSvc *review.Service, log *logrus.Logger) http.Handler {
	h := &Handlers{
		docsSvc:   docsSvc,
		reviewSvc: reviewSvc,
		log:       log,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Confirmation and case listing.
		r.Post("/cases/{caseID}/documents", h.ConfirmDocument)
		r.Get("/cases/{caseID}/documents", h.ListCaseDocuments)

		// Document views.
		r.Get("/documents/{id}", h.GetDocument)
		r.Get("/documents/{id}/csv", h.GetDocumentCSV)
		r.Get("/documents/{id}/flows", h.GetDocumentFlows)
		r.Get("/documents/{id}/periods", h.GetDocumentPeriods)

		// Review.
		r.Get("/documents/{id}/transactions", h.GetReviewRows)
		r.Patch("/documents/{id}/transactions/review", h.UpsertReview)
		r.Get("/documents/{id}/transactions/flagged.csv", h.GetFlaggedCSV)
	})

	return r
}
