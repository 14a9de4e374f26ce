// Package docs is the document-level service: confirming extracted banking
// documents into a case and serving their derived views (CSV projection,
// flow graphs, available periods).
package docs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
	"github.com/greenwayb/replit-casevault-sub000/internal/export"
	"github.com/greenwayb/replit-casevault-sub000/internal/flow"
	"github.com/greenwayb/replit-casevault-sub000/internal/repository"
	"github.com/greenwayb/replit-casevault-sub000/internal/statement"
)

// Service confirms documents and derives projections from their canonical
// records.
type Service struct {
	docRepo *repository.DocumentRepo
	log     *logrus.Logger
}

// NewService creates a new document service.
func NewService(docRepo *repository.DocumentRepo, log *logrus.Logger) *Service {
	return &Service{docRepo: docRepo, log: log}
}

// Confirm parses the canonical analysis XML, assigns case-scoped numbering
// and persists the document. When manualReview is set the document is
// recorded without a usable canonical record (the AI extraction failed) and
// numbering falls back to the institution label; in an otherwise empty case
// that degenerates to the "1.1" placeholder.
//
// Numbering assignment and insertion run in one storage transaction, so
// concurrent confirmations within a case cannot allocate the same number.
func (s *Service) Confirm(caseID, analysisXML string, manualReview bool) (*domain.Document, error) {
	if caseID == "" {
		return nil, fmt.Errorf("case id is required")
	}

	st := statement.Parse(analysisXML)

	status := domain.StatusProcessed
	if manualReview {
		status = domain.StatusManualReview
	}

	doc := &domain.Document{
		ID:                 uuid.NewString(),
		CaseID:             caseID,
		AccountHolderLabel: st.HolderLabel(),
		Institution:        st.Institution,
		Status:             status,
		RawAnalysis:        analysisXML,
	}

	if err := s.docRepo.Confirm(doc); err != nil {
		return nil, fmt.Errorf("confirm document: %w", err)
	}

	s.log.Infof("[docs] Confirmed document %s in case %s as %s (%d transactions)",
		doc.ID, caseID, doc.DocumentNumber, len(st.Transactions))

	return doc, nil
}

// Get loads a document together with its re-parsed canonical record.
func (s *Service) Get(documentID string) (*domain.Document, *domain.CanonicalStatement, error) {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load document: %w", err)
	}
	return doc, statement.Parse(doc.RawAnalysis), nil
}

// CSV derives the transaction projection for a document.
func (s *Service) CSV(documentID string) (*export.Projection, error) {
	_, st, err := s.Get(documentID)
	if err != nil {
		return nil, err
	}
	return export.Project(st), nil
}

// Flows computes the flow graph for a document and period ("all" or
// "YYYY-MM").
func (s *Service) Flows(documentID, period string) (*flow.Graph, error) {
	_, st, err := s.Get(documentID)
	if err != nil {
		return nil, err
	}
	return flow.Compute(st, period), nil
}

// Periods lists the period selectors available for a document.
func (s *Service) Periods(documentID string) ([]string, error) {
	_, st, err := s.Get(documentID)
	if err != nil {
		return nil, err
	}
	return flow.Periods(st), nil
}

// ListCase returns the case's documents in creation order.
func (s *Service) ListCase(caseID string) ([]domain.Document, error) {
	return s.docRepo.ListByCase(caseID)
}
