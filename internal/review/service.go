package review

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
	"github.com/greenwayb/replit-casevault-sub000/internal/money"
	"github.com/greenwayb/replit-casevault-sub000/internal/repository"
	"github.com/greenwayb/replit-casevault-sub000/internal/statement"
)

// Service serves reconciled review rows and applies annotation writes.
type Service struct {
	docRepo *repository.DocumentRepo
	annRepo *repository.AnnotationRepo
	log     *logrus.Logger
}

// NewService creates a new review service.
func NewService(docRepo *repository.DocumentRepo, annRepo *repository.AnnotationRepo, log *logrus.Logger) *Service {
	return &Service{docRepo: docRepo, annRepo: annRepo, log: log}
}

// Rows re-parses the document's canonical record and merges the persisted
// annotations onto it. Annotations whose transaction disappeared on
// re-extraction are returned separately as orphans.
func (s *Service) Rows(documentID string) ([]domain.AnnotatedTransaction, []domain.ReviewAnnotation, error) {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load document: %w", err)
	}

	anns, err := s.annRepo.ListByDocument(documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load annotations: %w", err)
	}

	st := statement.Parse(doc.RawAnalysis)
	return Reconcile(st, anns), Orphans(st, anns), nil
}

// Upsert creates or partially updates the annotation for one transaction
// key. Only the supplied fields change; a first write fills the rest with
// defaults. Comments beyond the length cap are truncated, and an unknown
// status is rejected before touching storage.
func (s *Service) Upsert(documentID string, key domain.TransactionKey, fields repository.UpsertFields) (*domain.ReviewAnnotation, error) {
	if fields.Status == nil && fields.Comment == nil {
		return nil, fmt.Errorf("nothing to update: status or comment is required")
	}
	if fields.Status != nil && !domain.ValidReviewStatus(*fields.Status) {
		return nil, fmt.Errorf("invalid review status %q", *fields.Status)
	}
	if fields.Comment != nil && len(*fields.Comment) > domain.MaxCommentLength {
		truncated := (*fields.Comment)[:domain.MaxCommentLength]
		fields.Comment = &truncated
	}

	// Transactions are matched by the canonical decimal form of the
	// amount, so the key must be normalized before it is stored.
	amount := money.ParseOptional(key.Amount)
	if amount == nil {
		return nil, fmt.Errorf("invalid amount %q in transaction key", key.Amount)
	}
	key.Amount = money.Canonical(*amount)

	ann, err := s.annRepo.Upsert(documentID, key, fields)
	if err != nil {
		return nil, err
	}

	s.log.Infof("[review] Annotation saved for document %s (%s / %s / %s) status=%s",
		documentID, key.Date, key.Description, key.Amount, ann.Status)

	return ann, nil
}
