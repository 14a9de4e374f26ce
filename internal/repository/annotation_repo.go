package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
)

type AnnotationRepo struct {
	db *sql.DB
}

func NewAnnotationRepo(db *sql.DB) *AnnotationRepo {
	return &AnnotationRepo{db: db}
}

// UpsertFields selects which annotation fields an upsert supplies. An unset
// field keeps its persisted value (or the column default on first write).
type UpsertFields struct {
	Status  *domain.ReviewStatus
	Comment *string
}

// Upsert creates or partially updates the annotation for one transaction
// key. The insert-or-update runs as a single statement, so concurrent
// writes to the same key resolve last-write-wins and writes to different
// keys never conflict.
func (r *AnnotationRepo) Upsert(documentID string, key domain.TransactionKey, fields UpsertFields) (*domain.ReviewAnnotation, error) {
	status := domain.ReviewNone
	if fields.Status != nil {
		status = *fields.Status
	}
	comment := ""
	if fields.Comment != nil {
		comment = *fields.Comment
	}

	set := []string{"updated_at = excluded.updated_at"}
	if fields.Status != nil {
		set = append(set, "status = excluded.status")
	}
	if fields.Comment != nil {
		set = append(set, "comment = excluded.comment")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := fmt.Sprintf(
		`INSERT INTO review_annotations
		 (document_id, txn_date, description, amount, status, comment, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)
		 ON CONFLICT(document_id, txn_date, description, amount)
		 DO UPDATE SET %s`, strings.Join(set, ", "))

	_, err := r.db.Exec(query,
		documentID, key.Date, key.Description, key.Amount,
		string(status), comment, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert annotation: %w", err)
	}

	return r.Get(documentID, key)
}

// Get fetches one annotation by its composite key.
func (r *AnnotationRepo) Get(documentID string, key domain.TransactionKey) (*domain.ReviewAnnotation, error) {
	row := r.db.QueryRow(
		`SELECT document_id, txn_date, description, amount, status, comment,
		        created_at, updated_at
		 FROM review_annotations
		 WHERE document_id = ? AND txn_date = ? AND description = ? AND amount = ?`,
		documentID, key.Date, key.Description, key.Amount)

	ann, err := scanAnnotation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get annotation: %w", err)
	}
	return ann, nil
}

// ListByDocument returns the document's annotations in creation order.
func (r *AnnotationRepo) ListByDocument(documentID string) ([]domain.ReviewAnnotation, error) {
	rows, err := r.db.Query(
		`SELECT document_id, txn_date, description, amount, status, comment,
		        created_at, updated_at
		 FROM review_annotations WHERE document_id = ?
		 ORDER BY created_at, rowid`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var anns []domain.ReviewAnnotation
	for rows.Next() {
		ann, err := scanAnnotation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		anns = append(anns, *ann)
	}
	return anns, rows.Err()
}

func scanAnnotation(scan func(...any) error) (*domain.ReviewAnnotation, error) {
	var ann domain.ReviewAnnotation
	var status, createdAt, updatedAt string

	err := scan(
		&ann.DocumentID, &ann.Date, &ann.Description, &ann.Amount,
		&status, &ann.Comment, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	ann.Status = domain.ReviewStatus(status)
	ann.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	ann.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &ann, nil
}
