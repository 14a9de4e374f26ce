package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
	"github.com/greenwayb/replit-casevault-sub000/internal/numbering"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Confirm assigns the document's account group and document number and
// inserts it, all inside one write transaction. Reading the case's existing
// numbering and allocating the next number must not interleave with another
// confirmation in the same case: transactions open with BEGIN IMMEDIATE
// (see InitDB), so the write lock is held from Begin and two concurrent
// confirmations can never observe the same max sequence.
func (r *DocumentRepo) Confirm(doc *domain.Document) error {
	sqlTx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	existing, err := listNumbering(sqlTx, doc.CaseID)
	if err != nil {
		return fmt.Errorf("list numbering: %w", err)
	}

	doc.AccountGroupNumber, doc.DocumentNumber = numbering.Assign(
		existing, doc.AccountHolderLabel, doc.Institution)

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err = sqlTx.Exec(
		`INSERT INTO documents
		(id, case_id, account_holder_label, institution, account_group_number,
		 document_number, status, raw_analysis, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		doc.ID, doc.CaseID, doc.AccountHolderLabel, doc.Institution,
		doc.AccountGroupNumber, doc.DocumentNumber, string(doc.Status),
		doc.RawAnalysis, doc.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetByID(id string) (*domain.Document, error) {
	row := r.db.QueryRow(
		`SELECT id, case_id, account_holder_label, institution,
		        account_group_number, document_number, status, raw_analysis,
		        created_at
		 FROM documents WHERE id = ?`, id)
	return scanDocument(row.Scan)
}

// ListByCase returns the case's documents in creation order.
func (r *DocumentRepo) ListByCase(caseID string) ([]domain.Document, error) {
	rows, err := r.db.Query(
		`SELECT id, case_id, account_holder_label, institution,
		        account_group_number, document_number, status, raw_analysis,
		        created_at
		 FROM documents WHERE case_id = ? ORDER BY created_at, rowid`, caseID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// ListNumbering returns the numbering metadata of the case's documents in
// creation order, the input shape the numbering engine expects.
func (r *DocumentRepo) ListNumbering(caseID string) ([]domain.DocumentNumbering, error) {
	return listNumbering(r.db, caseID)
}

func (r *DocumentRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&count)
	return count, err
}

// querier lets numbering reads run either on the pool or inside the
// confirmation transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func listNumbering(q querier, caseID string) ([]domain.DocumentNumbering, error) {
	rows, err := q.Query(
		`SELECT account_group_number, account_holder_label, document_number
		 FROM documents WHERE case_id = ? ORDER BY created_at, rowid`, caseID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var nums []domain.DocumentNumbering
	for rows.Next() {
		var n domain.DocumentNumbering
		if err := rows.Scan(&n.AccountGroupNumber, &n.AccountHolderLabel, &n.DocumentNumber); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		nums = append(nums, n)
	}
	return nums, rows.Err()
}

func scanDocument(scan func(...any) error) (*domain.Document, error) {
	var doc domain.Document
	var status, createdAt string

	err := scan(
		&doc.ID, &doc.CaseID, &doc.AccountHolderLabel, &doc.Institution,
		&doc.AccountGroupNumber, &doc.DocumentNumber, &status,
		&doc.RawAnalysis, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Status = domain.DocumentStatus(status)
	doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &doc, nil
}
