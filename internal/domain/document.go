package domain

import "time"

type DocumentStatus string

const (
	// StatusProcessed marks a document whose canonical record was extracted
	// successfully.
	StatusProcessed DocumentStatus = "PROCESSED"
	// StatusManualReview marks a document the AI extraction failed on; it
	// carries no canonical record and its numbering is the degenerate
	// placeholder path.
	StatusManualReview DocumentStatus = "MANUAL_REVIEW"
)

// Document is one confirmed banking document within a case. RawAnalysis
// holds the canonical XML exactly as extracted; projections (CSV, flows,
// review rows) re-parse it on demand rather than caching derived state.
type Document struct {
	ID     string `json:"id"`
	CaseID string `json:"case_id"`

	AccountHolderLabel string `json:"account_holder_label"`
	Institution        string `json:"institution"`

	// Numbering assigned once at confirmation time, immutable thereafter.
	// Documents sharing (AccountGroupNumber, AccountHolderLabel) belong to
	// the same logical bank account.
	AccountGroupNumber string `json:"account_group_number"`
	DocumentNumber     string `json:"document_number"`

	Status      DocumentStatus `json:"status"`
	RawAnalysis string         `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
}

// DocumentNumbering is the numbering metadata of an existing document, the
// only input the numbering engine needs. Callers supply these in creation
// order; the engine falls back to that order for documents whose
// DocumentNumber has no parseable sequence suffix.
type DocumentNumbering struct {
	AccountGroupNumber string `json:"account_group_number"`
	AccountHolderLabel string `json:"account_holder_label"`
	DocumentNumber     string `json:"document_number"`
}
