package domain

import "time"

type ReviewStatus string

const (
	ReviewNone  ReviewStatus = "NONE"
	ReviewQuery ReviewStatus = "QUERY"
)

// MaxCommentLength caps review comments; longer input is truncated rather
// than rejected.
const MaxCommentLength = 5000

// ValidReviewStatus reports whether s is one of the known review statuses.
func ValidReviewStatus(s ReviewStatus) bool {
	return s == ReviewNone || s == ReviewQuery
}

// ReviewAnnotation is a human-entered review status/comment attached to one
// transaction. It is persisted independently of the re-extractable canonical
// record and keyed by the composite (document, date, description, amount)
// tuple, since the extractor supplies no transaction identifier. An
// annotation whose transaction disappears on re-extraction is orphaned, not
// deleted.
type ReviewAnnotation struct {
	DocumentID  string       `json:"document_id"`
	Date        string       `json:"date"`
	Description string       `json:"description"`
	Amount      string       `json:"amount"`
	Status      ReviewStatus `json:"status"`
	Comment     string       `json:"comment"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Key returns the composite matching key of this annotation.
func (a *ReviewAnnotation) Key() TransactionKey {
	return TransactionKey{Date: a.Date, Description: a.Description, Amount: a.Amount}
}

// AnnotatedTransaction is one transaction with its review state merged on,
// as consumed by the review table and by flagged-transaction export.
// RowIndex is 1-based and reflects position in the date-normalized sequence.
type AnnotatedTransaction struct {
	RowIndex int `json:"row_index"`
	Transaction
	Status  ReviewStatus `json:"status"`
	Comment string       `json:"comment"`
}
