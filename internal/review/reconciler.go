// Package review merges persisted human review annotations onto freshly
// parsed transactions, so re-running extraction never loses review work.
package review

import (
	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
)

// Reconcile attaches persisted annotations to the statement's transactions,
// matching on the composite (date, description, amount) key. Transactions
// without an annotation default to NONE with an empty comment. RowIndex is
// 1-based over the statement's normalized order.
//
// Duplicate annotation keys resolve last-write-wins. Two transactions with
// an identical composite key cannot be told apart and share one annotation;
// the extractor supplies no stable identifier, so this ambiguity is
// accepted rather than silently worked around.
func Reconcile(st *domain.CanonicalStatement, anns []domain.ReviewAnnotation) []domain.AnnotatedTransaction {
	byKey := make(map[domain.TransactionKey]*domain.ReviewAnnotation, len(anns))
	for i := range anns {
		byKey[anns[i].Key()] = &anns[i]
	}

	rows := make([]domain.AnnotatedTransaction, 0, len(st.Transactions))
	for i := range st.Transactions {
		t := st.Transactions[i]
		row := domain.AnnotatedTransaction{
			RowIndex:    i + 1,
			Transaction: t,
			Status:      domain.ReviewNone,
		}
		if ann, ok := byKey[t.Key()]; ok {
			row.Status = ann.Status
			row.Comment = ann.Comment
		}
		rows = append(rows, row)
	}
	return rows
}

// Orphans returns the annotations whose transaction no longer exists in the
// statement. Annotations are never deleted automatically; after a
// re-extraction changes a transaction's date, description or amount, its
// annotation surfaces here so the review UI can warn about it.
func Orphans(st *domain.CanonicalStatement, anns []domain.ReviewAnnotation) []domain.ReviewAnnotation {
	present := make(map[domain.TransactionKey]bool, len(st.Transactions))
	for i := range st.Transactions {
		present[st.Transactions[i].Key()] = true
	}

	var orphaned []domain.ReviewAnnotation
	for i := range anns {
		if !present[anns[i].Key()] {
			orphaned = append(orphaned, anns[i])
		}
	}
	return orphaned
}
