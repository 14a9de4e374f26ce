// Package export derives flat CSV views of a canonical statement. The
// projections are pure: invoking them twice over the same statement yields
// byte-identical output, and nothing here touches storage.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
)

// Header is the fixed column order of the transaction projection. Downstream
// consumers (download, preview) rely on it never changing.
var Header = []string{"Date", "Description", "Amount", "Balance", "Category", "Transfer_Type", "Transfer_Target"}

// FlaggedHeader is the column order of the flagged-transaction export.
var FlaggedHeader = []string{"Row", "Date", "Description", "Amount", "Status", "Comment"}

// Projection is a tabular view of a statement. RowCount always equals the
// number of transactions projected; a divergence between the two would be a
// data-integrity defect upstream.
type Projection struct {
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"row_count"`
}

// Project derives the one-row-per-transaction view, in the statement's
// (date-normalized) transaction order.
func Project(st *domain.CanonicalStatement) *Projection {
	rows := make([][]string, 0, len(st.Transactions))
	for i := range st.Transactions {
		t := &st.Transactions[i]
		balance := ""
		if t.Balance != nil {
			balance = t.Balance.String()
		}
		rows = append(rows, []string{
			t.Date,
			t.Description,
			t.Amount.String(),
			balance,
			t.Category,
			t.TransferType,
			t.TransferTarget,
		})
	}
	return &Projection{Header: Header, Rows: rows, RowCount: len(rows)}
}

// ProjectFlagged derives the export of review rows flagged as queries,
// keeping each row's index from the full reconciled sequence.
func ProjectFlagged(rows []domain.AnnotatedTransaction) *Projection {
	out := make([][]string, 0)
	for i := range rows {
		r := &rows[i]
		if r.Status != domain.ReviewQuery {
			continue
		}
		out = append(out, []string{
			strconv.Itoa(r.RowIndex),
			r.Date,
			r.Description,
			r.Amount.String(),
			string(r.Status),
			r.Comment,
		})
	}
	return &Projection{Header: FlaggedHeader, Rows: out, RowCount: len(out)}
}

// Render serializes the projection as CSV text with standard escaping
// (values containing commas, quotes or newlines are quoted, internal quotes
// doubled).
func (p *Projection) Render() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// csv.Writer only errors on a broken underlying writer; bytes.Buffer
	// never is.
	_ = w.Write(p.Header)
	_ = w.WriteAll(p.Rows)
	return buf.String()
}
