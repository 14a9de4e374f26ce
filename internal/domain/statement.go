package domain

import "github.com/shopspring/decimal"

// CanonicalStatement is the structured extraction output for one bank
// statement. It is produced by parsing the `<transaction_analysis>` XML the
// AI extraction step emits; every field is best-effort and may be empty or
// zero when extraction was partial.
type CanonicalStatement struct {
	Institution    string   `json:"institution"`
	AccountHolders []string `json:"account_holders"`
	AccountType    string   `json:"account_type"`

	// Statement period, "YYYY-MM-DD". Empty when the extractor could not
	// determine it.
	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`

	AccountNumber string `json:"account_number,omitempty"`
	BSB           string `json:"account_bsb,omitempty"`
	Currency      string `json:"currency"`

	// Totals as reported by the extractor, not recomputed.
	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`

	Transactions []Transaction `json:"transactions"`

	// Pre-aggregated counterparty totals, present only when the extractor
	// supplied structured inflow/outflow sections. Kept in document order.
	ExplicitInflows  []FlowTotal `json:"explicit_inflows,omitempty"`
	ExplicitOutflows []FlowTotal `json:"explicit_outflows,omitempty"`

	Summary string `json:"summary,omitempty"`
}

// HolderLabel joins the account holders into the display label used as the
// account-group key at numbering time.
func (s *CanonicalStatement) HolderLabel() string {
	label := ""
	for i, h := range s.AccountHolders {
		if i > 0 {
			label += ", "
		}
		label += h
	}
	return label
}

// FlowTotal is one counterparty label with its aggregate amount.
type FlowTotal struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Transaction is one statement line. The extractor supplies no stable
// identifier; identity for review matching is the (date, description,
// amount) tuple, see TransactionKey.
type Transaction struct {
	// Date as extracted, normally "YYYY-MM-DD" but not guaranteed to parse.
	Date        string `json:"date"`
	Description string `json:"description"`
	// Negative = debit, positive = credit.
	Amount         decimal.Decimal  `json:"amount"`
	Balance        *decimal.Decimal `json:"balance,omitempty"`
	Category       string           `json:"category,omitempty"`
	TransferType   string           `json:"transfer_type,omitempty"`
	TransferTarget string           `json:"transfer_target,omitempty"`
}

// TransactionKey is the composite identity used to match persisted review
// annotations back onto re-extracted transactions. Amount is the canonical
// decimal string so that equality is exact.
type TransactionKey struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// Key derives the composite matching key for this transaction.
func (t *Transaction) Key() TransactionKey {
	return TransactionKey{
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount.String(),
	}
}
