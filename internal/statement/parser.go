package statement

import (
	"sort"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
	"github.com/greenwayb/replit-casevault-sub000/internal/money"
)

// Parse converts a `<transaction_analysis>` XML document into the canonical
// statement model. AI output is not guaranteed well-formed, so parsing is
// lenient throughout: missing or malformed elements default to empty
// strings / zero amounts and never produce an error. A document with no
// recognizable root yields an empty statement; callers detect that by
// inspecting emptiness, not by catching failures.
func Parse(xmlText string) *domain.CanonicalStatement {
	st := &domain.CanonicalStatement{}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return st
	}

	root := doc.SelectElement("transaction_analysis")
	if root == nil {
		root = doc.FindElement("//transaction_analysis")
	}
	if root == nil {
		return st
	}

	st.Institution = childText(root, "institution")
	st.AccountType = childText(root, "account_type")
	st.PeriodStart = childText(root, "start_date")
	st.PeriodEnd = childText(root, "end_date")
	st.AccountNumber = childText(root, "account_number")
	st.BSB = childText(root, "account_bsb")
	st.Currency = childText(root, "currency")
	st.TotalCredits = money.ParseAmount(childText(root, "total_credits"))
	st.TotalDebits = money.ParseAmount(childText(root, "total_debits"))
	st.Summary = childText(root, "analysis_summary")

	st.AccountHolders = parseHolders(root.SelectElement("account_holders"))

	if txns := root.SelectElement("transactions"); txns != nil {
		for _, el := range txns.SelectElements("transaction") {
			st.Transactions = append(st.Transactions, parseTransaction(el))
		}
	}

	st.ExplicitInflows = parseFlowTotals(root.SelectElement("inflows"), "from")
	st.ExplicitOutflows = parseFlowTotals(root.SelectElement("outflows"), "to")

	Normalize(st)
	return st
}

// Normalize sorts transactions ascending by date. The extractor does not
// guarantee order, and the flow aggregator and review row indexing both
// assume it. The sort is stable; transactions whose date does not parse
// keep their relative order and sort after all dated ones.
func Normalize(st *domain.CanonicalStatement) {
	sort.SliceStable(st.Transactions, func(i, j int) bool {
		ti, okI := parseDate(st.Transactions[i].Date)
		tj, okJ := parseDate(st.Transactions[j].Date)
		if okI && okJ {
			return ti.Before(tj)
		}
		return okI && !okJ
	})
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

func parseTransaction(el *etree.Element) domain.Transaction {
	return domain.Transaction{
		Date:           childText(el, "date"),
		Description:    childText(el, "description"),
		Amount:         money.ParseAmount(childText(el, "amount")),
		Balance:        money.ParseOptional(childText(el, "balance")),
		Category:       childText(el, "category"),
		TransferType:   childText(el, "transfer_type"),
		TransferTarget: childText(el, "transfer_target"),
	}
}

// parseHolders reads `<account_holders><holder>..</holder>*`. Some model
// outputs put a single comma-separated string directly inside
// `<account_holders>`; that form is split on commas.
func parseHolders(el *etree.Element) []string {
	if el == nil {
		return nil
	}

	var holders []string
	for _, h := range el.SelectElements("holder") {
		if name := strings.TrimSpace(h.Text()); name != "" {
			holders = append(holders, name)
		}
	}
	if len(holders) > 0 {
		return holders
	}

	for _, part := range strings.Split(el.Text(), ",") {
		if name := strings.TrimSpace(part); name != "" {
			holders = append(holders, name)
		}
	}
	return holders
}

// parseFlowTotals reads `<inflows><from name="Salary">5000</from>*` (and
// the mirrored `<outflows><to ...>` form). Entries without a usable label
// or amount are skipped; document order is preserved.
func parseFlowTotals(el *etree.Element, child string) []domain.FlowTotal {
	if el == nil {
		return nil
	}

	var totals []domain.FlowTotal
	for _, e := range el.SelectElements(child) {
		label := strings.TrimSpace(e.SelectAttrValue("name", ""))
		if label == "" {
			label = childText(e, "name")
		}
		if label == "" {
			continue
		}

		raw := childText(e, "amount")
		if raw == "" {
			raw = strings.TrimSpace(e.Text())
		}
		totals = append(totals, domain.FlowTotal{
			Label:  label,
			Amount: money.ParseAmount(raw),
		})
	}
	return totals
}

func childText(parent *etree.Element, name string) string {
	if parent == nil {
		return ""
	}
	if el := parent.SelectElement(name); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}
