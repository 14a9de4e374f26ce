// Package flow computes the inflow/outflow aggregation behind the money
// movement (Sankey) visualization. All statement views derive their flows
// from Compute; there is deliberately no per-view variant of this logic.
package flow

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
)

// PeriodAll selects the whole statement rather than one month.
const PeriodAll = "all"

// Default counterparty labels for transactions with neither a transfer
// target nor a category.
const (
	labelOtherIncome   = "Other Income"
	labelOtherExpenses = "Other Expenses"
)

// topFlowCount is how many ranked entries the summary carries.
const topFlowCount = 5

// Node is one vertex of the flow graph. Consumers index nodes positionally,
// so the construction order (inflow sources, account, outflow targets) is
// part of the contract.
type Node struct {
	Name string `json:"name"`
}

// Link is one directed edge, weighted by aggregate amount. Source and
// Target index into Graph.Nodes.
type Link struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

// RankedFlow is one entry of the top-inflow/top-outflow summary. Percent is
// the share of the respective total, zero when the total is zero.
type RankedFlow struct {
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	Percent float64         `json:"percent"`
}

// Graph is the full aggregation result for one statement and period.
type Graph struct {
	Period string `json:"period"`

	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`

	Inflows  []domain.FlowTotal `json:"inflows"`
	Outflows []domain.FlowTotal `json:"outflows"`

	TotalCredits decimal.Decimal `json:"total_credits"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	NetPosition  decimal.Decimal `json:"net_position"`

	TopInflows  []RankedFlow `json:"top_inflows"`
	TopOutflows []RankedFlow `json:"top_outflows"`
}

// Compute aggregates the statement's money flows for the given period
// ("all" or "YYYY-MM").
//
// For the whole-statement view, explicit inflow/outflow totals supplied by
// the extractor are authoritative and used verbatim. Any month view, or a
// statement without explicit totals, aggregates individual transactions
// instead; the two can disagree when the extractor's totals do not
// distribute cleanly across months, and that disagreement is accepted
// behavior. An empty result is a valid graph, never an error.
func Compute(st *domain.CanonicalStatement, period string) *Graph {
	if period == "" {
		period = PeriodAll
	}

	var inflows, outflows []domain.FlowTotal
	if period == PeriodAll && (len(st.ExplicitInflows) > 0 || len(st.ExplicitOutflows) > 0) {
		inflows = st.ExplicitInflows
		outflows = st.ExplicitOutflows
	} else {
		inflows, outflows = aggregate(st, period)
	}

	g := &Graph{
		Period:   period,
		Nodes:    []Node{},
		Links:    []Link{},
		Inflows:  inflows,
		Outflows: outflows,
	}

	g.TotalCredits = sum(inflows)
	g.TotalDebits = sum(outflows)
	g.NetPosition = g.TotalCredits.Sub(g.TotalDebits)

	buildGraph(g, accountNodeName(st))

	g.TopInflows = rank(inflows, g.TotalCredits)
	g.TopOutflows = rank(outflows, g.TotalDebits)

	return g
}

// Periods lists the period selectors available for a statement: "all"
// first, then each distinct transaction year-month ascending. Dates that do
// not carry a valid year-month prefix are left out of the bucketing (they
// still contribute to the "all" view).
func Periods(st *domain.CanonicalStatement) []string {
	seen := make(map[string]bool)
	var months []string
	for i := range st.Transactions {
		date := st.Transactions[i].Date
		if len(date) < 7 {
			continue
		}
		prefix := date[:7]
		if _, err := time.Parse("2006-01", prefix); err != nil {
			continue
		}
		if !seen[prefix] {
			seen[prefix] = true
			months = append(months, prefix)
		}
	}
	sort.Strings(months)
	return append([]string{PeriodAll}, months...)
}

// aggregate buckets transactions by counterparty label. Label fallback is
// transfer target, then category, then the generic income/expense bucket.
// Accumulation preserves first-seen label order so node positions stay
// deterministic.
func aggregate(st *domain.CanonicalStatement, period string) (inflows, outflows []domain.FlowTotal) {
	in := newAccumulator()
	out := newAccumulator()

	for i := range st.Transactions {
		t := &st.Transactions[i]
		if period != PeriodAll && !strings.HasPrefix(t.Date, period) {
			continue
		}
		switch {
		case t.Amount.IsPositive():
			in.add(flowLabel(t, labelOtherIncome), t.Amount)
		case t.Amount.IsNegative():
			out.add(flowLabel(t, labelOtherExpenses), t.Amount.Abs())
		}
	}

	return in.totals(), out.totals()
}

func flowLabel(t *domain.Transaction, fallback string) string {
	if t.TransferTarget != "" {
		return t.TransferTarget
	}
	if t.Category != "" {
		return t.Category
	}
	return fallback
}

// buildGraph appends the three node tiers and their edges: every inflow
// source feeds the account node, the account node feeds every outflow
// target.
func buildGraph(g *Graph, accountName string) {
	if len(g.Inflows) == 0 && len(g.Outflows) == 0 {
		return
	}

	for _, f := range g.Inflows {
		g.Nodes = append(g.Nodes, Node{Name: f.Label})
	}
	accountIdx := len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Name: accountName})
	for _, f := range g.Outflows {
		g.Nodes = append(g.Nodes, Node{Name: f.Label})
	}

	for i, f := range g.Inflows {
		g.Links = append(g.Links, Link{Source: i, Target: accountIdx, Value: f.Amount.InexactFloat64()})
	}
	for i, f := range g.Outflows {
		g.Links = append(g.Links, Link{Source: accountIdx, Target: accountIdx + 1 + i, Value: f.Amount.InexactFloat64()})
	}
}

// rank returns the top entries by amount descending, ties broken by
// insertion order. A zero total yields zero percentages, never a division
// error.
func rank(totals []domain.FlowTotal, total decimal.Decimal) []RankedFlow {
	sorted := make([]domain.FlowTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	if len(sorted) > topFlowCount {
		sorted = sorted[:topFlowCount]
	}

	ranked := make([]RankedFlow, 0, len(sorted))
	for _, f := range sorted {
		percent := 0.0
		if total.IsPositive() {
			percent = f.Amount.Div(total).InexactFloat64() * 100
		}
		ranked = append(ranked, RankedFlow{Label: f.Label, Amount: f.Amount, Percent: percent})
	}
	return ranked
}

func sum(totals []domain.FlowTotal) decimal.Decimal {
	s := decimal.Zero
	for _, f := range totals {
		s = s.Add(f.Amount)
	}
	return s
}

func accountNodeName(st *domain.CanonicalStatement) string {
	name := strings.TrimSpace(strings.TrimSpace(st.Institution) + " " + strings.TrimSpace(st.AccountType))
	if name == "" {
		return "Account"
	}
	return name
}

// accumulator keeps per-label sums with deterministic first-seen ordering.
type accumulator struct {
	order   []string
	amounts map[string]decimal.Decimal
}

func newAccumulator() *accumulator {
	return &accumulator{amounts: make(map[string]decimal.Decimal)}
}

func (a *accumulator) add(label string, amount decimal.Decimal) {
	if _, ok := a.amounts[label]; !ok {
		a.order = append(a.order, label)
	}
	a.amounts[label] = a.amounts[label].Add(amount)
}

func (a *accumulator) totals() []domain.FlowTotal {
	totals := make([]domain.FlowTotal, 0, len(a.order))
	for _, label := range a.order {
		totals = append(totals, domain.FlowTotal{Label: label, Amount: a.amounts[label]})
	}
	return totals
}
