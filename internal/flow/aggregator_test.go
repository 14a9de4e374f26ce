package flow

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func exampleStatement() *domain.CanonicalStatement {
	return &domain.CanonicalStatement{
		Institution: "Big Bank",
		AccountType: "Everyday",
		Transactions: []domain.Transaction{
			{Date: "2024-01-05", Description: "Salary", Amount: dec("5000"), Category: "Income"},
			{Date: "2024-01-10", Description: "Rent", Amount: dec("-2000"), TransferTarget: "Landlord"},
			{Date: "2024-01-15", Description: "Transfer to xx1234", Amount: dec("-500"), TransferTarget: "xx1234"},
		},
	}
}

func TestComputeAggregatesTransactions(t *testing.T) {
	g := Compute(exampleStatement(), PeriodAll)

	if len(g.Inflows) != 1 || g.Inflows[0].Label != "Income" || !g.Inflows[0].Amount.Equal(dec("5000")) {
		t.Errorf("inflows: got %v", g.Inflows)
	}
	if len(g.Outflows) != 2 {
		t.Fatalf("outflows: got %v", g.Outflows)
	}
	if g.Outflows[0].Label != "Landlord" || !g.Outflows[0].Amount.Equal(dec("2000")) {
		t.Errorf("outflow[0]: got %v", g.Outflows[0])
	}
	if g.Outflows[1].Label != "xx1234" || !g.Outflows[1].Amount.Equal(dec("500")) {
		t.Errorf("outflow[1]: got %v", g.Outflows[1])
	}

	if !g.TotalCredits.Equal(dec("5000")) || !g.TotalDebits.Equal(dec("2500")) {
		t.Errorf("totals: credits %s debits %s", g.TotalCredits, g.TotalDebits)
	}
	if !g.NetPosition.Equal(dec("2500")) {
		t.Errorf("net: got %s", g.NetPosition)
	}
}

func TestComputeGraphShape(t *testing.T) {
	g := Compute(exampleStatement(), PeriodAll)

	wantNodes := []string{"Income", "Big Bank Everyday", "Landlord", "xx1234"}
	if len(g.Nodes) != len(wantNodes) {
		t.Fatalf("nodes: got %v", g.Nodes)
	}
	for i, name := range wantNodes {
		if g.Nodes[i].Name != name {
			t.Errorf("node[%d]: got %q, want %q", i, g.Nodes[i].Name, name)
		}
	}

	wantLinks := []Link{
		{Source: 0, Target: 1, Value: 5000},
		{Source: 1, Target: 2, Value: 2000},
		{Source: 1, Target: 3, Value: 500},
	}
	if !reflect.DeepEqual(g.Links, wantLinks) {
		t.Errorf("links: got %v, want %v", g.Links, wantLinks)
	}
}

func TestComputeExplicitTotalsAuthoritativeForAll(t *testing.T) {
	st := exampleStatement()
	st.ExplicitInflows = []domain.FlowTotal{{Label: "Wages", Amount: dec("4800")}}
	st.ExplicitOutflows = []domain.FlowTotal{{Label: "Housing", Amount: dec("2100")}}

	g := Compute(st, PeriodAll)
	if len(g.Inflows) != 1 || g.Inflows[0].Label != "Wages" {
		t.Errorf("expected explicit inflows, got %v", g.Inflows)
	}
	if !g.TotalCredits.Equal(dec("4800")) || !g.TotalDebits.Equal(dec("2100")) {
		t.Errorf("totals: credits %s debits %s", g.TotalCredits, g.TotalDebits)
	}

	// A month period always aggregates transactions, even when explicit
	// totals exist and may disagree.
	m := Compute(st, "2024-01")
	if len(m.Inflows) != 1 || m.Inflows[0].Label != "Income" {
		t.Errorf("expected transaction aggregation for month, got %v", m.Inflows)
	}
	if !m.TotalCredits.Equal(dec("5000")) {
		t.Errorf("month credits: got %s", m.TotalCredits)
	}
}

func TestComputePeriodFilter(t *testing.T) {
	st := exampleStatement()
	st.Transactions = append(st.Transactions,
		domain.Transaction{Date: "2024-02-01", Description: "Groceries", Amount: dec("-300"), Category: "Food"},
	)

	g := Compute(st, "2024-02")
	if len(g.Inflows) != 0 {
		t.Errorf("expected no february inflows, got %v", g.Inflows)
	}
	if len(g.Outflows) != 1 || g.Outflows[0].Label != "Food" || !g.Outflows[0].Amount.Equal(dec("300")) {
		t.Errorf("february outflows: got %v", g.Outflows)
	}
	if !g.NetPosition.Equal(dec("-300")) {
		t.Errorf("february net: got %s", g.NetPosition)
	}
}

func TestComputeLabelFallbacks(t *testing.T) {
	st := &domain.CanonicalStatement{Transactions: []domain.Transaction{
		{Date: "2024-01-01", Description: "Mystery deposit", Amount: dec("100")},
		{Date: "2024-01-02", Description: "Mystery charge", Amount: dec("-40")},
		{Date: "2024-01-03", Description: "Zero line", Amount: dec("0")},
	}}

	g := Compute(st, PeriodAll)
	if len(g.Inflows) != 1 || g.Inflows[0].Label != "Other Income" {
		t.Errorf("inflow fallback: got %v", g.Inflows)
	}
	if len(g.Outflows) != 1 || g.Outflows[0].Label != "Other Expenses" {
		t.Errorf("outflow fallback: got %v", g.Outflows)
	}
	// The zero-amount line lands in neither bucket.
	if !g.TotalCredits.Equal(dec("100")) || !g.TotalDebits.Equal(dec("40")) {
		t.Errorf("totals: credits %s debits %s", g.TotalCredits, g.TotalDebits)
	}
}

func TestComputeZeroSafety(t *testing.T) {
	g := Compute(&domain.CanonicalStatement{}, PeriodAll)

	if !g.TotalCredits.IsZero() || !g.TotalDebits.IsZero() || !g.NetPosition.IsZero() {
		t.Errorf("totals not zero: %s %s %s", g.TotalCredits, g.TotalDebits, g.NetPosition)
	}
	if len(g.Nodes) != 0 || len(g.Links) != 0 {
		t.Errorf("expected empty graph, got %d nodes %d links", len(g.Nodes), len(g.Links))
	}
	if len(g.TopInflows) != 0 || len(g.TopOutflows) != 0 {
		t.Errorf("expected empty rankings, got %v %v", g.TopInflows, g.TopOutflows)
	}
}

func TestComputeZeroTotalYieldsZeroPercent(t *testing.T) {
	// Explicit entries that sum to zero must not divide by zero.
	st := &domain.CanonicalStatement{
		ExplicitInflows: []domain.FlowTotal{{Label: "Nothing", Amount: dec("0")}},
	}

	g := Compute(st, PeriodAll)
	if len(g.TopInflows) != 1 {
		t.Fatalf("expected 1 ranked inflow, got %v", g.TopInflows)
	}
	if g.TopInflows[0].Percent != 0 {
		t.Errorf("expected 0%%, got %v", g.TopInflows[0].Percent)
	}
}

func TestComputeConservation(t *testing.T) {
	g := Compute(exampleStatement(), PeriodAll)
	if !g.TotalCredits.Sub(g.TotalDebits).Equal(g.NetPosition) {
		t.Errorf("credits %s - debits %s != net %s", g.TotalCredits, g.TotalDebits, g.NetPosition)
	}
}

func TestComputeIdempotent(t *testing.T) {
	st := exampleStatement()
	first := Compute(st, PeriodAll)
	second := Compute(st, PeriodAll)
	if !reflect.DeepEqual(first, second) {
		t.Error("two computations over the same statement differ")
	}
}

func TestRankTopFiveWithTies(t *testing.T) {
	totals := []domain.FlowTotal{
		{Label: "A", Amount: dec("10")},
		{Label: "B", Amount: dec("50")},
		{Label: "C", Amount: dec("50")},
		{Label: "D", Amount: dec("5")},
		{Label: "E", Amount: dec("70")},
		{Label: "F", Amount: dec("1")},
	}

	ranked := rank(totals, dec("186"))
	if len(ranked) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(ranked))
	}

	wantOrder := []string{"E", "B", "C", "A", "D"}
	for i, label := range wantOrder {
		if ranked[i].Label != label {
			t.Errorf("rank[%d]: got %q, want %q", i, ranked[i].Label, label)
		}
	}
}

func TestPeriods(t *testing.T) {
	st := &domain.CanonicalStatement{Transactions: []domain.Transaction{
		{Date: "2024-02-10"},
		{Date: "2024-01-05"},
		{Date: "2024-01-20"},
		{Date: "bad date"},
		{Date: ""},
	}}

	got := Periods(st)
	want := []string{"all", "2024-01", "2024-02"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("periods: got %v, want %v", got, want)
	}
}

func TestPeriodsEmptyStatement(t *testing.T) {
	got := Periods(&domain.CanonicalStatement{})
	if len(got) != 1 || got[0] != PeriodAll {
		t.Errorf("periods: got %v", got)
	}
}
