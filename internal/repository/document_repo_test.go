package repository

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/greenwayb/replit-casevault-sub000/internal/domain"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(":memory:")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	// Every pool connection would get its own in-memory database; pin to one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func confirmDoc(t *testing.T, repo *DocumentRepo, caseID, holder, institution string) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ID:                 fmt.Sprintf("doc-%s-%s-%d", caseID, holder, mustCount(t, repo)),
		CaseID:             caseID,
		AccountHolderLabel: holder,
		Institution:        institution,
		Status:             domain.StatusProcessed,
		RawAnalysis:        "<transaction_analysis/>",
	}
	if err := repo.Confirm(doc); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	return doc
}

func mustCount(t *testing.T, repo *DocumentRepo) int {
	t.Helper()
	n, err := repo.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestConfirmAssignsMonotonicNumbers(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))

	for i := 1; i <= 3; i++ {
		doc := confirmDoc(t, repo, "case-1", "Alice Smith", "Big Bank")
		if doc.AccountGroupNumber != "1" {
			t.Fatalf("confirmation %d: group %s", i, doc.AccountGroupNumber)
		}
		want := fmt.Sprintf("1.%d", i)
		if doc.DocumentNumber != want {
			t.Fatalf("confirmation %d: number %s, want %s", i, doc.DocumentNumber, want)
		}
	}
}

func TestConfirmAllocatesNewGroupPerHolder(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))

	confirmDoc(t, repo, "case-1", "Alice Smith", "Big Bank")
	bob := confirmDoc(t, repo, "case-1", "Bob Jones", "Big Bank")
	if bob.AccountGroupNumber != "2" || bob.DocumentNumber != "2.1" {
		t.Errorf("bob: got (%s, %s)", bob.AccountGroupNumber, bob.DocumentNumber)
	}

	alice := confirmDoc(t, repo, "case-1", "Alice Smith", "Big Bank")
	if alice.AccountGroupNumber != "1" || alice.DocumentNumber != "1.2" {
		t.Errorf("alice again: got (%s, %s)", alice.AccountGroupNumber, alice.DocumentNumber)
	}
}

func TestConfirmNumbersAreCaseScoped(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))

	confirmDoc(t, repo, "case-1", "Alice Smith", "Big Bank")
	other := confirmDoc(t, repo, "case-2", "Carol White", "Big Bank")
	if other.AccountGroupNumber != "1" || other.DocumentNumber != "1.1" {
		t.Errorf("other case should start fresh, got (%s, %s)", other.AccountGroupNumber, other.DocumentNumber)
	}
}

func TestGetByIDRoundTrip(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))

	created := confirmDoc(t, repo, "case-1", "Alice Smith", "Big Bank")
	loaded, err := repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if loaded.CaseID != "case-1" || loaded.AccountHolderLabel != "Alice Smith" {
		t.Errorf("loaded: %+v", loaded)
	}
	if loaded.DocumentNumber != created.DocumentNumber || loaded.Status != domain.StatusProcessed {
		t.Errorf("loaded: %+v", loaded)
	}
	if loaded.RawAnalysis != "<transaction_analysis/>" {
		t.Errorf("raw analysis: %q", loaded.RawAnalysis)
	}
}

func TestListNumberingCreationOrder(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))

	confirmDoc(t, repo, "case-1", "Alice Smith", "Big Bank")
	confirmDoc(t, repo, "case-1", "Bob Jones", "Big Bank")
	confirmDoc(t, repo, "case-1", "Alice Smith", "Big Bank")

	nums, err := repo.ListNumbering("case-1")
	if err != nil {
		t.Fatalf("list numbering: %v", err)
	}

	want := []string{"1.1", "2.1", "1.2"}
	if len(nums) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(nums))
	}
	for i := range want {
		if nums[i].DocumentNumber != want[i] {
			t.Errorf("entry %d: got %s, want %s", i, nums[i].DocumentNumber, want[i])
		}
	}
}

// Confirmations for the same case may arrive in parallel. Each one must
// queue on the database's write lock rather than fail, and the assigned
// sequence numbers must stay gapless and unique. Uses a file-backed
// database so the writers actually share one store across connections.
func TestConfirmSerializesConcurrentWriters(t *testing.T) {
	db, err := InitDB(filepath.Join(t.TempDir(), "casevault.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewDocumentRepo(db)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := &domain.Document{
				ID:                 fmt.Sprintf("doc-%d", i),
				CaseID:             "case-1",
				AccountHolderLabel: "Alice Smith",
				Institution:        "Big Bank",
				Status:             domain.StatusProcessed,
				RawAnalysis:        "<transaction_analysis/>",
			}
			if err := repo.Confirm(doc); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent confirm: %v", err)
	}

	docs, err := repo.ListByCase("case-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != writers {
		t.Fatalf("stored %d documents, want %d", len(docs), writers)
	}
	seen := make(map[string]bool, writers)
	for _, d := range docs {
		if seen[d.DocumentNumber] {
			t.Errorf("document number %s assigned twice", d.DocumentNumber)
		}
		seen[d.DocumentNumber] = true
	}
	for i := 1; i <= writers; i++ {
		if want := fmt.Sprintf("1.%d", i); !seen[want] {
			t.Errorf("missing document number %s", want)
		}
	}
}
