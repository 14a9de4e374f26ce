package repository

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
//
// Transactions are opened with BEGIN IMMEDIATE so concurrent writers take
// the write lock up front and queue on busy_timeout instead of failing
// with SQLITE_BUSY after reading a stale snapshot. Both settings are DSN
// parameters because busy_timeout applies per connection, and database/sql
// pools connections.
func InitDB(dsn string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_txlock=immediate&_pragma=busy_timeout(10000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			case_id TEXT NOT NULL,
			account_holder_label TEXT NOT NULL,
			institution TEXT NOT NULL,
			account_group_number TEXT NOT NULL,
			document_number TEXT NOT NULL,
			status TEXT NOT NULL,
			raw_analysis TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_case ON documents(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_case_group ON documents(case_id, account_group_number)`,

		// The composite primary key is the review matching key: the
		// extractor supplies no transaction identifier, so annotations are
		// addressed by (document, date, description, amount). Amounts are
		// stored as canonical decimal strings to keep key equality exact.
		`CREATE TABLE IF NOT EXISTS review_annotations (
			document_id TEXT NOT NULL,
			txn_date TEXT NOT NULL,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'NONE',
			comment TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (document_id, txn_date, description, amount),
			FOREIGN KEY (document_id) REFERENCES documents(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_annotations_document ON review_annotations(document_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
