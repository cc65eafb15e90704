package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS tests (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_date INTEGER NOT NULL,
    end_date INTEGER NOT NULL,
    test_url TEXT NOT NULL,
    data_source TEXT NOT NULL DEFAULT 'manual',
    target_audience TEXT NOT NULL DEFAULT '[]',
    split_a INTEGER NOT NULL,
    split_b INTEGER NOT NULL,
    variants TEXT NOT NULL,
    results TEXT,
    report TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tests_created ON tests(created_at);
`

// Timestamps are stored as Unix nanoseconds so times read back equal.
const testColumns = `id, name, description, start_date, end_date, test_url, data_source,
	target_audience, split_a, split_b, variants, results, report, created_at, updated_at`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTest(ctx context.Context, t *Test) (*Test, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}

	audienceJSON, err := json.Marshal(nonNil(t.TargetAudience))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal target audience: %w", err)
	}

	variantsJSON, err := json.Marshal(t.Variants)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variants: %w", err)
	}

	var resultsJSON, reportJSON []byte
	if t.Results != nil {
		if resultsJSON, err = json.Marshal(t.Results); err != nil {
			return nil, fmt.Errorf("failed to marshal results: %w", err)
		}
	}
	if t.Report != nil {
		if reportJSON, err = json.Marshal(t.Report); err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tests (`+testColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.StartDate.UnixNano(), t.EndDate.UnixNano(), t.TestURL, string(t.DataSource),
		string(audienceJSON), t.TrafficSplit.VariantA, t.TrafficSplit.VariantB, string(variantsJSON),
		nullableString(resultsJSON), nullableString(reportJSON), t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert test: %w", err)
	}

	return s.GetTest(ctx, t.ID)
}

func (s *SQLiteStore) GetTest(ctx context.Context, id string) (*Test, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+testColumns+` FROM tests WHERE id = ?`, id)

	test, err := scanTest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	return test, nil
}

func (s *SQLiteStore) ListTests(ctx context.Context) ([]*Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+testColumns+` FROM tests ORDER BY created_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	defer rows.Close()

	var tests []*Test
	for rows.Next() {
		test, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test: %w", err)
		}
		tests = append(tests, test)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	return tests, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTest(row scanner) (*Test, error) {
	var test Test
	var dataSource, audienceJSON, variantsJSON string
	var resultsJSON, reportJSON sql.NullString
	var startDate, endDate, createdAt, updatedAt int64

	err := row.Scan(&test.ID, &test.Name, &test.Description, &startDate, &endDate, &test.TestURL, &dataSource,
		&audienceJSON, &test.TrafficSplit.VariantA, &test.TrafficSplit.VariantB, &variantsJSON,
		&resultsJSON, &reportJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	test.DataSource = DataSource(dataSource)

	if err := json.Unmarshal([]byte(audienceJSON), &test.TargetAudience); err != nil {
		return nil, fmt.Errorf("failed to unmarshal target audience: %w", err)
	}

	if err := json.Unmarshal([]byte(variantsJSON), &test.Variants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variants: %w", err)
	}

	if resultsJSON.Valid && strings.TrimSpace(resultsJSON.String) != "" {
		test.Results = &Results{}
		if err := json.Unmarshal([]byte(resultsJSON.String), test.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}

	if reportJSON.Valid && strings.TrimSpace(reportJSON.String) != "" {
		test.Report = &Report{}
		if err := json.Unmarshal([]byte(reportJSON.String), test.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
	}

	test.StartDate = time.Unix(0, startDate).UTC()
	test.EndDate = time.Unix(0, endDate).UTC()
	test.CreatedAt = time.Unix(0, createdAt).UTC()
	test.UpdatedAt = time.Unix(0, updatedAt).UTC()

	return &test, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
