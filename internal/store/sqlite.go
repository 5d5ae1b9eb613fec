package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
)

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
  id          TEXT PRIMARY KEY,
  created_at  TEXT NOT NULL,     -- RFC3339Nano
  path        TEXT,
  language    TEXT NOT NULL,
  code_lines  INTEGER NOT NULL,
  errors      INTEGER NOT NULL,
  warnings    INTEGER NOT NULL,
  infos       INTEGER NOT NULL,
  hints       INTEGER NOT NULL,
  report_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS issues (
  id         TEXT NOT NULL,
  review_id  TEXT NOT NULL,
  rule_id    TEXT NOT NULL,
  severity   TEXT NOT NULL,
  category   TEXT NOT NULL,
  line       INTEGER NOT NULL,
  col        INTEGER NOT NULL,
  message    TEXT NOT NULL,
  PRIMARY KEY (id, review_id),
  FOREIGN KEY(review_id) REFERENCES reviews(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS verdicts (
  review_id    TEXT PRIMARY KEY,
  decision     TEXT NOT NULL,
  verdict_json TEXT NOT NULL,
  FOREIGN KEY(review_id) REFERENCES reviews(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_reviews_created ON reviews(created_at);
CREATE INDEX IF NOT EXISTS idx_issues_rule ON issues(rule_id);
`

// SQLiteStore keeps reviews in a SQLite database. Issues are also
// written to their own table for ad-hoc queries.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and creates if missing) the database at path and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) WriteReport(ctx context.Context, rec *Record) (string, error) {
	ctx, span := storeTracer.Start(ctx, "write report")
	defer span.End()

	if rec.Report == nil {
		return "", fail(span, errors.New("record has no report"))
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", fail(span, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fail(span, err)
	}
	defer func() { _ = tx.Rollback() }()

	sum := rec.Report.Summary
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (id, created_at, path, language, code_lines, errors, warnings, infos, hints, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.Path, string(rec.Report.Language),
		rec.Report.CodeLines, sum.Errors, sum.Warnings, sum.Infos, sum.Hints, string(data),
	); err != nil {
		return "", fail(span, fmt.Errorf("inserting review: %w", err))
	}

	if len(rec.Report.Issues) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO issues (id, review_id, rule_id, severity, category, line, col, message)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fail(span, err)
		}
		defer stmt.Close()
		for _, issue := range rec.Report.Issues {
			if _, err := stmt.ExecContext(ctx,
				issue.ID, rec.ID, issue.Rule, string(issue.Severity), string(issue.Category),
				issue.Line, issue.Column, issue.Message,
			); err != nil {
				return "", fail(span, fmt.Errorf("inserting issue %s: %w", issue.ID, err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fail(span, err)
	}
	span.SetAttributes(
		attribute.String("quill.store.id", rec.ID),
		attribute.Int("quill.store.issue_count", len(rec.Report.Issues)),
	)
	return rec.ID, nil
}

func (s *SQLiteStore) WriteVerdict(ctx context.Context, id string, verdict *Verdict) error {
	ctx, span := storeTracer.Start(ctx, "write verdict")
	defer span.End()

	data, err := json.Marshal(verdict)
	if err != nil {
		return fail(span, err)
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE id = ?`, id).Scan(&exists); err != nil {
		return fail(span, err)
	}
	if exists == 0 {
		return fail(span, fmt.Errorf("%w: %s", ErrNotFound, id))
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO verdicts (review_id, decision, verdict_json) VALUES (?, ?, ?)
		 ON CONFLICT(review_id) DO UPDATE SET decision=excluded.decision, verdict_json=excluded.verdict_json`,
		id, verdict.Decision, string(data),
	); err != nil {
		return fail(span, err)
	}

	span.SetAttributes(
		attribute.String("quill.store.id", id),
		attribute.String("quill.decision", verdict.Decision),
	)
	return nil
}

func (s *SQLiteStore) ReadReport(ctx context.Context, id string) (*Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM reviews WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding review %s: %w", id, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) ReadVerdict(ctx context.Context, id string) (*Verdict, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT verdict_json FROM verdicts WHERE review_id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var v Verdict
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("decoding verdict %s: %w", id, err)
	}
	return &v, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM reviews ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Open returns the store selected by driver ("file" or "sqlite").
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
