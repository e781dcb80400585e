package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/evidence-cli/internal/db"
	"github.com/sells-group/evidence-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local runs and tests.
type SQLiteStore struct {
	db     *sql.DB
	tables Tables
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, tables Tables) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: conn, tables: tables.withDefaults()}, nil
}

func (s *SQLiteStore) migrationSQL() string {
	leads := db.SanitizeTable(s.tables.Leads)
	evidence := db.SanitizeTable(s.tables.Evidence)
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	lead_id     TEXT NOT NULL,
	evidence_id TEXT NOT NULL,
	lead_name   TEXT NOT NULL,
	lead_firm   TEXT,
	lead_city   TEXT,
	PRIMARY KEY (lead_id, evidence_id)
);

CREATE TABLE IF NOT EXISTS %[2]s (
	lead_id      TEXT NOT NULL,
	evidence_id  TEXT NOT NULL,
	url          TEXT NOT NULL,
	source_type  TEXT NOT NULL,
	label        TEXT NOT NULL,
	published_at TEXT,
	notes        TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (lead_id, evidence_id, url)
);
`, leads, evidence)
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.migrationSQL())
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PendingLeads(ctx context.Context, limit int) ([]model.Lead, error) {
	q := fmt.Sprintf(
		"SELECT lead_id, evidence_id, lead_name, lead_firm, lead_city FROM %s ORDER BY rowid LIMIT ?",
		db.SanitizeTable(s.tables.Leads),
	)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query pending leads")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.Lead
	for rows.Next() {
		var (
			l          model.Lead
			firm, city sql.NullString
		)
		if err := rows.Scan(&l.LeadID, &l.EvidenceID, &l.Name, &firm, &city); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		l.Firm, l.City = firm.String, city.String
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate leads")
	}
	return leads, nil
}

func (s *SQLiteStore) UpsertEvidence(ctx context.Context, rows []model.Evidence) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	updates := make([]string, 0, len(evidenceColumns))
	for _, c := range evidenceColumns[len(evidenceConflictKeys):] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT (%s) DO UPDATE SET %s",
		db.SanitizeTable(s.tables.Evidence),
		strings.Join(evidenceColumns, ", "),
		strings.Join(evidenceConflictKeys, ", "),
		strings.Join(updates, ", "),
	)

	var total int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, q)
		if err != nil {
			return eris.Wrap(err, "sqlite: prepare evidence upsert")
		}
		defer stmt.Close() //nolint:errcheck

		for _, r := range rows {
			var published any
			if r.PublishedAt != nil {
				published = r.PublishedAt.UTC().Format(time.RFC3339)
			}
			res, err := stmt.ExecContext(ctx, r.LeadID, r.EvidenceID, r.URL, string(r.SourceType), r.Label, published, r.Notes)
			if err != nil {
				return eris.Wrapf(err, "sqlite: upsert evidence %s", r.URL)
			}
			n, _ := res.RowsAffected()
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ImportLeads inserts or refreshes leads keyed on (lead_id, evidence_id).
func (s *SQLiteStore) ImportLeads(ctx context.Context, leads []model.Lead) (int64, error) {
	if len(leads) == 0 {
		return 0, nil
	}
	q := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (lead_id, evidence_id) DO UPDATE SET
	lead_name = excluded.lead_name, lead_firm = excluded.lead_firm, lead_city = excluded.lead_city`,
		db.SanitizeTable(s.tables.Leads),
		strings.Join(leadColumns, ", "),
	)

	var total int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, l := range leads {
			res, err := tx.ExecContext(ctx, q, leadRow(l)...)
			if err != nil {
				return eris.Wrapf(err, "sqlite: import lead %s/%s", l.LeadID, l.EvidenceID)
			}
			n, _ := res.RowsAffected()
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListEvidence returns every evidence row ordered by lead, slot and URL.
func (s *SQLiteStore) ListEvidence(ctx context.Context) ([]model.Evidence, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY lead_id, evidence_id, url",
		strings.Join(evidenceColumns, ", "),
		db.SanitizeTable(s.tables.Evidence),
	)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list evidence")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Evidence
	for rows.Next() {
		var (
			e         model.Evidence
			kind      string
			published sql.NullString
		)
		if err := rows.Scan(&e.LeadID, &e.EvidenceID, &e.URL, &kind, &e.Label, &published, &e.Notes); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan evidence")
		}
		e.SourceType = model.Kind(kind)
		if published.Valid {
			t, err := time.Parse(time.RFC3339, published.String)
			if err != nil {
				return nil, eris.Wrapf(err, "sqlite: parse published_at %q", published.String)
			}
			e.PublishedAt = &t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate evidence")
	}
	return out, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}
