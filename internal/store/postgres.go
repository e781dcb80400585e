package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/evidence-cli/internal/db"
	"github.com/sells-group/evidence-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	tables  Tables
	closeFn func()
}

// PoolConfig holds optional connection tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
	// Password overrides the DSN password (the service key).
	Password string `yaml:"-" mapstructure:"-"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, tables Tables, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
		if poolCfg.Password != "" {
			pgxCfg.ConnConfig.Password = poolCfg.Password
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, tables: tables.withDefaults(), closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. The caller owns the pool's lifetime.
func NewPostgresWithPool(pool db.Pool, tables Tables) *PostgresStore {
	return &PostgresStore{pool: pool, tables: tables.withDefaults()}
}

func (s *PostgresStore) migrationSQL() string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	lead_id      TEXT NOT NULL,
	evidence_id  TEXT NOT NULL,
	url          TEXT NOT NULL,
	source_type  TEXT NOT NULL CHECK (source_type IN ('website', 'press', 'project', 'images', 'article')),
	label        TEXT NOT NULL,
	published_at TIMESTAMPTZ,
	notes        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (lead_id, evidence_id, url)
);

CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (lead_id, evidence_id);
`, db.SanitizeTable(s.tables.Evidence), db.SanitizeTable("idx_"+sqlName(s.tables.Evidence)+"_lead"))
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, s.migrationSQL())
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) PendingLeads(ctx context.Context, limit int) ([]model.Lead, error) {
	q := fmt.Sprintf(
		"SELECT lead_id::text, evidence_id::text, lead_name, lead_firm, lead_city FROM %s LIMIT $1",
		db.SanitizeTable(s.tables.Leads),
	)
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query pending leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var (
			l                model.Lead
			name, firm, city *string
		)
		if err := rows.Scan(&l.LeadID, &l.EvidenceID, &name, &firm, &city); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l.Name, l.Firm, l.City = deref(name), deref(firm), deref(city)
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate leads")
	}
	return leads, nil
}

func (s *PostgresStore) UpsertEvidence(ctx context.Context, rows []model.Evidence) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = evidenceRow(r)
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        s.tables.Evidence,
		Columns:      evidenceColumns,
		ConflictKeys: evidenceConflictKeys,
	}, data)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert evidence")
	}
	return n, nil
}

// ImportLeads appends leads to the leads table with COPY.
func (s *PostgresStore) ImportLeads(ctx context.Context, leads []model.Lead) (int64, error) {
	data := make([][]any, len(leads))
	for i, l := range leads {
		data[i] = leadRow(l)
	}
	n, err := db.CopyFrom(ctx, s.pool, s.tables.Leads, leadColumns, data)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: import leads")
	}
	return n, nil
}

// sqlName turns a possibly schema-qualified table into an identifier-safe suffix.
func sqlName(table string) string {
	return strings.ReplaceAll(table, ".", "_")
}
