package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evidenceCols = []string{"lead_id", "evidence_id", "url", "source_type", "label", "published_at", "notes"}

func evidenceConfig() UpsertConfig {
	return UpsertConfig{
		Table:        "supplements_rows",
		Columns:      evidenceCols,
		ConflictKeys: []string{"lead_id", "evidence_id", "url"},
	}
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.Background(), nil, evidenceConfig(), nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:        "supplements_rows",
		ConflictKeys: []string{"url"},
	}, [][]any{{"a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:   "supplements_rows",
		Columns: []string{"url"},
	}, [][]any{{"a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := [][]any{
		{"1", "10", "https://a.org", "project", "Project page", nil, "Official project/exhibition page (a.org)"},
		{"1", "10", "https://b.com", "article", "Article", nil, "Credible media coverage (b.com)"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TEMP TABLE "_tmp_upsert_supplements_rows" (LIKE "supplements_rows" INCLUDING DEFAULTS) ON COMMIT DROP`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_supplements_rows"}, evidenceCols).WillReturnResult(2)
	mock.ExpectExec("DELETE FROM").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT ("lead_id", "evidence_id", "url") DO UPDATE SET "source_type" = EXCLUDED."source_type"`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, evidenceConfig(), rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

	_, err = BulkUpsert(context.Background(), mock, evidenceConfig(), [][]any{{"1", "10", "u", "website", "l", nil, "n"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestBulkUpsert_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_supplements_rows"}, evidenceCols).WillReturnError(errors.New("copy failed"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, evidenceConfig(), [][]any{{"1", "10", "u", "website", "l", nil, "n"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_InsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_supplements_rows"}, evidenceCols).WillReturnResult(1)
	mock.ExpectExec("DELETE FROM").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("unique violation"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, evidenceConfig(), [][]any{{"1", "10", "u", "website", "l", nil, "n"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSERT ON CONFLICT")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictAction(t *testing.T) {
	assert.Equal(t, "DO NOTHING", conflictAction(nil))
	assert.Equal(t, `DO UPDATE SET "label" = EXCLUDED."label"`, conflictAction([]string{"label"}))
}

func TestNonConflictColumns(t *testing.T) {
	got := nonConflictColumns(evidenceCols, []string{"lead_id", "evidence_id", "url"})
	assert.Equal(t, []string{"source_type", "label", "published_at", "notes"}, got)
}

func TestTempTableName(t *testing.T) {
	assert.Equal(t, "_tmp_upsert_public_supplements_rows", TempTableName("public.supplements_rows"))
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.supplements_rows", `"public"."supplements_rows"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeTable(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"id", "name", "value"})
	assert.Equal(t, `"id", "name", "value"`, result)
}
