package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/evidence-cli/internal/config"
	"github.com/sells-group/evidence-cli/internal/store"
)

func TestImportCmd_MissingCSV(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	old := importCSVPath
	importCSVPath = ""
	defer func() { importCSVPath = old }()

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--csv is required")
}

func TestImportCmd_BadCSVPath(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	old := importCSVPath
	importCSVPath = "/nonexistent/path/to/leads.csv"
	defer func() { importCSVPath = old }()

	importCmd.SetContext(context.Background())
	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import csv")
}

func TestImportCmd_SQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "import.db")
	csvPath := filepath.Join(dir, "leads.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("lead_id,evidence_id,lead_name,lead_city\n1,10,Jane Doe,Chicago\n2,20,John Roe,\n"), 0644))

	st, err := store.NewSQLite(dbPath, store.Tables{})
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Close())

	cfg = &config.Config{Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: dbPath}}
	old := importCSVPath
	importCSVPath = csvPath
	defer func() { importCSVPath = old }()

	var out bytes.Buffer
	importCmd.SetOut(&out)
	defer importCmd.SetOut(nil)
	importCmd.SetContext(context.Background())

	require.NoError(t, importCmd.RunE(importCmd, nil))
	assert.Equal(t, "Imported 2 leads\n", out.String())

	st, err = store.NewSQLite(dbPath, store.Tables{})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	leads, err := st.PendingLeads(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Chicago", leads[0].City)
}
