package database

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingOrdersAndSkips(t *testing.T) {
	fsys := fstest.MapFS{
		"003_third.sql":      {Data: []byte("SELECT 3")},
		"001_first.sql":      {Data: []byte("SELECT 1")},
		"002_second.sql":     {Data: []byte("SELECT 2")},
		"999_reset_all.sql":  {Data: []byte("DROP TABLE x")},
		"README.md":          {Data: []byte("docs")},
		"nested/004_sub.sql": {Data: []byte("SELECT 4")},
	}

	files, err := Pending(fsys, map[string]bool{"002_second.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.sql", "003_third.sql"}, files)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	require.NoError(t, err)

	files, err := Pending(sub, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_accounts.sql", "002_invoices.sql"}, files)

	schema, err := fs.ReadFile(sub, "002_invoices.sql")
	require.NoError(t, err)
	assert.Contains(t, string(schema), "UNIQUE (user_id, invoice_no)")
	assert.Contains(t, string(schema), "ON DELETE CASCADE")
}
