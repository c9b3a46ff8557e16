package migrations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `create table if not exists course (title text not null);`

func TestOpenAndApplySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.db")

	db, err := OpenAndApplySchema(testSchema, path)
	require.NoError(t, err)
	_, err = db.Exec("insert into course(title) values (?)", "Basis Data C")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenAndApplySchema(testSchema, path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("select count(*) from course").Scan(&count))
	require.Equal(t, 1, count)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)
}

func TestOpenMemory(t *testing.T) {
	db, err := OpenAndApplySchema(testSchema, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("insert into course(title) values ('x')")
	require.NoError(t, err)
}
