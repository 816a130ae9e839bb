package sqlitefile

import (
	"database/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func writeDatabase(t *testing.T, fill func(db *Database)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.db")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	db := OpenDatabase(f)
	fill(db)
	require.NoError(t, db.Close())
	return path
}

func openSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDatabaseReadableBySQLite(t *testing.T) {
	const rows = 50000
	big := strings.Repeat("λόγος ", 40000)

	path := writeDatabase(t, func(db *Database) {
		tbl := db.OpenTable()
		// two streams exercise interleaved leaves
		streams := []*TableStream{tbl.OpenStream(), tbl.OpenStream()}
		rec := &Record{}
		for i := 0; i < rows; i++ {
			rec.Reset()
			rec.AppendInt(int64(i))
			if i == 7 {
				rec.AppendString(big)
			} else {
				rec.AppendString("row")
			}
			_, err := streams[i%2].WriteRecord(rec)
			require.NoError(t, err)
		}
		for _, s := range streams {
			require.NoError(t, s.Close())
		}
		require.NoError(t, tbl.Close("t", `CREATE TABLE "t" ("a" int, "b" text)`))

		empty := db.OpenTable()
		require.NoError(t, empty.Close("empty", `CREATE TABLE "empty" ("x" int)`))
	})

	conn := openSQLite(t, path)
	var count, sum int64
	require.NoError(t, conn.QueryRow(`SELECT count(*), sum(a) FROM t`).Scan(&count, &sum))
	assert.Equal(t, int64(rows), count)
	assert.Equal(t, int64(rows*(rows-1)/2), sum)

	var b string
	require.NoError(t, conn.QueryRow(`SELECT b FROM t WHERE a = 7`).Scan(&b))
	assert.Equal(t, big, b)

	require.NoError(t, conn.QueryRow(`SELECT count(*) FROM empty`).Scan(&count))
	assert.Equal(t, int64(0), count)
}

func TestDatabaseShortRows(t *testing.T) {
	path := writeDatabase(t, func(db *Database) {
		tbl := db.OpenTable()
		s := tbl.OpenStream()
		rec := &Record{}
		rec.AppendInt(1)
		_, err := s.WriteRecord(rec)
		require.NoError(t, err)
		require.NoError(t, s.Close())
		require.NoError(t, tbl.Close("word", `CREATE TABLE "word" ("_id" int, "g_word" text)`))
	})

	var id int64
	var word sql.NullString
	require.NoError(t, openSQLite(t, path).QueryRow(`SELECT _id, g_word FROM word`).Scan(&id, &word))
	assert.Equal(t, int64(1), id)
	assert.False(t, word.Valid)
}

func TestClosedDatabase(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	defer f.Close()

	db := OpenDatabase(f)
	tbl := db.OpenTable()
	require.NoError(t, tbl.Close("a", `CREATE TABLE a (x)`))
	assert.ErrorIs(t, tbl.Close("a", `CREATE TABLE a (x)`), ErrClosed)
	require.NoError(t, db.Close())
	assert.ErrorIs(t, db.Close(), ErrClosed)
}
