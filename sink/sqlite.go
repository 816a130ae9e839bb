package sink

import (
	"database/sql"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePragmas trade durability for load speed.
// The journal is kept in memory so that a failed load can still roll back.
var DefaultSQLitePragmas = []string{
	`encoding = "UTF-8"`,
	"journal_mode = MEMORY",
	"synchronous = OFF",
	"temp_store = MEMORY",
	"cache_size = -65536",
}

// OpenSQLite opens or creates the SQLite database at path
// and applies pragmas to it.
func OpenSQLite(path string, pragmas []string) (*SQL, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite database %s", path)
	}
	// Pragmas are per connection, and SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec("PRAGMA " + p); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "set pragma %s", p)
		}
	}
	return NewSQL(db, SQLite{}), nil
}
