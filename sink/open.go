package sink

import (
	"github.com/pkg/errors"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendSQLite    = "sqlite"
	BackendMySQL     = "mysql"
	BackendSQLiteRaw = "sqlite-raw"
)

// Backends lists the backends Open accepts.
var Backends = []string{BackendSQLite, BackendMySQL, BackendSQLiteRaw}

// Options configure a sink opened with Open.
type Options struct {
	// SQLitePragmas are applied to sqlite connections.
	// Nil means DefaultSQLitePragmas.
	SQLitePragmas []string
}

// Open returns the sink of the named backend.
// conn is a file path for sqlite and sqlite-raw,
// and a connection string for mysql (see ParseMySQLConnection).
func Open(backend, conn string, opts Options) (Sink, error) {
	switch strings.ToLower(backend) {
	case BackendSQLite:
		pragmas := opts.SQLitePragmas
		if pragmas == nil {
			pragmas = DefaultSQLitePragmas
		}
		s, err := OpenSQLite(conn, pragmas)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMySQL:
		cfg, err := ParseMySQLConnection(conn)
		if err != nil {
			return nil, err
		}
		s, err := OpenMySQL(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLiteRaw:
		if conn == "" {
			return nil, errors.New("sqlite-raw: empty file path")
		}
		return NewRawFile(conn), nil
	}
	return nil, errors.Errorf("unknown backend %q (want one of %s)", backend, strings.Join(Backends, ", "))
}
