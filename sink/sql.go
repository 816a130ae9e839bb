package sink

import (
	"context"
	"database/sql"
	"github.com/jordanwade90/tfsql/tf"
	"github.com/pkg/errors"
	"math"
)

// SQL is a Sink backed by a database/sql connection pool.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	tx      *sql.Tx
}

var _ Sink = (*SQL)(nil)

// NewSQL returns a Sink that writes to db using dialect.
func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: db, dialect: dialect}
}

// DB returns the underlying connection pool.
func (s *SQL) DB() *sql.DB { return s.db }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// conn returns the open transaction, or the pool if there is none.
func (s *SQL) conn() execer {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *SQL) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &SinkError{Op: "ping", Err: err}
	}
	return nil
}

func (s *SQL) Begin(ctx context.Context) error {
	if s.tx != nil {
		return &SinkError{Op: "begin", Err: errors.New("transaction already open")}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &SinkError{Op: "begin", Err: err}
	}
	s.tx = tx
	return nil
}

func (s *SQL) Commit() error {
	if s.tx == nil {
		return &SinkError{Op: "commit", Err: errors.New("no open transaction")}
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return &SinkError{Op: "commit", Err: err}
	}
	return nil
}

func (s *SQL) Rollback() error {
	if s.tx == nil {
		return &SinkError{Op: "rollback", Err: errors.New("no open transaction")}
	}
	err := s.tx.Rollback()
	s.tx = nil
	if err != nil {
		return &SinkError{Op: "rollback", Err: err}
	}
	return nil
}

func (s *SQL) exec(ctx context.Context, op, table, stmt string, args ...any) error {
	if _, err := s.conn().ExecContext(ctx, stmt, args...); err != nil {
		return &SinkError{Op: op, Table: table, Statement: stmt, Err: err}
	}
	return nil
}

func (s *SQL) CreateTable(ctx context.Context, name string, columns []Column) error {
	if err := s.exec(ctx, "drop table", name, dropTableSQL(s.dialect, name)); err != nil {
		return err
	}
	return s.exec(ctx, "create table", name, createTableSQL(s.dialect, name, columns, true))
}

func (s *SQL) AddColumn(ctx context.Context, table string, column Column) error {
	return s.exec(ctx, "add column", table, addColumnSQL(s.dialect, table, column))
}

func (s *SQL) InsertNodes(ctx context.Context, table string, column Column, ids []uint64, values []any) error {
	if len(ids) != len(values) {
		return &SinkError{Op: "insert nodes", Table: table,
			Err: errors.Errorf("%d ids for %d values", len(ids), len(values))}
	}
	query := s.dialect.Upsert(table, column.Name)
	return s.batch(ctx, "insert nodes", table, query, len(ids), func(i int) ([]any, error) {
		id, err := sqlInt(ids[i])
		if err != nil {
			return nil, err
		}
		return []any{id, values[i]}, nil
	})
}

func (s *SQL) InsertEdges(ctx context.Context, table string, froms, tos []uint64, values []any) error {
	if len(froms) != len(tos) || len(froms) != len(values) {
		return &SinkError{Op: "insert edges", Table: table,
			Err: errors.Errorf("%d sources, %d targets and %d values", len(froms), len(tos), len(values))}
	}
	query := insertSQL(s.dialect, table, FromColumn, ToColumn, ValueColumn)
	return s.batch(ctx, "insert edges", table, query, len(froms), func(i int) ([]any, error) {
		from, err := sqlInt(froms[i])
		if err != nil {
			return nil, err
		}
		to, err := sqlInt(tos[i])
		if err != nil {
			return nil, err
		}
		return []any{from, to, values[i]}, nil
	})
}

func (s *SQL) CreateTypeTable(ctx context.Context, ranges []tf.TypeRange) error {
	if err := s.CreateTable(ctx, TypeTable, typeTableColumns(s)); err != nil {
		return err
	}
	query := insertSQL(s.dialect, TypeTable, TypeStartColumn, TypeEndColumn, TypeLabelColumn)
	return s.batch(ctx, "insert types", TypeTable, query, len(ranges), func(i int) ([]any, error) {
		lo, err := sqlInt(ranges[i].Min)
		if err != nil {
			return nil, err
		}
		hi, err := sqlInt(ranges[i].Max)
		if err != nil {
			return nil, err
		}
		return []any{lo, hi, ranges[i].Label}, nil
	})
}

// batch executes query once per row through a prepared statement.
func (s *SQL) batch(ctx context.Context, op, table, query string, n int, row func(int) ([]any, error)) error {
	if n == 0 {
		return nil
	}
	stmt, err := s.conn().PrepareContext(ctx, query)
	if err != nil {
		return &SinkError{Op: op, Table: table, Statement: query, Err: err}
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		args, err := row(i)
		if err == nil {
			_, err = stmt.ExecContext(ctx, args...)
		}
		if err != nil {
			return &SinkError{Op: op, Table: table, Statement: query, Err: err}
		}
	}
	return nil
}

func (s *SQL) IntegerType() string { return s.dialect.IntegerType() }
func (s *SQL) StringType() string  { return s.dialect.StringType() }

func (s *SQL) Close() error {
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

func sqlInt(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, errors.Errorf("node %d does not fit in a signed 64-bit integer", n)
	}
	return int64(n), nil
}
