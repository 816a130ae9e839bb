package sink

import (
	"cmp"
	"context"
	"github.com/jordanwade90/tfsql/internal/sqlitefile"
	"github.com/jordanwade90/tfsql/tf"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

// RawFile is a Sink that writes a new SQLite database file without a SQL engine.
//
// Rows are kept in memory until Commit, which replaces the file at path
// with one holding every table. Rollback discards them and leaves the file alone.
// Tables carry no primary key constraint in the written schema;
// node rows are written in node order, one row per node.
type RawFile struct {
	path    string
	dialect SQLite
	tables  []*rawTable
	inTx    bool
}

var _ Sink = (*RawFile)(nil)

type rawTable struct {
	name    string
	columns []Column
	rows    [][]any
	// byKey maps a node to its row; nil when the table has no key column.
	byKey  map[uint64]int
	keyCol int
}

// NewRawFile returns a Sink that will write a SQLite database to path.
func NewRawFile(path string) *RawFile {
	return &RawFile{path: path}
}

func (r *RawFile) Ping(ctx context.Context) error {
	dir := filepath.Dir(r.path)
	fi, err := os.Stat(dir)
	if err != nil {
		return &SinkError{Op: "ping", Err: err}
	}
	if !fi.IsDir() {
		return &SinkError{Op: "ping", Err: errors.Errorf("%s is not a directory", dir)}
	}
	return nil
}

func (r *RawFile) Begin(ctx context.Context) error {
	if r.inTx {
		return &SinkError{Op: "begin", Err: errors.New("transaction already open")}
	}
	r.inTx = true
	return nil
}

func (r *RawFile) Rollback() error {
	if !r.inTx {
		return &SinkError{Op: "rollback", Err: errors.New("no open transaction")}
	}
	r.inTx = false
	r.tables = nil
	return nil
}

func (r *RawFile) table(name string) (int, *rawTable) {
	for i, t := range r.tables {
		if t.name == name {
			return i, t
		}
	}
	return -1, nil
}

func (r *RawFile) CreateTable(ctx context.Context, name string, columns []Column) error {
	if i, _ := r.table(name); i >= 0 {
		r.tables = slices.Delete(r.tables, i, i+1)
	}
	t := &rawTable{name: name, columns: slices.Clone(columns), keyCol: -1}
	for i, c := range columns {
		if c.PrimaryKey {
			t.keyCol = i
			t.byKey = map[uint64]int{}
			break
		}
	}
	r.tables = append(r.tables, t)
	return nil
}

func (r *RawFile) AddColumn(ctx context.Context, table string, column Column) error {
	_, t := r.table(table)
	if t == nil {
		return &SinkError{Op: "add column", Table: table, Err: errors.New("no such table")}
	}
	if t.column(column.Name) >= 0 {
		return &SinkError{Op: "add column", Table: table, Err: errors.Errorf("duplicate column %s", column.Name)}
	}
	t.columns = append(t.columns, Column{Name: column.Name, Type: column.Type})
	return nil
}

func (t *rawTable) column(name string) int {
	for i, c := range t.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (r *RawFile) InsertNodes(ctx context.Context, table string, column Column, ids []uint64, values []any) error {
	_, t := r.table(table)
	switch {
	case t == nil:
		return &SinkError{Op: "insert nodes", Table: table, Err: errors.New("no such table")}
	case t.byKey == nil:
		return &SinkError{Op: "insert nodes", Table: table, Err: errors.New("table has no key column")}
	case len(ids) != len(values):
		return &SinkError{Op: "insert nodes", Table: table,
			Err: errors.Errorf("%d ids for %d values", len(ids), len(values))}
	}
	col := t.column(column.Name)
	if col < 0 {
		return &SinkError{Op: "insert nodes", Table: table, Err: errors.Errorf("no such column %s", column.Name)}
	}
	for i, id := range ids {
		key, err := sqlInt(id)
		if err != nil {
			return &SinkError{Op: "insert nodes", Table: table, Err: err}
		}
		n, ok := t.byKey[id]
		if !ok {
			n = len(t.rows)
			t.byKey[id] = n
			row := make([]any, len(t.columns))
			row[t.keyCol] = key
			t.rows = append(t.rows, row)
		}
		row := t.rows[n]
		if len(row) <= col {
			row = append(row, make([]any, col+1-len(row))...)
			t.rows[n] = row
		}
		row[col] = values[i]
	}
	return nil
}

func (r *RawFile) InsertEdges(ctx context.Context, table string, froms, tos []uint64, values []any) error {
	_, t := r.table(table)
	if t == nil {
		return &SinkError{Op: "insert edges", Table: table, Err: errors.New("no such table")}
	}
	if len(froms) != len(tos) || len(froms) != len(values) {
		return &SinkError{Op: "insert edges", Table: table,
			Err: errors.Errorf("%d sources, %d targets and %d values", len(froms), len(tos), len(values))}
	}
	from, to, value := t.column(FromColumn), t.column(ToColumn), t.column(ValueColumn)
	if from < 0 || to < 0 || value < 0 {
		return &SinkError{Op: "insert edges", Table: table, Err: errors.New("not an edge table")}
	}
	for i := range froms {
		f, err := sqlInt(froms[i])
		if err != nil {
			return &SinkError{Op: "insert edges", Table: table, Err: err}
		}
		g, err := sqlInt(tos[i])
		if err != nil {
			return &SinkError{Op: "insert edges", Table: table, Err: err}
		}
		row := make([]any, len(t.columns))
		row[from], row[to], row[value] = f, g, values[i]
		t.rows = append(t.rows, row)
	}
	return nil
}

func (r *RawFile) CreateTypeTable(ctx context.Context, ranges []tf.TypeRange) error {
	if err := r.CreateTable(ctx, TypeTable, typeTableColumns(r)); err != nil {
		return err
	}
	_, t := r.table(TypeTable)
	for _, tr := range ranges {
		lo, err := sqlInt(tr.Min)
		if err != nil {
			return &SinkError{Op: "insert types", Table: TypeTable, Err: err}
		}
		hi, err := sqlInt(tr.Max)
		if err != nil {
			return &SinkError{Op: "insert types", Table: TypeTable, Err: err}
		}
		t.rows = append(t.rows, []any{lo, hi, tr.Label})
	}
	return nil
}

// Commit writes every table to a new file at the sink's path.
// Tables are written concurrently.
func (r *RawFile) Commit() error {
	if !r.inTx {
		return &SinkError{Op: "commit", Err: errors.New("no open transaction")}
	}
	r.inTx = false

	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &SinkError{Op: "commit", Err: err}
	}
	defer os.Remove(tmp)

	if err := r.write(f); err != nil {
		f.Close()
		return &SinkError{Op: "commit", Err: err}
	}
	if err := f.Close(); err != nil {
		return &SinkError{Op: "commit", Err: err}
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return &SinkError{Op: "commit", Err: err}
	}
	r.tables = nil
	return nil
}

func (r *RawFile) write(f *os.File) error {
	db := sqlitefile.OpenDatabase(f)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, t := range r.tables {
		t := t
		g.Go(func() error {
			return errors.Wrapf(r.writeTable(db, t), "table %s", t.name)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func (r *RawFile) writeTable(db *sqlitefile.Database, t *rawTable) error {
	rows := t.rows
	if t.keyCol >= 0 {
		rows = slices.Clone(rows)
		slices.SortFunc(rows, func(a, b []any) int {
			return cmp.Compare(a[t.keyCol].(int64), b[t.keyCol].(int64))
		})
	}

	tbl := db.OpenTable()
	s := tbl.OpenStream()
	var rec sqlitefile.Record
	for _, row := range rows {
		rec.Reset()
		for _, v := range row {
			if err := rec.AppendValue(v); err != nil {
				return err
			}
		}
		if _, err := s.WriteRecord(&rec); err != nil {
			return err
		}
	}
	if err := s.Close(); err != nil {
		return err
	}
	return tbl.Close(t.name, createTableSQL(r.dialect, t.name, t.columns, false))
}

func (r *RawFile) IntegerType() string { return r.dialect.IntegerType() }
func (r *RawFile) StringType() string  { return r.dialect.StringType() }

// Close discards anything not committed.
func (r *RawFile) Close() error {
	r.inTx = false
	r.tables = nil
	return nil
}
