// Package sink writes decoded corpus data to a relational database.
//
// A Sink hides the SQL dialect of one backend behind a fixed set of operations,
// so the loader never needs to know which database it is talking to.
// Backends: SQLite and MySQL through database/sql,
// and sqlite-raw, which writes a new SQLite file directly.
package sink

import (
	"context"
	"github.com/jordanwade90/tfsql/tf"
)

// Column names shared by every backend.
const (
	KeyColumn   = "_id"
	FromColumn  = "from_node"
	ToColumn    = "to_node"
	ValueColumn = "value"

	TypeTable       = "otype"
	TypeStartColumn = "startNode"
	TypeEndColumn   = "endNode"
	TypeLabelColumn = "typeLabel"
)

// Column describes a table column.
// Type is a type name of the sink's dialect (see IntegerType and StringType).
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// Sink is a relational database that a corpus is loaded into.
//
// Data is written between Begin and Commit; at most one transaction is open at a time.
// Sinks are not safe for concurrent use.
type Sink interface {
	// Ping checks that the database can be reached.
	Ping(ctx context.Context) error

	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// CreateTable drops any table called name and creates it with columns.
	CreateTable(ctx context.Context, name string, columns []Column) error
	// AddColumn adds a column to an existing table.
	AddColumn(ctx context.Context, table string, column Column) error

	// InsertNodes sets column to values[i] on the row keyed ids[i],
	// inserting the row if it does not exist yet.
	InsertNodes(ctx context.Context, table string, column Column, ids []uint64, values []any) error
	// InsertEdges appends one row per edge to an edge table.
	InsertEdges(ctx context.Context, table string, froms, tos []uint64, values []any) error
	// CreateTypeTable creates the object type table and fills it with ranges.
	CreateTypeTable(ctx context.Context, ranges []tf.TypeRange) error

	IntegerType() string
	StringType() string

	Close() error
}

// TypeColumn returns the column type of a feature's values.
func TypeColumn(s Sink, vt tf.ValueType) string {
	if vt == tf.String {
		return s.StringType()
	}
	return s.IntegerType()
}

// NodeTableColumns returns the columns a node table is created with.
func NodeTableColumns(s Sink) []Column {
	return []Column{{Name: KeyColumn, Type: s.IntegerType(), PrimaryKey: true}}
}

// EdgeTableColumns returns the columns of an edge table whose values have type vt.
func EdgeTableColumns(s Sink, vt tf.ValueType) []Column {
	return []Column{
		{Name: FromColumn, Type: s.IntegerType()},
		{Name: ToColumn, Type: s.IntegerType()},
		{Name: ValueColumn, Type: TypeColumn(s, vt)},
	}
}

func typeTableColumns(s Sink) []Column {
	return []Column{
		{Name: TypeStartColumn, Type: s.IntegerType()},
		{Name: TypeEndColumn, Type: s.IntegerType()},
		{Name: TypeLabelColumn, Type: s.StringType()},
	}
}
