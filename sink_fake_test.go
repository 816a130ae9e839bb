package tfsql

import (
	"context"
	"fmt"
	"github.com/jordanwade90/tfsql/sink"
	"github.com/jordanwade90/tfsql/tf"
)

// fakeSink records the calls made to it.
type fakeSink struct {
	calls      []string
	failInsert map[string]error
	failCreate error
}

func newFakeSink() *fakeSink {
	return &fakeSink{failInsert: map[string]error{}}
}

func (f *fakeSink) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeSink) Ping(ctx context.Context) error { return nil }

func (f *fakeSink) Begin(ctx context.Context) error {
	f.record("begin")
	return nil
}

func (f *fakeSink) Commit() error {
	f.record("commit")
	return nil
}

func (f *fakeSink) Rollback() error {
	f.record("rollback")
	return nil
}

func (f *fakeSink) CreateTable(ctx context.Context, name string, columns []sink.Column) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.record("create table %s", name)
	return nil
}

func (f *fakeSink) AddColumn(ctx context.Context, table string, column sink.Column) error {
	f.record("add column %s %s", table, column.Name)
	return nil
}

func (f *fakeSink) InsertNodes(ctx context.Context, table string, column sink.Column, ids []uint64, values []any) error {
	if err := f.failInsert[table]; err != nil {
		return err
	}
	f.record("insert nodes %s %s %d", table, column.Name, len(ids))
	return nil
}

func (f *fakeSink) InsertEdges(ctx context.Context, table string, froms, tos []uint64, values []any) error {
	if err := f.failInsert[table]; err != nil {
		return err
	}
	f.record("insert edges %s %d", table, len(froms))
	return nil
}

func (f *fakeSink) CreateTypeTable(ctx context.Context, ranges []tf.TypeRange) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.record("create type table %d", len(ranges))
	return nil
}

func (f *fakeSink) IntegerType() string { return "int" }
func (f *fakeSink) StringType() string  { return "text" }
func (f *fakeSink) Close() error        { return nil }
