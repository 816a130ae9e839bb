// Package sqlitefile writes SQLite database files directly, without SQLite.
//
// It abstracts page allocation, b-tree interior nodes and overflow pages;
// callers provide rows as encoded records (see Record)
// and the CREATE TABLE statement each table is recorded with.
// The statement must describe a rowid table whose columns match the records:
// no INTEGER PRIMARY KEY alias, no indexes and no constraints that need one,
// since rowids are assigned by the writer.
//
// A Table is filled through one or more TableStreams,
// which may run on separate goroutines.
// Closing a Table builds its interior pages;
// closing the Database writes the header and the sqlite_schema table.
// The schema must fit on the first page.
//
// See https://sqlite.org/fileformat2.html for the file format.
package sqlitefile
