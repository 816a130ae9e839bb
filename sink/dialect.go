package sink

import (
	"strings"
)

// Dialect renders the SQL of one database.
type Dialect interface {
	Quote(ident string) string
	IntegerType() string
	StringType() string
	// Upsert returns an INSERT of (KeyColumn, column) that updates column on a key conflict.
	Upsert(table, column string) string
}

func dropTableSQL(d Dialect, table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

func createTableSQL(d Dialect, table string, columns []Column, withKeys bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.Quote(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Quote(c.Name))
		b.WriteByte(' ')
		b.WriteString(c.Type)
		if withKeys && c.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
	}
	b.WriteString(")")
	return b.String()
}

func addColumnSQL(d Dialect, table string, c Column) string {
	return "ALTER TABLE " + d.Quote(table) + " ADD " + d.Quote(c.Name) + " " + c.Type
}

func insertSQL(d Dialect, table string, columns ...string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	return "INSERT INTO " + d.Quote(table) + " (" + strings.Join(quoted, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
}

// SQLite is the SQLite dialect.
type SQLite struct{}

func (SQLite) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (SQLite) IntegerType() string { return "int" }
func (SQLite) StringType() string  { return "text" }

func (d SQLite) Upsert(table, column string) string {
	c := d.Quote(column)
	return insertSQL(d, table, KeyColumn, column) +
		" ON CONFLICT (" + d.Quote(KeyColumn) + ") DO UPDATE SET " + c + " = excluded." + c
}

// MySQL is the MySQL dialect.
type MySQL struct{}

func (MySQL) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (MySQL) IntegerType() string { return "INT" }
func (MySQL) StringType() string  { return "VARCHAR(255)" }

func (d MySQL) Upsert(table, column string) string {
	c := d.Quote(column)
	return insertSQL(d, table, KeyColumn, column) +
		" ON DUPLICATE KEY UPDATE " + c + " = VALUES(" + c + ")"
}
