package sqlitefile

import (
	"encoding/binary"
	"github.com/pkg/errors"
	"io"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when a Database or Table is used after Close.
var ErrClosed = errors.New("sqlitefile: closed")

type schemaRecord struct {
	typ       string
	name      string
	tableName string
	rootPage  pageNumber
	sql       string
}

// Database is a SQLite database file being written.
type Database struct {
	file           io.WriterAt
	nextPageNumber *atomic.Uint32

	// schemaLock protects schemaRecords and closed
	schemaLock    sync.Mutex
	schemaRecords []schemaRecord
	closed        bool
}

// OpenDatabase prepares to write a SQLite database to file.
// Nothing is written to page 1 until Close.
func OpenDatabase(file io.WriterAt) *Database {
	db := &Database{
		file:           file,
		nextPageNumber: &atomic.Uint32{},
	}
	db.nextPageNumber.Store(2)
	return db
}

// Close writes the database header and the sqlite_schema table,
// which points at the root page of every closed Table.
// It does not close the underlying file.
func (db *Database) Close() error {
	db.schemaLock.Lock()
	defer db.schemaLock.Unlock()

	if db.closed {
		return ErrClosed
	}
	db.closed = true

	hdr := newHeaderPage(pageSize)
	for i, entry := range db.schemaRecords {
		row, err := db.writeSchemaRecord(i, entry)
		if err != nil {
			return err
		}
		if !hdr.add(row) {
			return errors.Errorf("sqlitefile: schema of %d tables does not fit on the first page", len(db.schemaRecords))
		}
	}

	_, err := db.file.WriteAt(hdr.finish(), 0)
	return err
}

// OpenTable starts a new table b-tree.
// Its name and schema are given when it is closed.
func (db *Database) OpenTable() *Table {
	return &Table{
		parent:       db,
		interiorPage: make([]byte, pageSize),
	}
}

func (db *Database) addTableSchemaRecord(name, sql string, rootPage pageNumber) error {
	db.schemaLock.Lock()
	defer db.schemaLock.Unlock()

	if db.closed {
		return ErrClosed
	}
	db.schemaRecords = append(db.schemaRecords, schemaRecord{
		typ:       "table",
		name:      name,
		tableName: name,
		rootPage:  rootPage,
		sql:       sql,
	})
	return nil
}

// allocPage allocates a page from the database file.
func (db *Database) allocPage() (pageNumber, error) {
	for {
		p := db.nextPageNumber.Add(1) - 1
		if p == 0 {
			return 0, errors.New("sqlitefile: database too large")
		}
		if !isLockBytePage(p) {
			return pageNumber(p), nil
		}
	}
}

// isLockBytePage reports whether p holds the byte range SQLite reserves for file locks.
func isLockBytePage(p uint32) bool {
	return int64(p-1)*pageSize == 1073741824
}

func (db *Database) writePage(p pageNumber, page []byte) error {
	_, err := db.file.WriteAt(page, int64(p-1)*pageSize)
	return err
}

// writeOverflowPages moves the part of row that does not fit on a leaf page
// to a chain of overflow pages,
// returning the first overflow page and the part that stays on the leaf.
func (db *Database) writeOverflowPages(row []byte) (overflow pageNumber, onPage []byte, err error) {
	spaceRequired := tableLeafPayloadOnPage(pageSize, len(row))
	if len(row) <= spaceRequired {
		return 0, row, nil
	}

	page := make([]byte, pageSize)
	rest := row[spaceRequired:]
	row = row[:spaceRequired]
	if overflow, err = db.allocPage(); err != nil {
		return 0, nil, err
	}
	thisPage := overflow
	nextPage := pageNumber(0)

	for len(rest) > pageSize-4 {
		if nextPage, err = db.allocPage(); err != nil {
			return 0, nil, err
		}
		binary.BigEndian.PutUint32(page, uint32(nextPage))
		copy(page[4:], rest)
		rest = rest[pageSize-4:]
		if err = db.writePage(thisPage, page); err != nil {
			return 0, nil, err
		}
		thisPage = nextPage
	}

	binary.BigEndian.PutUint32(page, 0)
	copy(page[4:], rest)
	clear(page[4+len(rest):])
	if err = db.writePage(thisPage, page); err != nil {
		return 0, nil, err
	}
	return overflow, row, nil
}

func (db *Database) writeSchemaRecord(rowid int, entry schemaRecord) (row []byte, err error) {
	rec := &Record{}
	rec.AppendString(entry.typ)
	rec.AppendString(entry.name)
	rec.AppendString(entry.tableName)
	rec.AppendInt(int64(entry.rootPage))
	rec.AppendString(entry.sql)

	payload := rec.AppendTo(nil)
	payloadLen := len(payload)
	overflow, payload, err := db.writeOverflowPages(payload)
	if err != nil {
		return nil, err
	}
	return appendTableRow(nil, int64(payloadLen), int64(rowid+1), payload, overflow), nil
}
