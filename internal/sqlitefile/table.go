package sqlitefile

import (
	"encoding/binary"
	"sync"
)

const (
	pageSize       = 65536
	minRowSize     = 4
	maxRowsPerPage = pageSize / minRowSize
)

// Table is a table b-tree being written.
//
// Rows are written through TableStreams, which fill leaf pages independently.
// Each leaf page is given a block of rowids derived from its page number,
// so leaves from different streams interleave into one valid b-tree
// and Close only has to build the interior pages above them.
type Table struct {
	parent *Database

	// interiorLock protects interiorNodes and closed.
	interiorLock  sync.Mutex
	interiorNodes []*interiorPage
	interiorPage  []byte
	closed        bool
}

// OpenStream opens a TableStream for writing to this table.
func (tbl *Table) OpenStream() *TableStream {
	return &TableStream{
		parent: tbl,
		page:   newLeafPage(pageSize),
		cell:   make([]byte, 0, pageSize),
	}
}

// Close builds the interior pages of the b-tree
// and records the table in the database schema as name, created by sql.
// Every stream on the table must be closed first.
func (tbl *Table) Close(name, sql string) error {
	tbl.interiorLock.Lock()
	defer tbl.interiorLock.Unlock()

	if tbl.closed {
		return ErrClosed
	}
	tbl.closed = true

	for i := 0; i < len(tbl.interiorNodes); i++ {
		node := tbl.interiorNodes[i]
		if node.length() == 1 {
			rootPage, _ := node.remove()
			return tbl.parent.addTableSchemaRecord(name, sql, rootPage)
		}

		for {
			p, err := tbl.parent.allocPage()
			if err != nil {
				return err
			}
			rightmostRowid, empty := node.put(tbl.interiorPage)
			if err := tbl.parent.writePage(p, tbl.interiorPage); err != nil {
				return err
			}

			if i+1 == len(tbl.interiorNodes) {
				if empty {
					// that was the root
					return tbl.parent.addTableSchemaRecord(name, sql, p)
				}
				tbl.interiorNodes = append(tbl.interiorNodes, newInteriorPage(pageSize))
			}
			tbl.interiorNodes[i+1].add(p, rightmostRowid)

			if empty {
				break
			}
		}
	}

	// No leaves were written: the table is empty.
	rootPage, err := tbl.parent.allocPage()
	if err != nil {
		return err
	}
	if err := tbl.parent.addTableSchemaRecord(name, sql, rootPage); err != nil {
		return err
	}
	return tbl.parent.writePage(rootPage, newLeafPage(pageSize).finish())
}

// allocRowidBlock allocates a leaf page and returns the first rowid assigned to it.
func (tbl *Table) allocRowidBlock() (int64, error) {
	tbl.interiorLock.Lock()
	defer tbl.interiorLock.Unlock()

	if tbl.closed {
		return 0, ErrClosed
	}

	if len(tbl.interiorNodes) == 0 {
		tbl.interiorNodes = append(tbl.interiorNodes, newInteriorPage(pageSize))
	}

	leaf, err := tbl.parent.allocPage()
	if err != nil {
		return 0, err
	}
	firstRowid := int64(leaf) * maxRowsPerPage
	child, rightmostRowid := leaf, firstRowid+maxRowsPerPage-1

	for i := 0; i < len(tbl.interiorNodes); i++ {
		if tbl.interiorNodes[i].add(child, rightmostRowid) {
			return firstRowid, nil
		}

		if child, err = tbl.parent.allocPage(); err != nil {
			return 0, err
		}
		rightmostRowid, _ = tbl.interiorNodes[i].put(tbl.interiorPage)
		if err := tbl.parent.writePage(child, tbl.interiorPage); err != nil {
			return 0, err
		}
	}

	tbl.interiorNodes = append(tbl.interiorNodes, newInteriorPage(pageSize))
	tbl.interiorNodes[len(tbl.interiorNodes)-1].add(child, rightmostRowid)
	return firstRowid, nil
}

func (tbl *Table) writeLeaf(lastRowid int64, page []byte) error {
	return tbl.parent.writePage(pageNumber(lastRowid/maxRowsPerPage), page)
}

// TableStream is one stream of rows being written to a Table.
// A TableStream is not safe for concurrent use; open one per goroutine.
type TableStream struct {
	parent *Table
	page   *leafPage
	// cell is reused to format each cell
	cell []byte
	// row is reused by WriteRecord
	row []byte
	// rowid of the next cell; 0 when no leaf page is open
	nextRowid int64
}

// Close flushes the stream's last leaf page.
func (s *TableStream) Close() error {
	return s.Flush()
}

// Flush writes the current leaf page, if it holds any rows.
// The next row starts a new page.
func (s *TableStream) Flush() error {
	if s.page.isEmpty() {
		return nil
	}
	err := s.parent.writeLeaf(s.nextRowid-1, s.page.finish())
	s.nextRowid = 0
	return err
}

// WriteRecord encodes rec and writes it as the next row.
func (s *TableStream) WriteRecord(rec *Record) (rowid int64, err error) {
	s.row = rec.AppendTo(s.row[:0])
	return s.WriteRow(s.row)
}

// WriteRow writes an encoded record as the next row,
// returning the rowid it was given.
// WriteRow does not retain row.
func (s *TableStream) WriteRow(row []byte) (rowid int64, err error) {
	if s.nextRowid == 0 {
		if s.nextRowid, err = s.parent.allocRowidBlock(); err != nil {
			return 0, err
		}
	}

	payloadLen := len(row)
	overflow, row, err := s.parent.parent.writeOverflowPages(row)
	if err != nil {
		return 0, err
	}

	for {
		rowid = s.nextRowid
		s.cell = appendTableRow(s.cell[:0], int64(payloadLen), rowid, row, overflow)
		if s.page.add(s.cell) {
			s.nextRowid++
			return rowid, nil
		}
		if err = s.Flush(); err != nil {
			return 0, err
		}
		if s.nextRowid, err = s.parent.allocRowidBlock(); err != nil {
			return 0, err
		}
	}
}

func appendTableRow(buf []byte, payloadLen, rowid int64, row []byte, overflow pageNumber) []byte {
	buf = appendVarint(buf, uint64(payloadLen))
	buf = appendVarint(buf, uint64(rowid))
	buf = append(buf, row...)
	if overflow != 0 {
		buf = binary.BigEndian.AppendUint32(buf, uint32(overflow))
	}
	return buf
}

// tableLeafPayloadOnPage returns how much of a payload stays on a table leaf page.
// See the "alternative description" of the overflow calculation
// at https://sqlite.org/fileformat2.html.
func tableLeafPayloadOnPage(pageSize int, payloadSize int) int {
	X := pageSize - 35
	M := ((pageSize - 12) * 32 / 255) - 23
	K := M + ((payloadSize - M) % (pageSize - 4))
	switch {
	case payloadSize <= X:
		return payloadSize
	case K <= X:
		return K
	default:
		return M
	}
}
