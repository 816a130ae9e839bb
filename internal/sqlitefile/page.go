package sqlitefile

import (
	"encoding/binary"
)

const (
	databaseHeaderSize      = 100
	tableLeafHeaderSize     = 8
	tableInteriorHeaderSize = 12
)

// b-tree page type flags
const (
	interiorTableFlag = 5
	leafTableFlag     = 13
)

// pageNumber annotates uint32s that are actually page numbers.
type pageNumber uint32

// cellPage lays out cells back-to-front from the end of a page,
// with the cell pointer array growing forwards after the header.
type cellPage struct {
	page         []byte
	contentStart int
	numCells     int
	headerSize   int
}

func (p *cellPage) add(cell []byte) bool {
	// Cells are written back-to-front,
	// so contentStart is the larger number.
	contentStart := p.contentStart - len(cell)
	contentEnd := p.headerSize + 2*p.numCells
	if contentStart < contentEnd+2 {
		return false
	}

	binary.BigEndian.PutUint16(p.page[contentEnd:], uint16(contentStart))
	copy(p.page[contentStart:], cell)
	p.contentStart = contentStart
	p.numCells++
	return true
}

// putBTreeHeader writes the 8-byte leaf b-tree page header at off and resets the page.
func (p *cellPage) putBTreeHeader(off int, flag byte) {
	p.page[off] = flag
	p.page[off+1] = 0
	p.page[off+2] = 0
	binary.BigEndian.PutUint16(p.page[off+3:], uint16(p.numCells))
	binary.BigEndian.PutUint16(p.page[off+5:], uint16(p.contentStart))
	p.page[off+7] = 0

	p.contentStart = len(p.page)
	p.numCells = 0
}

// leafPage builds table b-tree leaf pages.
type leafPage struct {
	cellPage
}

func newLeafPage(pageSize int) *leafPage {
	return &leafPage{cellPage{
		page:         make([]byte, pageSize),
		contentStart: pageSize,
		headerSize:   tableLeafHeaderSize,
	}}
}

// finish returns the finished page and empties the builder for reuse.
// The returned slice is the builder's own buffer.
func (p *leafPage) finish() []byte {
	p.putBTreeHeader(0, leafTableFlag)
	return p.page
}

func (p *leafPage) isEmpty() bool { return p.numCells == 0 }

// interiorPage buffers the children of one level of a table b-tree
// and writes them out as interior pages.
type interiorPage struct {
	pageNumbers  []pageNumber
	rowids       []int64
	pageSize     int
	contentStart int
	excessCells  int
}

func newInteriorPage(pageSize int) *interiorPage {
	return &interiorPage{
		pageSize:     pageSize,
		contentStart: pageSize,
	}
}

func (ip *interiorPage) updateBookkeeping(numCells int, cellLen int) {
	if ip.excessCells == 0 {
		contentStart := ip.contentStart - cellLen
		contentEnd := tableInteriorHeaderSize + 2*numCells + 2
		if contentStart < contentEnd {
			ip.excessCells = 1
		} else {
			ip.contentStart = contentStart
		}
	} else {
		ip.excessCells++
	}
}

// add adds a child.
// When add returns false a full page of children is buffered;
// call put to write it out and make room.
func (ip *interiorPage) add(child pageNumber, rowid int64) (ok bool) {
	ip.pageNumbers = append(ip.pageNumbers, child)
	ip.rowids = append(ip.rowids, rowid)
	ip.updateBookkeeping(len(ip.pageNumbers), 4+varintLen(rowid))
	return ip.excessCells < 2
}

func (ip *interiorPage) length() int { return len(ip.pageNumbers) }

// put writes one interior page into p and drops the children it used.
//
// While the table is open, call put once each time add returns false and ignore empty.
// When closing the table, call put until empty is true.
func (ip *interiorPage) put(p []byte) (rightmostRowid int64, empty bool) {
	if len(ip.pageNumbers) < 2 {
		panic("sqlitefile: degenerate interior node")
	}

	contentStart := len(p)
	numCells := 0
	limit := len(ip.pageNumbers) - ip.excessCells
	if ip.excessCells == 1 {
		limit--
	}

	for numCells < limit-1 {
		contentStart -= 4 + varintLen(ip.rowids[numCells])
		contentEnd := tableInteriorHeaderSize + 2*numCells + 2
		if contentStart <= contentEnd {
			// add and put disagree about how many cells fit.
			panic("sqlitefile: interior page overflow")
		}

		binary.BigEndian.PutUint16(p[contentEnd-2:], uint16(contentStart))
		binary.BigEndian.PutUint32(p[contentStart:], uint32(ip.pageNumbers[numCells]))
		putVarint(p[contentStart+4:], ip.rowids[numCells])
		numCells++
	}
	rightmostRowid = ip.rowids[numCells]

	p[0] = interiorTableFlag
	p[1] = 0
	p[2] = 0
	binary.BigEndian.PutUint16(p[3:], uint16(numCells))
	binary.BigEndian.PutUint16(p[5:], uint16(contentStart))
	p[7] = 0
	binary.BigEndian.PutUint32(p[8:], uint32(ip.pageNumbers[numCells]))

	ip.pageNumbers = append(ip.pageNumbers[:0], ip.pageNumbers[numCells+1:]...)
	ip.rowids = append(ip.rowids[:0], ip.rowids[numCells+1:]...)
	ip.contentStart = ip.pageSize
	ip.excessCells = 0
	for i := range ip.pageNumbers {
		ip.updateBookkeeping(i, 4+varintLen(ip.rowids[i]))
	}

	return rightmostRowid, len(ip.pageNumbers) == 0
}

// remove removes the child added last.
func (ip *interiorPage) remove() (child pageNumber, rowid int64) {
	if len(ip.pageNumbers) == 0 {
		panic("sqlitefile: remove from empty interior node")
	}

	child, rowid = ip.pageNumbers[len(ip.pageNumbers)-1], ip.rowids[len(ip.rowids)-1]
	ip.pageNumbers = ip.pageNumbers[:len(ip.pageNumbers)-1]
	ip.rowids = ip.rowids[:len(ip.rowids)-1]

	if ip.excessCells > 0 {
		ip.excessCells--
	} else {
		ip.contentStart += 4 + varintLen(rowid)
	}
	return
}

// headerPage builds page 1: the database header
// followed by the sqlite_schema table as a single leaf.
type headerPage struct {
	cellPage
}

func newHeaderPage(pageSize int) *headerPage {
	return &headerPage{cellPage{
		page:         make([]byte, pageSize),
		contentStart: pageSize,
		headerSize:   databaseHeaderSize + tableLeafHeaderSize,
	}}
}

// finish writes the database header and returns the finished page.
// The header leaves the database size zero so readers take it from the file size.
func (p *headerPage) finish() []byte {
	copy(p.page, "SQLite format 3\000")
	if len(p.page) == 65536 {
		binary.BigEndian.PutUint32(p.page[16:], 0x010101)
	} else {
		binary.BigEndian.PutUint32(p.page[16:], uint32(len(p.page)<<16)|0x0101)
	}
	// reserved bytes, max/min embedded payload fraction, leaf payload fraction
	binary.BigEndian.PutUint32(p.page[20:], 0x00402020)
	// schema format 4, default cache size, UTF-8, SQLite version
	binary.BigEndian.PutUint32(p.page[44:], 4)
	binary.BigEndian.PutUint32(p.page[48:], uint32(2048000/len(p.page)))
	binary.BigEndian.PutUint32(p.page[56:], 1)
	binary.BigEndian.PutUint32(p.page[96:], 3003000)

	p.putBTreeHeader(databaseHeaderSize, leafTableFlag)
	return p.page
}
