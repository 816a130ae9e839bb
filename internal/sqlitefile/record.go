package sqlitefile

import (
	"github.com/pkg/errors"
)

// Record encodes one row in SQLite's record format:
// a header of serial types followed by the column values.
type Record struct {
	header  []byte
	payload []byte
}

func headerLen(l int) int {
	return l + headerLenLen(l)
}

func headerLenLen(l int) int {
	// The header length counts itself, which can push it into a longer varint.
	return varintLen(l + varintLen(l))
}

// AppendNull appends a NULL column.
func (rec *Record) AppendNull() {
	rec.header = append(rec.header, 0)
}

// AppendInt appends an integer column in the smallest serial type that holds it.
func (rec *Record) AppendInt(i int64) {
	switch {
	case i == 0:
		rec.header = append(rec.header, 8)
	case i == 1:
		rec.header = append(rec.header, 9)
	case i >= -0x80 && i <= 0x7f:
		rec.appendBigEndian(1, uint64(i), 1)
	case i >= -0x8000 && i <= 0x7fff:
		rec.appendBigEndian(2, uint64(i), 2)
	case i >= -0x80_0000 && i <= 0x7f_ffff:
		rec.appendBigEndian(3, uint64(i), 3)
	case i >= -0x8000_0000 && i <= 0x7fff_ffff:
		rec.appendBigEndian(4, uint64(i), 4)
	case i >= -0x8000_0000_0000 && i <= 0x7fff_ffff_ffff:
		rec.appendBigEndian(5, uint64(i), 6)
	default:
		rec.appendBigEndian(6, uint64(i), 8)
	}
}

// AppendUint appends an unsigned integer column.
// Values above the int64 range do not fit SQLite's integer type.
func (rec *Record) AppendUint(u uint64) error {
	if u > 1<<63-1 {
		return errors.Errorf("sqlitefile: integer %d overflows int64", u)
	}
	rec.AppendInt(int64(u))
	return nil
}

func (rec *Record) appendBigEndian(serialType byte, v uint64, size int) {
	rec.header = append(rec.header, serialType)
	for shift := 8 * (size - 1); shift >= 0; shift -= 8 {
		rec.payload = append(rec.payload, byte(v>>shift))
	}
}

// AppendString appends a TEXT column.
func (rec *Record) AppendString(s string) {
	rec.header = appendVarint(rec.header, 2*len(s)+13)
	rec.payload = append(rec.payload, s...)
}

// AppendBlob appends a BLOB column.
func (rec *Record) AppendBlob(b []byte) {
	rec.header = appendVarint(rec.header, 2*len(b)+12)
	rec.payload = append(rec.payload, b...)
}

// AppendValue appends v according to its Go type:
// nil as NULL, integers as INTEGER, strings as TEXT and byte slices as BLOB.
func (rec *Record) AppendValue(v any) error {
	switch v := v.(type) {
	case nil:
		rec.AppendNull()
	case int64:
		rec.AppendInt(v)
	case int:
		rec.AppendInt(int64(v))
	case uint64:
		return rec.AppendUint(v)
	case string:
		rec.AppendString(v)
	case []byte:
		rec.AppendBlob(v)
	default:
		return errors.Errorf("sqlitefile: cannot encode %T", v)
	}
	return nil
}

// AppendTo appends the encoded record to p.
func (rec *Record) AppendTo(p []byte) []byte {
	p = appendVarint(p, headerLen(len(rec.header)))
	p = append(p, rec.header...)
	p = append(p, rec.payload...)
	return p
}

// Reset empties the record for reuse.
func (rec *Record) Reset() {
	rec.header = rec.header[:0]
	rec.payload = rec.payload[:0]
}
