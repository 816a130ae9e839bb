package sqlitefile

import (
	"golang.org/x/exp/constraints"
	"math/bits"
)

// SQLite varints are big-endian groups of 7 bits,
// each byte but the last with its high bit set.
// A ninth byte, if present, carries a full 8 bits.

// varintLen returns the number of bytes appendVarint uses for x.
func varintLen[T constraints.Integer](x T) int {
	xl := 64 - bits.LeadingZeros64(uint64(x))
	switch {
	case xl == 0:
		return 1
	case xl > 56:
		return 9
	}
	return (xl + 6) / 7
}

// putVarint encodes x into the start of buf, returning the number of bytes written.
func putVarint[T constraints.Integer](buf []byte, x T) int {
	v := uint64(x)
	n := varintLen(x)
	last := n - 1
	if n == 9 {
		buf[8] = byte(v)
		v >>= 8
		last = 8
	}
	for i := min(n, 8) - 1; i >= 0; i-- {
		buf[i] = byte(v) & 0x7f
		if i != last {
			buf[i] |= 0x80
		}
		v >>= 7
	}
	return n
}

func appendVarint[T constraints.Integer](buf []byte, x T) []byte {
	var tmp [9]byte
	n := putVarint(tmp[:], x)
	return append(buf, tmp[:n]...)
}
