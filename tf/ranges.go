package tf

import (
	"slices"
	"strconv"
	"strings"
)

// MaxRangeNodes bounds the number of nodes one range list may denote.
// Real corpora stay far below it; larger lists are taken to be corrupt.
const MaxRangeNodes = 1 << 24

// DecodeRanges decodes a comma-separated list of nodes and node ranges
// such as "1-3,5-10,15".
// A range with reversed bounds ("3-1") is the same as its swapped form.
// Nodes are returned in the order they are first listed;
// a node that is listed more than once is returned once.
func DecodeRanges(text string) ([]uint64, error) {
	var (
		nodes []uint64
		seen  map[uint64]struct{}
		top   uint64
	)
	for i, part := range strings.Split(text, ",") {
		lo, hi, err := DecodePair(part)
		if err != nil {
			return nil, err
		}
		if i > 0 && lo <= top && seen == nil {
			// Only overlapping lists pay for deduplication.
			seen = make(map[uint64]struct{}, len(nodes))
			for _, n := range nodes {
				seen[n] = struct{}{}
			}
		}
		if hi-lo >= MaxRangeNodes-uint64(len(nodes)) {
			return nil, formatErrorf("range list %q spans more than %d nodes", text, MaxRangeNodes)
		}
		for n := lo; ; n++ {
			if seen == nil {
				nodes = append(nodes, n)
			} else if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				nodes = append(nodes, n)
			}
			if n == hi {
				break
			}
		}
		top = max(top, hi)
	}
	return nodes, nil
}

// DecodePair decodes a single node ("45") or node range ("5-13")
// into its bounds, with lo <= hi.
func DecodePair(text string) (lo, hi uint64, err error) {
	first, second, isRange := strings.Cut(text, "-")
	if lo, err = parseNode(first); err != nil {
		return 0, 0, err
	}
	hi = lo
	if isRange {
		if hi, err = parseNode(second); err != nil {
			return 0, 0, err
		}
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

func parseNode(text string) (uint64, error) {
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, formatErrorf("invalid node number %q", text)
	}
	return n, nil
}

// EncodeRanges is the inverse of DecodeRanges:
// it renders a set of nodes in the shortest range-compressed form,
// in ascending order.
func EncodeRanges(nodes []uint64) string {
	if len(nodes) == 0 {
		return ""
	}
	sorted := slices.Clone(nodes)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var b strings.Builder
	lo := sorted[0]
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[i-1]+1 {
			continue
		}
		hi := sorted[i-1]
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(lo, 10))
		if hi != lo {
			b.WriteByte('-')
			b.WriteString(strconv.FormatUint(hi, 10))
		}
		if i < len(sorted) {
			lo = sorted[i]
		}
	}
	return b.String()
}

// sentinel stands in for an escaped backslash while the other escapes are replaced.
// U+FFFF is a noncharacter, so it cannot occur in well-formed corpus text.
const sentinel = "\uffff"

// Unescape replaces the escapes \t, \n and \\ in a feature value
// with a tab, a newline and a backslash.
// A backslash produced by \\ never starts another escape,
// so `\\t` becomes a backslash followed by t.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\\`, sentinel)
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.ReplaceAll(s, sentinel, `\`)
}

func maxNode(nodes []uint64) uint64 {
	var m uint64
	for _, n := range nodes {
		m = max(m, n)
	}
	return m
}
