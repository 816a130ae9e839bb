package tf

import (
	"fmt"
	"github.com/pkg/errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// TypeRange is a block of nodes, Min through Max, sharing one object type.
type TypeRange struct {
	Label string
	Min   uint64
	Max   uint64
}

// Contains reports whether node lies within the range.
func (tr TypeRange) Contains(node uint64) bool {
	return tr.Min <= node && node <= tr.Max
}

func (tr TypeRange) String() string {
	return fmt.Sprintf("%d-%d\t%s", tr.Min, tr.Max, tr.Label)
}

// Registry maps nodes to object types.
// It is built once from the object type file and never modified afterwards,
// so it may be shared freely.
type Registry struct {
	ranges []TypeRange // file order
	sorted []TypeRange // by Min
	labels []string
}

// NewRegistry builds a registry from ranges.
// Reversed bounds are swapped; overlapping ranges are an error.
func NewRegistry(ranges []TypeRange) (*Registry, error) {
	r := &Registry{ranges: make([]TypeRange, 0, len(ranges))}
	seen := make(map[string]bool)
	for _, tr := range ranges {
		if tr.Min > tr.Max {
			tr.Min, tr.Max = tr.Max, tr.Min
		}
		r.ranges = append(r.ranges, tr)
		if !seen[tr.Label] {
			seen[tr.Label] = true
			r.labels = append(r.labels, tr.Label)
		}
	}

	r.sorted = slices.Clone(r.ranges)
	slices.SortFunc(r.sorted, func(a, b TypeRange) int {
		switch {
		case a.Min < b.Min:
			return -1
		case a.Min > b.Min:
			return 1
		}
		return 0
	})
	for i := 1; i < len(r.sorted); i++ {
		if prev, cur := r.sorted[i-1], r.sorted[i]; cur.Min <= prev.Max {
			return nil, formatErrorf("object type ranges overlap: %q (%d-%d) and %q (%d-%d)",
				prev.Label, prev.Min, prev.Max, cur.Label, cur.Min, cur.Max)
		}
	}
	return r, nil
}

// ReadRegistry decodes an object type file: a header,
// then one "min-max<TAB>label" line per range.
// Empty lines are ignored.
func ReadRegistry(r io.Reader) (*Registry, error) {
	var ranges []TypeRange
	ls := newLineScanner(r)
	skipHeader(ls)
	for ls.Scan() {
		line := ls.Text()
		if line == "" {
			continue
		}
		bounds, label, ok := strings.Cut(line, "\t")
		if !ok || label == "" || strings.Contains(label, "\t") {
			return nil, &FormatError{Line: ls.Line(), Msg: fmt.Sprintf("object type line %q is not min-max<TAB>label", line)}
		}
		lo, hi, err := DecodePair(bounds)
		if err != nil {
			return nil, atLine(err, ls.Line())
		}
		ranges = append(ranges, TypeRange{Label: label, Min: lo, Max: hi})
	}
	if err := ls.Err(); err != nil {
		return nil, errors.Wrap(err, "read object type file")
	}
	if len(ranges) == 0 {
		return nil, formatErrorf("object type file lists no types")
	}
	return NewRegistry(ranges)
}

// LoadRegistry reads the object type file at path.
func LoadRegistry(path string) (*Registry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open object type file")
	}
	defer fh.Close()

	reg, err := ReadRegistry(fh)
	if err != nil {
		return nil, inFile(err, filepath.Base(path))
	}
	return reg, nil
}

// TypeOf returns the range containing node.
// A node outside every range yields a *LookupError.
func (r *Registry) TypeOf(node uint64) (TypeRange, error) {
	i := sort.Search(len(r.sorted), func(i int) bool { return r.sorted[i].Min > node })
	if i > 0 && r.sorted[i-1].Contains(node) {
		return r.sorted[i-1], nil
	}
	return TypeRange{}, &LookupError{Node: node}
}

// Ranges returns the ranges in the order they were listed.
func (r *Registry) Ranges() []TypeRange { return slices.Clone(r.ranges) }

// Labels returns each object type once, in the order first listed.
func (r *Registry) Labels() []string { return slices.Clone(r.labels) }

// Len returns the number of ranges.
func (r *Registry) Len() int { return len(r.ranges) }
