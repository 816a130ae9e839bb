package tf

import (
	"io"
	"strconv"
	"strings"
)

// NodeRecord is one node's value for a node feature.
type NodeRecord struct {
	ID    uint64
	Value any
}

// EdgeRecord is one edge of an edge feature, with its value.
type EdgeRecord struct {
	From  uint64
	To    uint64
	Value any
}

// parse converts an unescaped feature value to its Go representation:
// string for String features, int64 for Integer features.
// An empty Integer value is nil.
func (vt ValueType) parse(text string) (any, error) {
	if vt == String {
		return text, nil
	}
	if text == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, formatErrorf("invalid integer value %q", text)
	}
	return n, nil
}

// NodeDecoder decodes the records of a node feature file one line at a time.
//
// Each line is either "nodes<TAB>value", where nodes is a range list,
// or a bare value for the node after the last one seen.
type NodeDecoder struct {
	ls       *lineScanner
	vt       ValueType
	implicit uint64
	recs     []NodeRecord
	err      error
	started  bool
}

// NewNodeDecoder returns a decoder for the node feature file in r, header included.
func NewNodeDecoder(r io.Reader, vt ValueType) *NodeDecoder {
	return &NodeDecoder{ls: newLineScanner(r), vt: vt}
}

// Next decodes the next line, returning false at the end of the file or on error.
func (d *NodeDecoder) Next() bool {
	if d.err != nil {
		return false
	}
	if !d.started {
		d.started = true
		skipHeader(d.ls)
	}
	if !d.ls.Scan() {
		d.err = d.ls.Err()
		return false
	}
	if d.err = d.decode(d.ls.Text()); d.err != nil {
		d.err = atLine(d.err, d.ls.Line())
		return false
	}
	return true
}

// Records returns the records decoded from the current line.
// The slice is reused by the next call to Next.
func (d *NodeDecoder) Records() []NodeRecord { return d.recs }

// Err returns the first error encountered, or nil at a clean end of file.
func (d *NodeDecoder) Err() error { return d.err }

func (d *NodeDecoder) decode(line string) error {
	d.recs = d.recs[:0]
	fields := strings.Split(line, "\t")
	switch len(fields) {
	case 1:
		v, err := d.vt.parse(Unescape(fields[0]))
		if err != nil {
			return err
		}
		d.implicit++
		d.recs = append(d.recs, NodeRecord{ID: d.implicit, Value: v})
	case 2:
		nodes, err := DecodeRanges(fields[0])
		if err != nil {
			return err
		}
		v, err := d.vt.parse(Unescape(fields[1]))
		if err != nil {
			return err
		}
		d.implicit = maxNode(nodes)
		for _, n := range nodes {
			d.recs = append(d.recs, NodeRecord{ID: n, Value: v})
		}
	default:
		return formatErrorf("node line has %d tab-separated fields, want 1 or 2", len(fields))
	}
	return nil
}

// EdgeDecoder decodes the records of an edge feature file one line at a time.
//
// A line lists the nodes an edge leaves from, the nodes it goes to and its value;
// the from nodes or the value may be omitted depending on the field count
// and on whether the file has an @edgeValues header.
// Every line yields the full cross product of its from and to nodes.
// An empty line ends the data.
type EdgeDecoder struct {
	ls         *lineScanner
	vt         ValueType
	edgeValues bool
	implicit   uint64
	from       []uint64
	recs       []EdgeRecord
	err        error
	started    bool
	done       bool
}

// NewEdgeDecoder returns a decoder for the edge feature file in r, header included.
func NewEdgeDecoder(r io.Reader, vt ValueType, edgeValues bool) *EdgeDecoder {
	return &EdgeDecoder{ls: newLineScanner(r), vt: vt, edgeValues: edgeValues}
}

// Next decodes the next line, returning false at the end of the data or on error.
func (d *EdgeDecoder) Next() bool {
	if d.err != nil || d.done {
		return false
	}
	if !d.started {
		d.started = true
		skipHeader(d.ls)
	}
	if !d.ls.Scan() {
		d.err = d.ls.Err()
		return false
	}
	line := d.ls.Text()
	if line == "" {
		d.done = true
		return false
	}
	if d.err = d.decode(line); d.err != nil {
		d.err = atLine(d.err, d.ls.Line())
		return false
	}
	return true
}

// Records returns the records decoded from the current line.
// The slice is reused by the next call to Next.
func (d *EdgeDecoder) Records() []EdgeRecord { return d.recs }

// Err returns the first error encountered, or nil at a clean end of data.
func (d *EdgeDecoder) Err() error { return d.err }

func (d *EdgeDecoder) decode(line string) error {
	var (
		to        []uint64
		valueText string
		err       error
	)
	fields := strings.Split(line, "\t")
	switch {
	case len(fields) == 3:
		if d.from, err = DecodeRanges(fields[0]); err != nil {
			return err
		}
		if to, err = DecodeRanges(fields[1]); err != nil {
			return err
		}
		valueText = fields[2]
		d.implicit = maxNode(d.from)
	case len(fields) == 2 && d.edgeValues:
		if to, err = DecodeRanges(fields[0]); err != nil {
			return err
		}
		valueText = fields[1]
		d.implicit++
		d.from = append(d.from[:0], d.implicit)
	case len(fields) == 2:
		if d.from, err = DecodeRanges(fields[0]); err != nil {
			return err
		}
		if to, err = DecodeRanges(fields[1]); err != nil {
			return err
		}
		d.implicit = maxNode(d.from)
	case len(fields) == 1:
		if to, err = DecodeRanges(fields[0]); err != nil {
			return err
		}
		d.implicit++
		d.from = append(d.from[:0], d.implicit)
	default:
		return formatErrorf("edge line has %d tab-separated fields, want 1, 2 or 3", len(fields))
	}

	v, err := d.vt.parse(Unescape(valueText))
	if err != nil {
		return err
	}
	d.recs = d.recs[:0]
	for _, f := range d.from {
		for _, t := range to {
			d.recs = append(d.recs, EdgeRecord{From: f, To: t, Value: v})
		}
	}
	return nil
}
