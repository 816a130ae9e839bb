package tf

import (
	"bufio"
	"github.com/pkg/errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies a feature file by its first header line.
type Kind int

const (
	Node Kind = iota
	Edge
	Config
)

func (k Kind) String() string {
	switch k {
	case Node:
		return "node"
	case Edge:
		return "edge"
	case Config:
		return "config"
	}
	return "unknown"
}

// ParseKind parses the first header line of a feature file: "@node", "@edge" or "@config".
func ParseKind(line string) (Kind, error) {
	switch line {
	case "@node":
		return Node, nil
	case "@edge":
		return Edge, nil
	case "@config":
		return Config, nil
	}
	return 0, formatErrorf("unknown file type %q", line)
}

// ValueType is the type of a feature's values, declared by the @valueType header.
type ValueType int

const (
	Integer ValueType = iota
	String
)

func (vt ValueType) String() string {
	if vt == String {
		return "str"
	}
	return "int"
}

// ParseValueType parses the value of a @valueType header: "str" or "int".
func ParseValueType(s string) (ValueType, error) {
	switch s {
	case "str":
		return String, nil
	case "int":
		return Integer, nil
	}
	return 0, formatErrorf("unknown value type %q", s)
}

// Descriptor classifies a feature file.
type Descriptor struct {
	// Label is the file name without its extension.
	// It names the column (node features) or table (edge features) the file loads into.
	Label      string
	Kind       Kind
	ValueType  ValueType
	EdgeValues bool
}

// File is a feature file whose header has been read.
// The body is read again each time Nodes or Edges is called.
type File struct {
	Path string
	Descriptor
}

// Label returns the base name of path without its extension.
func Label(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Open reads the header of the feature file at path.
func Open(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open feature file")
	}
	defer fh.Close()

	desc, err := ReadDescriptor(Label(path), fh)
	if err != nil {
		return nil, inFile(err, filepath.Base(path))
	}
	return &File{Path: path, Descriptor: desc}, nil
}

// ReadDescriptor reads a feature file header from r.
// Node and edge files must declare their @valueType.
func ReadDescriptor(label string, r io.Reader) (Descriptor, error) {
	desc := Descriptor{Label: label}
	ls := newLineScanner(r)
	if !ls.Scan() {
		if err := ls.Err(); err != nil {
			return desc, errors.Wrap(err, "read header")
		}
		return desc, formatErrorf("empty feature file")
	}
	kind, err := ParseKind(ls.Text())
	if err != nil {
		return desc, atLine(err, ls.Line())
	}
	desc.Kind = kind

	hasValueType := false
	for ls.Scan() {
		line := ls.Text()
		if !isHeaderLine(line) {
			break
		}
		if v, ok := strings.CutPrefix(line, "@valueType="); ok {
			if desc.ValueType, err = ParseValueType(v); err != nil {
				return desc, atLine(err, ls.Line())
			}
			hasValueType = true
		} else if line == "@edgeValues" {
			desc.EdgeValues = true
		}
	}
	if err := ls.Err(); err != nil {
		return desc, errors.Wrap(err, "read header")
	}
	if kind != Config && !hasValueType {
		return desc, formatErrorf("missing @valueType header")
	}
	return desc, nil
}

// Nodes decodes every record in a node feature file.
func (f *File) Nodes() ([]NodeRecord, error) {
	if f.Kind != Node {
		return nil, errors.Errorf("%s is a %s feature file, not a node feature file", f.Label, f.Kind)
	}
	var recs []NodeRecord
	err := f.read(func(r io.Reader) error {
		d := NewNodeDecoder(r, f.ValueType)
		for d.Next() {
			recs = append(recs, d.Records()...)
		}
		return d.Err()
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Edges decodes every record in an edge feature file.
func (f *File) Edges() ([]EdgeRecord, error) {
	if f.Kind != Edge {
		return nil, errors.Errorf("%s is a %s feature file, not an edge feature file", f.Label, f.Kind)
	}
	var recs []EdgeRecord
	err := f.read(func(r io.Reader) error {
		d := NewEdgeDecoder(r, f.ValueType, f.EdgeValues)
		for d.Next() {
			recs = append(recs, d.Records()...)
		}
		return d.Err()
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (f *File) read(fn func(io.Reader) error) error {
	fh, err := os.Open(f.Path)
	if err != nil {
		return errors.Wrap(err, "open feature file")
	}
	defer fh.Close()
	return inFile(fn(fh), filepath.Base(f.Path))
}

// maxLineLength bounds a single line; edge files can list thousands of nodes on one line.
const maxLineLength = 64 << 20

// lineScanner reads lines, counting them and stripping carriage returns.
type lineScanner struct {
	s      *bufio.Scanner
	line   int
	text   string
	unread bool
}

func newLineScanner(r io.Reader) *lineScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &lineScanner{s: s}
}

func (ls *lineScanner) Scan() bool {
	if ls.unread {
		ls.unread = false
		return true
	}
	if !ls.s.Scan() {
		return false
	}
	ls.line++
	ls.text = strings.TrimSuffix(ls.s.Text(), "\r")
	return true
}

// Unread makes the next Scan return the current line again.
func (ls *lineScanner) Unread() { ls.unread = true }

func (ls *lineScanner) Text() string { return ls.text }
func (ls *lineScanner) Line() int    { return ls.line }
func (ls *lineScanner) Err() error   { return ls.s.Err() }

// skipHeader advances past the header.
// An empty line ending the header is consumed;
// any other line ending it is left to be read as the first body line.
func skipHeader(ls *lineScanner) {
	for ls.Scan() {
		if line := ls.Text(); !isHeaderLine(line) {
			if line != "" {
				ls.Unread()
			}
			return
		}
	}
}

func isHeaderLine(line string) bool {
	return len(line) > 0 && line[0] == '@'
}
