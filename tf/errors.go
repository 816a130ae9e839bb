package tf

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

// FormatError reports feature file text that cannot be decoded.
type FormatError struct {
	// File is the base name of the file, if known.
	File string
	// Line is the 1-based line number, or 0 if the error is not tied to a line.
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	var b strings.Builder
	switch {
	case e.File != "" && e.Line > 0:
		fmt.Fprintf(&b, "%s:%d: ", e.File, e.Line)
	case e.File != "":
		fmt.Fprintf(&b, "%s: ", e.File)
	case e.Line > 0:
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Msg)
	return b.String()
}

func formatErrorf(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// atLine attaches a line number to a FormatError that lacks one.
func atLine(err error, line int) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Line == 0 {
		c := *fe
		c.Line = line
		return &c
	}
	return err
}

// inFile attaches a file name to a FormatError that lacks one.
func inFile(err error, name string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.File == "" {
		c := *fe
		c.File = name
		return &c
	}
	return err
}

// LookupError reports a node that lies outside every object type range.
// It means the registry is incomplete or the corpus is corrupt,
// so none of the data loaded so far can be trusted.
type LookupError struct {
	Node uint64
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("node %d is not in any object type range", e.Node)
}
