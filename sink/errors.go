package sink

import (
	"fmt"
)

// SinkError reports a failed database operation.
type SinkError struct {
	Op    string
	Table string
	// Statement is the SQL being executed, if any.
	Statement string
	Err       error
}

func (e *SinkError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
	if e.Statement != "" {
		msg += fmt.Sprintf(" [%s]", e.Statement)
	}
	return msg
}

func (e *SinkError) Unwrap() error { return e.Err }
