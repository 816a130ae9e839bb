package tfsql

import (
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"io"
	"time"
)

// Report describes a completed or aborted load.
type Report struct {
	Dir       string        `json:"dir"`
	Backend   string        `json:"backend,omitempty"`
	Types     []string      `json:"types"`
	Files     []*FileReport `json:"files"`
	Committed bool          `json:"committed"`
	Took      time.Duration `json:"tookNs"`
}

// FileReport is the outcome of loading one feature file.
type FileReport struct {
	Label     string        `json:"label"`
	Path      string        `json:"path"`
	Kind      string        `json:"kind,omitempty"`
	ValueType string        `json:"valueType,omitempty"`
	Records   int           `json:"records"`
	Runs      int           `json:"runs,omitempty"`
	Took      time.Duration `json:"tookNs"`
	Error     string        `json:"error,omitempty"`

	err error
}

// Err is the reason the file failed to load, or nil.
func (f *FileReport) Err() error { return f.err }

func (f *FileReport) fail(err error) {
	f.err = err
	f.Error = err.Error()
}

// Failed returns the files that did not load.
func (r *Report) Failed() []*FileReport {
	var failed []*FileReport
	for _, f := range r.Files {
		if f.err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Err combines the errors of every failed file, or returns nil if none failed.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Failed() {
		result = multierror.Append(result, errors.Wrap(f.err, f.Label))
	}
	return result.ErrorOrNil()
}

// WriteJSON writes the report to w as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(r), "encode load report")
}
