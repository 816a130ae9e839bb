package tfsql

import (
	"github.com/sirupsen/logrus"
	"os"
)

// Defaults used by New.
const (
	DefaultTypeFile  = "otype.tf"
	DefaultExtension = ".tf"
)

// DefaultSkip are the files that are not feature files.
// The type file is read separately, the text formats are not loaded,
// and the version maps relate nodes across corpus versions.
var DefaultSkip = []string{"otype.tf", "otext.tf", "omap@*.tf"}

// An Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default logs text to stderr at info level.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithTypeFile sets the name of the object type file within the corpus directory.
func WithTypeFile(name string) Option {
	return func(l *Loader) { l.typeFile = name }
}

// WithExtension sets the extension of feature files.
func WithExtension(ext string) Option {
	return func(l *Loader) { l.extension = ext }
}

// WithSkip sets glob patterns of files that are not loaded.
// Patterns are matched against file names.
func WithSkip(patterns ...string) Option {
	return func(l *Loader) { l.skip = patterns }
}

func defaultLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	return logger
}
