// Package config reads the optional YAML configuration of a load.
package config

import (
	"github.com/bmatcuk/doublestar"
	"github.com/jordanwade90/tfsql"
	"github.com/jordanwade90/tfsql/sink"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"slices"
	"strings"
)

// Config is the configuration of a load.
type Config struct {
	// TypeFile is the name of the object type file.
	TypeFile string `yaml:"typeFile"`
	// Extension selects the feature files of the corpus directory.
	Extension string `yaml:"extension"`
	// Skip lists glob patterns of file names that are not loaded.
	Skip   []string `yaml:"skip"`
	SQLite SQLite   `yaml:"sqlite"`
	Log    Log      `yaml:"log"`
}

type SQLite struct {
	// Pragmas are run on every new sqlite connection, without the PRAGMA keyword.
	Pragmas []string `yaml:"pragmas"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TypeFile:  tfsql.DefaultTypeFile,
		Extension: tfsql.DefaultExtension,
		Skip:      slices.Clone(tfsql.DefaultSkip),
		SQLite:    SQLite{Pragmas: slices.Clone(sink.DefaultSQLitePragmas)},
		Log:       Log{Level: "info", Format: FormatText},
	}
}

// Load reads the configuration file at path.
// Settings the file leaves out keep their default.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config file")
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Read reads a configuration from r.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.TypeFile == "" {
		return errors.New("typeFile is empty")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return errors.Errorf("extension %q does not start with a dot", c.Extension)
	}
	for _, p := range c.Skip {
		if _, err := doublestar.Match(p, "feature.tf"); err != nil {
			return errors.Wrapf(err, "skip pattern %q", p)
		}
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log level")
	}
	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		return errors.Errorf("log format %q is not %s or %s", c.Log.Format, FormatText, FormatJSON)
	}
	return nil
}

// Logger returns a logger writing to w as configured.
func (c Config) Logger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	if c.Log.Format == FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}
