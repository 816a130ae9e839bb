// Command tfsql loads a Text-Fabric corpus into a relational database.
//
//	tfsql [options] <path-to-data> <sqlite|mysql|sqlite-raw> <connection-string>
//
// For sqlite and sqlite-raw the connection string is the database file;
// for mysql it is hostname=H;databasename=D;username=U;password=P.
package main

import (
	"context"
	"fmt"
	"github.com/jessevdk/go-flags"
	"github.com/jordanwade90/tfsql"
	"github.com/jordanwade90/tfsql/config"
	"github.com/jordanwade90/tfsql/sink"
	"github.com/pkg/errors"
	"io"
	"os"
	"os/signal"
)

type options struct {
	Config    string `long:"config" description:"YAML configuration file" value-name:"FILE"`
	LogLevel  string `long:"log-level" description:"log level (overrides the configuration)" choice:"trace" choice:"debug" choice:"info" choice:"warning" choice:"error"`
	LogFormat string `long:"log-format" description:"log format (overrides the configuration)" choice:"text" choice:"json"`
	Report    string `long:"report" description:"write a JSON load report to FILE" value-name:"FILE"`

	Args struct {
		Path       string `positional-arg-name:"path-to-data"`
		Backend    string `positional-arg-name:"sqlite|mysql|sqlite-raw"`
		Connection string `positional-arg-name:"connection-string"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "tfsql"
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(stderr)
			return 0
		}
		fmt.Fprintln(stderr, err)
		parser.WriteHelp(stderr)
		return 1
	}

	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	logger, err := cfg.Logger(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if fi, err := os.Stat(opts.Args.Path); err != nil || !fi.IsDir() {
		logger.WithField("action", "startup").WithField("path", opts.Args.Path).
			Error("corpus path is not a directory")
		parser.WriteHelp(stderr)
		return 1
	}

	s, err := sink.Open(opts.Args.Backend, opts.Args.Connection, sink.Options{SQLitePragmas: cfg.SQLite.Pragmas})
	if err != nil {
		logger.WithField("action", "startup").WithError(err).Error("cannot open database")
		parser.WriteHelp(stderr)
		return 1
	}
	defer s.Close()

	l := tfsql.New(opts.Args.Path, s,
		tfsql.WithLogger(logger),
		tfsql.WithTypeFile(cfg.TypeFile),
		tfsql.WithExtension(cfg.Extension),
		tfsql.WithSkip(cfg.Skip...),
	)
	report, loadErr := l.Load(ctx)
	if report != nil {
		report.Backend = opts.Args.Backend
		if opts.Report != "" {
			if err := writeReport(opts.Report, report); err != nil {
				logger.WithField("action", "report").WithError(err).Error("cannot write load report")
			}
		}
	}
	if loadErr != nil {
		logger.WithField("action", "load").WithError(loadErr).Error("load failed")
		return 1
	}
	if failed := report.Failed(); len(failed) > 0 {
		logger.WithField("action", "load").WithField("failed", len(failed)).
			Warnf("%d feature files were not loaded", len(failed))
	}
	return 0
}

func writeReport(path string, report *tfsql.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create report file")
	}
	if err := report.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
