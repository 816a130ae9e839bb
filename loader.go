package tfsql

import (
	"context"
	"github.com/bmatcuk/doublestar"
	"github.com/jordanwade90/tfsql/sink"
	"github.com/jordanwade90/tfsql/tf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Loader loads one corpus directory into one sink.
// A Loader is used for a single Load.
type Loader struct {
	dir       string
	sink      sink.Sink
	logger    logrus.FieldLogger
	typeFile  string
	extension string
	skip      []string

	registry *tf.Registry
	files    []*tf.File
	report   *Report
	// columns records the columns of every table created by the loader.
	columns map[string]map[string]bool
}

// New returns a Loader that reads the corpus in dir and writes it to s.
func New(dir string, s sink.Sink, opts ...Option) *Loader {
	l := &Loader{
		dir:       dir,
		sink:      s,
		logger:    defaultLogger(),
		typeFile:  DefaultTypeFile,
		extension: DefaultExtension,
		skip:      DefaultSkip,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs the load and reports on every feature file.
//
// Registry and schema failures abort the load before any data is written.
// A feature file that fails to decode or insert is recorded in the report
// and the load continues with the next file; such failures do not make Load fail.
// A node outside every object type range aborts the load and rolls back.
func (l *Loader) Load(ctx context.Context) (*Report, error) {
	start := time.Now()
	l.report = &Report{Dir: l.dir}
	defer func() { l.report.Took = time.Since(start) }()

	if err := l.sink.Ping(ctx); err != nil {
		return l.report, errors.Wrap(err, "connect to database")
	}
	if err := l.loadRegistry(); err != nil {
		return l.report, err
	}
	if err := l.discover(); err != nil {
		return l.report, err
	}
	if err := l.createTables(ctx); err != nil {
		return l.report, err
	}
	if err := l.loadData(ctx); err != nil {
		return l.report, err
	}
	return l.report, nil
}

func (l *Loader) loadRegistry() error {
	path := filepath.Join(l.dir, l.typeFile)
	reg, err := tf.LoadRegistry(path)
	if err != nil {
		l.logger.WithField("action", "load_registry").WithField("file", path).WithError(err).
			Error("cannot read object types")
		return errors.Wrap(err, "load object types")
	}
	l.registry = reg
	l.report.Types = reg.Labels()
	l.logger.WithField("action", "load_registry").WithField("types", reg.Len()).
		Infof("read %d object type ranges", reg.Len())
	return nil
}

// discover reads the header of every feature file in the corpus directory.
// A file whose header cannot be read is reported and left out.
func (l *Loader) discover() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return errors.Wrap(err, "list corpus directory")
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, l.extension) || name == l.typeFile {
			continue
		}
		skip, err := l.skipped(name)
		if err != nil {
			return err
		}
		if skip {
			l.logger.WithField("action", "discover_files").WithField("file", name).Debug("skipped")
			continue
		}

		path := filepath.Join(l.dir, name)
		f, err := tf.Open(path)
		if err == nil && f.Kind == tf.Node && f.Label == sink.KeyColumn {
			err = errors.Errorf("node feature %s would overwrite the node key column", f.Label)
		}
		if err != nil {
			fr := &FileReport{Label: tf.Label(name), Path: path}
			fr.fail(err)
			l.report.Files = append(l.report.Files, fr)
			l.logger.WithField("action", "discover_files").WithField("file", name).WithError(err).
				Error("cannot read feature file header")
			continue
		}
		l.files = append(l.files, f)
	}
	l.logger.WithField("action", "discover_files").WithField("files", len(l.files)).
		Infof("found %d feature files", len(l.files))
	return nil
}

func (l *Loader) skipped(name string) (bool, error) {
	for _, pattern := range l.skip {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, errors.Wrapf(err, "skip pattern %q", pattern)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// createTables creates the object type table, a table per object type
// and a table per edge feature.
func (l *Loader) createTables(ctx context.Context) error {
	logger := l.logger.WithField("action", "create_tables")
	l.columns = map[string]map[string]bool{}

	if err := l.sink.CreateTypeTable(ctx, l.registry.Ranges()); err != nil {
		logger.WithError(err).Error("cannot create object type table")
		return errors.Wrap(err, "create object type table")
	}
	l.columns[sink.TypeTable] = map[string]bool{}

	create := func(name string, columns []sink.Column) error {
		if _, ok := l.columns[name]; ok {
			return errors.Errorf("table %s is defined twice", name)
		}
		if err := l.sink.CreateTable(ctx, name, columns); err != nil {
			logger.WithField("table", name).WithError(err).Error("cannot create table")
			return errors.Wrapf(err, "create table %s", name)
		}
		cols := map[string]bool{}
		for _, c := range columns {
			cols[c.Name] = true
		}
		l.columns[name] = cols
		return nil
	}

	for _, label := range l.registry.Labels() {
		if err := create(label, sink.NodeTableColumns(l.sink)); err != nil {
			return err
		}
	}
	for _, f := range l.files {
		if f.Kind != tf.Edge {
			continue
		}
		if err := create(f.Label, sink.EdgeTableColumns(l.sink, f.ValueType)); err != nil {
			return err
		}
	}
	logger.WithField("tables", len(l.columns)).Infof("created %d tables", len(l.columns))
	return nil
}

func (l *Loader) loadData(ctx context.Context) error {
	if err := l.sink.Begin(ctx); err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	for _, f := range l.files {
		if err := ctx.Err(); err != nil {
			return l.abort(err)
		}
		fr := &FileReport{Label: f.Label, Path: f.Path, Kind: f.Kind.String()}
		if f.Kind != tf.Config {
			fr.ValueType = f.ValueType.String()
		}
		l.report.Files = append(l.report.Files, fr)

		logger := l.logger.WithField("action", "load_file").WithField("file", f.Label).
			WithField("kind", fr.Kind)
		logger.Info("loading")
		start := time.Now()
		err := l.loadFile(ctx, f, fr)
		fr.Took = time.Since(start)

		var lookupErr *tf.LookupError
		if errors.As(err, &lookupErr) {
			logger.WithError(err).Error("node outside every object type, aborting")
			fr.fail(err)
			return l.abort(errors.Wrapf(err, "load %s", f.Label))
		}
		if err != nil {
			logger.WithError(err).Error("cannot load feature file")
			fr.fail(err)
			continue
		}
		logger.WithField("records", fr.Records).WithField("runs", fr.Runs).
			WithField("took", fr.Took).Debug("loaded")
	}

	if err := l.sink.Commit(); err != nil {
		l.logger.WithField("action", "commit").WithError(err).Error("cannot commit")
		return errors.Wrap(err, "commit")
	}
	l.report.Committed = true
	l.logger.WithField("action", "commit").WithField("files", len(l.files)).
		WithField("failed", len(l.report.Failed())).Info("load committed")
	return nil
}

// abort rolls back the load transaction and returns err.
func (l *Loader) abort(err error) error {
	if rerr := l.sink.Rollback(); rerr != nil {
		l.logger.WithField("action", "rollback").WithError(rerr).Error("cannot roll back")
	}
	return err
}

func (l *Loader) loadFile(ctx context.Context, f *tf.File, fr *FileReport) error {
	switch f.Kind {
	case tf.Node:
		return l.loadNodes(ctx, f, fr)
	case tf.Edge:
		return l.loadEdges(ctx, f, fr)
	}
	return nil
}

func (l *Loader) loadNodes(ctx context.Context, f *tf.File, fr *FileReport) error {
	recs, err := f.Nodes()
	if err != nil {
		return err
	}
	fr.Records = len(recs)

	runs, err := tf.Partition(recs, l.registry)
	if err != nil {
		return err
	}
	fr.Runs = len(runs)

	col := sink.Column{Name: f.Label, Type: sink.TypeColumn(l.sink, f.ValueType)}
	for _, run := range runs {
		if err := l.ensureColumn(ctx, run.Type, col); err != nil {
			return err
		}
		if err := l.sink.InsertNodes(ctx, run.Type, col, run.IDs, run.Values); err != nil {
			return errors.Wrapf(err, "insert %d nodes of type %s", len(run.IDs), run.Type)
		}
	}
	return nil
}

// ensureColumn adds col to table unless it is already there.
func (l *Loader) ensureColumn(ctx context.Context, table string, col sink.Column) error {
	cols := l.columns[table]
	if cols[col.Name] {
		return nil
	}
	if err := l.sink.AddColumn(ctx, table, col); err != nil {
		return errors.Wrapf(err, "add column %s to %s", col.Name, table)
	}
	cols[col.Name] = true
	return nil
}

func (l *Loader) loadEdges(ctx context.Context, f *tf.File, fr *FileReport) error {
	recs, err := f.Edges()
	if err != nil {
		return err
	}
	fr.Records = len(recs)
	if len(recs) == 0 {
		return nil
	}

	froms := make([]uint64, len(recs))
	tos := make([]uint64, len(recs))
	values := make([]any, len(recs))
	for i, rec := range recs {
		if _, err := l.registry.TypeOf(rec.From); err != nil {
			return err
		}
		if _, err := l.registry.TypeOf(rec.To); err != nil {
			return err
		}
		froms[i], tos[i], values[i] = rec.From, rec.To, rec.Value
	}
	fr.Runs = 1
	if err := l.sink.InsertEdges(ctx, f.Label, froms, tos, values); err != nil {
		return errors.Wrapf(err, "insert %d edges", len(recs))
	}
	return nil
}
