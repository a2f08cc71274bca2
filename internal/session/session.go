// Package session owns every table of one analysis run and drives the
// phases over a unit: forward declarations, bodies, copier plans and value
// layouts.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/rhysd/Dachs-sub001/internal/ast"
	"github.com/rhysd/Dachs-sub001/internal/config"
	"github.com/rhysd/Dachs-sub001/internal/diag"
	"github.com/rhysd/Dachs-sub001/internal/fixture"
	"github.com/rhysd/Dachs-sub001/internal/layout"
	"github.com/rhysd/Dachs-sub001/internal/observ"
	"github.com/rhysd/Dachs-sub001/internal/sema"
	"github.com/rhysd/Dachs-sub001/internal/source"
	"github.com/rhysd/Dachs-sub001/internal/symbols"
	"github.com/rhysd/Dachs-sub001/internal/trace"
	"github.com/rhysd/Dachs-sub001/internal/types"
)

// ErrAnalyzed is returned when Analyze runs twice on one session.
var ErrAnalyzed = errors.New("session already analyzed a unit")

// Options are the per-run settings that do not belong in dachs.toml.
type Options struct {
	// TraceOutput replaces [trace].output when set.
	TraceOutput io.Writer
	// ID fixes the session identity; a random one is generated when nil.
	ID uuid.UUID
}

// Unit is a set of files analysed together.
type Unit struct {
	Name  string
	Files []ast.FileID
}

// Session holds the tables of one unit. It is not safe for concurrent use.
type Session struct {
	ID      uuid.UUID
	Config  config.Config
	Files   *source.FileSet
	Strings *source.Interner
	Types   *types.Interner
	Tree    *ast.Builder
	Table   *symbols.Table
	Bag     *diag.Bag
	Tracer  trace.Tracer
	Timer   *observ.Timer
	Layout  *layout.LayoutEngine

	reporter diag.Reporter
	analyzed bool
}

// New creates a session for cfg.
func New(cfg config.Config, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	tcfg, err := cfg.TracerConfig()
	if err != nil {
		return nil, err
	}
	tcfg.Output = opts.TraceOutput
	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	strs := source.NewInterner()
	typesIn := types.NewInterner()
	bag := diag.NewBag(cfg.Sema.MaxDiagnostics)

	var reporter diag.Reporter = diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	if cfg.Sema.WarningsAsErrors {
		reporter = diag.PromoteReporter{Next: reporter}
	}

	return &Session{
		ID:       id,
		Config:   cfg,
		Files:    source.NewFileSet(),
		Strings:  strs,
		Types:    typesIn,
		Tree:     ast.NewBuilder(ast.Hints{}),
		Table:    symbols.NewTable(symbols.Hints{}, strs, typesIn),
		Bag:      bag,
		Tracer:   tracer,
		Timer:    observ.NewTimer(),
		Layout:   layout.New(layout.ForPointerSize(cfg.Target.PointerSize), typesIn),
		reporter: reporter,
	}, nil
}

// Close flushes and closes the tracer.
func (s *Session) Close() error {
	if err := s.Tracer.Flush(); err != nil {
		return err
	}
	return s.Tracer.Close()
}

// LoadFixture reads a syntax tree document from disk.
func (s *Session) LoadFixture(path string) (ast.FileID, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		diag.ReportError(s.reporter, diag.IOLoadFileError, source.NoSpan, err.Error()).Emit()
		return ast.NoFileID, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.AddFixture(path, data)
}

// AddFixture decodes a syntax tree document that was already read. Malformed
// documents are also reported as IOFixtureError diagnostics.
func (s *Session) AddFixture(path string, data []byte) (ast.FileID, error) {
	file := s.Files.Add(path, data)
	fid, err := fixture.Decode(s.Tree, s.Strings, file, path, data)
	if err != nil {
		sp := source.Span{File: file}
		msg := err.Error()
		var ferr *fixture.Error
		if errors.As(err, &ferr) {
			sp.Line, sp.Col = uint32(ferr.Line), uint32(ferr.Col)
			msg = ferr.Msg
		}
		diag.ReportError(s.reporter, diag.IOFixtureError, sp, msg).Emit()
		return ast.NoFileID, err
	}
	return fid, nil
}

// Analyze runs every phase over unit. User errors end up in the bag and in
// Result; the returned error is reserved for internal failures.
func (s *Session) Analyze(ctx context.Context, unit Unit) (res *Result, err error) {
	if s.analyzed {
		return nil, ErrAnalyzed
	}
	s.analyzed = true
	if ctx == nil {
		ctx = context.Background()
	}

	ctx = trace.WithTracer(ctx, s.Tracer)
	root := trace.Begin(s.Tracer, trace.ScopeDriver, "analyze", 0).
		WithExtra("session", s.ID.String()).
		WithExtra("unit", unit.Name)
	ctx = trace.WithSpan(ctx, root)
	defer func() {
		if err != nil {
			root.End(err.Error())
			// trace output must never hide the internal error itself
			_ = trace.Replay(s.Tracer)
			return
		}
		root.End("")
	}()
	defer diag.RecoverInternal(&err)

	checked := sema.Check(ctx, s.Tree, unit.Files, sema.Options{
		Reporter:              s.reporter,
		Table:                 s.Table,
		Strings:               s.Strings,
		MaxInstantiationDepth: s.Config.Sema.MaxInstantiationDepth,
		Timer:                 s.Timer,
	})

	res = &Result{Session: s.ID, Unit: unit.Name, Sema: checked}
	if checked.Errors == 0 && !s.Bag.HasErrors() {
		shapes := s.collectShapes(checked)
		s.phase(ctx, "copiers", func() string { return s.planCopies(checked, shapes) })
		s.phase(ctx, "layout", func() string { return s.computeLayouts(shapes) })
		res.Shapes = shapes
	}

	s.Bag.Sort()
	res.Diagnostics = s.Bag.Items()
	for _, d := range res.Diagnostics {
		switch {
		case d.Severity >= diag.SevError:
			res.Errors++
		case d.Severity == diag.SevWarning:
			res.Warnings++
		}
	}
	return res, nil
}

// phase wraps fn in a trace span and a timer entry.
func (s *Session) phase(ctx context.Context, name string, fn func() string) {
	span := trace.Begin(s.Tracer, trace.ScopePass, name, trace.CurrentSpan(ctx))
	s.Timer.Measure(name, func() string {
		note := fn()
		span.End(note)
		return note
	})
}
