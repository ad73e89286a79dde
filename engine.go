package boxify

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/jward/boxify/internal/catalog"
	"github.com/jward/boxify/internal/diagnostic"
	"github.com/jward/boxify/internal/extract"
	"github.com/jward/boxify/internal/resolve"
	"github.com/jward/boxify/internal/rewrite"
	"github.com/jward/boxify/internal/runtime"
	"github.com/jward/boxify/internal/source"
)

// Engine runs the boxify pipeline for one catalog: extract facts from a
// script, resolve every call to its owning package, run the optional hook
// script and render the rewritten text.
//
// The catalog is read-only and every per-script structure is built fresh, so
// one Engine may rewrite many scripts concurrently.
type Engine struct {
	catalog   *catalog.Catalog
	extractor *extract.Extractor
	rewriter  *rewrite.Rewriter
	runtime   *runtime.Runtime
	reporter  diagnostic.Reporter
	logger    *log.Logger

	operators    []extract.Operator
	loadFuncs    []string
	fallbackTail []string

	hookPath string
	hookFS   fs.FS
	// hookScript is hookPath relative to the runtime's script root.
	hookScript string

	// useParallel enables the worker pool in RewriteFiles.
	useParallel bool
	workers     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithOperators replaces the non-standard operator table.
func WithOperators(ops ...Operator) Option {
	return func(e *Engine) {
		e.operators = slices.Clone(ops)
	}
}

// WithLoadFunctions replaces the functions treated as load directives.
func WithLoadFunctions(names ...string) Option {
	return func(e *Engine) {
		e.loadFuncs = slices.Clone(names)
	}
}

// WithFallbackTail replaces the packages ranked after every script load.
func WithFallbackTail(pkgs ...string) Option {
	return func(e *Engine) {
		e.fallbackTail = slices.Clone(pkgs)
	}
}

// WithReporter streams diagnostics to rep as they are produced. In
// RewriteFiles rep may be called from several goroutines.
func WithReporter(rep diagnostic.Reporter) Option {
	return func(e *Engine) {
		e.reporter = rep
	}
}

// WithLogger sets the logger used for hook script output.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHook runs the Risor script at path after resolution. Modules the hook
// imports are resolved relative to its directory, or within the hook
// filesystem when WithHookFS is set.
func WithHook(path string) Option {
	return func(e *Engine) {
		e.hookPath = path
	}
}

// WithHookFS loads the hook script from fsys instead of from disk.
func WithHookFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.hookFS = fsys
	}
}

// WithParallel controls the RewriteFiles worker pool. When true (default),
// scripts are rewritten on up to workers goroutines; workers <= 0 means one
// per CPU.
func WithParallel(parallel bool, workers int) Option {
	return func(e *Engine) {
		e.useParallel = parallel
		e.workers = workers
	}
}

// New creates an Engine over cat. A configured hook script is loaded once
// here so a missing hook fails before any script is rewritten.
func New(cat *Catalog, opts ...Option) (*Engine, error) {
	e := &Engine{
		catalog:      cat,
		reporter:     diagnostic.Discard,
		operators:    extract.DefaultOperators(),
		loadFuncs:    extract.DefaultLoadFunctions(),
		fallbackTail: resolve.DefaultFallbackTail(),
		useParallel:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reporter == nil {
		e.reporter = diagnostic.Discard
	}

	e.extractor = extract.New(
		extract.WithOperators(e.operators...),
		extract.WithLoadFunctions(e.loadFuncs...),
	)
	e.rewriter = rewrite.New()

	if e.hookPath != "" {
		var rtOpts []runtime.RuntimeOption
		if e.logger != nil {
			rtOpts = append(rtOpts, runtime.WithLogger(e.logger))
		}
		scriptsDir := filepath.Dir(e.hookPath)
		e.hookScript = filepath.Base(e.hookPath)
		if e.hookFS != nil {
			rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.hookFS))
			scriptsDir = ""
			e.hookScript = e.hookPath
		}
		e.runtime = runtime.NewRuntime(cat, scriptsDir, rtOpts...)
		if _, err := e.runtime.LoadScript(e.hookScript); err != nil {
			return nil, fmt.Errorf("boxify: hook: %w", err)
		}
	}
	return e, nil
}

// Catalog returns the Engine's catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Rewrite rewrites script text. It fails only when the hook script does.
func (e *Engine) Rewrite(ctx context.Context, src string) (*Output, error) {
	return e.RewriteSource(ctx, "", src)
}

// RewriteSource rewrites script text; name labels diagnostics and is
// exposed to the hook as source_path.
func (e *Engine) RewriteSource(ctx context.Context, name, src string) (*Output, error) {
	facts := e.extractor.Extract(src)

	resolver := resolve.NewResolver(e.catalog, resolve.Config{FallbackTail: e.fallbackTail},
		resolve.WithReporter(e.reporter),
		resolve.WithSource(name),
	)
	res := resolver.Resolve(facts)

	if e.runtime != nil {
		hook := &runtime.Hook{Imports: res.Imports, Facts: facts, SourcePath: name}
		if err := e.runtime.RunHook(ctx, e.hookScript, hook); err != nil {
			return nil, fmt.Errorf("boxify: rewrite %s: %w", labelOf(name), err)
		}
	}

	return &Output{
		Source:      name,
		Text:        e.rewriter.Rewrite(src, facts, res.Imports, e.catalog.HasPackage),
		Facts:       facts,
		Imports:     res.Imports,
		Decisions:   res.Decisions,
		Diagnostics: res.Diagnostics,
		Ranking:     res.Ranking,
	}, nil
}

// RewriteFile reads the script at location (a path or afs URL) and
// rewrites it.
func (e *Engine) RewriteFile(ctx context.Context, location string) (*Output, error) {
	src, err := ReadScript(ctx, location)
	if err != nil {
		return nil, err
	}
	return e.RewriteSource(ctx, location, src)
}

// ReadScript reads a script from a path or afs URL.
func ReadScript(ctx context.Context, location string) (string, error) {
	data, err := source.Download(ctx, location)
	if err != nil {
		return "", fmt.Errorf("boxify: read %s: %w: %w", location, ErrInputUnreadable, err)
	}
	return string(data), nil
}

// WriteScript replaces the script at location with text.
func WriteScript(ctx context.Context, location, text string) error {
	if err := source.Upload(ctx, location, []byte(text)); err != nil {
		return fmt.Errorf("boxify: write %s: %w", location, err)
	}
	return nil
}

func labelOf(name string) string {
	if name == "" {
		return "<input>"
	}
	return name
}
