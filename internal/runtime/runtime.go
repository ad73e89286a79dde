package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/boxify/internal/catalog"
	"github.com/jward/boxify/internal/extract"
	"github.com/jward/boxify/internal/resolve"
)

// Runtime embeds a Risor VM and runs hook scripts that post-process a
// script's imports after resolution.
type Runtime struct {
	catalog    *catalog.Catalog
	scriptsDir string
	fsys       fs.FS
	logger     *log.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger sets the logger behind the log global.
func WithLogger(logger *log.Logger) RuntimeOption {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRuntime creates a Runtime wired to the given Catalog and scripts directory.
func NewRuntime(cat *catalog.Catalog, scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		catalog:    cat,
		scriptsDir: scriptsDir,
		logger:     log.Default().WithPrefix("hook"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Hook is the per-script state a hook script sees and edits.
type Hook struct {
	// Imports is edited in place by add_import and remove_import.
	Imports    *resolve.ImportMap
	Facts      *extract.Facts
	SourcePath string
}

// RunHook loads the hook script at scriptPath and runs it against h.
func (r *Runtime) RunHook(ctx context.Context, scriptPath string, h *Hook) error {
	return r.RunScript(ctx, scriptPath, r.hookGlobals(h))
}

// RunHookSource runs hook source code against h.
func (r *Runtime) RunHookSource(ctx context.Context, source string, h *Hook) error {
	return r.RunSource(ctx, source, r.hookGlobals(h))
}

// RunScript loads and executes a Risor script with all standard globals
// plus any extra globals provided by the caller.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) error {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly with all standard globals
// plus any extra globals. Useful for testing without script files.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	_, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on the embedded filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		// fs.FS paths are relative ("/hooks/here.risor" -> "hooks/here.risor").
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log":    mustProxy(&logObject{logger: r.logger}),
		"owners": makeOwnersFn(r.catalog),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

// hookGlobals exposes h to a hook script.
func (r *Runtime) hookGlobals(h *Hook) map[string]any {
	facts := h.Facts
	if facts == nil {
		facts = &extract.Facts{}
	}
	calls := make([]object.Object, len(facts.Calls))
	for i, fn := range facts.Calls {
		calls[i] = object.NewString(fn)
	}
	return map[string]any{
		"add_import":    makeAddImportFn(h.Imports),
		"remove_import": makeRemoveImportFn(h.Imports),
		"imported":      makeImportedFn(h.Imports),
		"packages":      makePackagesFn(h.Imports),
		"functions":     makeFunctionsFn(h.Imports),
		"imported_from": makeImportedFromFn(h.Imports),
		"called":        makeCalledFn(facts),
		"calls":         object.NewList(calls),
		"source_path":   object.NewString(h.SourcePath),
	}
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
