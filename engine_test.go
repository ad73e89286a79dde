package boxify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/boxify/internal/diagnostic"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := LoadCatalog(context.Background(), filepath.Join("testdata", "catalog.csv"))
	require.NoError(t, err)
	return cat
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(testCatalog(t), opts...)
	require.NoError(t, err)
	return e
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// =============================================================================
// Rewrite
// =============================================================================

func TestRewrite_Basic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	out, err := e.Rewrite(context.Background(), "library(dplyr)\nmutate(df)\n")
	require.NoError(t, err)

	assert.Equal(t, "box::use(box[use])\nuse(dplyr[mutate])\n\nmutate(df)\n", out.Text)
	assert.Equal(t, []string{"dplyr"}, out.Imports.Packages())
	assert.Equal(t, []string{"dplyr", "base", "magrittr", "tidyr"}, out.Ranking)
	assert.Zero(t, out.Diagnostics.Len())
}

func TestRewrite_ReporterGetsSource(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var got []Diagnostic
	rep := diagnostic.ReporterFunc(func(d Diagnostic) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, d)
	})

	e := newTestEngine(t, WithReporter(rep))
	out, err := e.RewriteSource(context.Background(), "a.R", "read_csv(\"x\")\n")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, diagnostic.CodeUnrankedChoice, got[0].Code)
	assert.Equal(t, "a.R", got[0].Source)
	assert.Equal(t, got, out.Diagnostics.Items)
}

func TestRewrite_CustomFallbackTail(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithFallbackTail("vroom", "stats"))
	out, err := e.Rewrite(context.Background(), "read_csv(p)\nfilter(x)\n")
	require.NoError(t, err)

	assert.True(t, out.Imports.Has("vroom", "read_csv"))
	assert.True(t, out.Imports.Has("stats", "filter"))
	assert.Empty(t, out.Diagnostics.Warnings())
}

func TestRewrite_CustomOperatorsAndLoads(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t,
		WithOperators(Operator{Token: "%||%", Package: "rlang"}),
		WithLoadFunctions("p_load"),
	)
	out, err := e.Rewrite(context.Background(), "p_load(dplyr)\nx %||% y\n")
	require.NoError(t, err)

	assert.Equal(t, "box::use(box[use])\nuse(rlang[`%||%`])\n\nx %||% y\n", out.Text)
}

func TestRewrite_Deterministic(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	src := "select(df)\nread_csv(p)\nlag(x) %>% filter()\n"
	first, err := e.Rewrite(context.Background(), src)
	require.NoError(t, err)
	for range 10 {
		again, err := e.Rewrite(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, first.Text, again.Text)
	}
}

// =============================================================================
// Hook
// =============================================================================

func TestHook_FromDisk(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := newTestEngine(t,
		WithHook(filepath.Join("scripts", "hooks", "here.risor")),
		WithLogger(log.New(&buf)),
	)
	out, err := e.RewriteSource(context.Background(), "analysis.R", "mutate(df)\n")
	require.NoError(t, err)

	assert.Equal(t, "box::use(box[use])\nuse(dplyr[mutate])\nuse(here[here])\nmutate(df)\n", out.Text)
	assert.Contains(t, buf.String(), "forced here::here into analysis.R")
}

func TestHook_FromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"hooks/drop.risor": &fstest.MapFile{Data: []byte(`remove_import("base", "print")`)},
	}
	e := newTestEngine(t, WithHook("hooks/drop.risor"), WithHookFS(fsys))
	out, err := e.Rewrite(context.Background(), "print(mutate(df))\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"dplyr"}, out.Imports.Packages())
}

func TestHook_Missing(t *testing.T) {
	t.Parallel()

	_, err := New(testCatalog(t), WithHook(filepath.Join(t.TempDir(), "absent.risor")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boxify: hook")
}

func TestHook_ScriptError(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"bad.risor": &fstest.MapFile{Data: []byte(`add_import("only-one")`)}}
	e := newTestEngine(t, WithHook("bad.risor"), WithHookFS(fsys))
	_, err := e.RewriteSource(context.Background(), "a.R", "print(1)\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boxify: rewrite a.R")
}

// =============================================================================
// Files
// =============================================================================

func TestRewriteFile(t *testing.T) {
	t.Parallel()

	path := writeScript(t, t.TempDir(), "a.R", "stats::lm(y ~ x)\n")
	out, err := newTestEngine(t).RewriteFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, out.Source)
	assert.Equal(t, "box::use(box[use])\nuse(stats[lm])\nlm(y ~ x)\n", out.Text)
}

func TestRewriteFile_Unreadable(t *testing.T) {
	t.Parallel()

	_, err := newTestEngine(t).RewriteFile(context.Background(), filepath.Join(t.TempDir(), "absent.R"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputUnreadable))
}

func TestWriteScript_RoundTrip(t *testing.T) {
	t.Parallel()

	path := writeScript(t, t.TempDir(), "a.R", "mutate(df)\n")
	e := newTestEngine(t)
	out, err := e.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, WriteScript(context.Background(), path, out.Text))

	again, err := e.RewriteFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, out.Text, again.Text)
}

func TestRewriteFiles_Parallel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var paths []string
	for i, body := range []string{"mutate(a)\n", "lm(b)\n", "print(c)\n", "ggplot(d)\n", "%>%"} {
		paths = append(paths, writeScript(t, dir, string(rune('a'+i))+".R", body))
	}

	e := newTestEngine(t, WithParallel(true, 3))
	outs, err := e.RewriteFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, outs, len(paths))

	wantPkgs := []string{"dplyr", "stats", "base", "ggplot2", "magrittr"}
	for i, out := range outs {
		assert.Equal(t, paths[i], out.Source)
		assert.Equal(t, []string{wantPkgs[i]}, out.Imports.Packages())
	}

	serial, err := newTestEngine(t, WithParallel(false, 0)).RewriteFiles(context.Background(), paths)
	require.NoError(t, err)
	for i := range outs {
		assert.Equal(t, serial[i].Text, outs[i].Text)
	}
}

func TestRewriteFiles_ReadFailureAbortsEverything(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeScript(t, dir, "good.R", "mutate(a)\n")

	outs, err := newTestEngine(t).RewriteFiles(context.Background(), []string{good, filepath.Join(dir, "missing.R")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputUnreadable)
	assert.Nil(t, outs)
}

func TestRewriteFiles_Empty(t *testing.T) {
	t.Parallel()

	outs, err := newTestEngine(t).RewriteFiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outs)
}

// =============================================================================
// Catalog
// =============================================================================

func TestLoadCatalog_Unavailable(t *testing.T) {
	t.Parallel()

	_, err := LoadCatalog(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestNewCatalog(t *testing.T) {
	t.Parallel()

	e, err := New(NewCatalog(map[string][]string{"pkg": {"fn"}}))
	require.NoError(t, err)
	out, err := e.Rewrite(context.Background(), "fn()\n")
	require.NoError(t, err)
	assert.Equal(t, "box::use(box[use])\nuse(pkg[fn])\nfn()\n", out.Text)
	assert.Same(t, e.Catalog(), e.catalog)
}

// =============================================================================
// Golden
// =============================================================================

// TestGolden rewrites testdata/golden/<case>/input.R and compares the result
// with expected.R and the diagnostic codes with diagnostics.txt. Rewriting
// expected.R must leave it unchanged.
func TestGolden(t *testing.T) {
	caseDirs, err := os.ReadDir(filepath.Join("testdata", "golden"))
	if err != nil {
		t.Skip("no golden testdata found")
	}

	e := newTestEngine(t)
	for _, dir := range caseDirs {
		if !dir.IsDir() {
			continue
		}
		root := filepath.Join("testdata", "golden", dir.Name())
		t.Run(dir.Name(), func(t *testing.T) {
			input, err := os.ReadFile(filepath.Join(root, "input.R"))
			require.NoError(t, err)
			expected, err := os.ReadFile(filepath.Join(root, "expected.R"))
			require.NoError(t, err)

			out, err := e.Rewrite(context.Background(), string(input))
			require.NoError(t, err)
			assert.Equal(t, string(expected), out.Text)

			if want, err := os.ReadFile(filepath.Join(root, "diagnostics.txt")); err == nil {
				var got []string
				for _, d := range out.Diagnostics.Items {
					got = append(got, d.Code+":"+d.Function)
				}
				assert.Equal(t, strings.Fields(string(want)), got)
			}

			again, err := e.Rewrite(context.Background(), out.Text)
			require.NoError(t, err)
			assert.Equal(t, out.Text, again.Text, "rewrite is not idempotent")
		})
	}
}

func TestRewrite_NilCatalogKeepsLoads(t *testing.T) {
	t.Parallel()

	e, err := New(nil)
	require.NoError(t, err)
	out, err := e.Rewrite(context.Background(), "library(dplyr)\nmutate(x)\n")
	require.NoError(t, err)
	assert.Equal(t, "box::use(box[use])\nlibrary(dplyr)\nmutate(x)\n", out.Text)
	assert.Equal(t, 0, out.Imports.Len())
}
