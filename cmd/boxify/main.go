package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jward/boxify"
	"github.com/jward/boxify/internal/config"
	"github.com/jward/boxify/internal/diagnostic"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := config.LoadDotEnv(); err != nil {
		a.newLogger(false).Warn("ignoring .env", "err", err)
	}
	if err := a.rootCmd().Execute(); err != nil {
		if !a.errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

// app holds flag values and output streams for one command tree.
type app struct {
	stdout io.Writer
	stderr io.Writer

	flagFormat      string
	flagConfig      string
	flagCatalog     string
	flagHook        string
	flagFallback    []string
	flagLocalLibDir string
	flagQuiet       bool
	flagWrite       bool

	// errorHandled is set by outputError so main() doesn't double-print.
	errorHandled bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "boxify [flags] SCRIPT...",
		Short: "Rewrite R scripts to use box::use imports",
		Long: "Resolves every function an R script calls to exactly one package and " +
			"replaces library() loads with a sorted box::use preamble. The rewritten " +
			"script goes to stdout unless --write is given.",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(a.flagFormat)
		},
		RunE: a.runRewrite,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flagFormat, "format", "text", "output format: json|text")
	pf.StringVar(&a.flagConfig, "config", "", "config file (default: ./boxify.toml when present)")
	pf.StringVar(&a.flagCatalog, "catalog", "", "catalog CSV path or URL, or a SQLite snapshot (default: all_names.csv)")
	pf.StringVar(&a.flagHook, "hook", "", "Risor script run after resolution")
	pf.StringSliceVar(&a.flagFallback, "fallback", nil, "packages ranked after every loaded package (comma-separated)")
	pf.StringVar(&a.flagLocalLibDir, "local-lib-dir", "", "project-local library directory (reserved, currently ignored)")
	pf.BoolVarP(&a.flagQuiet, "quiet", "q", false, "suppress diagnostics")

	root.Flags().BoolVarP(&a.flagWrite, "write", "w", false, "rewrite scripts in place")

	root.AddCommand(a.explainCmd())
	root.AddCommand(a.catalogCmd())
	root.AddCommand(a.configCmd())
	return root
}

// settings loads the config and applies flags the user set explicitly.
func (a *app) settings(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, path, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: a.flagConfig})
	if err != nil {
		return nil, "", err
	}
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog = a.flagCatalog
	}
	if flags.Changed("hook") {
		cfg.Hook = a.flagHook
	}
	if flags.Changed("fallback") {
		cfg.FallbackTail = a.flagFallback
	}
	if flags.Changed("local-lib-dir") {
		cfg.LocalLibDir = a.flagLocalLibDir
	}
	if flags.Changed("quiet") {
		cfg.Quiet = a.flagQuiet
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newLogger returns the stderr logger. Quiet raises the level so only
// errors get through.
func (a *app) newLogger(quiet bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	if quiet {
		logger.SetLevel(log.ErrorLevel)
	}
	return logger
}

// newEngine loads the catalog and builds an Engine from cfg. A nil reporter
// keeps diagnostics on the Output only.
func (a *app) newEngine(cmd *cobra.Command, cfg *config.Config, logger *log.Logger, rep diagnostic.Reporter) (*boxify.Engine, error) {
	if cfg.LocalLibDir != "" {
		logger.Warn("local library directory is not used yet; ignoring", "dir", cfg.LocalLibDir)
	}

	cat, err := boxify.LoadCatalog(cmd.Context(), cfg.Catalog)
	if err != nil {
		return nil, err
	}

	opts := []boxify.Option{
		boxify.WithOperators(cfg.ExtractOperators()...),
		boxify.WithLoadFunctions(cfg.LoadFunctions...),
		boxify.WithFallbackTail(cfg.FallbackTail...),
		boxify.WithLogger(logger),
		boxify.WithParallel(true, cfg.Parallel),
	}
	if rep != nil {
		opts = append(opts, boxify.WithReporter(rep))
	}
	if cfg.Hook != "" {
		opts = append(opts, boxify.WithHook(cfg.Hook))
	}
	return boxify.New(cat, opts...)
}

func (a *app) runRewrite(cmd *cobra.Command, args []string) error {
	if len(args) > 1 && !a.flagWrite {
		return fmt.Errorf("rewriting %d scripts requires --write", len(args))
	}

	cfg, _, err := a.settings(cmd)
	if err != nil {
		return err
	}
	logger := a.newLogger(cfg.Quiet)

	engine, err := a.newEngine(cmd, cfg, logger, diagnostic.NewLogReporter(logger))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	outputs, err := engine.RewriteFiles(ctx, args)
	if err != nil {
		return err
	}

	if !a.flagWrite {
		_, err := io.WriteString(a.stdout, outputs[0].Text)
		return err
	}
	for _, out := range outputs {
		if err := boxify.WriteScript(ctx, out.Source, out.Text); err != nil {
			return err
		}
		logger.Info("rewrote", "script", out.Source,
			"packages", len(out.Imports.Packages()),
			"warnings", len(out.Diagnostics.Warnings()),
			"unranked", len(out.Diagnostics.ByCode(diagnostic.CodeUnrankedChoice)))
	}
	return nil
}
