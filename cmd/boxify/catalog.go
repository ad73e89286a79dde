package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/boxify"
	"github.com/jward/boxify/internal/catalog"
)

func (a *app) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect or snapshot the package catalog",
	}
	cmd.AddCommand(a.catalogImportCmd())
	cmd.AddCommand(a.catalogOwnersCmd())
	cmd.AddCommand(a.catalogExportsCmd())
	return cmd
}

func (a *app) catalogImportCmd() *cobra.Command {
	var (
		dbPath string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "import CSV",
		Short: "Snapshot a CSV catalog into SQLite",
		Long: "Reads a package,function listing (path or URL) and writes it to a SQLite " +
			"snapshot usable as --catalog. The write is skipped when the snapshot already " +
			"holds the same listing, unless --force is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := catalog.Import(cmd.Context(), args[0], dbPath, force)
			if err != nil {
				return a.outputError("catalog import", err)
			}
			return a.outputResult(CLIResult{
				Command: "catalog import",
				Results: toCLISnapshot(args[0], dbPath, res),
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "snapshot database path")
	cmd.Flags().BoolVar(&force, "force", false, "rewrite the snapshot even when unchanged")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func (a *app) catalogOwnersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owners FUNCTION...",
		Short: "List the packages exporting each function",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := a.settings(cmd)
			if err != nil {
				return a.outputError("catalog owners", err)
			}
			byFn, err := catalog.LookupOwners(cmd.Context(), cfg.Catalog, args...)
			if err != nil {
				return a.outputError("catalog owners", err)
			}
			owners := make([]CLIOwners, 0, len(args))
			for _, fn := range args {
				owners = append(owners, CLIOwners{Function: fn, Packages: nonNil(byFn[fn])})
			}
			return a.outputResult(CLIResult{Command: "catalog owners", Results: owners})
		},
	}
}

func (a *app) catalogExportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exports PACKAGE",
		Short: "List the functions a package exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog(cmd)
			if err != nil {
				return a.outputError("catalog exports", err)
			}
			pkg := args[0]
			if !cat.HasPackage(pkg) {
				return a.outputError("catalog exports", fmt.Errorf("package %q is not in the catalog", pkg))
			}
			return a.outputResult(CLIResult{
				Command: "catalog exports",
				Results: CLIExports{Package: pkg, Functions: cat.Exports(pkg)},
			})
		},
	}
}

func (a *app) loadCatalog(cmd *cobra.Command) (*boxify.Catalog, error) {
	cfg, _, err := a.settings(cmd)
	if err != nil {
		return nil, err
	}
	return boxify.LoadCatalog(cmd.Context(), cfg.Catalog)
}
