package main

import (
	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: "Prints the configuration after defaults, boxify.toml, BOXIFY_* environment " +
			"variables and flags are applied. Text format is TOML.",
		Args: cobra.NoArgs,
		RunE: a.runConfigShow,
	})
	return cmd
}

func (a *app) runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, path, err := a.settings(cmd)
	if err != nil {
		return a.outputError("config show", err)
	}
	if a.flagFormat == "json" {
		return a.outputResult(CLIResult{
			Command: "config show",
			Results: CLIConfig{File: path, Config: cfg},
		})
	}

	data, err := cfg.TOML()
	if err != nil {
		return a.outputError("config show", err)
	}
	if path != "" {
		if _, err := a.stdout.Write([]byte("# " + path + "\n")); err != nil {
			return err
		}
	}
	_, err = a.stdout.Write(data)
	return err
}
