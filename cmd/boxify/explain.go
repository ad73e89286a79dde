package main

import (
	"github.com/spf13/cobra"
)

func (a *app) explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain SCRIPT",
		Short: "Show how each called function was resolved",
		Long: "Resolves SCRIPT without rewriting it and prints the ranking, one decision " +
			"per called function and every diagnostic.",
		Args: cobra.ExactArgs(1),
		RunE: a.runExplain,
	}
}

func (a *app) runExplain(cmd *cobra.Command, args []string) error {
	cfg, _, err := a.settings(cmd)
	if err != nil {
		return a.outputError("explain", err)
	}
	logger := a.newLogger(cfg.Quiet)

	engine, err := a.newEngine(cmd, cfg, logger, nil)
	if err != nil {
		return a.outputError("explain", err)
	}
	out, err := engine.RewriteFile(cmd.Context(), args[0])
	if err != nil {
		return a.outputError("explain", err)
	}

	return a.outputResult(CLIResult{
		Command: "explain",
		Results: toCLIExplanation(out),
	})
}
