package main

import (
	"fmt"

	"github.com/aretw0/fsmagent/internal/validator"
	"github.com/aretw0/fsmagent/pkg/adapters/file"
	"github.com/aretw0/fsmagent/pkg/fsm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph>",
	Short: "Check the graph for consistency",
	Long:  `Parses the graph document and fails on undeclared states. Unreachable states,
dead ends and states with no way to a terminal state are reported as warnings.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := file.Load(args[0])
		if err != nil {
			return err
		}
		if err := fsm.Validate(cfg); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, w := range validator.Inspect(cfg).Warnings() {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		fmt.Fprintf(out, "Graph is valid! %d states, initial %q\n", len(cfg.States), cfg.Initial)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
