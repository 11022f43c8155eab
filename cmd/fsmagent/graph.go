package main

import (
	"fmt"

	"github.com/aretw0/fsmagent/internal/presentation/graph"
	"github.com/aretw0/fsmagent/pkg/adapters/file"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <graph>",
	Short: "Export the state graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the states and their legal transitions.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := file.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(cfg, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
