package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/fsmagent"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fsmagent",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fsmagent version %s\n", strings.TrimSpace(fsmagent.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
