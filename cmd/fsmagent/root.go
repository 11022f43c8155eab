package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aretw0/fsmagent"
	"github.com/aretw0/fsmagent/internal/logging"
	"github.com/aretw0/fsmagent/pkg/adapters/process"
	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/observability"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "fsmagent",
	Short: "fsmagent drives agent workflows through a finite-state machine",
	Long: `fsmagent loads a state graph (YAML, JSON or TOML), enforces its legal transitions
and exposes the workflow to humans, HTTP clients and MCP-capable models.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		levelName, _ := cmd.Flags().GetString("log-level")
		if !cmd.Flags().Changed("log-level") {
			if env := os.Getenv(logging.EnvLevel); env != "" {
				levelName = env
			}
		}
		level, err := logging.ParseLevel(levelName)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error (env "+logging.EnvLevel+")")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load before running")
	rootCmd.PersistentFlags().String("tools", "tools.yaml", "Process tools document (YAML, JSON or TOML); missing file means no tools")
	rootCmd.PersistentFlags().StringSlice("redact", []string{"(?i)password", "(?i)secret", "(?i)token"}, "Regexps of tool argument keys masked in logs and the journal")
}

// eventHooks builds the logging hooks plus extra, with tool arguments redacted.
func eventHooks(cmd *cobra.Command, extra ...domain.LifecycleHooks) (domain.LifecycleHooks, error) {
	patterns, _ := cmd.Flags().GetStringSlice("redact")
	all := append([]domain.LifecycleHooks{observability.LoggingHooks(logger)}, extra...)
	return observability.Redact(patterns, observability.Merge(all...))
}

// loadAgent builds an Agent from a graph document plus the process tools file.
func loadAgent(cmd *cobra.Command, path string, opts ...fsmagent.Option) (*fsmagent.Agent, error) {
	opts = append([]fsmagent.Option{fsmagent.WithLogger(logger)}, opts...)
	agent, err := fsmagent.Load(path, opts...)
	if err != nil {
		return nil, err
	}

	toolsPath, _ := cmd.Flags().GetString("tools")
	tools, err := process.LoadTools(toolsPath)
	if err != nil {
		return nil, err
	}
	if err := process.Register(agent.Registry(), tools); err != nil {
		return nil, err
	}
	logger.Debug("agent loaded", "graph", path, "tools", agent.Registry().Names())
	return agent, nil
}
