package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aretw0/fsmagent"
	"github.com/aretw0/fsmagent/internal/presentation/tui"
	"github.com/aretw0/fsmagent/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run <graph>",
	Short: "Run the workflow interactively",
	Long: `Starts the workflow at its initial state and asks for one action per step:
a choice number, a state name, a JSON tool call such as
{"name": "research_web", "args": {"topic": "AI"}}, or q to quit.
With --auto the first legal next state is always taken.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		auto, _ := cmd.Flags().GetBool("auto")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		journalHooks, closeJournal, err := openJournal(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeJournal()

		hooks, err := eventHooks(cmd, journalHooks)
		if err != nil {
			return err
		}

		agent, err := loadAgent(cmd, args[0],
			fsmagent.WithMaxSteps(maxSteps),
			fsmagent.WithFeedback(true),
			fsmagent.WithGuideTools(true),
			fsmagent.WithLifecycleHooks(hooks),
		)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var decider runner.Decider = runner.DeciderFunc(autoDecider)
		if !auto {
			render := tui.PlainRenderer
			if isTerminal(out) {
				tui.PrintBanner(out)
				render = tui.NewRenderer()
			}
			decider = newPromptDecider(cmd.InOrStdin(), out, render)
		}

		report, err := agent.Run(ctx, runner.Delegate(decider))
		printReport(cmd, report)
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	},
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printReport(cmd *cobra.Command, report *runner.Report) {
	if report == nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nOutcome: %s after %d steps\nPath: %s\n",
		report.Outcome, report.Steps, strings.Join(report.Path, " -> "))
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("auto", false, "Take the first legal transition at every step")
	runCmd.Flags().Int("max-steps", runner.DefaultMaxSteps, "Step budget; 0 disables it")
	addJournalFlags(runCmd)
}
