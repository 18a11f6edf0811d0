package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dataveil/dataveil/internal/config"
	"github.com/dataveil/dataveil/internal/store"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history <suite-id>",
		Short:         "List recorded runs for a stored suite",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runHistory(cmd *cobra.Command, rootOpts *RootOptions, suiteID string) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), suiteID)
	if err != nil {
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	if rootOpts.Format == "json" {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		return formatter.Success(fmt.Sprintf("no runs recorded for suite %s", suiteID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d run(s) for suite %s:\n", len(runs), suiteID)
	for _, rec := range runs {
		status := "PASSED"
		if !rec.Result.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "  %s  %s  %s  score %d/100\n",
			rec.ID,
			rec.Result.RunTime.Format(time.RFC3339),
			status,
			rec.Result.Score,
		)
	}
	return formatter.Success(strings.TrimRight(b.String(), "\n"))
}
