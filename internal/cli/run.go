package cli

import (
	"github.com/spf13/cobra"

	"github.com/dataveil/dataveil/internal/config"
	"github.com/dataveil/dataveil/internal/engine"
	"github.com/dataveil/dataveil/internal/judge"
	"github.com/dataveil/dataveil/internal/store"
	"github.com/dataveil/dataveil/internal/suitespec"
	"github.com/dataveil/dataveil/internal/table"
)

// RunOptions holds flags specific to the run command.
type RunOptions struct {
	Save bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <dataset.csv> <suite.cue>",
		Short: "Evaluate a suite against a dataset",
		Long: `Evaluate every rule of a suite against a CSV dataset and print the
pass/fail report. Exit code 0 when the suite passed, 1 when any rule failed.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, rootOpts, opts, args[0], args[1])
		},
	}

	cmd.Flags().BoolVar(&opts.Save, "save", false, "persist the suite and run to the history store")

	return cmd
}

func runRun(cmd *cobra.Command, rootOpts *RootOptions, opts *RunOptions, datasetPath, suitePath string) error {
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

	ds, err := table.LoadCSVFile(datasetPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load dataset", err)
	}
	formatter.VerboseLog("dataset: %d row(s), %d column(s)", ds.RowCount(), len(ds.Headers()))

	suite, err := suitespec.LoadFile(suitePath)
	if err != nil {
		formatter.Failure("E_SUITE", "suite file invalid", err.Error())
		return NewExitError(ExitFailure, "")
	}
	formatter.VerboseLog("suite %q: %d rule(s)", suite.Name, len(suite.Rules))

	eng := engine.New(
		engine.WithWorkers(cfg.Engine.Workers),
		engine.WithJudgeConcurrency(cfg.Judge.Concurrency),
		engine.WithJudge(judge.NewOpenAI(judge.OpenAIOptions{
			APIKey:  cfg.Judge.APIKey,
			Model:   cfg.Judge.Model,
			BaseURL: cfg.Judge.BaseURL,
			Timeout: cfg.Judge.Timeout(),
		})),
	)

	result, err := eng.Evaluate(cmd.Context(), ds, suite)
	if err != nil {
		return WrapExitError(ExitCommandError, "evaluate suite", err)
	}

	if opts.Save {
		st, err := store.Open(cfg.StorePath)
		if err != nil {
			return WrapExitError(ExitCommandError, "open store", err)
		}
		defer st.Close()

		suiteRec, err := st.SaveSuite(cmd.Context(), suite)
		if err != nil {
			return WrapExitError(ExitCommandError, "save suite", err)
		}
		runRec, err := st.SaveRun(cmd.Context(), suiteRec.ID, result)
		if err != nil {
			return WrapExitError(ExitCommandError, "save run", err)
		}
		formatter.VerboseLog("saved suite %s, run %s", suiteRec.ID, runRec.ID)
	}

	if rootOpts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
	} else {
		if err := formatter.Success(renderReport(result)); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
	}

	if !result.Success {
		// Report already printed; the exit code alone signals failure.
		return NewExitError(ExitFailure, "")
	}
	return nil
}
