package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dataveil/dataveil/internal/suitespec"
)

// ValidationReport holds the validate command's output payload.
type ValidationReport struct {
	Valid  bool                        `json:"valid"`
	Suite  string                      `json:"suite,omitempty"`
	Rules  int                         `json:"rules"`
	Errors []suitespec.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite.cue>",
		Short: "Validate a suite file without evaluating it",
		Long: `Check a suite definition against the schema: known rule kinds, the
kwargs each kind requires, unique rule ids. No dataset is needed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, suitePath string) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	suite, err := suitespec.LoadFile(suitePath)
	if err != nil {
		var verrs suitespec.ValidationErrors
		if errors.As(err, &verrs) {
			report := ValidationReport{Valid: false, Errors: verrs}
			if rootOpts.Format == "json" {
				formatter.Success(report)
			} else {
				formatter.Failure("E_VALIDATE", fmt.Sprintf("%s is invalid", suitePath), verrs.Error())
			}
			return NewExitError(ExitFailure, "")
		}
		return WrapExitError(ExitCommandError, "load suite", err)
	}

	report := ValidationReport{Valid: true, Suite: suite.Name, Rules: len(suite.Rules)}
	if rootOpts.Format == "json" {
		return formatter.Success(report)
	}
	return formatter.Success(fmt.Sprintf("%s is valid: suite %q, %d rule(s)", suitePath, suite.Name, len(suite.Rules)))
}
