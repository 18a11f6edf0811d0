package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dataveil/dataveil/internal/engine"
)

// renderReport formats a SuiteResult as the human-readable text report.
func renderReport(result *engine.SuiteResult) string {
	var b strings.Builder

	status := "PASSED"
	if !result.Success {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "Suite %q: %s (score %d/100)\n", result.SuiteName, status, result.Score)
	fmt.Fprintf(&b, "Run at %s, %d rule(s)\n", result.RunTime.Format(time.RFC3339), len(result.Results))

	for _, outcome := range result.Results {
		mark := "PASS"
		if !outcome.Success {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "  [%s] %s", mark, outcome.RuleID)
		if outcome.ObservedValue != nil {
			fmt.Fprintf(&b, "  observed=%v", outcome.ObservedValue)
		}
		if outcome.UnexpectedCount > 0 {
			fmt.Fprintf(&b, "  unexpected=%d (%.1f%%)", outcome.UnexpectedCount, outcome.UnexpectedPercent)
		}
		b.WriteByte('\n')

		if outcome.Diagnostic != "" {
			fmt.Fprintf(&b, "         %s\n", outcome.Diagnostic)
		}
		for _, item := range outcome.UnexpectedList {
			fmt.Fprintf(&b, "         - %v\n", item)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
