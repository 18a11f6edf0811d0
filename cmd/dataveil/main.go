package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dataveil/dataveil/internal/cli"
)

func main() {
	level := slog.LevelWarn
	if os.Getenv("DATAVEIL_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			// Commands that already reported their failure return a bare
			// exit code with an empty message.
			if exitErr.Message != "" || exitErr.Err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.ExitFailure)
	}
}
