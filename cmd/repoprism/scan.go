package main

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CaptShanks/repoprism/internal/parser"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [-- repoman-args]",
		Short: "Run repoman in the current directory and show its report",
		Long: `Run repoman (by default "repoman full") in the current directory, capture
its output, and show the report. Arguments after -- are appended to the
repoman command line. A failing repoman run still prints the report, and
repoprism then exits with repoman's exit status.`,
		Example: `  repoprism scan
  repoprism scan -i
  repoprism scan -- -d --include-arches amd64`,
		RunE: a.runScan,
	}
}

func (a *app) runScan(cmd *cobra.Command, args []string) error {
	repoman := a.cfg.Repoman
	cmdArgs := append(append([]string{}, repoman.Args...), args...)

	a.logger.Info("running repoman", "command", repoman.Command+" "+strings.Join(cmdArgs, " "))

	// Capture both stdout and stderr
	output, runErr := exec.CommandContext(cmd.Context(), repoman.Command, cmdArgs...).CombinedOutput()

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return fmt.Errorf("failed to run %s: %w", repoman.Command, runErr)
	}

	res, err := parser.New(a.cfg.ParserOptions(a.logger)...).Parse(bytes.NewReader(output))
	if err != nil {
		return err
	}
	if err := a.show(cmd, res); err != nil {
		return err
	}

	if exitErr != nil {
		return &ExitError{
			Code: exitErr.ExitCode(),
			Err:  fmt.Errorf("%s failed: %w", repoman.Command, exitErr),
		}
	}
	return nil
}
