package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/CaptShanks/repoprism/internal/config"
	"github.com/CaptShanks/repoprism/internal/logging"
	"github.com/CaptShanks/repoprism/internal/parser"
	"github.com/CaptShanks/repoprism/internal/tui"
)

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	cfgFile     string
	verbosity   int
	interactive bool
	noTruncate  bool

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "repoprism [file|-]",
		Short: "Prettify Portage repoman QA output",
		Long: `repoprism groups repoman's QA report by package, file and message code,
and prints it as a colored tree.

Input is read from a file, or from stdin when the file is "-" or omitted:

    repoman full | repoprism
    repoprism repoman.log
    repoprism scan -- -d`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		RunE: a.runView,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/repoprism/config.yaml)")
	pf.CountVarP(&a.verbosity, "verbose", "v", "log more to stderr (-v info, -vv debug)")
	pf.BoolVarP(&a.interactive, "interactive", "i", false, "browse the report in an interactive TUI")
	pf.BoolVar(&a.noTruncate, "no-truncate", false, "do not truncate long report lines")
	pf.Int("width", tui.DefaultMaxWidth, "maximum report line width")
	pf.String("placeholder", tui.DefaultPlaceholder, "marker appended to truncated lines")
	pf.String("color", string(tui.ColorAuto), "colorize output (auto|always|never)")
	pf.Bool("stop-at-blank", false, "stop reading at the first blank line after the report starts")

	cmd.AddCommand(newScanCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// init loads the configuration, with explicitly set flags taking priority,
// and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.Load(config.LoadOptions{
		ConfigFilePath: a.cfgFile,
		Flags: map[string]*pflag.Flag{
			config.KeyPrintMaxWidth:    flags.Lookup("width"),
			config.KeyPrintPlaceholder: flags.Lookup("placeholder"),
			config.KeyPrintColor:       flags.Lookup("color"),
			config.KeyParseStopAtBlank: flags.Lookup("stop-at-blank"),
		},
	})
	if err != nil {
		return err
	}
	if a.noTruncate {
		cfg.Print.Truncate = false
	}

	level, err := logging.ResolveLevel(a.verbosity, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), level)
	return nil
}

func (a *app) runView(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	var input io.Reader
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer file.Close()
		input = file
	} else {
		input = cmd.InOrStdin()
		if len(args) == 0 && isTerminal(input) {
			return cmd.Help()
		}
	}

	res, err := parser.New(a.cfg.ParserOptions(a.logger)...).Parse(input)
	if err != nil {
		return err
	}
	return a.show(cmd, res)
}

// show prints res, or opens the browser in interactive mode.
func (a *app) show(cmd *cobra.Command, res *parser.Result) error {
	stats := res.Stats()
	a.logger.Info("parsed repoman output",
		"packages", stats.Packages,
		"messages", stats.Messages,
		"unrecognized", stats.Unrecognized)
	if res.Empty() {
		a.logger.Warn("no repoman report lines found in input")
	}

	if a.interactive {
		return tui.Run(res, version)
	}
	return tui.NewPrinter(cmd.OutOrStdout(), a.cfg.PrintOptions()).Print(res)
}

// isTerminal reports whether r is an interactive terminal, in which case
// nothing is being piped in.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
