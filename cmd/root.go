package cmd

import (
	"fmt"
	"io"
	"os"

	taskerrors "github.com/maxkimambo/taskwatch/internal/errors"
	"github.com/maxkimambo/taskwatch/internal/logger"
	"github.com/spf13/cobra"
)

var version = "v0.1.0"

// options holds the flag values shared by every command.
type options struct {
	configPath string
	debug      bool
	verbose    bool
	jsonLogs   bool
	quiet      bool

	command  string
	pattern  string
	failMode string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "taskwatch [task...]",
		Short: "Build a project and rebuild it whenever its sources change",
		Long: `taskwatch runs a small graph of tasks. The default task runs the build command
once and then watches the source files, re-running the build on every change.
Naming tasks runs those tasks and their prerequisites instead.`,
		Example: `  taskwatch
  taskwatch build`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(opts.verbose || opts.debug, opts.jsonLogs, opts.quiet)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, opts, args)
		},
	}
	rootCmd.Version = version

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default: taskwatch.{jsonc,json,yaml,yml} in the working directory)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&opts.jsonLogs, "json", false, "Output logs in JSON format")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress non-error output")
	flags.StringVar(&opts.command, "command", "", "Build command (overrides build.command)")
	flags.StringVar(&opts.pattern, "pattern", "", "Glob of files to watch (overrides watch.pattern)")
	flags.StringVar(&opts.failMode, "fail-mode", "", "What a failed build does: log or halt (overrides build.fail_mode)")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts))

	return rootCmd
}

// Execute runs the CLI and prints a diagnostic for any error.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		reportError(os.Stderr, err)
	}
	return err
}

func reportError(w io.Writer, err error) {
	logger.Op.WithFields(map[string]interface{}{
		"code": taskerrors.GetErrorCode(err),
	}).Debug(taskerrors.DisplayErrorSummary(err))

	fmt.Fprint(w, taskerrors.FormatForCLI(err))
	if taskerrors.IsUserError(err) {
		fmt.Fprintln(w, "\nRun 'taskwatch list' to see the defined tasks, or 'taskwatch --help' for usage.")
	} else {
		fmt.Fprintln(w, "\nRe-run with --verbose for detailed logs.")
	}
}
