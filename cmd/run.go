package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	taskerrors "github.com/maxkimambo/taskwatch/internal/errors"
	"github.com/maxkimambo/taskwatch/internal/logger"
	"github.com/maxkimambo/taskwatch/internal/utils"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [task...]",
		Short: "Run tasks and their prerequisites (default: the default task)",
		Example: `  taskwatch run build
  taskwatch run --command "go build ./..." --pattern "**/*.go"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd, opts, args)
		},
	}
}

// runTasks runs targets until they finish or the process is interrupted.
// An interrupt is the normal way to end the watch task and is not an error.
func runTasks(cmd *cobra.Command, opts *options, targets []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := createPipeline(cmd, opts)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, targets...)
	if err != nil && ctx.Err() != nil && taskerrors.IsInterrupted(err) {
		logger.User.Info("Interrupted, stopped watching")
		return nil
	}

	if result != nil && !opts.quiet && !opts.jsonLogs {
		fmt.Fprintln(cmd.OutOrStdout(), utils.RunSummary(result, opts.verbose || opts.debug).Render())
	}
	return err
}
