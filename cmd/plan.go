package cmd

import (
	"fmt"

	"github.com/maxkimambo/taskwatch/internal/utils"
	"github.com/spf13/cobra"
)

func newPlanCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan [task...]",
		Short: "Print the order tasks would run in, without running them",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := createPipeline(cmd, opts)
			if err != nil {
				return err
			}
			plan, err := p.Plan(args...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				fmt.Fprint(out, utils.PlanReport(plan))
			case "json":
				data, err := plan.Describe().JSON()
				if err != nil {
					return err
				}
				fmt.Fprint(out, data)
			case "dot":
				fmt.Fprint(out, plan.Describe().DOT())
			default:
				return fmt.Errorf("unknown format %q (expected text, json or dot)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or dot")
	return cmd
}
