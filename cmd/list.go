package cmd

import (
	"github.com/maxkimambo/taskwatch/internal/utils"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the defined tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := createPipeline(cmd, opts)
			if err != nil {
				return err
			}
			_, err = utils.TaskTable(p.Registry()).WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}
