package cmd

import (
	"github.com/spf13/cobra"
)

// mineCmd represents the mine command
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a new block on the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		mined, err := newClient().Mine(commandContext(cmd))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), mined)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
}
