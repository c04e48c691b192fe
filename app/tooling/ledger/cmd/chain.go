package cmd

import (
	"github.com/spf13/cobra"
)

// chainCmd represents the chain command
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Show the node's full chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		chain, err := newClient().Chain(commandContext(cmd))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), chain)
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
}
