package cmd

import (
	"github.com/spf13/cobra"
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register address...",
	Short: "Register peers with the node",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newClient().RegisterNodes(commandContext(cmd), args)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), reg)
	},
}

// peersCmd represents the peers command
var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List the node's known peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		peers, err := newClient().Peers(commandContext(cmd))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), peers)
	},
}

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Run a consensus round on the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient().Resolve(commandContext(cmd))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(resolveCmd)
}
