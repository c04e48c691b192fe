package cmd

import (
	"fmt"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	sender    string
	recipient string
	amount    float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Add a transaction to the node's pending pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := database.NewTx(sender, recipient, amount)

		index, err := newClient().SubmitTransaction(commandContext(cmd), tx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Transaction will be added to Block %d\n", index)
		return err
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sender, "sender", "s", "", "Address of the sender.")
	sendCmd.Flags().StringVarP(&recipient, "recipient", "r", "", "Address of the recipient.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("sender")
	sendCmd.MarkFlagRequired("recipient")
	sendCmd.MarkFlagRequired("amount")
}
