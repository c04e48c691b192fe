package database

import (
	"fmt"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/digest"
)

// Tx is the transactional information between two parties. Nothing about
// the parties or the amount is validated.
type Tx struct {
	Sender    string  `json:"sender"`    // Party the amount comes from.
	Recipient string  `json:"recipient"` // Party receiving the amount.
	Amount    float64 `json:"amount"`    // Value moved from sender to recipient.
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, amount float64) Tx {
	return Tx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%v", tx.Sender, tx.Recipient, tx.Amount)
}

// canonical returns the field set that takes part in the block hash.
func (tx Tx) canonical() map[string]any {
	return map[string]any{
		"sender":    tx.Sender,
		"recipient": tx.Recipient,
		"amount":    digest.Number(tx.Amount),
	}
}
