package public

import (
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
)

// newTx is the payload of a transaction submission. Pointers are used so a
// missing field can be told apart from a zero value.
type newTx struct {
	Sender    *string  `json:"sender" validate:"required"`
	Recipient *string  `json:"recipient" validate:"required"`
	Amount    *float64 `json:"amount" validate:"required"`
}

// toTx converts the validated payload to a transaction.
func (ntx newTx) toTx() database.Tx {
	return database.NewTx(*ntx.Sender, *ntx.Recipient, *ntx.Amount)
}

type txAdded struct {
	Message string `json:"message"`
	Index   uint64 `json:"index"`
}

type mined struct {
	Message      string        `json:"message"`
	Index        uint64        `json:"index"`
	Transactions []database.Tx `json:"transactions"`
	Proof        uint64        `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
}

type chain struct {
	Chain  []database.Block `json:"chain"`
	Length int              `json:"length"`
}

type registerNodes struct {
	Nodes []string `json:"nodes" validate:"required"`
}

type registered struct {
	Message    string   `json:"message"`
	TotalNodes []string `json:"total_nodes"`
	Failed     []string `json:"failed,omitempty"`
}

type nodes struct {
	Nodes []string `json:"nodes"`
}

type resolved struct {
	Message  string           `json:"message"`
	Replaced bool             `json:"replaced"`
	Chain    []database.Block `json:"chain"`
}

type mempool struct {
	Transactions []database.Tx `json:"transactions"`
	Length       int           `json:"length"`
}
