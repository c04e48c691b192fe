package state

import (
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
)

// NewTransaction adds the transaction to the pending pool and returns the
// index of the block it will be sealed into. The transaction is not
// validated in any way.
func (s *State) NewTransaction(tx database.Tx) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.mempool.Add(tx)
	index := s.db.Length()

	s.evHandler("state: NewTransaction: tx[%s]: pending[%d]: block[%d]", tx, n, index)

	return index
}
