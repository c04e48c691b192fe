package state

import (
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
)

// QueryLastest represents to query the latest block in the chain.
const QueryLastest = ^uint64(0) >> 1

// =============================================================================

// QueryChainLength returns the number of blocks in the chain.
func (s *State) QueryChainLength() int {
	return int(s.db.Length())
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	length := s.db.Length()
	if length == 0 {
		return nil
	}

	if from == QueryLastest {
		from = length - 1
		to = from
	}
	if to == QueryLastest || to >= length {
		to = length - 1
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		block, err := s.db.GetBlock(i)
		if err != nil {
			s.evHandler("state: getblock: ERROR: %s", err)
			return nil
		}
		out = append(out, block)
	}

	return out
}
