package state

import (
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/genesis"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveNodeID returns the identifier of this node, used as the recipient
// of mining rewards.
func (s *State) RetrieveNodeID() string {
	return s.nodeID
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveChain returns a copy of the full chain, genesis first.
func (s *State) RetrieveChain() ([]database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Copy()
}

// LastBlock returns a copy of the current latest block.
func (s *State) LastBlock() (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the pending transactions in
// submission order.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}
