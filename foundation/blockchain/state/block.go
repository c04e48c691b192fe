package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
)

// NewBlock seals the pending transactions into a new block at the end of the
// chain. An empty previousHash means the hash of the latest block is used.
//
// The proof is trusted: the caller is expected to have found it with
// FindProof against the latest block. Only when the node runs with strict
// proofs is the block validated first, failing with database.ErrInvalidProof.
func (s *State) NewBlock(proof uint64, previousHash string) (database.Block, error) {
	s.work.Lock()
	defer s.work.Unlock()

	return s.sealBlock(proof, previousHash)
}

// MineNewBlock performs the proof of work against the latest block, rewards
// this node for the work and seals the pending transactions into a new
// block. The search only stops early if the context is cancelled or the
// node is shutting down.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.work.Lock()
	defer s.work.Unlock()

	if err := s.shutdown.Err(); err != nil {
		return database.Block{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(s.shutdown, cancel)
	defer stop()

	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	latestBlock, err := s.db.LatestBlock()
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: lastProof[%d]", latestBlock.Index, latestBlock.Proof)

	proof, err := database.FindProof(ctx, latestBlock.Proof, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	// The reward for finding the proof joins the pending transactions.
	s.NewTransaction(database.NewTx(s.genesis.RewardSender, s.nodeID, s.genesis.MiningReward))

	return s.sealBlock(proof, "")
}

// =============================================================================

// sealBlock constructs the next block from the pending pool and writes it to
// the chain. The caller must hold the work lock.
func (s *State) sealBlock(proof uint64, previousHash string) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latestBlock, err := s.db.LatestBlock()
	if err != nil {
		return database.Block{}, err
	}

	if previousHash == "" {
		previousHash = latestBlock.Hash()
	}

	block := database.NewBlock(s.db.Length(), s.mempool.Copy(), proof, previousHash)

	if s.strictProofs {
		s.evHandler("state: sealBlock: validate block")
		if err := block.ValidateBlock(latestBlock, s.evHandler); err != nil {
			return database.Block{}, err
		}
	}

	s.evHandler("state: sealBlock: write block[%d]: txs[%d]", block.Index, len(block.Transactions))

	if err := s.db.Write(block); err != nil {
		return database.Block{}, err
	}

	// The pending pool now belongs to the block.
	s.mempool.Truncate()

	s.blockEvent(block)

	return block, nil
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, block.Hash(), string(blockJSON))
}
