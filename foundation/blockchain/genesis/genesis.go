// Package genesis maintains access to the genesis settings.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
)

// Default genesis values.
const (
	PreviousHash = "1"
	Proof        = 100
	MiningReward = 1
	RewardSender = "0"
)

// Genesis represents the genesis settings for the chain.
type Genesis struct {
	PreviousHash string  `json:"previous_hash"` // Sentinel used as the previous hash of block 0.
	Proof        uint64  `json:"proof"`         // Proof of block 0 which seeds the first puzzle.
	MiningReward float64 `json:"mining_reward"` // Amount credited to the miner of a block.
	RewardSender string  `json:"reward_sender"` // Sender used for the mining reward transaction.
}

// Default returns the genesis settings every node agrees on when no file
// is provided.
func Default() Genesis {
	return Genesis{
		PreviousHash: PreviousHash,
		Proof:        Proof,
		MiningReward: MiningReward,
		RewardSender: RewardSender,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Fields not present in the file
// keep their default value. An empty path returns the defaults.
func Load(path string) (Genesis, error) {
	genesis := Default()
	if path == "" {
		return genesis, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file: %w", err)
	}

	if genesis.PreviousHash == "" {
		return Genesis{}, fmt.Errorf("genesis previous hash can't be empty")
	}

	return genesis, nil
}
