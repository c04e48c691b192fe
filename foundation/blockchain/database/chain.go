package database

import (
	"errors"
	"fmt"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/genesis"
)

// Set of error variables for the chain.
var (
	ErrEmptyChain   = errors.New("chain has no blocks")
	ErrInvalidProof = errors.New("proof does not solve the puzzle")
)

// ChainError is returned when a chain fails validation. Index is the
// position of the first block that failed.
type ChainError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (ce *ChainError) Error() string {
	return fmt.Sprintf("invalid chain at block %d: %s", ce.Index, ce.Err)
}

// Unwrap provides support for errors.Is and errors.As.
func (ce *ChainError) Unwrap() error {
	return ce.Err
}

// =============================================================================

// ValidateChain walks the chain from the first block after genesis and
// checks every block against its parent. The genesis block is trusted as
// long as it has the genesis shape. Validation stops at the first failure.
func ValidateChain(chain []Block, gen genesis.Genesis, evHandler func(v string, args ...any)) error {
	if len(chain) == 0 {
		return &ChainError{Index: 0, Err: ErrEmptyChain}
	}

	evHandler("database: ValidateChain: started: blocks[%d]", len(chain))
	defer evHandler("database: ValidateChain: completed")

	if !chain[0].IsGenesis(gen) {
		return &ChainError{Index: 0, Err: errors.New("first block is not a genesis block")}
	}

	for i := 1; i < len(chain); i++ {
		if err := chain[i].ValidateBlock(chain[i-1], evHandler); err != nil {
			evHandler("database: ValidateChain: blk[%d]: ERROR: %s", i, err)
			return &ChainError{Index: i, Err: err}
		}
	}

	return nil
}

// IsValidChain reports if the chain passes ValidateChain.
func IsValidChain(chain []Block, gen genesis.Genesis) bool {
	return ValidateChain(chain, gen, func(string, ...any) {}) == nil
}
