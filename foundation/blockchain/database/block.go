package database

import (
	"fmt"
	"time"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/digest"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/genesis"
)

// Block represents a group of transactions batched together and linked to
// the previous block in the chain.
type Block struct {
	Index        uint64  `json:"index"`         // Position of the block in the chain, 0 is genesis.
	Timestamp    float64 `json:"timestamp"`     // Seconds since epoch when the block was sealed.
	Transactions []Tx    `json:"transactions"`  // Transactions sealed into this block.
	Proof        uint64  `json:"proof"`         // Solution of the puzzle seeded by the previous proof.
	PreviousHash string  `json:"previous_hash"` // Hash of the previous block in the chain.
}

// NewBlock constructs a block sealed at the current time. A nil set of
// transactions is stored as an empty set.
func NewBlock(index uint64, trans []Tx, proof uint64, previousHash string) Block {
	if trans == nil {
		trans = []Tx{}
	}

	return Block{
		Index:        index,
		Timestamp:    Now(),
		Transactions: trans,
		Proof:        proof,
		PreviousHash: previousHash,
	}
}

// NewGenesisBlock constructs block 0 based on the genesis settings.
func NewGenesisBlock(gen genesis.Genesis) Block {
	return NewBlock(0, nil, gen.Proof, gen.PreviousHash)
}

// Now returns the current time as real-valued seconds since epoch.
func Now() float64 {
	return float64(time.Now().UnixMicro()) / 1e6
}

// =============================================================================

// Hash returns the unique hash for the Block. If the block can't be encoded,
// the zero hash is returned which never links to a valid block.
func (b Block) Hash() string {
	hash, err := b.hash()
	if err != nil {
		return digest.ZeroHash
	}

	return hash
}

// hash returns the hash of the block or the reason it can't be computed.
func (b Block) hash() (string, error) {
	return digest.Hash(b.canonical())
}

// canonical returns the exact field set that is hashed. Any other field a
// peer sends along with a block is ignored.
func (b Block) canonical() map[string]any {
	trans := make([]any, len(b.Transactions))
	for i, tx := range b.Transactions {
		trans[i] = tx.canonical()
	}

	return map[string]any{
		"index":         b.Index,
		"timestamp":     b.Timestamp,
		"transactions":  trans,
		"proof":         b.Proof,
		"previous_hash": b.PreviousHash,
	}
}

// IsGenesis reports if the block has the shape of the genesis block.
func (b Block) IsGenesis(gen genesis.Genesis) bool {
	return b.Index == 0 && b.PreviousHash == gen.PreviousHash && b.Proof == gen.Proof
}

// ValidateBlock validates the block can follow the previous block in the
// chain. The index must follow the parent, the previous hash must match and
// the proof must solve the puzzle seeded by the previous proof.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block index is the next index", b.Index)

	nextIndex := previousBlock.Index + 1
	if b.Index != nextIndex {
		return fmt.Errorf("this block is not the next index, got %d, exp %d", b.Index, nextIndex)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Index)

	hash, err := previousBlock.hash()
	if err != nil {
		return fmt.Errorf("unable to hash parent block: %w", err)
	}

	if b.PreviousHash != hash {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.PreviousHash, hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: proof solves the parent proof", b.Index)

	if !ValidProof(previousBlock.Proof, b.Proof) {
		return fmt.Errorf("%w: parent proof %d, proof %d", ErrInvalidProof, previousBlock.Proof, b.Proof)
	}

	return nil
}

// Copy returns a deep copy of the block so callers can't mutate the
// transactions of a committed block.
func (b Block) Copy() Block {
	trans := make([]Tx, len(b.Transactions))
	copy(trans, b.Transactions)
	b.Transactions = trans

	return b
}
