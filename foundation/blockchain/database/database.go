// Package database handles all the lower level support for maintaining the
// blockchain: the block and transaction types, block hashing, the proof of
// work puzzle, chain validation and access to block storage.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/genesis"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(num uint64) (Block, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// Database manages the chain of blocks held in storage.
type Database struct {
	mu sync.RWMutex

	genesis     genesis.Genesis
	latestBlock Block
	length      uint64

	storage Storage
}

// New constructs a new database over the storage. Blocks already held by the
// storage are validated and loaded, otherwise the genesis block is written.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		genesis: gen,
		storage: storage,
	}

	var chain []Block
	iter := storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		chain = append(chain, block)
	}

	if len(chain) == 0 {
		evHandler("database: New: writing genesis block")
		if err := db.Write(NewGenesisBlock(gen)); err != nil {
			return nil, err
		}
		return &db, nil
	}

	if err := ValidateChain(chain, gen, evHandler); err != nil {
		return nil, err
	}

	db.latestBlock = chain[len(chain)-1]
	db.length = uint64(len(chain))

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Write appends the block to the end of the chain. The block index must be
// the next index in the chain.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if block.Index != db.length {
		return fmt.Errorf("block is out of order, got %d, exp %d", block.Index, db.length)
	}

	if err := db.storage.Write(block.Copy()); err != nil {
		return err
	}

	db.latestBlock = block.Copy()
	db.length++

	return nil
}

// Replace swaps the entire chain for the specified chain. If the new chain
// can't be written, the previous chain is restored.
func (db *Database) Replace(chain []Block) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	previous, err := db.copy()
	if err != nil {
		return err
	}

	if err := db.rewrite(chain); err != nil {
		if rerr := db.rewrite(previous); rerr != nil {
			return errors.Join(err, fmt.Errorf("restoring previous chain: %w", rerr))
		}
		return err
	}

	return nil
}

// LatestBlock returns the last block in the chain.
func (db *Database) LatestBlock() (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.length == 0 {
		return Block{}, ErrEmptyChain
	}

	return db.latestBlock.Copy(), nil
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.length
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.storage.GetBlock(num)
}

// Copy returns a copy of the entire chain.
func (db *Database) Copy() ([]Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.copy()
}

// ForEach returns an iterator to walk through all the blocks
// starting with the genesis block.
func (db *Database) ForEach() *DatabaseIterator {
	return &DatabaseIterator{iterator: db.storage.ForEach()}
}

// =============================================================================

// copy reads the chain from storage. The caller must hold the lock.
func (db *Database) copy() ([]Block, error) {
	chain := make([]Block, 0, db.length)

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		chain = append(chain, block.Copy())
	}

	return chain, nil
}

// rewrite resets storage and writes the chain. The caller must hold the lock.
func (db *Database) rewrite(chain []Block) error {
	if err := db.storage.Reset(); err != nil {
		return err
	}
	db.latestBlock = Block{}
	db.length = 0

	for _, block := range chain {
		if block.Index != db.length {
			return fmt.Errorf("block is out of order, got %d, exp %d", block.Index, db.length)
		}
		if err := db.storage.Write(block.Copy()); err != nil {
			return err
		}
		db.latestBlock = block.Copy()
		db.length++
	}

	return nil
}

// =============================================================================

// DatabaseIterator provides support for iterating over the blocks in
// storage.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	return di.iterator.Next()
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}
