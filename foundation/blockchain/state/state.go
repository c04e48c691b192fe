// Package state is the core API for the blockchain and implements all the
// business rules and processing: the ledger of blocks, the pending pool,
// mining and the longest valid chain consensus rule.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/client"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/database"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/genesis"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/mempool"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/peer"
	"github.com/firstandsecond/bitconin-diy/foundation/blockchain/storage/memory"
)

// Default values used when the configuration leaves them empty.
const (
	defaultPeerTimeout    = 5 * time.Second
	defaultMaxPeerQueries = 8
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background consensus rounds.
type Worker interface {
	Shutdown()
	SignalResolve()
}

// ChainFetcher interface represents the behavior required to query the
// chain of a peer.
type ChainFetcher interface {
	QueryChain(ctx context.Context, pr peer.Peer) (client.Chain, error)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	NodeID         string
	Host           string
	Genesis        genesis.Genesis
	Storage        database.Storage
	KnownPeers     *peer.PeerSet
	Fetcher        ChainFetcher
	PeerTimeout    time.Duration
	MaxPeerQueries int
	StrictProofs   bool
	EvHandler      EventHandler
}

// State manages the blockchain database.
type State struct {
	nodeID         string
	host           string
	peerTimeout    time.Duration
	maxPeerQueries int
	strictProofs   bool
	evHandler      EventHandler

	// work serializes everything that changes the chain, including the
	// proof search and the peer queries that precede a replacement. mu
	// makes sealing a block atomic with respect to new transactions.
	work sync.Mutex
	mu   sync.RWMutex

	shutdown context.Context
	cancel   context.CancelFunc

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	mempool    *mempool.Mempool
	db         *database.Database
	fetcher    ChainFetcher

	Worker Worker
}

// New constructs a new blockchain for data management. The chain starts
// with the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen := cfg.Genesis
	if gen == (genesis.Genesis{}) {
		gen = genesis.Default()
	}

	// Unless told otherwise the chain lives in memory and is lost
	// on restart.
	strg := cfg.Storage
	if strg == nil {
		var err error
		if strg, err = memory.New(); err != nil {
			return nil, err
		}
	}

	// Access the storage for the blockchain. This writes the genesis block
	// into empty storage.
	db, err := database.New(gen, strg, ev)
	if err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = defaultPeerTimeout
	}

	maxPeerQueries := cfg.MaxPeerQueries
	if maxPeerQueries <= 0 {
		maxPeerQueries = defaultMaxPeerQueries
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = client.New("", peerTimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Create the State to provide support for managing the blockchain.
	state := State{
		nodeID:         cfg.NodeID,
		host:           cfg.Host,
		peerTimeout:    peerTimeout,
		maxPeerQueries: maxPeerQueries,
		strictProofs:   cfg.StrictProofs,
		evHandler:      ev,

		shutdown: ctx,
		cancel:   cancel,

		knownPeers: knownPeers,
		genesis:    gen,
		mempool:    mempool.New(),
		db:         db,
		fetcher:    fetcher,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down. Any mining in progress is
// cancelled.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database is properly closed.
	defer func() {
		s.db.Close()
	}()

	s.cancel()

	// Stop all background activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// Truncate resets the chain back to the genesis block and clears the
// pending pool.
func (s *State) Truncate() error {
	s.work.Lock()
	defer s.work.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Truncate()

	return s.db.Replace([]database.Block{database.NewGenesisBlock(s.genesis)})
}
