// Package state is the core API for the blockchain node and implements
// all the business rules and processing.
package state

import (
	"fmt"
	"sync"

	"github.com/chainpress/chainpress/foundation/blockchain/genesis"
	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
	"github.com/chainpress/chainpress/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events occur in the
// processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for mining, peer updates, and transaction
// sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx ledger.Tx)
}

// =============================================================================

// Config represents the configuration required to start the blockchain
// node.
type Config struct {
	Host       string
	Genesis    genesis.Genesis
	Storage    ledger.Storage
	KnownPeers *peer.PeerSet
	EvHandler  EventHandler
}

// State manages the blockchain node. The ledger (chain plus pending pool)
// is the single shared mutable resource; every mutation of it happens
// under the one mutex here, and the long-running proof-of-work search runs
// against a private candidate outside of it.
type State struct {
	host      string
	genesis   genesis.Genesis
	evHandler EventHandler

	mu      sync.Mutex
	ledger  *ledger.Ledger
	storage ledger.Storage

	knownPeers *peer.PeerSet

	Worker Worker
}

// New constructs a new blockchain node state for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Start from a genesis-only ledger and replay every archived block
	// through admission. Tampered storage fails the same checks a tampered
	// peer dump would.
	l := ledger.New(cfg.Genesis.Difficulty)

	blocks, err := cfg.Storage.ReadAll()
	if err != nil {
		return nil, err
	}
	for _, sb := range blocks {
		if err := l.AdmitBlock(sb.Block, sb.Hash); err != nil {
			return nil, fmt.Errorf("archived block %d: %w", sb.Block.Index, err)
		}
	}

	state := State{
		host:      cfg.Host,
		genesis:   cfg.Genesis,
		evHandler: ev,

		ledger:  l,
		storage: cfg.Storage,

		knownPeers: cfg.KnownPeers,
	}

	ev("state: Started: blocks[%d] difficulty[%d]", l.Len(), cfg.Genesis.Difficulty)

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the block archive is properly closed.
	defer func() {
		s.storage.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// SubmitTransaction queues the transaction into the pending pool. The
// payload is opaque and always accepted. When share is true the
// transaction is forwarded to the known peers in the background.
func (s *State) SubmitTransaction(tx ledger.Tx, share bool) {
	s.mu.Lock()
	s.ledger.QueueTransaction(tx)
	length := len(s.ledger.Pending())
	s.mu.Unlock()

	s.evHandler("state: SubmitTransaction: queued: pool[%d]", length)

	if share && s.Worker != nil {
		s.Worker.SignalShareTx(tx)
	}
}

// ProcessProposedBlock takes a block received from a peer, validates it
// and if that passes, adds the block to the local chain. A rejected block
// leaves the ledger untouched.
func (s *State) ProcessProposedBlock(sb ledger.SealedBlock) error {
	s.evHandler("state: ProcessProposedBlock: started: block[%s]", sb.Hash)
	defer s.evHandler("state: ProcessProposedBlock: completed")

	// If a local mining search is in flight it is now racing a block that
	// may take its slot. Stop it; the done function is called once the
	// local state change is complete.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.AdmitBlock(sb.Block, sb.Hash); err != nil {
		return err
	}

	if err := s.storage.Write(sb); err != nil {
		s.evHandler("state: ProcessProposedBlock: WARNING: archive write: %s", err)
	}

	return nil
}
