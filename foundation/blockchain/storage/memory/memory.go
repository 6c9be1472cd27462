// Package memory implements the ability to archive blocks in memory using
// a slice. Used in tests.
package memory

import (
	"errors"
	"sync"

	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
)

// Memory represents the serialization implementation for reading and
// storing blocks in memory. This implements the ledger.Storage interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []ledger.SealedBlock
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write stores the sealed block in memory.
func (m *Memory) Write(sb ledger.SealedBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint64(len(m.blocks)+1) != sb.Block.Index {
		return errors.New("block is out of order")
	}

	m.blocks = append(m.blocks, sb)

	return nil
}

// ReadAll returns every archived block in index order.
func (m *Memory) ReadAll() ([]ledger.SealedBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blocks := make([]ledger.SealedBlock, len(m.blocks))
	copy(blocks, m.blocks)

	return blocks, nil
}

// Reset clears out the archived blockchain.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = []ledger.SealedBlock{}
	return nil
}
