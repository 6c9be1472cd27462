// Package ledger implements the core blockchain data model: blocks linked
// by content digests, proof-of-work admission, the pending transaction
// pool, and re-validation of untrusted chains.
package ledger

import "fmt"

// Ledger owns the ordered sequence of admitted blocks and the pool of
// transactions awaiting inclusion. The chain always contains at least the
// genesis block and only ever grows by one admitted block at a time; a
// whole new Ledger takes its place when consensus adopts a longer chain.
//
// A Ledger is not safe for concurrent use. The state package provides the
// single-mutator discipline around it.
type Ledger struct {
	difficulty int
	chain      []SealedBlock
	pending    []Tx
}

// New constructs a ledger containing only the genesis block.
func New(difficulty int) *Ledger {
	return &Ledger{
		difficulty: difficulty,
		chain:      []SealedBlock{newGenesisBlock()},
	}
}

// Difficulty returns the number of leading zero hex characters an
// admissible digest requires.
func (l *Ledger) Difficulty() int {
	return l.difficulty
}

// Head returns the most recent block in the chain. The chain always
// contains at least the genesis block.
func (l *Ledger) Head() SealedBlock {
	return l.chain[len(l.chain)-1]
}

// Len returns the number of blocks in the chain, genesis included.
func (l *Ledger) Len() int {
	return len(l.chain)
}

// Chain returns a copy of the chain for serialization.
func (l *Ledger) Chain() []SealedBlock {
	chain := make([]SealedBlock, len(l.chain))
	copy(chain, l.chain)
	return chain
}

// Pending returns a copy of the pending transaction pool in insertion
// order.
func (l *Ledger) Pending() []Tx {
	pending := make([]Tx, len(l.pending))
	copy(pending, l.pending)
	return pending
}

// =============================================================================

// QueueTransaction appends a transaction to the pending pool. The content
// is opaque to the ledger and is not validated.
func (l *Ledger) QueueTransaction(tx Tx) {
	l.pending = append(l.pending, tx)
}

// AdmitBlock validates the candidate block against the current head and
// the claimed digest, then appends it to the chain. On rejection the
// ledger is left completely unchanged. On acceptance, pending transactions
// that were included in the block are removed from the pool; transactions
// queued after the candidate was constructed stay pending.
func (l *Ledger) AdmitBlock(candidate Block, claimedHash string) error {
	head := l.Head()

	if candidate.PrevHash != head.Hash {
		return fmt.Errorf("got prev %q, head is %q: %w", candidate.PrevHash, head.Hash, ErrLinkageMismatch)
	}

	if candidate.Index != head.Block.Index+1 {
		return fmt.Errorf("got index %d, exp %d: %w", candidate.Index, head.Block.Index+1, ErrLinkageMismatch)
	}

	if !IsAdmissible(candidate, claimedHash, l.difficulty) {
		return fmt.Errorf("digest %q: %w", claimedHash, ErrProofInvalid)
	}

	l.chain = append(l.chain, SealedBlock{Hash: claimedHash, Block: candidate})
	l.removeIncluded(candidate.Transactions)

	return nil
}

// AdoptPending queues the specified transactions in order, dropping any
// whose content digest is already included in a block of this chain. Used
// when a consensus replacement carries the old ledger's pool forward.
func (l *Ledger) AdoptPending(pending []Tx) {
	included := make(map[string]struct{})
	for _, sb := range l.chain {
		for _, tx := range sb.Transactions {
			included[tx.Hash()] = struct{}{}
		}
	}

	for _, tx := range pending {
		if _, exists := included[tx.Hash()]; !exists {
			l.pending = append(l.pending, tx)
		}
	}
}

// removeIncluded drops pending transactions whose content digest matches a
// transaction that was just admitted.
func (l *Ledger) removeIncluded(trans []Tx) {
	if len(l.pending) == 0 {
		return
	}

	included := make(map[string]struct{}, len(trans))
	for _, tx := range trans {
		included[tx.Hash()] = struct{}{}
	}

	remaining := l.pending[:0]
	for _, tx := range l.pending {
		if _, exists := included[tx.Hash()]; !exists {
			remaining = append(remaining, tx)
		}
	}
	l.pending = remaining
}
