package ledger

import (
	"context"
	"time"

	"github.com/chainpress/chainpress/foundation/blockchain/digest"
)

// GenesisPrevHash is the sentinel previous-hash carried by the genesis
// block, which has no parent to reference.
const GenesisPrevHash = "0"

// =============================================================================

// Tx represents an opaque transaction payload. The ledger attaches no
// meaning to the fields beyond queued and included.
type Tx map[string]any

// Hash returns the unique content digest for the transaction.
func (tx Tx) Hash() string {
	return digest.Hash(tx)
}

// =============================================================================

// Block represents the content of a block before a hash has been assigned.
// Everything in this value is an input to the content digest.
type Block struct {
	Index        uint64 `json:"index"`
	Transactions []Tx   `json:"transactions"`
	TimeStamp    uint64 `json:"timestamp"`
	PrevHash     string `json:"previous_hash"`
	Nonce        uint64 `json:"nonce"`
}

// NewBlock constructs the next block to be mined on top of the specified
// head block. The transactions become the property of the new block.
func NewBlock(head SealedBlock, trans []Tx) Block {
	return Block{
		Index:        head.Block.Index + 1,
		Transactions: trans,
		TimeStamp:    uint64(time.Now().UTC().Unix()),
		PrevHash:     head.Hash,
	}
}

// Hash returns the unique content digest for the block. The assigned hash
// of a sealed block is never an input to this computation.
func (b Block) Hash() string {
	return digest.Hash(b)
}

// =============================================================================

// SealedBlock represents a block that passed admission with the hash it
// was admitted under. The hash is derived metadata. Every validation path
// recomputes it from the block content rather than trusting it. This is
// also the wire and storage representation.
type SealedBlock struct {
	Hash string `json:"hash"`
	Block
}

// newGenesisBlock constructs the one fixed first block of every chain.
func newGenesisBlock() SealedBlock {
	b := Block{
		Index:        0,
		Transactions: []Tx{},
		TimeStamp:    0,
		PrevHash:     GenesisPrevHash,
	}

	return SealedBlock{
		Hash:  b.Hash(),
		Block: b,
	}
}

// =============================================================================

// POW performs the proof-of-work search for the specified block, trying
// nonce values from zero until the content digest satisfies the difficulty.
// The search runs against its own copy of the block and never touches
// shared ledger state, so callers can run it outside any lock.
func POW(ctx context.Context, difficulty int, b Block, ev func(v string, args ...any)) (SealedBlock, error) {
	ev("ledger: POW: search started: block[%d] difficulty[%d]", b.Index, difficulty)
	defer ev("ledger: POW: search completed: block[%d]", b.Index)

	var attempts uint64
	for b.Nonce = 0; ; b.Nonce++ {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("ledger: POW: attempts[%d]", attempts)
		}

		// Did the caller cancel the search.
		if ctx.Err() != nil {
			ev("ledger: POW: CANCELLED")
			return SealedBlock{}, ctx.Err()
		}

		hash := b.Hash()
		if !isHashSolved(difficulty, hash) {
			continue
		}

		ev("ledger: POW: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", b.PrevHash, hash, b.Nonce)

		return SealedBlock{Hash: hash, Block: b}, nil
	}
}

// IsAdmissible reports whether the claimed digest is the real content
// digest of the block and satisfies the difficulty. Every acceptance path
// must go through this predicate so a caller-supplied digest is never
// trusted without recomputation.
func IsAdmissible(b Block, claimedHash string, difficulty int) bool {
	return isHashSolved(difficulty, claimedHash) && claimedHash == b.Hash()
}

// isHashSolved checks the hash complies with the POW rules: a difficulty
// number of leading zero hex characters.
func isHashSolved(difficulty int, hash string) bool {
	const match = "00000000000000000"

	if len(hash) != 64 || difficulty > len(match) {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}
