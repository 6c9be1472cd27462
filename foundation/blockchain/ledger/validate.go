package ledger

import "fmt"

// ValidateChain re-verifies an entire candidate chain from raw content.
// The stored hash of every block is discarded and the content digest is
// recomputed, so a dump with forged digests can't pass. The first failing
// block stops the walk.
func ValidateChain(chain []SealedBlock, difficulty int) error {
	if len(chain) == 0 {
		return fmt.Errorf("empty chain: %w", ErrTamperedChain)
	}

	// The genesis block is not mined, so it is held to its structure
	// rather than the difficulty rule.
	genesis := chain[0]
	if genesis.Block.Index != 0 || genesis.Block.PrevHash != GenesisPrevHash {
		return fmt.Errorf("block 0 is not a genesis block: %w", ErrTamperedChain)
	}

	prevHash := genesis.Block.Hash()

	for i, sb := range chain[1:] {
		recomputed := sb.Block.Hash()

		if !isHashSolved(difficulty, recomputed) {
			return fmt.Errorf("block %d digest fails difficulty: %w", i+1, ErrTamperedChain)
		}

		if sb.Block.PrevHash != prevHash {
			return fmt.Errorf("block %d doesn't link to block %d: %w", i+1, i, ErrTamperedChain)
		}

		if sb.Block.Index != uint64(i+1) {
			return fmt.Errorf("block %d carries index %d: %w", i+1, sb.Block.Index, ErrTamperedChain)
		}

		prevHash = recomputed
	}

	return nil
}

// Reconstruct rebuilds a full ledger from an untrusted chain dump by
// replaying block admission for every non-genesis block against a fresh
// genesis-only ledger. Any admission failure aborts with ErrTamperedChain.
// The error is reportable and recoverable; a malicious dump must never
// take the node down.
func Reconstruct(chain []SealedBlock, difficulty int) (*Ledger, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("empty chain: %w", ErrTamperedChain)
	}

	l := New(difficulty)

	for i, sb := range chain {
		if i == 0 {
			continue
		}

		if err := l.AdmitBlock(sb.Block, sb.Hash); err != nil {
			return nil, fmt.Errorf("block %d: %s: %w", i, err, ErrTamperedChain)
		}
	}

	return l, nil
}
