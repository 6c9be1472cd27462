package state

import (
	"context"
	"errors"

	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
)

// ErrNoPendingTransactions is returned when a block is requested to be
// mined and the pending pool is empty. Nothing changes in that case.
var ErrNoPendingTransactions = errors.New("no transactions in the pending pool")

// MineNewBlock drains the current pending pool into a candidate block,
// performs the proof-of-work search, and admits the result. The search
// runs outside the state lock against a private snapshot; only the final
// admission happens under exclusion. If the head moved while the search
// was running, admission fails with ErrLinkageMismatch and the pool keeps
// every transaction. Transactions queued during the search stay pending
// either way.
func (s *State) MineNewBlock(ctx context.Context) (ledger.SealedBlock, error) {
	s.evHandler("state: MineNewBlock: MINING: check pending pool")

	// Snapshot the pool and the head, and build the candidate, all under
	// the lock.
	s.mu.Lock()
	trans := s.ledger.Pending()
	if len(trans) == 0 {
		s.mu.Unlock()
		return ledger.SealedBlock{}, ErrNoPendingTransactions
	}
	candidate := ledger.NewBlock(s.ledger.Head(), trans)
	difficulty := s.ledger.Difficulty()
	s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d]", len(trans))

	// Attempt to solve the POW puzzle. This can be cancelled.
	sealed, err := ledger.POW(ctx, difficulty, candidate, s.evHandler)
	if err != nil {
		return ledger.SealedBlock{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return ledger.SealedBlock{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: admit block[%s]", sealed.Hash)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Admission re-checks linkage and the proof. On success the ledger
	// removes exactly the snapshotted transactions from the pool.
	if err := s.ledger.AdmitBlock(sealed.Block, sealed.Hash); err != nil {
		return ledger.SealedBlock{}, err
	}

	if err := s.storage.Write(sealed); err != nil {
		s.evHandler("state: MineNewBlock: WARNING: archive write: %s", err)
	}

	return sealed, nil
}
