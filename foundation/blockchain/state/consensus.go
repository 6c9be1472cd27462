package state

import (
	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
)

// Outcome represents the result of a consensus resolution pass.
type Outcome int

// The two possible resolution outcomes. A caller that just mined a block
// must only announce it to the network on Unchanged; Replaced means the
// local chain, including any freshly mined block, was superseded.
const (
	Unchanged Outcome = iota
	Replaced
)

// String implements the fmt.Stringer interface.
func (o Outcome) String() string {
	if o == Replaced {
		return "replaced"
	}
	return "unchanged"
}

// ResolveConsensus asks every known peer for its chain and adopts the
// longest one that independently re-validates, if any is strictly longer
// than ours. Peers are visited in lexicographic host order and a candidate
// must beat the best so far strictly, so equal-length chains resolve to
// the same peer on every run. Peer fetch failures and tampered dumps just
// remove that peer's candidate from the race.
//
// The network fetches run without the state lock; only the final wholesale
// replacement takes it.
func (s *State) ResolveConsensus() Outcome {
	s.evHandler("state: ResolveConsensus: started")
	defer s.evHandler("state: ResolveConsensus: completed")

	var best *ledger.Ledger
	bestLen := s.QueryChainLength()

	for _, pr := range s.RetrieveKnownPeers() {
		dump, err := s.NetRequestPeerChain(pr)
		if err != nil {
			s.evHandler("state: ResolveConsensus: peer[%s]: WARNING: %s", pr.Host, err)
			continue
		}

		if len(dump.Chain) <= bestLen {
			continue
		}

		candidate, err := ledger.Reconstruct(dump.Chain, s.genesis.Difficulty)
		if err != nil {
			s.evHandler("state: ResolveConsensus: peer[%s]: discarding candidate: %s", pr.Host, err)
			continue
		}

		s.evHandler("state: ResolveConsensus: peer[%s]: new best candidate: blocks[%d]", pr.Host, candidate.Len())
		best = candidate
		bestLen = candidate.Len()
	}

	if best == nil {
		return Unchanged
	}

	// A local mining search in flight is now working on a superseded head.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The local chain may have grown while we were fetching. The adopted
	// chain must still be strictly longer.
	if best.Len() <= s.ledger.Len() {
		return Unchanged
	}

	// Carry the pending pool into the adopted ledger. Transactions already
	// included in adopted blocks are dropped.
	best.AdoptPending(s.ledger.Pending())
	s.ledger = best

	// Rewrite the archive to match the adopted chain.
	if err := s.storage.Reset(); err != nil {
		s.evHandler("state: ResolveConsensus: WARNING: archive reset: %s", err)
	}
	for _, sb := range best.Chain()[1:] {
		if err := s.storage.Write(sb); err != nil {
			s.evHandler("state: ResolveConsensus: WARNING: archive write: %s", err)
		}
	}

	s.evHandler("state: ResolveConsensus: chain replaced: blocks[%d]", best.Len())

	return Replaced
}
