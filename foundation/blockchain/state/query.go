package state

import (
	"github.com/chainpress/chainpress/foundation/blockchain/genesis"
	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
	"github.com/chainpress/chainpress/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of the host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns the current head of the chain.
func (s *State) RetrieveLatestBlock() ledger.SealedBlock {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Head()
}

// RetrieveChain returns a snapshot of the full chain with the known peers,
// in the wire representation.
func (s *State) RetrieveChain() ChainDump {
	s.mu.Lock()
	chain := s.ledger.Chain()
	s.mu.Unlock()

	return ChainDump{
		Length:     len(chain),
		Chain:      chain,
		KnownPeers: s.RetrieveKnownPeers(),
	}
}

// RetrieveMempool returns a copy of the pending transaction pool.
func (s *State) RetrieveMempool() []ledger.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Pending()
}

// QueryMempoolLength returns the current length of the pending pool.
func (s *State) QueryMempoolLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ledger.Pending())
}

// QueryChainLength returns the current number of blocks in the chain.
func (s *State) QueryChainLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Len()
}

// =============================================================================

// RetrieveKnownPeers retrieves the known peers excluding this node, in
// lexicographic host order.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer adds a peer to the known-peer list.
func (s *State) AddKnownPeer(pr peer.Peer) bool {
	if pr.Match(s.host) {
		return false
	}

	return s.knownPeers.Add(pr)
}

// RemoveKnownPeer removes a peer from the known-peer list.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}
