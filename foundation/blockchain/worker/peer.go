package worker

import (
	"github.com/chainpress/chainpress/foundation/blockchain/peer"
	"github.com/chainpress/chainpress/foundation/blockchain/state"
)

// peerOperations handles finding new peers and keeping the chain in
// consensus with them.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation updates the peer list and runs a consensus resolution
// pass against the network.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			w.state.RemoveKnownPeer(pr)
			continue
		}

		// Add new peers to this node's list.
		w.addNewPeers(peerStatus.KnownPeers)
	}

	// Let the latest set of peers know this node is available.
	for _, pr := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetSendRegister(pr); err != nil {
			w.evHandler("worker: runPeersOperation: register: %s: ERROR: %s", pr.Host, err)
		}
	}

	// Adopt a longer valid chain if the network has one.
	if outcome := w.state.ResolveConsensus(); outcome == state.Replaced {
		w.evHandler("worker: runPeersOperation: chain replaced by consensus")
	}
}

// addNewPeers takes the list of known peers and makes sure they are
// included in this node's list of known peers.
func (w *Worker) addNewPeers(knownPeers []peer.Peer) {
	w.evHandler("worker: addNewPeers: started")
	defer w.evHandler("worker: addNewPeers: completed")

	for _, pr := range knownPeers {

		// Don't add this running node to the known peer list.
		if pr.Match(w.state.RetrieveHost()) {
			continue
		}

		if w.state.AddKnownPeer(pr) {
			w.evHandler("worker: addNewPeers: adding peer-node %s", pr.Host)
		}
	}
}
