package worker

import "github.com/chainpress/chainpress/foundation/blockchain/state"

// Sync updates the peer list and the chain before the node starts
// accepting work: register with the known peers, merge their peer lists,
// then adopt the longest valid chain on the network if it beats ours.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Announce ourselves so this peer shares new work with us.
		if err := w.state.NetSendRegister(pr); err != nil {
			w.evHandler("worker: sync: register: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Retrieve the status of this peer and merge its peer list.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}
		w.addNewPeers(peerStatus.KnownPeers)
	}

	if outcome := w.state.ResolveConsensus(); outcome == state.Replaced {
		w.evHandler("worker: sync: chain replaced by consensus")
	}
}
