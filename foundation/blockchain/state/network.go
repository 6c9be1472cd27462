package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
	"github.com/chainpress/chainpress/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// ChainDump is the wire representation of a full chain snapshot.
type ChainDump struct {
	Length     int                  `json:"length"`
	Chain      []ledger.SealedBlock `json:"chain"`
	KnownPeers []peer.Peer          `json:"known_peers"`
}

// NetSendBlockToPeers takes a newly mined block and sends it to all known
// peers for admission on their side.
func (s *State) NetSendBlockToPeers(sb ledger.SealedBlock) error {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	var failures []error

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/block/propose", fmt.Sprintf(baseURL, pr.Host))

		var status struct {
			Status string `json:"status"`
		}

		if err := send(http.MethodPost, url, sb, &status); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", pr.Host, err))
			continue
		}

		s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", pr.Host)
	}

	return errors.Join(failures...)
}

// NetSendTxToPeers shares a new transaction with the known peers.
func (s *State) NetSendTxToPeers(tx ledger.Tx) {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/tx/submit", fmt.Sprintf(baseURL, pr.Host))
		if err := send(http.MethodPost, url, tx, nil); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s", err)
		}
	}
}

// NetRequestPeerStatus asks a peer for its latest block and peer list.
func (s *State) NetRequestPeerStatus(pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := send(http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer[%s]: latest-blknum[%d]: peer-list[%v]", pr.Host, ps.LatestBlockNumber, ps.KnownPeers)

	return ps, nil
}

// NetRequestPeerChain asks a peer for its full chain snapshot. The result
// is untrusted until it survives reconstruction.
func (s *State) NetRequestPeerChain(pr peer.Peer) (ChainDump, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var dump ChainDump
	if err := send(http.MethodGet, url, nil, &dump); err != nil {
		return ChainDump{}, err
	}

	s.evHandler("state: NetRequestPeerChain: peer[%s]: length[%d]", pr.Host, dump.Length)

	return dump, nil
}

// NetSendRegister announces this node to the specified peer so it appears
// in that peer's known-peer list.
func (s *State) NetSendRegister(pr peer.Peer) error {
	s.evHandler("state: NetSendRegister: started: %s", pr.Host)
	defer s.evHandler("state: NetSendRegister: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/peer/register", fmt.Sprintf(baseURL, pr.Host))

	reg := struct {
		Host string `json:"host"`
	}{
		Host: s.host,
	}

	return send(http.MethodPost, url, reg, nil)
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(method string, url string, dataSend any, dataRecv any) error {
	var req *http.Request

	switch {
	case dataSend != nil:
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		req, err = http.NewRequest(method, url, bytes.NewReader(data))
		if err != nil {
			return err
		}

	default:
		var err error
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			return err
		}
	}

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
