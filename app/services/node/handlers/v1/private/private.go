// Package private maintains the group of handlers for node to node
// access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	v1 "github.com/chainpress/chainpress/business/web/v1"
	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
	"github.com/chainpress/chainpress/foundation/blockchain/peer"
	"github.com/chainpress/chainpress/foundation/blockchain/state"
	"github.com/chainpress/chainpress/foundation/validate"
	"github.com/chainpress/chainpress/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the latest block information and the known peer list so
// peers can decide whether to request our chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestBlock()

	ps := peer.PeerStatus{
		LatestBlockHash:   latest.Hash,
		LatestBlockNumber: latest.Block.Index,
		KnownPeers:        h.State.RetrieveKnownPeers(),
	}

	return web.Respond(ctx, w, ps, http.StatusOK)
}

// Chain returns the full chain dump so a peer can attempt consensus
// resolution against it.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// ProposeBlock takes a block mined by a peer and attempts to admit it to
// the local chain. A rejected block never mutates the local ledger.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var sb ledger.SealedBlock
	if err := web.Decode(r, &sb); err != nil {
		return v1.NewRequestError(fmt.Errorf("unable to decode block: %w", err), http.StatusBadRequest)
	}

	if err := h.State.ProcessProposedBlock(sb); err != nil {
		if errors.Is(err, ledger.ErrLinkageMismatch) || errors.Is(err, ledger.ErrProofInvalid) {
			return v1.NewRequestError(err, http.StatusNotAcceptable)
		}
		return err
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction takes a transaction shared by a peer and adds it to
// the pending pool without re-sharing it.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx ledger.Tx
	if err := web.Decode(r, &tx); err != nil {
		return v1.NewRequestError(fmt.Errorf("unable to decode transaction: %w", err), http.StatusBadRequest)
	}

	h.State.SubmitTransaction(tx, false)

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction queued",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterPeer adds a node to the known peer list and responds with the
// full chain dump so the new node can sync up.
func (h Handlers) RegisterPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var reg struct {
		Host string `json:"host" validate:"required"`
	}
	if err := web.Decode(r, &reg); err != nil {
		return v1.NewRequestError(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(reg); err != nil {
		return err
	}

	if h.State.AddKnownPeer(peer.New(reg.Host)) {
		h.Log.Infow("adding peer", "traceid", v.TraceID, "host", reg.Host)
	}

	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}
