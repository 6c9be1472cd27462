// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
	"github.com/chainpress/chainpress/foundation/blockchain/state"
	"github.com/chainpress/chainpress/foundation/events"
	"github.com/chainpress/chainpress/foundation/validate"
	"github.com/chainpress/chainpress/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
	WS    websocket.Upgrader
}

// SubmitTransaction adds a new user submitted post to the pending pool
// and shares it with the known peers.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt newTx
	if err := web.Decode(r, &nt); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if err := validate.Check(nt); err != nil {
		return err
	}

	// The submitting node owns the timestamp. Payload keys follow the
	// on-chain wire format.
	tx := ledger.Tx{
		"author":    nt.Author,
		"content":   nt.Content,
		"timestamp": time.Now().Unix(),
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "author", nt.Author)
	h.State.SubmitTransaction(tx, true)

	resp := info{
		Status: fmt.Sprintf("transaction queued for block %d", h.State.QueryChainLength()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// Chain returns the full chain snapshot with the known peers.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// SignalMining signals the mining worker to attempt to mine a new block
// from the pending pool. An empty pool is a no-op, not an error.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.QueryMempoolLength() == 0 {
		resp := info{
			Status: "no transactions to mine",
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	h.State.Worker.SignalStartMining()

	resp := info{
		Status: "mining signaled",
	}
	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	h.Log.Infow("websocket open", "path", "/v1/events", "traceid", v.TraceID)
	defer h.Log.Infow("websocket closed", "path", "/v1/events", "traceid", v.TraceID)

	// Set a callback so we know the websocket is still alive.
	c.SetPongHandler(func(appData string) error {
		h.Log.Infow("websocket pong", "path", "/v1/events", "traceid", v.TraceID)
		return nil
	})

	// Register this client to receive events.
	id := events.NewID()
	ch := h.Evts.Acquire(id)
	defer h.Evts.Release(id)

	// Keep the websocket alive with pings.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
