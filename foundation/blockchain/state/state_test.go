package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chainpress/chainpress/foundation/blockchain/genesis"
	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
	"github.com/chainpress/chainpress/foundation/blockchain/peer"
	"github.com/chainpress/chainpress/foundation/blockchain/state"
	"github.com/chainpress/chainpress/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func noEvents(v string, args ...any) {}

// newState constructs a node state with in-memory storage. Zero difficulty
// keeps the POW search instant.
func newState(t *testing.T, difficulty int, strg ledger.Storage, peers *peer.PeerSet) *state.State {
	t.Helper()

	if strg == nil {
		strg, _ = memory.New()
	}
	if peers == nil {
		peers = peer.NewPeerSet()
	}

	st, err := state.New(state.Config{
		Host:       "me:9080",
		Genesis:    genesis.Genesis{ChainName: "test", Difficulty: difficulty},
		Storage:    strg,
		KnownPeers: peers,
		EvHandler:  noEvents,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

// =============================================================================

func Test_MineEmptyPool(t *testing.T) {
	t.Log("Given the need to validate mining an empty pool is a no-op.")
	{
		st := newState(t, 0, nil, nil)
		defer st.Shutdown()

		if _, err := st.MineNewBlock(context.Background()); !errors.Is(err, state.ErrNoPendingTransactions) {
			t.Fatalf("\t%s\tShould refuse to mine, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould refuse to mine.", success)

		if st.QueryChainLength() != 1 {
			t.Fatalf("\t%s\tShould keep the chain at genesis.", failed)
		}
		t.Logf("\t%s\tShould keep the chain at genesis.", success)
	}
}

func Test_MineFlow(t *testing.T) {
	t.Log("Given the need to validate the full submit and mine flow.")
	{
		strg, _ := memory.New()
		st := newState(t, 0, strg, nil)
		defer st.Shutdown()

		tx := ledger.Tx{"author": "kai", "content": "first post", "timestamp": 1735689600}
		st.SubmitTransaction(tx, false)

		if st.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould have one pending transaction.", failed)
		}
		t.Logf("\t%s\tShould have one pending transaction.", success)

		sealed, err := st.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if sealed.Block.Index != 1 {
			t.Fatalf("\t%s\tShould mine block 1, got %d.", failed, sealed.Block.Index)
		}
		t.Logf("\t%s\tShould mine block 1.", success)

		if st.QueryChainLength() != 2 {
			t.Fatalf("\t%s\tShould have two blocks, got %d.", failed, st.QueryChainLength())
		}
		t.Logf("\t%s\tShould have two blocks.", success)

		if st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould have an empty pool.", failed)
		}
		t.Logf("\t%s\tShould have an empty pool.", success)

		blocks, err := strg.ReadAll()
		if err != nil || len(blocks) != 1 || blocks[0].Hash != sealed.Hash {
			t.Fatalf("\t%s\tShould archive the mined block.", failed)
		}
		t.Logf("\t%s\tShould archive the mined block.", success)
	}
}

func Test_ProcessProposedBlock(t *testing.T) {
	t.Log("Given the need to validate admission of peer proposed blocks.")
	{
		st := newState(t, 0, nil, nil)
		defer st.Shutdown()

		// A peer node with the same genesis mines the next block.
		other := newState(t, 0, nil, nil)
		defer other.Shutdown()
		other.SubmitTransaction(ledger.Tx{"author": "ana", "content": "peer post"}, false)
		sealed, err := other.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine on the peer: %v", failed, err)
		}

		if err := st.ProcessProposedBlock(sealed); err != nil {
			t.Fatalf("\t%s\tShould admit the proposed block: %v", failed, err)
		}
		t.Logf("\t%s\tShould admit the proposed block.", success)

		// The same block can't take the next slot again.
		if err := st.ProcessProposedBlock(sealed); !errors.Is(err, ledger.ErrLinkageMismatch) {
			t.Fatalf("\t%s\tShould reject a replayed block, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject a replayed block.", success)

		// A tampered follow-up never mutates the chain.
		tampered := sealed
		tampered.Index = 2
		tampered.PrevHash = sealed.Hash
		if err := st.ProcessProposedBlock(tampered); !errors.Is(err, ledger.ErrProofInvalid) {
			t.Fatalf("\t%s\tShould reject a tampered block, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject a tampered block.", success)

		if st.QueryChainLength() != 2 {
			t.Fatalf("\t%s\tShould keep the chain at two blocks, got %d.", failed, st.QueryChainLength())
		}
		t.Logf("\t%s\tShould keep the chain at two blocks.", success)
	}
}

func Test_StartupReplay(t *testing.T) {
	t.Log("Given the need to validate the archive replays through admission.")
	{
		strg, _ := memory.New()

		st := newState(t, 0, strg, nil)
		st.SubmitTransaction(ledger.Tx{"author": "kai", "content": "first post"}, false)
		if _, err := st.MineNewBlock(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		st.SubmitTransaction(ledger.Tx{"author": "kai", "content": "second post"}, false)
		if _, err := st.MineNewBlock(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		st.Shutdown()

		// A fresh node over the same archive ends at the same head.
		st2 := newState(t, 0, strg, nil)
		defer st2.Shutdown()

		if st2.QueryChainLength() != 3 {
			t.Fatalf("\t%s\tShould replay the archived blocks, got %d.", failed, st2.QueryChainLength())
		}
		t.Logf("\t%s\tShould replay the archived blocks.", success)

		// A tampered archive must be refused at startup.
		bad, _ := memory.New()
		blocks, _ := strg.ReadAll()
		blocks[0].Transactions[0]["content"] = "history, revised"
		for _, sb := range blocks {
			bad.Write(sb)
		}

		_, err := state.New(state.Config{
			Host:       "me:9080",
			Genesis:    genesis.Genesis{ChainName: "test", Difficulty: 0},
			Storage:    bad,
			KnownPeers: peer.NewPeerSet(),
			EvHandler:  noEvents,
		})
		if err == nil {
			t.Fatalf("\t%s\tShould refuse a tampered archive.", failed)
		}
		t.Logf("\t%s\tShould refuse a tampered archive.", success)
	}
}

// =============================================================================

// peerChainServer serves a chain dump on the private chain route the way a
// real node would.
func peerChainServer(t *testing.T, dump state.ChainDump) (*httptest.Server, peer.Peer) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/node/chain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dump)
	})

	ts := httptest.NewServer(mux)
	host := strings.TrimPrefix(ts.URL, "http://")

	return ts, peer.New(host)
}

func Test_Consensus(t *testing.T) {
	t.Log("Given the need to validate longest valid chain consensus.")
	{
		// Build the longer chain a peer will serve. One of its transactions
		// will also sit in our local pool.
		shared := ledger.Tx{"author": "ana", "content": "seen by both"}

		l := ledger.New(0)
		for i, tx := range []ledger.Tx{shared, {"author": "raj", "content": "only remote"}} {
			candidate := ledger.NewBlock(l.Head(), []ledger.Tx{tx})
			sealed, err := ledger.POW(context.Background(), 0, candidate, noEvents)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to mine remote block %d: %v", failed, i+1, err)
			}
			if err := l.AdmitBlock(sealed.Block, sealed.Hash); err != nil {
				t.Fatalf("\t%s\tShould be able to admit remote block %d: %v", failed, i+1, err)
			}
		}
		remoteChain := l.Chain()

		ts, pr := peerChainServer(t, state.ChainDump{Length: len(remoteChain), Chain: remoteChain})
		defer ts.Close()

		peers := peer.NewPeerSet()
		peers.Add(pr)

		strg, _ := memory.New()
		st := newState(t, 0, strg, peers)
		defer st.Shutdown()

		local := ledger.Tx{"author": "kai", "content": "only local"}
		st.SubmitTransaction(shared, false)
		st.SubmitTransaction(local, false)

		if outcome := st.ResolveConsensus(); outcome != state.Replaced {
			t.Fatalf("\t%s\tShould replace the local chain, got %v.", failed, outcome)
		}
		t.Logf("\t%s\tShould replace the local chain.", success)

		if st.QueryChainLength() != len(remoteChain) {
			t.Fatalf("\t%s\tShould adopt every remote block, got %d.", failed, st.QueryChainLength())
		}
		t.Logf("\t%s\tShould adopt every remote block.", success)

		// The pool survives replacement minus what the adopted chain
		// already includes.
		pending := st.RetrieveMempool()
		if len(pending) != 1 || pending[0].Hash() != local.Hash() {
			t.Logf("\t%s\tgot: %v", failed, pending)
			t.Fatalf("\t%s\tShould carry only the uncommitted transaction forward.", failed)
		}
		t.Logf("\t%s\tShould carry only the uncommitted transaction forward.", success)

		// The archive now mirrors the adopted chain.
		blocks, _ := strg.ReadAll()
		if len(blocks) != len(remoteChain)-1 {
			t.Fatalf("\t%s\tShould rewrite the archive, got %d blocks.", failed, len(blocks))
		}
		t.Logf("\t%s\tShould rewrite the archive.", success)

		// Running again changes nothing. The chains are now equal length.
		if outcome := st.ResolveConsensus(); outcome != state.Unchanged {
			t.Fatalf("\t%s\tShould leave an equal chain unchanged.", failed)
		}
		t.Logf("\t%s\tShould leave an equal chain unchanged.", success)
	}
}

func Test_ConsensusTamperedPeer(t *testing.T) {
	t.Log("Given the need to validate a tampered peer chain is discarded.")
	{
		// A longer chain that does not re-validate must not win.
		l := ledger.New(0)
		for i := 0; i < 2; i++ {
			candidate := ledger.NewBlock(l.Head(), []ledger.Tx{{"author": "mallory", "n": i}})
			sealed, err := ledger.POW(context.Background(), 0, candidate, noEvents)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to mine block %d: %v", failed, i+1, err)
			}
			if err := l.AdmitBlock(sealed.Block, sealed.Hash); err != nil {
				t.Fatalf("\t%s\tShould be able to admit block %d: %v", failed, i+1, err)
			}
		}
		chain := l.Chain()
		chain[1].Transactions[0]["n"] = 99

		ts, pr := peerChainServer(t, state.ChainDump{Length: len(chain), Chain: chain})
		defer ts.Close()

		peers := peer.NewPeerSet()
		peers.Add(pr)

		st := newState(t, 0, nil, peers)
		defer st.Shutdown()

		if outcome := st.ResolveConsensus(); outcome != state.Unchanged {
			t.Fatalf("\t%s\tShould discard the tampered candidate, got %v.", failed, outcome)
		}
		t.Logf("\t%s\tShould discard the tampered candidate.", success)

		if st.QueryChainLength() != 1 {
			t.Fatalf("\t%s\tShould keep the local chain, got %d.", failed, st.QueryChainLength())
		}
		t.Logf("\t%s\tShould keep the local chain.", success)
	}
}
