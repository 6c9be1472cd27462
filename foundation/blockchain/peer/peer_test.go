package peer_test

import (
	"testing"

	"github.com/chainpress/chainpress/foundation/blockchain/peer"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host1"}, {Host: "host2"}, {Host: "host3"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, peer := range tst.peers {
				ps.Add(peer)
			}

			// Adding a duplicate must not grow the set.
			ps.Add(tst.peers[0])

			peers := ps.Copy("")
			if len(peers) != len(tst.peers) {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers))
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			peers = ps.Copy("host2")
			if len(peers) != len(tst.peers)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(tst.peers)-1)
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			ps.Remove(tst.peers[0])
			peers = ps.Copy("")
			if len(peers) != len(tst.peers)-1 {
				t.Fatalf("Test %s:\tShould get back the right peers after removal.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Ordering(t *testing.T) {

	// Consensus visits peers in this order, so it must be total and stable
	// no matter how the set was populated.
	ps := peer.NewPeerSet()
	ps.Add(peer.New("hostC"))
	ps.Add(peer.New("hostA"))
	ps.Add(peer.New("hostB"))

	peers := ps.Copy("")

	exp := []string{"hostA", "hostB", "hostC"}
	for i, pr := range peers {
		if pr.Host != exp[i] {
			t.Logf("got: %v", peers)
			t.Logf("exp: %v", exp)
			t.Fatal("Should get the peers in lexicographic host order.")
		}
	}
}
