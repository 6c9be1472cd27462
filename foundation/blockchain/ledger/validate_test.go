package ledger_test

import (
	"errors"
	"testing"

	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
)

// buildChain mines count blocks on top of genesis and returns the full
// chain dump.
func buildChain(t *testing.T, difficulty int, count int) []ledger.SealedBlock {
	t.Helper()

	l := ledger.New(difficulty)

	for i := 0; i < count; i++ {
		tx := ledger.Tx{"author": "kai", "content": "post", "n": i}
		candidate := ledger.NewBlock(l.Head(), []ledger.Tx{tx})
		sealed := mustPOW(t, difficulty, candidate)

		if err := l.AdmitBlock(sealed.Block, sealed.Hash); err != nil {
			t.Fatalf("\t%s\tShould be able to admit block %d: %v", failed, i+1, err)
		}
	}

	return l.Chain()
}

// =============================================================================

func Test_ValidateChain(t *testing.T) {
	type table struct {
		name   string
		tamper func(chain []ledger.SealedBlock)
		valid  bool
	}

	tt := []table{
		{
			name:   "honest chain",
			tamper: func(chain []ledger.SealedBlock) {},
			valid:  true,
		},
		{
			name: "rewritten transaction",
			tamper: func(chain []ledger.SealedBlock) {
				chain[1].Transactions[0]["content"] = "history, revised"
			},
			valid: false,
		},
		{
			name: "shifted timestamp",
			tamper: func(chain []ledger.SealedBlock) {
				chain[2].TimeStamp++
			},
			valid: false,
		},
		{
			name: "relinked block",
			tamper: func(chain []ledger.SealedBlock) {
				chain[2].PrevHash = chain[0].Hash
			},
			valid: false,
		},
		{
			name: "renumbered block",
			tamper: func(chain []ledger.SealedBlock) {
				chain[2].Index = 7
			},
			valid: false,
		},
		{
			name: "altered nonce",
			tamper: func(chain []ledger.SealedBlock) {
				chain[1].Nonce++
			},
			valid: false,
		},
		{
			name: "non genesis first block",
			tamper: func(chain []ledger.SealedBlock) {
				chain[0].Index = 1
			},
			valid: false,
		},
		{
			// Validation recomputes every digest from content, so a forged
			// stored hash on its own changes nothing.
			name: "forged stored hash only",
			tamper: func(chain []ledger.SealedBlock) {
				chain[1].Hash = "0000000000000000000000000000000000000000000000000000000000000000"
			},
			valid: true,
		},
	}

	t.Log("Given the need to validate tamper detection on a chain dump.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					chain := buildChain(t, 1, 3)
					tst.tamper(chain)

					err := ledger.ValidateChain(chain, 1)

					switch {
					case tst.valid && err != nil:
						t.Fatalf("\t%s\tTest %d:\tShould validate the chain: %v", failed, testID, err)
					case !tst.valid && !errors.Is(err, ledger.ErrTamperedChain):
						t.Fatalf("\t%s\tTest %d:\tShould report a tampered chain, got %v.", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get the right verdict.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Reconstruct(t *testing.T) {
	t.Log("Given the need to validate ledger reconstruction from a dump.")
	{
		chain := buildChain(t, 1, 3)

		l, err := ledger.Reconstruct(chain, 1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reconstruct an honest dump: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to reconstruct an honest dump.", success)

		if l.Len() != len(chain) {
			t.Logf("\t%s\tgot: %d", failed, l.Len())
			t.Logf("\t%s\texp: %d", failed, len(chain))
			t.Fatalf("\t%s\tShould reconstruct every block.", failed)
		}
		t.Logf("\t%s\tShould reconstruct every block.", success)

		if l.Head().Hash != chain[len(chain)-1].Block.Hash() {
			t.Fatalf("\t%s\tShould end at the same head.", failed)
		}
		t.Logf("\t%s\tShould end at the same head.", success)

		// Unlike plain validation, reconstruction goes through admission,
		// which refuses a forged stored hash.
		chain[1].Hash = "0000000000000000000000000000000000000000000000000000000000000000"
		if _, err := ledger.Reconstruct(chain, 1); !errors.Is(err, ledger.ErrTamperedChain) {
			t.Fatalf("\t%s\tShould refuse a forged stored hash, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould refuse a forged stored hash.", success)

		if _, err := ledger.Reconstruct(nil, 1); !errors.Is(err, ledger.ErrTamperedChain) {
			t.Fatalf("\t%s\tShould refuse an empty dump, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould refuse an empty dump.", success)
	}
}
