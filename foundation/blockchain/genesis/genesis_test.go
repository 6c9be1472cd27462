package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chainpress/chainpress/foundation/blockchain/genesis"
)

func Test_Load(t *testing.T) {
	doc := `{
    "date": "2026-01-01T00:00:00.000000000Z",
    "chain_name": "The chainpress post ledger",
    "difficulty": 2
}`

	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("Should be able to write the genesis file: %v", err)
	}

	gen, err := genesis.Load(path)
	if err != nil {
		t.Fatalf("Should be able to load the genesis file: %v", err)
	}

	if gen.Difficulty != 2 {
		t.Logf("got: %d", gen.Difficulty)
		t.Logf("exp: 2")
		t.Fatal("Should load the right difficulty.")
	}

	if gen.ChainName != "The chainpress post ledger" {
		t.Fatal("Should load the right chain name.")
	}

	if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Should fail on a missing file.")
	}
}
