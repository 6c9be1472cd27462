package digest_test

import (
	"testing"

	"github.com/chainpress/chainpress/foundation/blockchain/digest"
)

func Test_Determinism(t *testing.T) {

	// Two maps with the same content constructed in different orders must
	// produce the same digest.
	txA := map[string]any{
		"author":    "kai",
		"content":   "first post",
		"timestamp": 1735689600,
	}

	txB := map[string]any{
		"timestamp": 1735689600,
		"content":   "first post",
		"author":    "kai",
	}

	hashA := digest.Hash(txA)
	hashB := digest.Hash(txB)

	if hashA != hashB {
		t.Logf("got: %s", hashB)
		t.Logf("exp: %s", hashA)
		t.Fatal("Should produce the same digest regardless of construction order.")
	}

	if len(hashA) != 64 {
		t.Fatalf("Should produce a 64 hex character digest, got %d.", len(hashA))
	}
}

func Test_StructMapEquivalence(t *testing.T) {
	type block struct {
		Index     uint64 `json:"index"`
		TimeStamp uint64 `json:"timestamp"`
		PrevHash  string `json:"previous_hash"`
		Nonce     uint64 `json:"nonce"`
	}

	b := block{
		Index:     1,
		TimeStamp: 1735689600,
		PrevHash:  "0",
		Nonce:     42,
	}

	m := map[string]any{
		"nonce":         42,
		"previous_hash": "0",
		"index":         1,
		"timestamp":     1735689600,
	}

	if got, exp := digest.Hash(m), digest.Hash(b); got != exp {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", exp)
		t.Fatal("Should produce the same digest for a struct and its map form.")
	}
}

func Test_Avalanche(t *testing.T) {
	txA := map[string]any{"author": "kai", "content": "first post"}
	txB := map[string]any{"author": "kai", "content": "first post."}

	if digest.Hash(txA) == digest.Hash(txB) {
		t.Fatal("Should produce different digests for different content.")
	}
}

func Test_Unserializable(t *testing.T) {

	// A value json can't serialize falls back to the zero hash.
	if got := digest.Hash(make(chan int)); got != digest.ZeroHash {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", digest.ZeroHash)
		t.Fatal("Should fall back to the zero hash.")
	}
}
