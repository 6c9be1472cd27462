// Package digest provides the canonical serialization and hashing support
// for the blockchain.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ZeroHash represents a hash code of zeros. It is returned when a value
// can't be serialized, which only happens for values that can't exist on
// the chain in the first place.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// Hash returns a unique string for the value. The value is first reduced
// to its canonical form, field names sorted, so two values with the same
// content always produce the same digest regardless of how they were
// constructed or decoded.
func Hash(value any) string {
	data, err := Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Marshal produces the canonical byte representation of the value. The
// value is marshaled, decoded back into generic form and marshaled again.
// The second pass runs over maps only, which encoding/json writes with
// sorted keys.
func Marshal(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}
