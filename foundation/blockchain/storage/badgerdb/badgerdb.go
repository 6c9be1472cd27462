// Package badgerdb implements block archiving on top of BadgerDB.
package badgerdb

import (
	"encoding/json"
	"fmt"

	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
	"github.com/dgraph-io/badger"
)

// Keys are the zero-padded block index so the default lexicographic
// iteration order is the chain order.
const keyFormat = "blk/%012d"

// Badger represents the serialization implementation for reading and
// storing blocks in a BadgerDB key/value store. This implements the
// ledger.Storage interface.
type Badger struct {
	db *badger.DB
}

// New constructs a Badger value for use.
func New(dbPath string) (*Badger, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Badger{db: db}, nil
}

// Close releases the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// Write stores the sealed block under its index key.
func (b *Badger) Write(sb ledger.SealedBlock) error {
	data, err := json.Marshal(sb)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(fmt.Sprintf(keyFormat, sb.Block.Index)), data)
	})
}

// ReadAll loads every archived block in index order.
func (b *Badger) ReadAll() ([]ledger.SealedBlock, error) {
	var blocks []ledger.SealedBlock

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("blk/")

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var sb ledger.SealedBlock
				if err := json.Unmarshal(val, &sb); err != nil {
					return err
				}
				blocks = append(blocks, sb)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// Reset clears out the archived blockchain.
func (b *Badger) Reset() error {
	return b.db.DropAll()
}
