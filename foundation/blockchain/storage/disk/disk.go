// Package disk implements block archiving with one file per block on disk.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
)

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// ledger.Storage interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write stores the sealed block on disk in a file labeled with the
// block index.
func (d *Disk) Write(sb ledger.SealedBlock) error {

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(sb, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(d.getPath(sb.Block.Index), os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// ReadAll loads every archived block from disk in index order, starting
// with block 1.
func (d *Disk) ReadAll() ([]ledger.SealedBlock, error) {
	var blocks []ledger.SealedBlock

	for num := uint64(1); ; num++ {
		sb, err := d.getBlock(num)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				break
			}
			return nil, err
		}
		blocks = append(blocks, sb)
	}

	return blocks, nil
}

// Reset clears out the archived blockchain on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}

	return os.MkdirAll(d.dbPath, 0755)
}

// getBlock reads the contents of the specified block from disk.
func (d *Disk) getBlock(num uint64) (ledger.SealedBlock, error) {
	f, err := os.OpenFile(d.getPath(num), os.O_RDONLY, 0600)
	if err != nil {
		return ledger.SealedBlock{}, err
	}
	defer f.Close()

	var sb ledger.SealedBlock
	if err := json.NewDecoder(f).Decode(&sb); err != nil {
		return ledger.SealedBlock{}, err
	}

	return sb, nil
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(blockNum uint64) string {
	name := strconv.FormatUint(blockNum, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}
