package ledger

// Storage interface represents the behavior required to be implemented by
// any package providing support for archiving admitted blocks. Only mined
// blocks (index >= 1) are archived; the genesis block is always derived.
type Storage interface {
	Write(sb SealedBlock) error
	ReadAll() ([]SealedBlock, error)
	Reset() error
	Close() error
}
