package ledger

import "errors"

// Set of error variables for the recoverable outcomes of block admission
// and chain reconstruction. None of these should ever unwind a node.
var (
	// ErrLinkageMismatch is returned when a candidate block doesn't link
	// to the current head of the chain.
	ErrLinkageMismatch = errors.New("block doesn't link to the current head")

	// ErrProofInvalid is returned when a claimed digest fails the
	// difficulty rule or doesn't match the recomputed content digest.
	ErrProofInvalid = errors.New("block proof of work is invalid")

	// ErrTamperedChain is returned when a candidate chain fails
	// re-validation during reconstruction.
	ErrTamperedChain = errors.New("chain dump is tampered")
)
