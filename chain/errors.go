package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrBuild covers raw-transaction formation failures (bad payload,
	// sender lookup, signing-message encoding).
	ErrBuild = errors.New("transaction build failed")

	// ErrSigningFailed means the signing oracle declined or was unreachable.
	ErrSigningFailed = errors.New("signing failed")

	// ErrSubmission covers transport failures while submitting or awaiting
	// confirmation. Retryable by re-invoking the same action.
	ErrSubmission = errors.New("transaction submission failed")

	// ErrAccountNotFound is returned for addresses that do not exist
	// on-chain yet.
	ErrAccountNotFound = errors.New("account not found")
)

// ExecutionError means the chain accepted the transaction but the VM
// rejected it. The VM status is the only diagnostic available for on-chain
// rejection, so it is carried verbatim along with the transaction hash.
type ExecutionError struct {
	Hash     string
	VMStatus string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction %s failed with an error: %s", e.Hash, e.VMStatus)
}
