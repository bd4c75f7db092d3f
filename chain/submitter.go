package chain

import (
	"context"
	"fmt"
	"strings"
)

// Signer is the external signing oracle: given the sender address and the
// 0x-prefixed hex signing message, it returns a hex Ed25519 signature. The
// wallet provider implements this remotely; the sponsor account implements
// it with a local key.
type Signer interface {
	SignRawHash(ctx context.Context, address, hash string) (signature string, err error)
}

// Submitter turns an entry-function payload into a signed, submitted,
// confirmed transaction.
type Submitter struct {
	client *Client
}

func NewSubmitter(client *Client) *Submitter {
	return &Submitter{client: client}
}

// Submit runs the full build → sign → submit → confirm protocol and returns
// the transaction hash on confirmed success. A confirmed-but-reverted
// transaction yields *ExecutionError with the chain's VM status verbatim.
func (s *Submitter) Submit(ctx context.Context, sender, senderPublicKey string, signer Signer, payload EntryFunctionPayload) (string, error) {
	raw, err := s.client.BuildRawTransaction(ctx, sender, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuild, err)
	}

	signingMessage, err := s.client.EncodeSubmission(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuild, err)
	}

	signature, err := signer.SignRawHash(ctx, sender, signingMessage)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	signed := signedTransaction{
		RawTransaction: raw,
		Signature: txSignature{
			Type:      ed25519Signature,
			PublicKey: "0x" + NormalizePublicKey(senderPublicKey),
			Signature: "0x" + strings.TrimPrefix(signature, "0x"),
		},
	}

	hash, err := s.client.SubmitTransaction(ctx, signed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	executed, err := s.client.WaitForTransaction(ctx, hash)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	if !executed.Success {
		return "", &ExecutionError{Hash: hash, VMStatus: executed.VMStatus}
	}

	return hash, nil
}

// NormalizePublicKey strips an optional 0x prefix and, for 66-hex-char keys,
// the leading scheme byte, leaving the 64-char Ed25519 key.
func NormalizePublicKey(publicKeyHex string) string {
	clean := strings.TrimPrefix(publicKeyHex, "0x")
	if len(clean) == 66 {
		clean = clean[2:]
	}
	return clean
}
