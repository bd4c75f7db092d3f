package wallet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemoteSigner asks the wallet provider's signing endpoint to sign a raw
// transaction hash on behalf of the user's embedded wallet. The provider is
// an opaque oracle: key material never enters this process.
type RemoteSigner struct {
	endpoint string
	http     *http.Client
}

func NewRemoteSigner(endpoint string) *RemoteSigner {
	return &RemoteSigner{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type signRequest struct {
	Address   string `json:"address"`
	ChainType string `json:"chainType"`
	Hash      string `json:"hash"`
}

type signResponse struct {
	Signature string `json:"signature"`
}

func (s *RemoteSigner) SignRawHash(ctx context.Context, address, hash string) (string, error) {
	payload, err := json.Marshal(signRequest{
		Address:   address,
		ChainType: "aptos",
		Hash:      hash,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("signing oracle unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signing oracle returned status: %s", resp.Status)
	}

	var signed signResponse
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("decoding signature response: %w", err)
	}
	if signed.Signature == "" {
		return "", errors.New("signing oracle returned empty signature")
	}
	return signed.Signature, nil
}

// LocalSigner signs with an in-process Ed25519 key. Used for the sponsor
// account and for tests; user wallets always sign through the RemoteSigner.
type LocalSigner struct {
	priv ed25519.PrivateKey
}

// NewLocalSigner parses a hex private key (optionally 0x-prefixed), either a
// 32-byte seed or a full 64-byte key.
func NewLocalSigner(privateKeyHex string) (*LocalSigner, error) {
	clean := strings.TrimPrefix(privateKeyHex, "0x")
	keyBytes, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}

	switch len(keyBytes) {
	case ed25519.SeedSize:
		return &LocalSigner{priv: ed25519.NewKeyFromSeed(keyBytes)}, nil
	case ed25519.PrivateKeySize:
		return &LocalSigner{priv: ed25519.PrivateKey(keyBytes)}, nil
	default:
		return nil, fmt.Errorf("private key must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(keyBytes))
	}
}

// SignRawHash signs the raw signing-message bytes carried in the hex hash.
func (s *LocalSigner) SignRawHash(_ context.Context, _ string, hash string) (string, error) {
	message, err := hex.DecodeString(strings.TrimPrefix(hash, "0x"))
	if err != nil {
		return "", fmt.Errorf("invalid signing message hex: %w", err)
	}
	return hex.EncodeToString(ed25519.Sign(s.priv, message)), nil
}

// PublicKeyHex returns the 0x-prefixed hex public key.
func (s *LocalSigner) PublicKeyHex() string {
	return "0x" + hex.EncodeToString(s.priv.Public().(ed25519.PublicKey))
}
