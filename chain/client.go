package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultMaxGasAmount  = 100_000
	defaultGasUnitPrice  = 100
	txExpirationWindow   = 10 * time.Minute
	confirmPollInterval  = 500 * time.Millisecond
	confirmWaitDeadline  = 30 * time.Second
	pendingTransaction   = "pending_transaction"
	entryFunctionPayload = "entry_function_payload"
	ed25519Signature     = "ed25519_signature"
)

// Client talks to a Move fullnode's v1 REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(fullnodeURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	return &Client{
		baseURL: strings.TrimSuffix(fullnodeURL, "/"),
		http:    rc.StandardClient(),
	}
}

// EntryFunctionPayload is a chain entry-function call in the node's JSON
// encoding. u64 arguments are passed as decimal strings, u8 as numbers.
type EntryFunctionPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// RawTransaction is an unsigned transaction in the node's JSON encoding.
type RawTransaction struct {
	Sender                  string               `json:"sender"`
	SequenceNumber          string               `json:"sequence_number"`
	MaxGasAmount            string               `json:"max_gas_amount"`
	GasUnitPrice            string               `json:"gas_unit_price"`
	ExpirationTimestampSecs string               `json:"expiration_timestamp_secs"`
	Payload                 EntryFunctionPayload `json:"payload"`
}

type txSignature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

type signedTransaction struct {
	RawTransaction
	Signature txSignature `json:"signature"`
}

type accountInfo struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

// TransactionInfo is the confirmed (or pending) state of a submitted
// transaction.
type TransactionInfo struct {
	Type     string `json:"type"`
	Hash     string `json:"hash"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
}

type apiError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// Account fetches on-chain account state; returns ErrAccountNotFound for
// addresses that have never been funded.
func (c *Client) Account(ctx context.Context, address string) (accountInfo, error) {
	var info accountInfo
	err := c.get(ctx, "/accounts/"+address, &info)
	return info, err
}

// BuildRawTransaction assembles an unsigned transaction for the sender from
// an entry-function payload, fetching the account's next sequence number.
func (c *Client) BuildRawTransaction(ctx context.Context, sender string, payload EntryFunctionPayload) (RawTransaction, error) {
	account, err := c.Account(ctx, sender)
	if err != nil {
		return RawTransaction{}, err
	}

	expiration := time.Now().Add(txExpirationWindow).Unix()
	return RawTransaction{
		Sender:                  sender,
		SequenceNumber:          account.SequenceNumber,
		MaxGasAmount:            strconv.Itoa(defaultMaxGasAmount),
		GasUnitPrice:            strconv.Itoa(defaultGasUnitPrice),
		ExpirationTimestampSecs: strconv.FormatInt(expiration, 10),
		Payload:                 payload,
	}, nil
}

// EncodeSubmission asks the node for the canonical signing message of a raw
// transaction. The result is a 0x-prefixed hex string, a deterministic
// function of the transaction bytes.
func (c *Client) EncodeSubmission(ctx context.Context, tx RawTransaction) (string, error) {
	var signingMessage string
	if err := c.post(ctx, "/transactions/encode_submission", tx, &signingMessage); err != nil {
		return "", err
	}
	return signingMessage, nil
}

// SubmitTransaction sends a signed transaction to the network and returns
// the pending transaction hash.
func (c *Client) SubmitTransaction(ctx context.Context, tx signedTransaction) (string, error) {
	var pending struct {
		Hash string `json:"hash"`
	}
	if err := c.post(ctx, "/transactions", tx, &pending); err != nil {
		return "", err
	}
	return pending.Hash, nil
}

// WaitForTransaction polls until the transaction leaves the mempool or the
// confirmation deadline passes.
func (c *Client) WaitForTransaction(ctx context.Context, hash string) (TransactionInfo, error) {
	deadline := time.Now().Add(confirmWaitDeadline)

	for {
		var info TransactionInfo
		err := c.get(ctx, "/transactions/by_hash/"+hash, &info)
		if err == nil && info.Type != pendingTransaction {
			return info, nil
		}
		if err != nil && ctx.Err() != nil {
			return TransactionInfo{}, ctx.Err()
		}

		if time.Now().After(deadline) {
			return TransactionInfo{}, fmt.Errorf("transaction %s not confirmed within %s", hash, confirmWaitDeadline)
		}

		select {
		case <-ctx.Done():
			return TransactionInfo{}, ctx.Err()
		case <-time.After(confirmPollInterval):
		}
	}
}

// View executes a read-only view function and returns its raw return values.
func (c *Client) View(ctx context.Context, function string, typeArguments []string, arguments []any) ([]json.RawMessage, error) {
	if typeArguments == nil {
		typeArguments = []string{}
	}
	if arguments == nil {
		arguments = []any{}
	}

	request := map[string]any{
		"function":       function,
		"type_arguments": typeArguments,
		"arguments":      arguments,
	}

	var result []json.RawMessage
	if err := c.post(ctx, "/view", request, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			if apiErr.ErrorCode == "account_not_found" || apiErr.ErrorCode == "resource_not_found" {
				return fmt.Errorf("%w: %s", ErrAccountNotFound, apiErr.Message)
			}
			return fmt.Errorf("fullnode returned %s: %s", resp.Status, apiErr.Message)
		}
		return fmt.Errorf("fullnode returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding fullnode response: %w", err)
	}
	return nil
}
