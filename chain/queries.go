package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go-siren/geo"
	"go-siren/types"
)

// OctasPerMove converts base units to display units of the native token.
const OctasPerMove = 100_000_000

const (
	aptosCoinType   = "0x1::aptos_coin::AptosCoin"
	balanceFunction = "0x1::coin::balance"
)

// Queries wraps the registry's read-only view functions.
type Queries struct {
	client          *Client
	moduleAddress   string
	registryAddress string
}

func NewQueries(client *Client, moduleAddress, registryAddress string) *Queries {
	if registryAddress == "" {
		registryAddress = moduleAddress
	}
	return &Queries{client: client, moduleAddress: moduleAddress, registryAddress: registryAddress}
}

// rawSignal is a signal record as the node returns it: u64 fields arrive as
// decimal strings, u8 as numbers.
type rawSignal struct {
	ID         string `json:"id"`
	Reporter   string `json:"reporter"`
	SignalType int    `json:"signal_type"`
	Lat        string `json:"lat"`
	Lon        string `json:"lon"`
	Timestamp  string `json:"timestamp"`
	Confidence int    `json:"confidence"`
}

// GetAllSignals fetches every signal in the registry with coordinates
// decoded back to signed degrees.
func (q *Queries) GetAllSignals(ctx context.Context) ([]types.Signal, error) {
	result, err := q.client.View(ctx, q.moduleAddress+"::core::get_all_signals", nil, []any{q.registryAddress})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return []types.Signal{}, nil
	}

	var raw []rawSignal
	if err := json.Unmarshal(result[0], &raw); err != nil {
		return nil, fmt.Errorf("decoding signals: %w", err)
	}

	signals := make([]types.Signal, 0, len(raw))
	for _, r := range raw {
		latInt, err := parseUint32(r.Lat)
		if err != nil {
			return nil, fmt.Errorf("signal %s: bad lat: %w", r.ID, err)
		}
		lonInt, err := parseUint32(r.Lon)
		if err != nil {
			return nil, fmt.Errorf("signal %s: bad lon: %w", r.ID, err)
		}
		lat, lon := geo.Decode(latInt, lonInt)

		signals = append(signals, types.Signal{
			ID:         r.ID,
			Reporter:   r.Reporter,
			SignalType: types.SignalType(r.SignalType),
			Lat:        lat,
			Lon:        lon,
			Timestamp:  r.Timestamp,
			Confidence: r.Confidence,
		})
	}
	return signals, nil
}

// GetReputation fetches a reporter's on-chain reputation score.
func (q *Queries) GetReputation(ctx context.Context, address string) (uint64, error) {
	result, err := q.client.View(ctx, q.moduleAddress+"::reputation::get_reputation", nil, []any{address})
	if err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, fmt.Errorf("empty reputation response")
	}

	return parseUint64(result[0], "reputation")
}

// Balance returns an address's native-token balance in base units.
// Addresses without an on-chain account yield ErrAccountNotFound.
func (q *Queries) Balance(ctx context.Context, address string) (uint64, error) {
	result, err := q.client.View(ctx, balanceFunction, []string{aptosCoinType}, []any{address})
	if err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, fmt.Errorf("empty balance response")
	}

	return parseUint64(result[0], "balance")
}

// parseUint64 decodes a u64 view return value, which the node encodes as a
// JSON string.
func parseUint64(raw json.RawMessage, what string) (uint64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("decoding %s: %w", what, err)
	}
	value, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decoding %s: %w", what, err)
	}
	return value, nil
}

func parseUint32(s string) (uint32, error) {
	value, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(value), nil
}
