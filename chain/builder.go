package chain

import (
	"strconv"

	"go-siren/geo"
	"go-siren/types"
)

// Builder constructs entry-function payloads for the signal registry. It is
// pure: no network access, no signing.
type Builder struct {
	ModuleAddress   string
	RegistryAddress string
}

func NewBuilder(moduleAddress, registryAddress string) *Builder {
	if registryAddress == "" {
		registryAddress = moduleAddress
	}
	return &Builder{ModuleAddress: moduleAddress, RegistryAddress: registryAddress}
}

// InitProfileTx builds the idempotent reputation-profile registration call.
// The chain rejects a second registration; callers are expected to treat
// that as non-fatal.
func (b *Builder) InitProfileTx() EntryFunctionPayload {
	return EntryFunctionPayload{
		Type:          entryFunctionPayload,
		Function:      b.ModuleAddress + "::reputation::init_profile",
		TypeArguments: []string{},
		Arguments:     []any{},
	}
}

// SubmitSignalTx builds the submit_signal call, encoding the coordinates to
// the registry's fixed-point representation. Out-of-range coordinates fail
// before anything touches the network.
func (b *Builder) SubmitSignalTx(sigType types.SignalType, lat, lon float64) (EntryFunctionPayload, error) {
	latInt, lonInt, err := geo.Encode(lat, lon)
	if err != nil {
		return EntryFunctionPayload{}, err
	}

	return EntryFunctionPayload{
		Type:          entryFunctionPayload,
		Function:      b.ModuleAddress + "::core::submit_signal",
		TypeArguments: []string{},
		Arguments: []any{
			b.RegistryAddress,
			int(sigType),
			strconv.FormatUint(uint64(latInt), 10),
			strconv.FormatUint(uint64(lonInt), 10),
		},
	}, nil
}

// TransferTx builds a native-token transfer, used by sponsor funding.
func TransferTx(recipient string, amountOctas uint64) EntryFunctionPayload {
	return EntryFunctionPayload{
		Type:          entryFunctionPayload,
		Function:      "0x1::aptos_account::transfer",
		TypeArguments: []string{},
		Arguments:     []any{recipient, strconv.FormatUint(amountOctas, 10)},
	}
}
