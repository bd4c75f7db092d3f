package wallet

import (
	"context"
	"errors"
	"log"
	"os"

	"go-siren/chain"
)

const (
	// MinimumBalanceOctas is the balance below which a wallet cannot cover
	// submission gas and should be topped up.
	MinimumBalanceOctas = 5_000_000
	// FundingAmountOctas is the fixed sponsor transfer for new wallets.
	FundingAmountOctas = 10_000_000
)

// ErrSponsorUnconfigured means sponsor credentials are absent. Funding is
// best-effort, so callers treat this as a soft failure.
var ErrSponsorUnconfigured = errors.New("sponsor credentials not configured")

// FundingResult reports the outcome of a funding request.
type FundingResult struct {
	Success       bool   `json:"success"`
	AlreadyFunded bool   `json:"alreadyFunded,omitempty"`
	TxHash        string `json:"txHash,omitempty"`
	Err           string `json:"error,omitempty"`
}

// balanceReader is the slice of chain.Queries the manager needs.
type balanceReader interface {
	Balance(ctx context.Context, address string) (uint64, error)
}

// txSubmitter is the slice of chain.Submitter the manager needs.
type txSubmitter interface {
	Submit(ctx context.Context, sender, senderPublicKey string, signer chain.Signer, payload chain.EntryFunctionPayload) (string, error)
}

// FundingManager seeds new user wallets from a sponsor account so first
// submissions can pay gas.
type FundingManager struct {
	balances       balanceReader
	submitter      txSubmitter
	sponsorAddress string
	sponsor        *LocalSigner
}

// NewFundingManager reads sponsor credentials from the environment. Missing
// credentials disable funding rather than failing startup.
func NewFundingManager(balances balanceReader, submitter txSubmitter) *FundingManager {
	m := &FundingManager{balances: balances, submitter: submitter}

	privateKey := os.Getenv("SPONSOR_PRIVATE_KEY")
	m.sponsorAddress = os.Getenv("SPONSOR_ADDRESS")

	if privateKey == "" || m.sponsorAddress == "" {
		log.Println("SPONSOR_PRIVATE_KEY or SPONSOR_ADDRESS not set, auto-funding disabled")
		return m
	}

	signer, err := NewLocalSigner(privateKey)
	if err != nil {
		log.Printf("Invalid SPONSOR_PRIVATE_KEY, auto-funding disabled: %v", err)
		return m
	}
	m.sponsor = signer
	return m
}

// NewFundingManagerWithSponsor wires an explicit sponsor key (tests).
func NewFundingManagerWithSponsor(balances balanceReader, submitter txSubmitter, sponsorAddress string, sponsor *LocalSigner) *FundingManager {
	return &FundingManager{
		balances:       balances,
		submitter:      submitter,
		sponsorAddress: sponsorAddress,
		sponsor:        sponsor,
	}
}

// NeedsFunding reports whether the address holds less than the minimum
// balance. An account that does not exist on-chain yet needs funding; other
// balance-check failures do not trigger a transfer.
func (m *FundingManager) NeedsFunding(ctx context.Context, address string) bool {
	balance, err := m.balances.Balance(ctx, address)
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			return true
		}
		log.Printf("Error checking balance for %s: %v", address, err)
		return false
	}
	return balance < MinimumBalanceOctas
}

// Fund tops up the recipient from the sponsor account. Already-funded
// recipients get {Success: true, AlreadyFunded: true} with no transfer
// issued; a missing sponsor is a soft configuration failure.
func (m *FundingManager) Fund(ctx context.Context, recipient string) FundingResult {
	if !m.NeedsFunding(ctx, recipient) {
		return FundingResult{Success: true, AlreadyFunded: true}
	}

	if m.sponsor == nil {
		return FundingResult{Success: false, Err: ErrSponsorUnconfigured.Error()}
	}

	log.Printf("Funding %s with %d octas", recipient, FundingAmountOctas)

	payload := chain.TransferTx(recipient, FundingAmountOctas)
	hash, err := m.submitter.Submit(ctx, m.sponsorAddress, m.sponsor.PublicKeyHex(), m.sponsor, payload)
	if err != nil {
		log.Printf("Failed to fund %s: %v", recipient, err)
		return FundingResult{Success: false, Err: err.Error()}
	}

	log.Printf("Funded %s - TX: %s", recipient, hash)
	return FundingResult{Success: true, TxHash: hash}
}
