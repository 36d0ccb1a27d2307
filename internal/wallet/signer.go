package wallet

import (
	"context"

	"github.com/port402/x402-curl/internal/x402"
)

// Defaults for requirements that omit the EIP-712 domain or a validity window.
const (
	defaultTokenName    = "USDC"
	defaultTokenVersion = "2"
	defaultValiditySecs = 300
)

// Signer authorizes payments on one chain family.
type Signer interface {
	// Sign authorizes the transfer described by params.
	Sign(ctx context.Context, params SignParams) (*SignResult, error)

	// Address is the payer address in the chain's native format.
	Address() string
}

// SignParams describes a transfer to authorize. EVM signers read the
// EIP-712 domain fields, Solana signers read FeePayer.
type SignParams struct {
	TokenAddress   string // ERC-20 contract or SPL mint
	From           string
	To             string
	Value          string // atomic units
	TimeoutSeconds int

	ChainID      int64
	TokenName    string
	TokenVersion string
	ValidAfter   int64 // unix seconds
	ValidBefore  int64 // unix seconds; derived from TimeoutSeconds when zero

	FeePayer string
}

// SignResult is a signed authorization.
//
// Signature is a 0x-prefixed 65 byte ECDSA signature on EVM chains and a
// base64 partially signed transaction on Solana. Nonce is the random
// EIP-3009 nonce (EVM) or the recent blockhash (Solana).
type SignResult struct {
	Signature     string
	Authorization x402.Authorization
	Nonce         string
}

// EVMSignParams builds the EIP-3009 parameters for option on chainID.
func EVMSignParams(option *x402.PaymentRequirement, from string, chainID int64) SignParams {
	return SignParams{
		TokenAddress:   option.Asset,
		From:           from,
		To:             option.PayTo,
		Value:          option.GetAmount(),
		TimeoutSeconds: option.MaxTimeoutSeconds,
		ChainID:        chainID,
		TokenName:      extraOr(option, "name", defaultTokenName),
		TokenVersion:   extraOr(option, "version", defaultTokenVersion),
	}
}

// SolanaSignParams builds the SPL transfer parameters for option.
func SolanaSignParams(option *x402.PaymentRequirement, from string) SignParams {
	return SignParams{
		TokenAddress:   option.Asset,
		From:           from,
		To:             option.PayTo,
		Value:          option.GetAmount(),
		TimeoutSeconds: option.MaxTimeoutSeconds,
		FeePayer:       option.GetExtraString("feePayer"),
	}
}

func extraOr(option *x402.PaymentRequirement, key, fallback string) string {
	if v := option.GetExtraString(key); v != "" {
		return v
	}
	return fallback
}
