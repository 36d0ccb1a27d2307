package x402

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNoSupportedOption is returned when no requirement matches the loaded keys.
var ErrNoSupportedOption = errors.New("no supported payment options found")

// CeilingError is returned when every usable requirement costs more than the payer allows.
type CeilingError struct {
	Amount  string
	Ceiling string
}

func (e *CeilingError) Error() string {
	return fmt.Sprintf("payment amount %s exceeds maximum %s", e.Amount, e.Ceiling)
}

// Capabilities describes which networks the payer holds keys for.
type Capabilities struct {
	EVM    bool
	Solana bool
}

// SelectOption picks the requirement to pay.
//
// Only "exact" requirements on a network the payer can sign for are
// considered. EVM options are preferred when an EVM key is loaded.
// Within the preferred family the first option whose amount does not
// exceed ceiling wins.
func SelectOption(pr *PaymentRequired, caps Capabilities, ceiling *big.Int) (*PaymentRequirement, error) {
	var evm, svm []*PaymentRequirement
	for i := range pr.Accepts {
		opt := &pr.Accepts[i]
		if opt.Scheme != "" && opt.Scheme != "exact" {
			continue
		}
		switch {
		case caps.EVM && IsEVMNetwork(opt.Network):
			evm = append(evm, opt)
		case caps.Solana && IsSolanaNetwork(opt.Network):
			svm = append(svm, opt)
		}
	}

	candidates := append(evm, svm...)
	if len(candidates) == 0 {
		return nil, unsupportedError(pr, caps)
	}

	var cheapest *PaymentRequirement
	var cheapestAmount *big.Int
	for _, opt := range candidates {
		amount, ok := new(big.Int).SetString(opt.GetAmount(), 10)
		if !ok || amount.Sign() < 0 {
			continue
		}
		if amount.Cmp(ceiling) <= 0 {
			return opt, nil
		}
		if cheapestAmount == nil || amount.Cmp(cheapestAmount) < 0 {
			cheapest, cheapestAmount = opt, amount
		}
	}

	if cheapest == nil {
		return nil, fmt.Errorf("%w: no valid amount in accepts[]", ErrNoSupportedOption)
	}
	return nil, &CeilingError{Amount: cheapest.GetAmount(), Ceiling: ceiling.String()}
}

// unsupportedError explains which key the server would have accepted.
func unsupportedError(pr *PaymentRequired, caps Capabilities) error {
	var hasEVM, hasSolana bool
	for _, opt := range pr.Accepts {
		hasEVM = hasEVM || IsEVMNetwork(opt.Network)
		hasSolana = hasSolana || IsSolanaNetwork(opt.Network)
	}

	switch {
	case hasSolana && !caps.Solana:
		return fmt.Errorf("%w: endpoint accepts Solana payments (use --solana-keypair)", ErrNoSupportedOption)
	case hasEVM && !caps.EVM:
		return fmt.Errorf("%w: endpoint accepts EVM payments (use --keystore or --wallet)", ErrNoSupportedOption)
	default:
		return ErrNoSupportedOption
	}
}
