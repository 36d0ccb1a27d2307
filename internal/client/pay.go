package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/port402/x402-curl/internal/request"
	"github.com/port402/x402-curl/internal/tokens"
	"github.com/port402/x402-curl/internal/wallet"
	"github.com/port402/x402-curl/internal/x402"
)

// ErrNoPayer is returned when a server asks for payment and no plugin is configured.
var ErrNoPayer = errors.New("payment required but no payment plugin is configured")

// Payment describes the payment made for a response.
type Payment struct {
	Protocol       int
	Network        string
	NetworkName    string
	Asset          string
	PayTo          string
	Amount         string
	AmountHuman    string
	From           string
	Transaction    string
	TransactionURL string
	Receipt        *x402.PaymentResponse
}

// pay answers a 402 response: it selects a requirement within ceiling,
// signs it and re-sends the request carrying the payment.
func (c *Client) pay(ctx context.Context, d *request.Descriptor, ceiling *big.Int, resp *http.Response) (*http.Response, *Payment, error) {
	c.log.Step("Parsing 402 response...")

	parsed, err := parseRequirements(resp)
	if err != nil {
		return nil, nil, &RequestError{Err: fmt.Errorf("failed to parse payment requirements: %w", err)}
	}
	if c.payer == nil {
		return nil, nil, &RequestError{Err: ErrNoPayer}
	}

	option, err := x402.SelectOption(parsed.PaymentRequired, c.payer.Capabilities(), ceiling)
	if err != nil {
		return nil, nil, &RequestError{Err: err}
	}

	signer, err := c.payer.Signer(option.Network)
	if err != nil {
		return nil, nil, &RequestError{Err: err}
	}

	payment := &Payment{
		Protocol:    parsed.ProtocolVersion,
		Network:     option.Network,
		NetworkName: tokens.GetNetworkName(option.Network),
		Asset:       option.Asset,
		PayTo:       option.PayTo,
		Amount:      option.GetAmount(),
		From:        signer.Address(),
	}
	var known bool
	payment.AmountHuman, known = tokens.FormatAmountWithToken(payment.Amount, option.Network, option.Asset)
	if !known {
		c.log.Warn("unknown token %s on %s, paying %s", option.Asset, payment.NetworkName, payment.AmountHuman)
	}
	c.log.Detail("Payment:  %s → %s", payment.AmountHuman, tokens.FormatShortAddress(option.PayTo))
	c.log.Detail("Network:  %s", payment.NetworkName)

	header, err := c.sign(ctx, d, parsed, option, signer)
	if err != nil {
		return nil, nil, &RequestError{Err: err}
	}

	c.log.Step("Sending payment...")
	if c.onPaymentSent != nil {
		c.onPaymentSent()
	}

	paid, err := c.do(ctx, d, header)
	if err != nil {
		return nil, nil, &RequestError{Err: fmt.Errorf("paid request failed: %w", err)}
	}

	receipt, err := x402.ParsePaymentResponse(paid, parsed.ProtocolVersion)
	if err != nil {
		c.log.Warn("ignoring malformed payment response: %v", err)
	}
	if receipt != nil {
		payment.Receipt = receipt
		payment.Transaction = receipt.Transaction
		if receipt.Transaction != "" {
			payment.TransactionURL = tokens.GetExplorerURL(option.Network, receipt.Transaction)
		}
	}

	return paid, payment, nil
}

// parseRequirements reads the 402 body once so it stays available for errors.
func parseRequirements(resp *http.Response) (*x402.ParseResult, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return x402.ParsePaymentRequired(resp)
}

// sign authorizes option and returns the header carrying the payment.
func (c *Client) sign(ctx context.Context, d *request.Descriptor, parsed *x402.ParseResult, option *x402.PaymentRequirement, signer wallet.Signer) (http.Header, error) {
	resource := parsed.PaymentRequired.Resource
	if parsed.ProtocolVersion == x402.ProtocolV1 || resource.URL == "" {
		resource = x402.ResourceInfo{URL: d.URL}
	}

	var payment *x402.Payment
	if x402.IsSolanaNetwork(option.Network) {
		c.log.Step("Building Solana transaction...")

		result, err := signer.Sign(ctx, wallet.SolanaSignParams(option, signer.Address()))
		if err != nil {
			return nil, fmt.Errorf("failed to sign transaction: %w", err)
		}
		payment, err = x402.SolanaPayload(resource, option, result.Signature)
		if err != nil {
			return nil, err
		}
	} else {
		c.log.Step("Signing EIP-3009 authorization...")

		chainID, err := x402.ExtractChainID(option.Network)
		if err != nil {
			return nil, fmt.Errorf("invalid network: %w", err)
		}
		result, err := signer.Sign(ctx, wallet.EVMSignParams(option, signer.Address(), chainID))
		if err != nil {
			return nil, fmt.Errorf("failed to sign authorization: %w", err)
		}
		payment, err = x402.EVMPayload(parsed.ProtocolVersion, resource, option, result.Signature, result.Authorization)
		if err != nil {
			return nil, err
		}
	}

	header := make(http.Header)
	header.Set(payment.HeaderName, payment.HeaderValue)
	return header, nil
}
