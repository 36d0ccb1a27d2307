package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Payment is a signed payment ready to be attached to the retried request.
type Payment struct {
	HeaderName  string
	HeaderValue string
}

// accepted copies the requirement into the v2 accepted echo.
func accepted(option *PaymentRequirement) AcceptedOption {
	return AcceptedOption{
		Scheme:            option.Scheme,
		Network:           option.Network,
		Amount:            option.GetAmount(),
		Asset:             option.Asset,
		PayTo:             option.PayTo,
		MaxTimeoutSeconds: option.MaxTimeoutSeconds,
		Extra:             option.Extra,
	}
}

// EVMPayload builds the payment for an EIP-3009 signature.
// v1 servers get X-Payment, v2 servers get Payment-Signature.
func EVMPayload(protocolVersion int, resource ResourceInfo, option *PaymentRequirement, signature string, auth Authorization) (*Payment, error) {
	scheme := ExactEvmPayload{Signature: signature, Authorization: auth}

	if protocolVersion == ProtocolV1 {
		return encode(HeaderXPayment, &PaymentPayloadV1{
			X402Version: ProtocolV1,
			Scheme:      option.Scheme,
			Network:     option.Network,
			Payload:     scheme,
		})
	}

	return encode(HeaderPaymentSignature, &PaymentPayloadV2{
		X402Version: ProtocolV2,
		Resource:    resource,
		Accepted:    accepted(option),
		Payload:     scheme,
	})
}

// SolanaPayload builds the payment for a partially signed Solana transaction.
// Solana payments only exist in v2.
func SolanaPayload(resource ResourceInfo, option *PaymentRequirement, transaction string) (*Payment, error) {
	return encode(HeaderPaymentSignature, &PaymentPayloadV2{
		X402Version: ProtocolV2,
		Resource:    resource,
		Accepted:    accepted(option),
		Payload:     ExactSvmPayload{Transaction: transaction},
	})
}

func encode(headerName string, payload interface{}) (*Payment, error) {
	value, err := EncodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment payload: %w", err)
	}
	return &Payment{HeaderName: headerName, HeaderValue: value}, nil
}

// EncodePayload serializes a payload to base64-encoded JSON.
func EncodePayload(payload interface{}) (string, error) {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(jsonBytes), nil
}
