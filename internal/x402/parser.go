package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ParseResult holds the requirements of a 402 response and how they were sent.
type ParseResult struct {
	PaymentRequired *PaymentRequired
	ProtocolVersion int
	RawHeader       string // v2 only
	RawBody         []byte
}

// ParsePaymentRequired reads the payment requirements from a 402 response.
// A Payment-Required header means v2 (base64 JSON); otherwise the body is v1 JSON.
// The response body is consumed.
func ParsePaymentRequired(resp *http.Response) (*ParseResult, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result := &ParseResult{RawBody: body}
	var pr PaymentRequired

	if header := resp.Header.Get(HeaderPaymentRequired); header != "" {
		result.ProtocolVersion = ProtocolV2
		result.RawHeader = header

		if err := decodeHeader(HeaderPaymentRequired, header, &pr); err != nil {
			return nil, err
		}
	} else {
		result.ProtocolVersion = ProtocolV1

		if len(body) == 0 {
			return nil, fmt.Errorf("empty response body (expected JSON payment requirements)")
		}
		if err := json.Unmarshal(body, &pr); err != nil {
			return nil, fmt.Errorf("invalid JSON in response body: %w", err)
		}
	}

	if len(pr.Accepts) == 0 {
		return nil, fmt.Errorf("no payment options in accepts[] array")
	}
	result.PaymentRequired = &pr

	return result, nil
}

// ParsePaymentResponse reads the settlement receipt of a paid response.
// It returns nil, nil when the server sent none.
func ParsePaymentResponse(resp *http.Response, protocolVersion int) (*PaymentResponse, error) {
	headerName := HeaderPaymentResponse
	if protocolVersion == ProtocolV1 {
		headerName = HeaderXPaymentResponse
	}

	header := resp.Header.Get(headerName)
	if header == "" {
		return nil, nil
	}

	var pr PaymentResponse
	if err := decodeHeader(headerName, header, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

func decodeHeader(name, value string, v interface{}) error {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return fmt.Errorf("invalid base64 in %s header: %w", name, err)
	}
	if err := json.Unmarshal(decoded, v); err != nil {
		return fmt.Errorf("invalid JSON in %s header: %w", name, err)
	}
	return nil
}
