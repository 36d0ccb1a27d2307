// Package x402 implements the client side of the x402 payment protocol:
// reading 402 payment requirements and encoding signed payments.
package x402

// PaymentRequired is the decoded body (v1) or Payment-Required header (v2) of a 402 response.
type PaymentRequired struct {
	X402Version int                  `json:"x402Version"`
	Error       string               `json:"error,omitempty"`
	Resource    ResourceInfo         `json:"resource,omitempty"`
	Accepts     []PaymentRequirement `json:"accepts"`
}

// ResourceInfo describes the paid resource. Only v2 carries it at the top level.
type ResourceInfo struct {
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// PaymentRequirement is one entry of accepts[].
type PaymentRequirement struct {
	Scheme            string                 `json:"scheme"`
	Network           string                 `json:"network"`
	Amount            string                 `json:"amount,omitempty"`            // v2
	MaxAmountRequired string                 `json:"maxAmountRequired,omitempty"` // v1
	Asset             string                 `json:"asset"`
	PayTo             string                 `json:"payTo"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`

	// v1 only
	ResourcePath string `json:"resource,omitempty"`
	Description  string `json:"description,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
}

// GetAmount returns the required amount in atomic units for either protocol version.
func (p *PaymentRequirement) GetAmount() string {
	if p.Amount != "" {
		return p.Amount
	}
	return p.MaxAmountRequired
}

// GetExtraString reads a string from Extra, or "" when absent or not a string.
func (p *PaymentRequirement) GetExtraString(key string) string {
	s, _ := p.Extra[key].(string)
	return s
}

// Authorization contains EIP-3009 TransferWithAuthorization parameters.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter"`
	ValidBefore string `json:"validBefore"`
	Nonce       string `json:"nonce"`
}

// ExactEvmPayload is the scheme payload for EVM "exact" payments.
type ExactEvmPayload struct {
	Signature     string        `json:"signature"`
	Authorization Authorization `json:"authorization"`
}

// ExactSvmPayload is the scheme payload for Solana "exact" payments:
// a base64 transaction signed by the payer and awaiting the fee payer.
type ExactSvmPayload struct {
	Transaction string `json:"transaction"`
}

// PaymentPayloadV2 is sent base64 encoded in the Payment-Signature header.
type PaymentPayloadV2 struct {
	X402Version int            `json:"x402Version"`
	Resource    ResourceInfo   `json:"resource"`
	Accepted    AcceptedOption `json:"accepted"`
	Payload     interface{}    `json:"payload"`
}

// AcceptedOption echoes the requirement the payment was made for.
type AcceptedOption struct {
	Scheme            string                 `json:"scheme"`
	Network           string                 `json:"network"`
	Amount            string                 `json:"amount,omitempty"`
	Asset             string                 `json:"asset"`
	PayTo             string                 `json:"payTo"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// PaymentPayloadV1 is sent base64 encoded in the X-Payment header.
type PaymentPayloadV1 struct {
	X402Version int         `json:"x402Version"`
	Scheme      string      `json:"scheme"`
	Network     string      `json:"network"`
	Payload     interface{} `json:"payload"`
}

// PaymentResponse is the settlement receipt returned with the paid response.
type PaymentResponse struct {
	Success     bool   `json:"success"`
	Transaction string `json:"transaction,omitempty"`
	Network     string `json:"network,omitempty"`
	Payer       string `json:"payer,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Protocol versions.
const (
	ProtocolV1 = 1
	ProtocolV2 = 2
)

// Header names.
const (
	HeaderPaymentRequired  = "Payment-Required"
	HeaderPaymentSignature = "Payment-Signature"
	HeaderPaymentResponse  = "Payment-Response"

	HeaderXPayment         = "X-Payment"
	HeaderXPaymentResponse = "X-Payment-Response"
)
