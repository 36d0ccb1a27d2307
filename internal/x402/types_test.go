package x402

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentRequirement_GetAmount(t *testing.T) {
	tests := []struct {
		name string
		req  PaymentRequirement
		want string
	}{
		{"v2 amount", PaymentRequirement{Amount: "1000000"}, "1000000"},
		{"v1 maxAmountRequired", PaymentRequirement{MaxAmountRequired: "500000"}, "500000"},
		{"amount preferred", PaymentRequirement{Amount: "1000000", MaxAmountRequired: "500000"}, "1000000"},
		{"neither", PaymentRequirement{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.GetAmount())
		})
	}
}

func TestPaymentRequirement_GetExtraString(t *testing.T) {
	req := PaymentRequirement{Extra: map[string]interface{}{
		"name":     "USDC",
		"feePayer": "facilitator",
		"decimals": 6,
	}}

	assert.Equal(t, "USDC", req.GetExtraString("name"))
	assert.Equal(t, "facilitator", req.GetExtraString("feePayer"))
	assert.Empty(t, req.GetExtraString("decimals"), "non-string values are ignored")
	assert.Empty(t, req.GetExtraString("version"))
	assert.Empty(t, (&PaymentRequirement{}).GetExtraString("name"))
}
