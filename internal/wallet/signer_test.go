package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/port402/x402-curl/internal/x402"
)

const (
	baseSepoliaUSDC = "0x036cbd53842c5426634e7929541ec2318f3dcf7e"
	testPayTo       = "0x64c2310BD1151266AA2Ad2410447E133b7F84e29"
)

func testEVMSigner(t *testing.T) *EVMSigner {
	t.Helper()
	key, err := LoadFromHex(testPrivateKeyHex)
	require.NoError(t, err)
	s := NewEVMSigner(key)
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return s
}

func evmParams() SignParams {
	return SignParams{
		ChainID:        84532,
		TokenAddress:   baseSepoliaUSDC,
		TokenName:      "USDC",
		TokenVersion:   "2",
		From:           testAddress,
		To:             testPayTo,
		Value:          "1000000",
		TimeoutSeconds: 60,
	}
}

func TestEVMSigner_Sign(t *testing.T) {
	s := testEVMSigner(t)
	params := evmParams()

	result, err := s.Sign(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, x402.Authorization{
		From:        testAddress,
		To:          testPayTo,
		Value:       "1000000",
		ValidAfter:  "0",
		ValidBefore: "1700000060",
		Nonce:       result.Nonce,
	}, result.Authorization)
	assert.Len(t, result.Nonce, 66)
	assert.Len(t, result.Signature, 132)
}

func TestEVMSigner_SignatureRecoversPayer(t *testing.T) {
	s := testEVMSigner(t)
	params := evmParams()

	result, err := s.Sign(context.Background(), params)
	require.NoError(t, err)

	sig, err := hexutil.Decode(result.Signature)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	digest, _, err := apitypes.TypedDataAndHash(authorizationTypedData(params, result.Authorization))
	require.NoError(t, err)

	sig[64] -= 27
	pub, err := crypto.SigToPub(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, testAddress, crypto.PubkeyToAddress(*pub).Hex())
}

func TestEVMSigner_FreshNonces(t *testing.T) {
	s := testEVMSigner(t)

	first, err := s.Sign(context.Background(), evmParams())
	require.NoError(t, err)
	second, err := s.Sign(context.Background(), evmParams())
	require.NoError(t, err)

	assert.NotEqual(t, first.Nonce, second.Nonce)
	assert.NotEqual(t, first.Signature, second.Signature)
}

func TestEVMSigner_ValidBefore(t *testing.T) {
	tests := []struct {
		name        string
		validBefore int64
		timeout     int
		want        string
	}{
		{"from timeout", 0, 120, "1700000120"},
		{"default window", 0, 0, "1700000300"},
		{"explicit", 9999999999, 120, "9999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := evmParams()
			params.ValidBefore = tt.validBefore
			params.TimeoutSeconds = tt.timeout

			result, err := testEVMSigner(t).Sign(context.Background(), params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Authorization.ValidBefore)
		})
	}
}

func TestEVMSigner_Errors(t *testing.T) {
	params := evmParams()
	params.Value = "1.5"
	_, err := testEVMSigner(t).Sign(context.Background(), params)
	assert.ErrorContains(t, err, "invalid payment value")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = testEVMSigner(t).Sign(ctx, evmParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEVMSigner_Address(t *testing.T) {
	assert.Equal(t, testAddress, testEVMSigner(t).Address())
}

func TestEVMSignParams(t *testing.T) {
	tests := []struct {
		name        string
		option      x402.PaymentRequirement
		wantName    string
		wantVersion string
		wantValue   string
	}{
		{
			name: "v2 with domain",
			option: x402.PaymentRequirement{
				Amount: "1000000",
				Extra:  map[string]interface{}{"name": "USD Coin", "version": "3"},
			},
			wantName: "USD Coin", wantVersion: "3", wantValue: "1000000",
		},
		{
			name:     "defaults",
			option:   x402.PaymentRequirement{Amount: "1000"},
			wantName: "USDC", wantVersion: "2", wantValue: "1000",
		},
		{
			name:     "v1 amount",
			option:   x402.PaymentRequirement{MaxAmountRequired: "2000000"},
			wantName: "USDC", wantVersion: "2", wantValue: "2000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			option := tt.option
			option.Asset = baseSepoliaUSDC
			option.PayTo = testPayTo
			option.MaxTimeoutSeconds = 90

			params := EVMSignParams(&option, testAddress, 84532)

			assert.Equal(t, int64(84532), params.ChainID)
			assert.Equal(t, baseSepoliaUSDC, params.TokenAddress)
			assert.Equal(t, testAddress, params.From)
			assert.Equal(t, testPayTo, params.To)
			assert.Equal(t, 90, params.TimeoutSeconds)
			assert.Equal(t, tt.wantName, params.TokenName)
			assert.Equal(t, tt.wantVersion, params.TokenVersion)
			assert.Equal(t, tt.wantValue, params.Value)
		})
	}
}
