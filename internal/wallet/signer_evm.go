package wallet

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/port402/x402-curl/internal/x402"
)

// transferWithAuthorization is the EIP-3009 message type.
var transferWithAuthorization = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"TransferWithAuthorization": {
		{Name: "from", Type: "address"},
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "validAfter", Type: "uint256"},
		{Name: "validBefore", Type: "uint256"},
		{Name: "nonce", Type: "bytes32"},
	},
}

// EVMSigner signs EIP-3009 TransferWithAuthorization messages. The
// facilitator submits the authorization on-chain and pays the gas.
type EVMSigner struct {
	key *ecdsa.PrivateKey
	now func() time.Time
}

// NewEVMSigner creates a signer for key.
func NewEVMSigner(key *ecdsa.PrivateKey) *EVMSigner {
	return &EVMSigner{key: key, now: time.Now}
}

// Sign returns the EIP-712 signature of a fresh authorization with a random nonce.
func (s *EVMSigner) Sign(ctx context.Context, params SignParams) (*SignResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, ok := new(big.Int).SetString(params.Value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid payment value: %q", params.Value)
	}

	var nonce common.Hash
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	auth := x402.Authorization{
		From:        params.From,
		To:          params.To,
		Value:       value.String(),
		ValidAfter:  strconv.FormatInt(params.ValidAfter, 10),
		ValidBefore: strconv.FormatInt(s.validBefore(params), 10),
		Nonce:       nonce.Hex(),
	}

	digest, _, err := apitypes.TypedDataAndHash(authorizationTypedData(params, auth))
	if err != nil {
		return nil, fmt.Errorf("failed to hash authorization: %w", err)
	}

	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return &SignResult{
		Signature:     hexutil.Encode(sig),
		Authorization: auth,
		Nonce:         auth.Nonce,
	}, nil
}

func (s *EVMSigner) validBefore(params SignParams) int64 {
	if params.ValidBefore != 0 {
		return params.ValidBefore
	}
	timeout := params.TimeoutSeconds
	if timeout == 0 {
		timeout = defaultValiditySecs
	}
	return s.now().Unix() + int64(timeout)
}

// Address returns the checksummed address of the signer.
func (s *EVMSigner) Address() string {
	return GetAddress(s.key)
}

func authorizationTypedData(params SignParams, auth x402.Authorization) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       transferWithAuthorization,
		PrimaryType: "TransferWithAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              params.TokenName,
			Version:           params.TokenVersion,
			ChainId:           math.NewHexOrDecimal256(params.ChainID),
			VerifyingContract: params.TokenAddress,
		},
		Message: apitypes.TypedDataMessage{
			"from":        auth.From,
			"to":          auth.To,
			"value":       auth.Value,
			"validAfter":  auth.ValidAfter,
			"validBefore": auth.ValidBefore,
			"nonce":       auth.Nonce,
		},
	}
}
