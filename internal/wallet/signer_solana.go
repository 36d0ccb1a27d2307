package wallet

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/port402/x402-curl/internal/x402"
)

const (
	// rpcTimeout bounds the chain lookups of one Sign call.
	rpcTimeout = 15 * time.Second

	// SPL transfers need about 50k units; the limit leaves room for ATA creation.
	computeUnitLimit uint32 = 200_000

	// In microLamports. Facilitators reject prices above 5 lamports per unit.
	computeUnitPrice uint64 = 1
)

// solanaChain is the chain state a transfer is built against.
type solanaChain interface {
	MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
}

// rpcChain reads chain state over JSON-RPC.
type rpcChain struct {
	client *rpc.Client
}

func (c *rpcChain) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	info, err := c.client.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch mint account: %w", err)
	}
	if info == nil || info.Value == nil {
		return 0, errors.New("mint account not found")
	}

	var m token.Mint
	if err := m.Decode(info.Value.Data.GetBinary()); err != nil {
		return 0, fmt.Errorf("failed to decode mint data: %w", err)
	}
	return m.Decimals, nil
}

func (c *rpcChain) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := c.client.GetAccountInfo(ctx, account)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info != nil && info.Value != nil, nil
}

func (c *rpcChain) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	recent, err := c.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, 0, err
	}
	return recent.Value.Blockhash, recent.Value.LastValidBlockHeight, nil
}

// SolanaSigner pays with SPL token transfers. The transactions it builds are
// signed by the token owner only; the facilitator adds the fee payer signature.
type SolanaSigner struct {
	privateKey solana.PrivateKey
	chain      solanaChain
}

// NewSolanaSigner creates a signer that reads chain state from rpcURL.
func NewSolanaSigner(privateKey solana.PrivateKey, rpcURL string) *SolanaSigner {
	return &SolanaSigner{
		privateKey: privateKey,
		chain:      &rpcChain{client: rpc.New(rpcURL)},
	}
}

// transfer is a resolved SPL payment.
type transfer struct {
	owner, feePayer, mint, recipient solana.PublicKey
	source, destination              solana.PublicKey
	amount                           uint64
	decimals                         uint8
	createDestination                bool
}

// Sign builds and partially signs the payment transaction. Its instructions are
// SetComputeUnitLimit, SetComputeUnitPrice and TransferChecked, preceded by a
// CreateAssociatedTokenAccount when the recipient has no token account yet.
// SignResult.Signature carries the base64 transaction.
func (s *SolanaSigner) Sign(ctx context.Context, params SignParams) (*SignResult, error) {
	ctx, cancel := context.WithTimeout(ctx, rpcTimeout)
	defer cancel()

	t, err := s.resolve(ctx, params)
	if err != nil {
		return nil, err
	}

	blockhash, lastValidHeight, err := s.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(t.instructions(), blockhash, solana.TransactionPayer(t.feePayer))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	if err := partialSign(tx, s.privateKey); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	encoded, err := tx.ToBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return &SignResult{
		Signature: encoded,
		Authorization: x402.Authorization{
			From:        params.From,
			To:          params.To,
			Value:       params.Value,
			ValidAfter:  "0",
			ValidBefore: strconv.FormatUint(lastValidHeight, 10),
			Nonce:       base64.StdEncoding.EncodeToString(blockhash[:]),
		},
		Nonce: blockhash.String(),
	}, nil
}

func (s *SolanaSigner) resolve(ctx context.Context, params SignParams) (*transfer, error) {
	if params.FeePayer == "" {
		return nil, errors.New("payment requirement has no feePayer")
	}

	t := &transfer{owner: s.privateKey.PublicKey()}
	var err error

	if t.recipient, err = solana.PublicKeyFromBase58(params.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if t.mint, err = solana.PublicKeyFromBase58(params.TokenAddress); err != nil {
		return nil, fmt.Errorf("invalid token mint address: %w", err)
	}
	if t.feePayer, err = solana.PublicKeyFromBase58(params.FeePayer); err != nil {
		return nil, fmt.Errorf("invalid fee payer address: %w", err)
	}
	if t.amount, err = strconv.ParseUint(params.Value, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	if t.decimals, err = s.chain.MintDecimals(ctx, t.mint); err != nil {
		return nil, fmt.Errorf("failed to get token decimals: %w", err)
	}

	if t.source, _, err = solana.FindAssociatedTokenAddress(t.owner, t.mint); err != nil {
		return nil, fmt.Errorf("failed to find source token account: %w", err)
	}
	if t.destination, _, err = solana.FindAssociatedTokenAddress(t.recipient, t.mint); err != nil {
		return nil, fmt.Errorf("failed to find destination token account: %w", err)
	}

	exists, err := s.chain.AccountExists(ctx, t.destination)
	if err != nil {
		return nil, fmt.Errorf("failed to check destination token account: %w", err)
	}
	t.createDestination = !exists

	return t, nil
}

func (t *transfer) instructions() []solana.Instruction {
	var out []solana.Instruction
	if t.createDestination {
		// The fee payer funds the new account.
		out = append(out, associatedtokenaccount.NewCreateInstruction(t.feePayer, t.recipient, t.mint).Build())
	}
	return append(out,
		computebudget.NewSetComputeUnitLimitInstruction(computeUnitLimit).Build(),
		computebudget.NewSetComputeUnitPriceInstruction(computeUnitPrice).Build(),
		token.NewTransferCheckedInstruction(
			t.amount,
			t.decimals,
			t.source,
			t.mint,
			t.destination,
			t.owner,
			nil,
		).Build(),
	)
}

// partialSign adds key's signature and leaves the other signer slots empty.
func partialSign(tx *solana.Transaction, key solana.PrivateKey) error {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return err
	}
	sig, err := key.Sign(msg)
	if err != nil {
		return err
	}
	idx, err := tx.GetAccountIndex(key.PublicKey())
	if err != nil {
		return err
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if int(idx) >= required {
		return fmt.Errorf("%s is not a signer of the transaction", key.PublicKey())
	}
	if len(tx.Signatures) < required {
		sigs := make([]solana.Signature, required)
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs
	}
	tx.Signatures[idx] = sig
	return nil
}

// Address returns the base58-encoded public key for this signer.
func (s *SolanaSigner) Address() string {
	return s.privateKey.PublicKey().String()
}
