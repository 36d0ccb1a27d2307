// Package plugin provides the payment plugin: the payer's keys, acquired by
// Connect before any request is made and released by Disconnect.
package plugin

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/port402/x402-curl/internal/output"
	"github.com/port402/x402-curl/internal/wallet"
	"github.com/port402/x402-curl/internal/x402"
)

// ErrNotConnected is returned by Signer before Connect succeeds.
var ErrNotConnected = errors.New("payment plugin is not connected")

// ConnectionError reports a failure to connect the payment plugin.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect payment plugin: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Config selects where payer keys come from.
type Config struct {
	KeystorePath      string // EVM Web3 Secret Storage file
	HexKey            string // EVM hex key; PRIVATE_KEY env is also consulted
	SolanaKeypairPath string // Solana keypair; SOLANA_PRIVATE_KEY env is also consulted
	SolanaRPCURL      string // overrides the per-network public endpoint
	AllowStdin        bool   // read an EVM hex key from piped stdin as a last resort
}

// Wallet is the x402 payment plugin.
type Wallet struct {
	cfg Config
	log *output.Logger

	evmKey    *ecdsa.PrivateKey
	solanaKey solana.PrivateKey
	connected bool
}

// NewWallet returns a disconnected plugin.
func NewWallet(cfg Config, log *output.Logger) *Wallet {
	return &Wallet{cfg: cfg, log: log}
}

// Connect loads the configured keys. At least one EVM or Solana key is required.
// Calling Connect on a connected plugin is a no-op.
func (w *Wallet) Connect(ctx context.Context) error {
	if w.connected {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &ConnectionError{Err: err}
	}

	solanaKey, err := wallet.LoadSolanaKey(w.cfg.SolanaKeypairPath)
	switch {
	case errors.Is(err, wallet.ErrNoSolanaKey):
		solanaKey = nil
	case err != nil:
		return &ConnectionError{Err: fmt.Errorf("failed to load Solana keypair: %w", err)}
	}

	var evmKey *ecdsa.PrivateKey
	if w.hasEVMSource() || (solanaKey == nil && w.cfg.AllowStdin) {
		evmKey, err = wallet.LoadPrivateKey(w.cfg.KeystorePath, w.cfg.HexKey, w.cfg.AllowStdin)
		if err != nil {
			return &ConnectionError{Err: fmt.Errorf("failed to load wallet: %w", err)}
		}
	}

	if evmKey == nil && solanaKey == nil {
		return &ConnectionError{Err: errors.New("no payment key configured (use --keystore, --wallet, --solana-keypair, PRIVATE_KEY or SOLANA_PRIVATE_KEY)")}
	}

	w.evmKey = evmKey
	w.solanaKey = solanaKey
	w.connected = true

	if evmKey != nil {
		w.log.Detail("EVM wallet: %s", wallet.GetAddress(evmKey))
	}
	if solanaKey != nil {
		w.log.Detail("Solana wallet: %s", wallet.GetSolanaAddress(solanaKey))
	}
	return nil
}

func (w *Wallet) hasEVMSource() bool {
	return w.cfg.KeystorePath != "" || w.cfg.HexKey != "" || os.Getenv(wallet.PrivateKeyEnv) != ""
}

// Disconnect drops the loaded keys. It is safe to call more than once.
func (w *Wallet) Disconnect() error {
	for i := range w.solanaKey {
		w.solanaKey[i] = 0
	}
	w.solanaKey = nil
	w.evmKey = nil
	w.connected = false
	return nil
}

// Connected reports whether keys are loaded.
func (w *Wallet) Connected() bool {
	return w.connected
}

// Capabilities reports which networks the plugin can pay on.
func (w *Wallet) Capabilities() x402.Capabilities {
	return x402.Capabilities{
		EVM:    w.evmKey != nil,
		Solana: w.solanaKey != nil,
	}
}

// Signer returns a signer for payments on network.
func (w *Wallet) Signer(network string) (wallet.Signer, error) {
	if !w.connected {
		return nil, ErrNotConnected
	}

	switch {
	case x402.IsEVMNetwork(network) && w.evmKey != nil:
		return wallet.NewEVMSigner(w.evmKey), nil
	case x402.IsSolanaNetwork(network) && w.solanaKey != nil:
		rpcURL := w.cfg.SolanaRPCURL
		if rpcURL == "" {
			rpcURL = x402.GetSolanaRPCURL(network)
		}
		return wallet.NewSolanaSigner(w.solanaKey, rpcURL), nil
	default:
		return nil, fmt.Errorf("no key loaded for network %s", network)
	}
}
