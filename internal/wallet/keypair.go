package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// SolanaPrivateKeyEnv holds a base58 Solana private key.
const SolanaPrivateKeyEnv = "SOLANA_PRIVATE_KEY"

// ErrNoSolanaKey is returned by LoadSolanaKey when no source is configured.
var ErrNoSolanaKey = errors.New("no Solana key source provided")

// LoadSolanaKey loads the Solana payer key from path, or from
// SOLANA_PRIVATE_KEY when path is empty.
func LoadSolanaKey(path string) (solana.PrivateKey, error) {
	if path != "" {
		return LoadSolanaKeypair(path)
	}
	if envKey := os.Getenv(SolanaPrivateKeyEnv); envKey != "" {
		key, err := LoadSolanaKeypairFromBase58(envKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", SolanaPrivateKeyEnv, err)
		}
		return key, nil
	}
	return nil, ErrNoSolanaKey
}

// LoadSolanaKeypair reads a keypair file in Solana CLI format (a JSON byte
// array) or as a base58 string.
func LoadSolanaKeypair(path string) (solana.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}

	var raw []byte
	if json.Unmarshal(data, &raw) == nil {
		return newSolanaKey(raw)
	}

	raw, err = base58.Decode(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, errors.New("invalid keypair format: not JSON array or base58 encoded")
	}
	return newSolanaKey(raw)
}

// LoadSolanaKeypairFromBase58 parses a base58 keypair.
func LoadSolanaKeypairFromBase58(encoded string) (solana.PrivateKey, error) {
	raw, err := base58.Decode(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("invalid base58 private key: %w", err)
	}
	return newSolanaKey(raw)
}

// newSolanaKey accepts a 64 byte seed+public key pair whose halves agree.
func newSolanaKey(raw []byte) (solana.PrivateKey, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid keypair length: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return nil, errors.New("invalid keypair: public key does not match secret key")
	}
	return solana.PrivateKey(raw), nil
}

// GetSolanaAddress returns the base58-encoded public key for a Solana private key.
func GetSolanaAddress(privateKey solana.PrivateKey) string {
	return privateKey.PublicKey().String()
}
