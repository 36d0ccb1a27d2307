// Package wallet loads payer keys and signs x402 payment authorizations.
package wallet

import (
	"bufio"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/term"
)

// Environment variables consulted when loading keys.
const (
	PrivateKeyEnv       = "PRIVATE_KEY"
	KeystorePasswordEnv = "KEYSTORE_PASSWORD"
)

// ErrNoEVMKey is returned by LoadPrivateKey when no source is configured.
var ErrNoEVMKey = errors.New("no private key source provided (use --keystore, --wallet, PRIVATE_KEY env, or pipe to stdin)")

// LoadPrivateKey loads the EVM payer key from the first configured source:
// keystore file, hex key, PRIVATE_KEY, then piped stdin when fromStdin is set.
func LoadPrivateKey(keystorePath, hexKey string, fromStdin bool) (*ecdsa.PrivateKey, error) {
	envKey := os.Getenv(PrivateKeyEnv)

	switch {
	case keystorePath != "":
		return LoadFromKeystore(keystorePath)
	case hexKey != "":
		return LoadFromHex(hexKey)
	case envKey != "":
		key, err := LoadFromHex(envKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", PrivateKeyEnv, err)
		}
		return key, nil
	case fromStdin:
		return LoadFromReader(os.Stdin)
	default:
		return nil, ErrNoEVMKey
	}
}

// LoadFromKeystore decrypts a Web3 Secret Storage file. The password comes
// from KEYSTORE_PASSWORD, or an interactive prompt.
func LoadFromKeystore(path string) (*ecdsa.PrivateKey, error) {
	encrypted, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore file: %w", err)
	}

	password, err := keystorePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	key, err := keystore.DecryptKey(encrypted, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore (wrong password?): %w", err)
	}
	return key.PrivateKey, nil
}

func keystorePassword() (string, error) {
	if password, ok := os.LookupEnv(KeystorePasswordEnv); ok {
		return password, nil
	}
	return PromptPassword("Enter keystore password: ")
}

// LoadFromHex parses a hex private key, with or without 0x.
func LoadFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")

	keyBytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex private key: %w", err)
	}

	key, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// LoadFromReader reads a hex private key from the first line of r.
func LoadFromReader(r io.Reader) (*ecdsa.PrivateKey, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, errors.New("no private key piped to stdin")
	}

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read private key from stdin: %w", err)
		}
		return nil, errors.New("failed to read private key from stdin: empty input")
	}
	return LoadFromHex(scanner.Text())
}

// PromptPassword reads a password from the terminal without echo.
func PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

// GetAddress returns the checksummed Ethereum address for a private key.
func GetAddress(privateKey *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
}
