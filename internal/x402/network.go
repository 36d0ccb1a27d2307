package x402

import (
	"fmt"
	"strings"
)

const (
	caip2EVMPrefix    = "eip155:"
	caip2SolanaPrefix = "solana:"
)

// CAIP-2 identifiers of the Solana clusters (genesis hash prefixes).
const (
	SolanaMainnet = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	SolanaDevnet  = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
	SolanaTestnet = "solana:4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z"
)

// v1 servers may name networks instead of using CAIP-2.
var evmNetworkNames = map[string]int64{
	"ethereum":     1,
	"mainnet":      1,
	"base":         8453,
	"polygon":      137,
	"arbitrum":     42161,
	"optimism":     10,
	"avalanche":    43114,
	"sepolia":      11155111,
	"base-sepolia": 84532,
	"base_sepolia": 84532,
	"basesepolia":  84532,
}

var solanaNetworkNames = map[string]string{
	"solana":              SolanaMainnet,
	"solana-mainnet":      SolanaMainnet,
	"solana-mainnet-beta": SolanaMainnet,
	"mainnet-beta":        SolanaMainnet,
	"solana-devnet":       SolanaDevnet,
	"devnet":              SolanaDevnet,
	"solana-testnet":      SolanaTestnet,
	"testnet":             SolanaTestnet,
}

var solanaRPCURLs = map[string]string{
	SolanaMainnet: "https://api.mainnet-beta.solana.com",
	SolanaDevnet:  "https://api.devnet.solana.com",
	SolanaTestnet: "https://api.testnet.solana.com",
}

// IsEVMNetwork reports whether network is eip155:<id> or a known EVM name.
func IsEVMNetwork(network string) bool {
	if strings.HasPrefix(network, caip2EVMPrefix) && len(network) > len(caip2EVMPrefix) {
		return true
	}
	_, ok := evmNetworkNames[network]
	return ok
}

// ExtractChainID returns the EVM chain ID for a CAIP-2 or named network.
func ExtractChainID(network string) (int64, error) {
	if strings.HasPrefix(network, caip2EVMPrefix) {
		var chainID int64
		if _, err := fmt.Sscanf(network, caip2EVMPrefix+"%d", &chainID); err != nil {
			return 0, fmt.Errorf("invalid chain ID in network %s: %w", network, err)
		}
		return chainID, nil
	}
	if chainID, ok := evmNetworkNames[network]; ok {
		return chainID, nil
	}
	return 0, fmt.Errorf("unknown network: %s", network)
}

// IsSolanaNetwork reports whether network is solana:<ref> or a known Solana name.
func IsSolanaNetwork(network string) bool {
	if strings.HasPrefix(network, caip2SolanaPrefix) && len(network) > len(caip2SolanaPrefix) {
		return true
	}
	_, ok := solanaNetworkNames[network]
	return ok
}

// NormalizeSolanaNetwork maps a Solana network name to CAIP-2.
// Unknown values are returned unchanged.
func NormalizeSolanaNetwork(network string) string {
	if caip2, ok := solanaNetworkNames[network]; ok {
		return caip2
	}
	return network
}

// GetSolanaRPCURL returns the public RPC endpoint for a Solana network,
// falling back to mainnet.
func GetSolanaRPCURL(network string) string {
	if url, ok := solanaRPCURLs[NormalizeSolanaNetwork(network)]; ok {
		return url
	}
	return solanaRPCURLs[SolanaMainnet]
}
