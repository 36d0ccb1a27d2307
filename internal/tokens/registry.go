// Package tokens provides network and token metadata for display:
// human-readable names, amount formatting and block explorer links.
package tokens

import (
	"fmt"
	"sort"
	"strings"
)

// TokenInfo describes a known token.
type TokenInfo struct {
	Symbol   string
	Decimals int
	Name     string
}

// Network is a supported payment network.
type Network struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Chain     string   `json:"chain"` // "evm" or "solana"
	IsTestnet bool     `json:"testnet"`
	Aliases   []string `json:"aliases,omitempty"`
	Explorer  string   `json:"explorer,omitempty"`
	USDC      string   `json:"usdc,omitempty"`
	Token     string   `json:"token,omitempty"`

	// explorerSuffix is appended to explorer links, e.g. a cluster parameter.
	explorerSuffix string
}

var usdcMainnet = TokenInfo{Symbol: "USDC", Decimals: 6, Name: "USD Coin"}
var usdcTestnet = TokenInfo{Symbol: "USDC", Decimals: 6, Name: "USDC (Testnet)"}

var networks = []Network{
	{ID: "eip155:1", Name: "Ethereum Mainnet", Chain: "evm", Aliases: []string{"ethereum", "mainnet"},
		Explorer: "https://etherscan.io", USDC: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
	{ID: "eip155:8453", Name: "Base Mainnet", Chain: "evm", Aliases: []string{"base"},
		Explorer: "https://basescan.org", USDC: "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"},
	{ID: "eip155:84532", Name: "Base Sepolia", Chain: "evm", IsTestnet: true, Aliases: []string{"base-sepolia", "base_sepolia", "basesepolia"},
		Explorer: "https://sepolia.basescan.org", USDC: "0x036cbd53842c5426634e7929541ec2318f3dcf7e"},
	{ID: "eip155:11155111", Name: "Ethereum Sepolia", Chain: "evm", IsTestnet: true, Aliases: []string{"sepolia"},
		Explorer: "https://sepolia.etherscan.io", USDC: "0x1c7d4b196cb0c7b01d743fbc6116a902379c7238"},
	{ID: "eip155:137", Name: "Polygon Mainnet", Chain: "evm", Aliases: []string{"polygon"},
		Explorer: "https://polygonscan.com"},
	{ID: "eip155:42161", Name: "Arbitrum One", Chain: "evm", Aliases: []string{"arbitrum"},
		Explorer: "https://arbiscan.io"},
	{ID: "eip155:10", Name: "Optimism", Chain: "evm", Aliases: []string{"optimism"},
		Explorer: "https://optimistic.etherscan.io"},
	{ID: "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp", Name: "Solana Mainnet", Chain: "solana",
		Aliases:  []string{"solana", "solana-mainnet", "solana-mainnet-beta", "mainnet-beta"},
		Explorer: "https://explorer.solana.com", USDC: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
	{ID: "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1", Name: "Solana Devnet", Chain: "solana", IsTestnet: true,
		Aliases:  []string{"solana-devnet", "devnet"},
		Explorer: "https://explorer.solana.com", explorerSuffix: "?cluster=devnet",
		USDC: "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"},
	{ID: "solana:4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z", Name: "Solana Testnet", Chain: "solana", IsTestnet: true,
		Aliases:  []string{"solana-testnet", "testnet"},
		Explorer: "https://explorer.solana.com", explorerSuffix: "?cluster=testnet"},
}

// byAlias indexes networks by ID and every alias.
var byAlias = func() map[string]*Network {
	m := make(map[string]*Network)
	for i := range networks {
		n := &networks[i]
		if n.USDC != "" {
			n.Token = "USDC"
		}
		m[n.ID] = n
		for _, a := range n.Aliases {
			m[a] = n
		}
	}
	return m
}()

// LookupNetwork finds a network by CAIP-2 ID or alias.
func LookupNetwork(network string) *Network {
	return byAlias[network]
}

// ListNetworks returns the supported networks, EVM first, ordered by name within a chain.
func ListNetworks() []Network {
	out := make([]Network, len(networks))
	copy(out, networks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Chain != out[j].Chain {
			return out[i].Chain == "evm"
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GetTokenInfo returns metadata for a known token, or nil.
func GetTokenInfo(network, asset string) *TokenInfo {
	n := LookupNetwork(network)
	if n == nil || n.USDC == "" || !strings.EqualFold(n.USDC, asset) {
		return nil
	}
	info := usdcMainnet
	if n.IsTestnet {
		info = usdcTestnet
	}
	return &info
}

// GetNetworkName returns a human-readable network name, or the identifier itself.
func GetNetworkName(network string) string {
	if n := LookupNetwork(network); n != nil {
		return n.Name
	}
	return network
}

// IsTestnet reports whether network is a known testnet.
func IsTestnet(network string) bool {
	n := LookupNetwork(network)
	return n != nil && n.IsTestnet
}

// GetExplorerURL returns the block explorer link for a transaction,
// or "" for networks without a known explorer.
func GetExplorerURL(network, txHash string) string {
	n := LookupNetwork(network)
	if n == nil || n.Explorer == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s%s", n.Explorer, txHash, n.explorerSuffix)
}

// GetExplorerHost returns the explorer host name for display.
func GetExplorerHost(network string) string {
	n := LookupNetwork(network)
	if n == nil || n.Explorer == "" {
		return "-"
	}
	return strings.TrimPrefix(n.Explorer, "https://")
}
