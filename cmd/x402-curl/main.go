// x402-curl is a curl-like HTTP client that pays for x402 payment-gated APIs.
//
// When a server answers 402 Payment Required, x402-curl signs a payment
// (EIP-3009 on EVM chains, an SPL transfer on Solana) for at most the
// --max-amount ceiling and repeats the request with the payment attached.
//
// Usage:
//
//	x402-curl [flags] <url>        Fetch a URL, paying if asked
//	x402-curl networks             List supported networks
//	x402-curl version              Show version info
//
// For more information, visit: https://github.com/port402/x402-curl
package main

import "github.com/port402/x402-curl/internal/commands"

func main() {
	commands.Execute()
}
