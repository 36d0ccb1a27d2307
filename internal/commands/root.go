// Package commands implements the CLI commands using Cobra.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/port402/x402-curl/internal/client"
	"github.com/port402/x402-curl/internal/exchange"
	"github.com/port402/x402-curl/internal/output"
	"github.com/port402/x402-curl/internal/plugin"
	"github.com/port402/x402-curl/internal/request"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global flags
var (
	verbose bool
)

// requestFlags holds the flags that describe the request.
type requestFlags struct {
	data         string
	dataRaw      string
	json         bool
	headers      []string
	form         []string
	maxRedirects int
	method       string
	url          string
	user         string
	maxAmount    string
}

// walletFlags holds the flags that configure the payment plugin.
type walletFlags struct {
	keystorePath      string
	walletKey         string
	solanaKeypairPath string
	solanaRPCURL      string
	timeout           int
}

var (
	reqFlags requestFlags
	payFlags walletFlags
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "x402-curl [url]",
	Short: "curl for x402 payment-gated APIs",
	Long: `x402-curl fetches a URL like curl and pays for it when the server asks.

When the server answers 402 Payment Required, x402-curl signs a payment for
the cheapest option it supports that does not exceed --max-amount (in atomic
token units) and sends the request again with the payment attached. The
response body is written to stdout.

Examples:
  # Fetch a paid resource, paying at most 0.1 USDC (6 decimals)
  x402-curl https://api.example.com/weather --keystore ~/.foundry/keystores/my-wallet

  # POST JSON with a custom header and a lower ceiling
  x402-curl --json -d '{"city":"Paris"}' -H 'X-Trace: 1' -a 5000 https://api.example.com/forecast

  # Send a file as the body
  x402-curl -d @query.json --json https://api.example.com/search

  # Solana payment
  x402-curl https://api.example.com/data --solana-keypair ~/.config/solana/id.json`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRequest,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errInterrupted ends a run cancelled with Ctrl+C. The interrupt handler
// has already told the user what happened.
var errInterrupted = errors.New("interrupted")

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	if errors.Is(err, errInterrupted) {
		return
	}
	fmt.Fprintln(w, exchange.Diagnostic(err))
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed output on stderr")

	f := rootCmd.Flags()
	f.StringVarP(&reqFlags.data, "data", "d", "", "Request body; @path reads the body from a file")
	f.StringVar(&reqFlags.dataRaw, "data-raw", "", "Request body, sent as is (no @path handling)")
	f.BoolVarP(&reqFlags.json, "json", "j", false, "Send the body as application/json")
	f.StringArrayVarP(&reqFlags.headers, "header", "H", nil, "Header \"Name: value\" (repeatable)")
	f.StringArrayVarP(&reqFlags.form, "form", "F", nil, "Form field key=value or key=@path (repeatable)")
	f.IntVar(&reqFlags.maxRedirects, "max-redirs", 0, "Maximum number of redirects to follow")
	f.StringVarP(&reqFlags.method, "request", "X", request.DefaultMethod, "HTTP method")
	f.StringVar(&reqFlags.url, "url", "", "URL to fetch (instead of the positional url)")
	f.StringVarP(&reqFlags.user, "user", "u", "", "Basic auth credentials user:password")
	f.StringVarP(&reqFlags.maxAmount, "max-amount", "a", strconv.Itoa(request.DefaultPaymentCeiling), "Maximum payment in atomic token units")

	f.StringVar(&payFlags.keystorePath, "keystore", "", "Path to EVM keystore file")
	f.StringVar(&payFlags.walletKey, "wallet", "", "EVM hex private key (or use PRIVATE_KEY env)")
	f.StringVar(&payFlags.solanaKeypairPath, "solana-keypair", "", "Path to Solana keypair file (or use SOLANA_PRIVATE_KEY env)")
	f.StringVar(&payFlags.solanaRPCURL, "solana-rpc", "", "Solana RPC endpoint (defaults to the network's public endpoint)")
	f.IntVar(&payFlags.timeout, "timeout", 0, "Request timeout in seconds (0 = none)")
}

// GetVerbose returns the verbose flag value.
func GetVerbose() bool {
	return verbose
}

// options maps parsed flags to builder options. Optional values are only
// set when the flag was given.
func (f *requestFlags) options(changed func(name string) bool, args []string) request.Options {
	opts := request.Options{
		URL:          f.url,
		Method:       f.method,
		JSON:         f.json,
		Headers:      f.headers,
		Form:         f.form,
		MaxRedirects: f.maxRedirects,
		MaxAmount:    f.maxAmount,
		Args:         args,
	}
	if changed("data") {
		opts.Data = stringPtr(f.data)
	}
	if changed("data-raw") {
		opts.DataRaw = stringPtr(f.dataRaw)
	}
	if changed("user") {
		opts.User = stringPtr(f.user)
	}
	return opts
}

func (f *walletFlags) config(allowStdin bool) plugin.Config {
	return plugin.Config{
		KeystorePath:      f.keystorePath,
		HexKey:            f.walletKey,
		SolanaKeypairPath: f.solanaKeypairPath,
		SolanaRPCURL:      f.solanaRPCURL,
		AllowStdin:        allowStdin,
	}
}

func stringPtr(s string) *string {
	return &s
}

func runRequest(cmd *cobra.Command, args []string) error {
	opts := reqFlags.options(cmd.Flags().Changed, args)
	desc, err := request.Build(opts)
	if err != nil {
		return err
	}

	log := output.NewLogger(os.Stderr, GetVerbose())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Set up interrupt handler
	var paymentSent, interrupted atomic.Bool
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			interrupted.Store(true)
			reportInterrupt(paymentSent.Load())
			cancel()
		case <-ctx.Done():
		}
	}()

	wallet := plugin.NewWallet(payFlags.config(!output.IsStdinTTY()), log)
	httpClient := client.New(
		client.WithTimeout(time.Duration(payFlags.timeout)*time.Second),
		client.WithPayer(wallet),
		client.WithLogger(log),
		client.WithPaymentHook(func() { paymentSent.Store(true) }),
	)

	runner := &exchange.Runner{
		Plugin:   wallet,
		Executor: httpClient,
		Stdout:   os.Stdout,
		Log:      log,
	}
	return interruptedOr(runner.Run(ctx, desc), interrupted.Load())
}

// interruptedOr replaces the error of an interrupted run, which is only
// the cancellation echoing back.
func interruptedOr(err error, interrupted bool) error {
	if err != nil && interrupted {
		return errInterrupted
	}
	return err
}

// reportInterrupt tells the user whether a payment may have gone out.
func reportInterrupt(paymentSent bool) {
	fmt.Fprintln(os.Stderr)
	if paymentSent {
		fmt.Fprintln(os.Stderr, "⚠ Warning: Payment signature was already sent to the server.")
		fmt.Fprintln(os.Stderr, "  The payment may still be processed. Check your wallet balance.")
	} else {
		fmt.Fprintln(os.Stderr, "Cancelled by user. No payment was made.")
	}
}
