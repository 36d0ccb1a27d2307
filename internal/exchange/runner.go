// Package exchange runs one payment-authorized request: it connects the
// payment plugin, hands the descriptor to the executor, prints the response
// and always disconnects the plugin.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/port402/x402-curl/internal/client"
	"github.com/port402/x402-curl/internal/output"
	"github.com/port402/x402-curl/internal/plugin"
	"github.com/port402/x402-curl/internal/request"
)

// Plugin is the payment transport lifecycle.
type Plugin interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Connected() bool
}

// Executor performs a request, paying up to ceiling when asked.
type Executor interface {
	Send(ctx context.Context, d *request.Descriptor, ceiling *big.Int) (*client.Response, error)
}

// State is the stage an exchange has reached.
type State int

const (
	StateStart State = iota
	StatePluginConnecting
	StatePluginConnected
	StateRequestInFlight
	StateSuccess
	StateFailed
)

var stateNames = [...]string{
	StateStart:            "START",
	StatePluginConnecting: "PLUGIN_CONNECTING",
	StatePluginConnected:  "PLUGIN_CONNECTED",
	StateRequestInFlight:  "REQUEST_IN_FLIGHT",
	StateSuccess:          "SUCCESS",
	StateFailed:           "FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Runner drives a single exchange.
type Runner struct {
	Plugin   Plugin
	Executor Executor
	Stdout   io.Writer
	Log      *output.Logger

	state State
}

// State returns the stage the last Run reached.
func (r *Runner) State() State {
	return r.state
}

func (r *Runner) enter(s State) {
	r.state = s
	r.Log.Detail("[%s]", s)
}

// Run executes d. On success the response text and a newline are written to
// Stdout. The plugin is disconnected on every path once connecting started.
func (r *Runner) Run(ctx context.Context, d *request.Descriptor) (err error) {
	r.enter(StateStart)
	defer func() {
		if err != nil {
			r.enter(StateFailed)
		}
	}()

	r.Log.Step("Connecting payment plugin...")
	r.enter(StatePluginConnecting)
	defer func() {
		if derr := r.Plugin.Disconnect(); derr != nil {
			r.Log.Warn("failed to disconnect payment plugin: %v", derr)
		}
	}()

	if err := r.Plugin.Connect(ctx); err != nil {
		var connErr *plugin.ConnectionError
		if !errors.As(err, &connErr) {
			err = &plugin.ConnectionError{Err: err}
		}
		return err
	}
	if !r.Plugin.Connected() {
		return &plugin.ConnectionError{Err: errors.New("plugin reported no connection")}
	}
	r.enter(StatePluginConnected)

	r.enter(StateRequestInFlight)
	resp, err := r.Executor.Send(ctx, d, d.PaymentCeiling)
	if err != nil {
		return err
	}

	r.enter(StateSuccess)
	r.summarize(resp)

	if _, err := fmt.Fprintln(r.Stdout, resp.Text); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (r *Runner) summarize(resp *client.Response) {
	if !r.Log.Verbose() {
		return
	}
	r.Log.Step("Response: %s (%dms)", resp.StatusText, resp.Latency.Milliseconds())

	p := resp.Payment
	if p == nil {
		return
	}
	r.Log.Detail("Paid:     %s on %s", p.AmountHuman, p.NetworkName)
	r.Log.Detail("From:     %s", p.From)
	switch {
	case p.TransactionURL != "":
		r.Log.Detail("Tx:       %s", p.TransactionURL)
	case p.Transaction != "":
		r.Log.Detail("Tx:       %s", p.Transaction)
	}
}

// Diagnostic is the single line reported for a failed exchange: the server's
// response text when the request failed with one, otherwise the error message.
func Diagnostic(err error) string {
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) && reqErr.Response != nil && reqErr.Response.Text != "" {
		return reqErr.Response.Text
	}
	return err.Error()
}
