// Package client sends request descriptors over HTTP and pays for
// x402-gated responses with the connected payment plugin.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/port402/x402-curl/internal/output"
	"github.com/port402/x402-curl/internal/request"
	"github.com/port402/x402-curl/internal/wallet"
	"github.com/port402/x402-curl/internal/x402"
)

// Payer is the connected payment plugin as seen by the client.
type Payer interface {
	Capabilities() x402.Capabilities
	Signer(network string) (wallet.Signer, error)
}

// Client performs payment-authorized requests.
type Client struct {
	httpClient    *http.Client
	payer         Payer
	log           *output.Logger
	onPaymentSent func()
}

// Option configures the Client.
type Option func(*Client)

// WithTimeout bounds each HTTP round trip. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithPayer sets the plugin used to sign payments.
func WithPayer(p Payer) Option {
	return func(c *Client) {
		c.payer = p
	}
}

// WithLogger sets where progress is reported.
func WithLogger(log *output.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithPaymentHook registers fn to run just before a signed payment is sent.
func WithPaymentHook(fn func()) Option {
	return func(c *Client) {
		c.onPaymentSent = fn
	}
}

// New creates a new Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Response is a completed exchange.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	Text       string
	Latency    time.Duration
	Payment    *Payment // nil when no payment was needed
}

// RequestError reports a failed exchange. Response is set when the server
// answered with an error status.
type RequestError struct {
	Err      error
	Response *Response
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Response != nil:
		return "server returned " + e.Response.StatusText
	default:
		return "request failed"
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Send performs the request described by d. A 402 answer is paid once,
// for at most ceiling atomic units, and the request is re-sent with the payment.
func (c *Client) Send(ctx context.Context, d *request.Descriptor, ceiling *big.Int) (*Response, error) {
	start := time.Now()

	c.log.Step("Sending %s %s...", d.Method, d.URL)
	resp, err := c.do(ctx, d, nil)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("connection failed: %w", err)}
	}

	if resp.StatusCode != http.StatusPaymentRequired {
		return finish(resp, start, nil)
	}

	paid, payment, err := c.pay(ctx, d, ceiling, resp)
	if err != nil {
		return nil, err
	}
	return finish(paid, start, payment)
}

// do sends one attempt. extra, when set, is added after the user's headers.
func (c *Client) do(ctx context.Context, d *request.Descriptor, extra http.Header) (*http.Response, error) {
	req, err := newRequest(ctx, d)
	if err != nil {
		return nil, err
	}
	for name, values := range extra {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	hc := *c.httpClient
	limit := d.RedirectLimit
	hc.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) > limit {
			return http.ErrUseLastResponse
		}
		return nil
	}

	return hc.Do(req)
}

func newRequest(ctx context.Context, d *request.Descriptor) (*http.Request, error) {
	body, err := d.Body.Encode(d.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", d.ContentType)
	typeOverridden := false
	for _, h := range d.Headers {
		if http.CanonicalHeaderKey(h.Name) == "Content-Type" && !typeOverridden {
			req.Header.Del("Content-Type")
			typeOverridden = true
		}
		req.Header.Add(h.Name, h.Value)
	}

	if d.BasicAuth != nil {
		req.SetBasicAuth(d.BasicAuth.User, d.BasicAuth.Password)
	}

	return req, nil
}

// finish reads the body and maps error statuses to a *RequestError.
func finish(resp *http.Response, start time.Time, payment *Payment) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	out := &Response{
		Status:     resp.StatusCode,
		StatusText: resp.Status,
		Header:     resp.Header,
		Text:       string(body),
		Latency:    time.Since(start),
		Payment:    payment,
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &RequestError{Response: out}
	}
	return out, nil
}
