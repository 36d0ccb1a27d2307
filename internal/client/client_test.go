package client

import (
	"context"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/port402/x402-curl/internal/request"
)

func descriptor(method, url string) *request.Descriptor {
	return &request.Descriptor{
		Method:         method,
		URL:            url,
		ContentType:    request.ContentTypeForm,
		Body:           request.NoBody{},
		PaymentCeiling: big.NewInt(request.DefaultPaymentCeiling),
	}
}

func TestNew_Options(t *testing.T) {
	c := New(WithTimeout(60 * time.Second))
	assert.Equal(t, 60*time.Second, c.httpClient.Timeout)

	assert.Equal(t, time.Duration(0), New().httpClient.Timeout)
}

func TestSend_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	resp, err := New().Send(context.Background(), descriptor("GET", server.URL), big.NewInt(0))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "OK", resp.Text)
	assert.Nil(t, resp.Payment)
}

func TestSend_RequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, request.ContentTypeJSON, r.Header.Get("Content-Type"))
		assert.Equal(t, []string{"bar", "baz"}, r.Header.Values("X-Foo"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "secret", pass)

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"a":1}`, string(body))
		w.Write([]byte("created"))
	}))
	defer server.Close()

	d := descriptor("POST", server.URL)
	d.ContentType = request.ContentTypeJSON
	d.Body = request.RawBody{Data: []byte(`{"a":1}`)}
	d.Headers = []request.Header{{Name: "X-Foo", Value: "bar"}, {Name: "X-Foo", Value: "baz"}}
	d.BasicAuth = &request.BasicAuth{User: "alice", Password: "secret"}

	resp, err := New().Send(context.Background(), d, d.PaymentCeiling)
	require.NoError(t, err)
	assert.Equal(t, "created", resp.Text)
}

func TestSend_ContentTypeOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"text/plain"}, r.Header.Values("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "a=1", string(body))
	}))
	defer server.Close()

	d := descriptor("POST", server.URL)
	d.Body = request.FormBody{Keys: []string{"a"}, Fields: map[string]string{"a": "1"}}
	d.Headers = []request.Header{{Name: "content-type", Value: "text/plain"}}

	_, err := New().Send(context.Background(), d, d.PaymentCeiling)
	require.NoError(t, err)
}

func TestSend_RedirectLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop", http.StatusFound)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("arrived"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tests := []struct {
		limit  int
		status int
		text   string
	}{
		{0, http.StatusFound, ""},
		{1, http.StatusFound, ""},
		{2, http.StatusOK, "arrived"},
	}

	for _, tt := range tests {
		d := descriptor("GET", server.URL+"/start")
		d.RedirectLimit = tt.limit

		resp, err := New().Send(context.Background(), d, d.PaymentCeiling)
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.Status, "limit %d", tt.limit)
		if tt.text != "" {
			assert.Equal(t, tt.text, resp.Text)
		}
	}
}

func TestSend_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such thing"))
	}))
	defer server.Close()

	_, err := New().Send(context.Background(), descriptor("GET", server.URL), big.NewInt(0))

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	require.NotNil(t, reqErr.Response)
	assert.Equal(t, http.StatusNotFound, reqErr.Response.Status)
	assert.Equal(t, "no such thing", reqErr.Response.Text)
	assert.Equal(t, "server returned 404 Not Found", err.Error())
}

func TestSend_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(WithTimeout(time.Second)).Send(context.Background(), descriptor("GET", url), big.NewInt(0))

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Nil(t, reqErr.Response)
	assert.Contains(t, err.Error(), "connection failed")
}

func TestSend_InvalidURL(t *testing.T) {
	_, err := New().Send(context.Background(), descriptor("GET", "://bad"), big.NewInt(0))
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Contains(t, err.Error(), "failed to create request")
}
