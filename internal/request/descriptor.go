// Package request turns parsed command-line options into a validated
// description of the outbound HTTP request.
package request

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/url"
	"strings"
)

// Content types selected by Build.
const (
	ContentTypeJSON        = "application/json"
	ContentTypeForm        = "application/x-www-form-urlencoded"
	ContentTypeOctetStream = "application/octet-stream"
)

// DefaultMethod is used when no --request is given.
const DefaultMethod = "GET"

// DefaultPaymentCeiling is the ceiling used when no --max-amount is given,
// in atomic token units.
const DefaultPaymentCeiling = 100000

// Descriptor is the fully validated outbound request.
// It is built once per invocation and only read afterwards.
type Descriptor struct {
	Method         string
	URL            string
	ContentType    string
	Body           Body
	Headers        []Header
	BasicAuth      *BasicAuth
	RedirectLimit  int
	PaymentCeiling *big.Int
}

// Header is a single header line. Duplicates are allowed and all are sent.
type Header struct {
	Name  string
	Value string
}

// BasicAuth holds credentials from --user.
type BasicAuth struct {
	User     string
	Password string
}

// Body is one of NoBody, RawBody or FormBody.
type Body interface {
	// Encode renders the body for the given content type.
	// A nil result means no body is sent.
	Encode(contentType string) ([]byte, error)

	isBody()
}

// NoBody is used when neither --data nor --form was given.
type NoBody struct{}

// RawBody is the payload of --data or --data-raw, either literal or loaded from a file.
type RawBody struct {
	Data []byte
}

// FormBody holds --form fields in order of first appearance. Later
// duplicate keys replace the value but keep the original position.
type FormBody struct {
	Keys   []string
	Fields map[string]string
}

// Set records a field.
func (b *FormBody) Set(key, value string) {
	if b.Fields == nil {
		b.Fields = make(map[string]string)
	}
	if _, ok := b.Fields[key]; !ok {
		b.Keys = append(b.Keys, key)
	}
	b.Fields[key] = value
}

func (NoBody) isBody()   {}
func (RawBody) isBody()  {}
func (FormBody) isBody() {}

// Encode implements Body.
func (NoBody) Encode(string) ([]byte, error) {
	return nil, nil
}

// Encode implements Body. Raw payloads are sent verbatim.
func (b RawBody) Encode(string) ([]byte, error) {
	if b.Data == nil {
		return []byte{}, nil
	}
	return b.Data, nil
}

// Encode implements Body. Fields become a JSON object for JSON requests
// and a urlencoded form otherwise, both in Keys order.
func (b FormBody) Encode(contentType string) ([]byte, error) {
	if contentType == ContentTypeJSON {
		return b.encodeJSON()
	}

	pairs := make([]string, 0, len(b.Keys))
	for _, k := range b.Keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(b.Fields[k]))
	}
	return []byte(strings.Join(pairs, "&")), nil
}

func (b FormBody) encodeJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(b.Fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
