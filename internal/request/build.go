package request

import (
	"math/big"
	"strings"
)

// Options is the parsed command line. Pointer fields are nil when the
// option was not given at all.
type Options struct {
	URL          string
	Method       string
	Data         *string
	DataRaw      *string
	JSON         bool
	Headers      []string
	Form         []string
	MaxRedirects int
	User         *string
	MaxAmount    string
	Args         []string
}

// Build validates opts and produces the request descriptor.
//
// Validation runs before anything is read from disk, and the first
// violation found is returned as a *UsageError. Unreadable @path
// references are returned as a *FileError.
func Build(opts Options) (*Descriptor, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	d := &Descriptor{
		Method:        opts.Method,
		URL:           resolveURL(opts),
		ContentType:   ContentTypeForm,
		Body:          NoBody{},
		RedirectLimit: opts.MaxRedirects,
	}
	if d.Method == "" {
		d.Method = DefaultMethod
	}
	if opts.JSON {
		d.ContentType = ContentTypeJSON
	}
	if d.RedirectLimit < 0 {
		return nil, usageErrorf("--max-redirs must not be negative")
	}

	ceiling, err := parseCeiling(opts.MaxAmount)
	if err != nil {
		return nil, err
	}
	d.PaymentCeiling = ceiling

	switch {
	case opts.Data != nil || opts.DataRaw != nil:
		if err := buildRawBody(d, opts); err != nil {
			return nil, err
		}
	case len(opts.Form) > 0:
		if err := buildFormBody(d, opts.Form); err != nil {
			return nil, err
		}
	}

	for _, raw := range opts.Headers {
		name, value, found := strings.Cut(raw, ":")
		if !found {
			return nil, usageErrorf("invalid header %q (expected \"Name: value\")", raw)
		}
		d.Headers = append(d.Headers, Header{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	if opts.User != nil {
		user, password, _ := strings.Cut(*opts.User, ":")
		d.BasicAuth = &BasicAuth{User: user, Password: password}
	}

	return d, nil
}

func validate(opts Options) error {
	hasData := opts.Data != nil || opts.DataRaw != nil
	if len(opts.Form) > 0 && hasData {
		return usageErrorf("cannot specify --form and --data together")
	}
	if opts.Data != nil && opts.DataRaw != nil {
		return usageErrorf("cannot specify --data-raw and --data together")
	}
	if opts.URL != "" && positionalURL(opts) != "" {
		return usageErrorf("cannot specify --url and positional url together")
	}
	if resolveURL(opts) == "" {
		return usageErrorf("must specify a URL with positional <url> or --url")
	}
	return nil
}

func positionalURL(opts Options) string {
	if len(opts.Args) == 0 {
		return ""
	}
	return opts.Args[0]
}

func resolveURL(opts Options) string {
	if opts.URL != "" {
		return opts.URL
	}
	return positionalURL(opts)
}

// parseCeiling accepts any non-negative integral number, e.g. "100000" or "1e5".
func parseCeiling(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(DefaultPaymentCeiling), nil
	}
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok || r.Sign() < 0 || !r.IsInt() {
		return nil, usageErrorf("invalid --max-amount %q (expected a non-negative integer amount)", s)
	}
	return new(big.Int).Set(r.Num()), nil
}

// buildRawBody handles --data and --data-raw. Only --data honors @path.
func buildRawBody(d *Descriptor, opts Options) error {
	var v Value
	if opts.Data != nil {
		v = parseValue(*opts.Data, true)
	} else {
		v = parseValue(*opts.DataRaw, false)
	}

	if !v.IsFile {
		d.Body = RawBody{Data: []byte(v.Literal)}
		return nil
	}

	if opts.JSON {
		text, err := v.resolveText()
		if err != nil {
			return err
		}
		d.ContentType = ContentTypeJSON
		d.Body = RawBody{Data: []byte(text)}
		return nil
	}

	data, err := v.resolve()
	if err != nil {
		return err
	}
	d.ContentType = ContentTypeOctetStream
	d.Body = RawBody{Data: data}
	return nil
}

func buildFormBody(d *Descriptor, fields []string) error {
	var body FormBody
	for _, field := range fields {
		key, raw, found := strings.Cut(field, "=")
		if !found {
			return usageErrorf("invalid form field %q (expected key=value)", field)
		}
		value, err := parseValue(raw, true).resolveText()
		if err != nil {
			return err
		}
		body.Set(key, value)
	}
	d.Body = body
	return nil
}
