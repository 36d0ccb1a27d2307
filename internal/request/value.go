package request

import (
	"os"
	"strings"
)

// fileSentinel marks a value that names a file to load.
const fileSentinel = "@"

// Value is an option value as written on the command line: either the
// literal text or a reference to a file whose contents should be used.
type Value struct {
	Literal string
	Path    string
	IsFile  bool
}

// parseValue classifies s. Only sources that honor the @ convention pass allowFile.
func parseValue(s string, allowFile bool) Value {
	if allowFile && strings.HasPrefix(s, fileSentinel) {
		return Value{Path: strings.TrimPrefix(s, fileSentinel), IsFile: true}
	}
	return Value{Literal: s}
}

// resolve returns the bytes the value stands for.
func (v Value) resolve() ([]byte, error) {
	if !v.IsFile {
		return []byte(v.Literal), nil
	}
	data, err := os.ReadFile(v.Path)
	if err != nil {
		return nil, &FileError{Path: v.Path, Err: err}
	}
	return data, nil
}

// resolveText is resolve with the result decoded as UTF-8 text.
// Invalid sequences are replaced rather than rejected.
func (v Value) resolveText() (string, error) {
	data, err := v.resolve()
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
