// Package encoding provides text decoding helpers for asset files that are
// not always UTF-8.
package encoding

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CharsetReader returns a UTF-8 reader for input declared with the given
// charset label. It matches the signature of xml.Decoder.CharsetReader.
func CharsetReader(label string, input io.Reader) (io.Reader, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "utf-8" || label == "utf8" {
		return input, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// Windows1252ToUTF8 converts Windows-1252 bytes to a UTF-8 string.
// Returns the bytes as-is if conversion fails.
func Windows1252ToUTF8(data []byte) string {
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// BestEffortString returns data as a string, decoding it as Windows-1252 when
// it is not valid UTF-8. Trailing NUL bytes are dropped.
func BestEffortString(data []byte) string {
	data = bytes.TrimRight(data, "\x00")
	if utf8.Valid(data) {
		return string(data)
	}
	return Windows1252ToUTF8(data)
}
