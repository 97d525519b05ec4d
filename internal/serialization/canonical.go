package serialization

import (
	"bytes"
	"encoding/json"
)

// Canonical encodes v as compact JSON with object keys in lexicographic order and
// without HTML escaping, so equal values always produce equal bytes no matter how
// their maps were built.
//
// encoding/json already sorts map keys; the encoder is only needed to turn off the
// <, > and & escaping that json.Marshal applies.
func Canonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
