package dataset

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"io"
)

// canonicalJSON re-encodes a value with sorted keys, no extraneous
// whitespace and no HTML escaping, so the bytes a signer hashed can be
// reproduced exactly. Ported from the teacher's astris.CanonicalJSON.
type canonicalJSON struct{}

// CanonicalJSON is the package-wide canonical encoder used to derive the
// bytes that authorities sign over in every SignedPayload.
var CanonicalJSON = canonicalJSON{}

func (c canonicalJSON) Encode(out io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var t interface{}
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "")
	enc.SetEscapeHTML(false)
	return enc.Encode(t)
}

func (c canonicalJSON) Bytes(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c canonicalJSON) Hash(v interface{}) ([]byte, error) {
	b, err := c.Bytes(v)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(b)
	return sum[:], nil
}
