package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SignedPayload is the Swiss Post signed-payload convention used for
// every JSON artifact in the dataset (§6): the domain object sits next to
// a signature and the name of the authority that produced it.
type SignedPayload[T any] struct {
	Content                 T      `json:"-"`
	Signature               []byte `json:"signature"`
	AuthenticatingAuthority  string `json:"authenticatingAuthority"`
	raw                      []byte // the exact bytes read from disk, signature fields included
}

// envelope mirrors the on-disk shape: the domain fields inline plus the
// two signature fields, following json.Unmarshal's "extra fields ignored"
// behaviour to separate content from envelope without needing a generated
// schema per payload type.
type envelope struct {
	Signature               json.RawMessage `json:"signature"`
	AuthenticatingAuthority  string          `json:"authenticatingAuthority"`
}

// ParseSignedPayload decodes a signed JSON payload of type T. The
// signature field is decoded as a base64 string when it is one (the JSON
// encoding of []byte); any other JSON value is kept as its raw bytes.
// Verification code treats it as an opaque byte string to hand to
// trust.Verifier.
func ParseSignedPayload[T any](raw []byte) (*SignedPayload[T], error) {
	var content T
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	var sig []byte
	if len(env.Signature) > 0 {
		if err := json.Unmarshal(env.Signature, &sig); err != nil {
			// signature may be a nested object (e.g. {signatureContents: {...}})
			// rather than a plain byte string; keep the raw bytes verbatim so
			// trust.Verifier implementations that understand the richer shape
			// can still parse it themselves.
			sig = []byte(env.Signature)
		}
	}
	return &SignedPayload[T]{
		Content:                 content,
		Signature:               sig,
		AuthenticatingAuthority:  env.AuthenticatingAuthority,
		raw:                     raw,
	}, nil
}

// CanonicalBytes returns the bytes that should have been signed: the
// content re-encoded canonically with the signature envelope fields
// removed, matching the authority's own signing procedure.
func (p *SignedPayload[T]) CanonicalBytes() ([]byte, error) {
	return CanonicalJSON.Bytes(p.Content)
}

// readSignedJSON reads and parses a single signed-payload file.
func readSignedJSON[T any](path string) (*SignedPayload[T], error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseSignedPayload[T](raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

// readSignedJSONDir reads every *.json file directly inside dir as a
// signed payload of type T, in lexical filename order so that results are
// deterministic across runs and platforms (§4.1 invariant iii).
func readSignedJSONDir[T any](dir string) ([]*SignedPayload[T], error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	out := make([]*SignedPayload[T], 0, len(names))
	for _, name := range names {
		p, err := readSignedJSON[T](filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// readSignedJSONDirSeq is readSignedJSONDir's range-over-func counterpart:
// it lists and sorts the directory once, then decodes one payload at a
// time as yield asks for it, so a caller walking millions of rows across
// many directories never holds more than one decoded payload per
// directory in memory at once. Iteration stops at the first decode error,
// which is delivered through yield rather than retained, and at whatever
// point yield returns false.
func readSignedJSONDirSeq[T any](dir string) func(yield func(*SignedPayload[T], error) bool) {
	return func(yield func(*SignedPayload[T], error) bool) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			yield(nil, err)
			return
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			p, err := readSignedJSON[T](filepath.Join(dir, name))
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}
