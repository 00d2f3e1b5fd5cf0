// Package trust is the signature-verification boundary (§6): it turns the
// raw (canonicalBytes, signature, authenticatingAuthority) triple every
// SignedPayload carries into a verdict, without the rest of the module
// ever touching a private key, a certificate chain, or a Schnorr
// challenge directly.
package trust

import "fmt"

// Result is the three-valued outcome of a signature check. UnknownAuthority
// is distinct from Invalid: a verification that cannot resolve the
// claimed authority to a known key has found an Error (it could not
// complete the check), not a Failure (it completed the check and the
// signature was wrong) — §2's anomaly model draws exactly this line.
type Result int

const (
	Invalid Result = iota
	Valid
	UnknownAuthority
)

func (r Result) String() string {
	switch r {
	case Valid:
		return "Valid"
	case UnknownAuthority:
		return "UnknownAuthority"
	default:
		return "Invalid"
	}
}

// Verifier resolves an authenticatingAuthority name to a key and checks
// whether signature is a valid signature over canonical by that key.
// Implementations must be safe for concurrent use: every verification in
// a wave may call Verify at once (§4.1 invariant i).
type Verifier interface {
	Verify(canonical, signature []byte, authority string) (Result, error)
}

// Multi dispatches to the first Verifier in the chain that recognizes
// authority, falling through to UnknownAuthority if none do. This lets a
// dataset mix X.509-signed operator payloads with Schnorr-signed control-
// component payloads behind a single trust.Verifier, matching how the
// teacher's astris validator accepted signatures from both registrars and
// trustees without the caller needing to know which.
type Multi struct {
	verifiers []Verifier
}

func NewMulti(verifiers ...Verifier) *Multi {
	return &Multi{verifiers: verifiers}
}

func (m *Multi) Verify(canonical, signature []byte, authority string) (Result, error) {
	for _, v := range m.verifiers {
		res, err := v.Verify(canonical, signature, authority)
		if err != nil {
			return Invalid, err
		}
		if res != UnknownAuthority {
			return res, nil
		}
	}
	return UnknownAuthority, nil
}

var _ Verifier = (*Multi)(nil)
var _ fmt.Stringer = Result(0)
