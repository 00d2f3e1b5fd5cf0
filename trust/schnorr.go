package trust

import (
	"fmt"

	"github.com/thechriswalker/evverify/crypto/elgamal"
)

// KeyResolver looks up an authority's Schnorr verification key. dataset.ContextData
// satisfies this via SigKeyFor; kept as an interface so trust does not
// depend on the dataset package back.
type KeyResolver interface {
	SigKeyFor(authority string) *elgamal.PublicKey
}

// SchnorrVerifier checks the self-authenticating Schnorr signature scheme
// control components use to sign their own setup/tally payloads, ported
// near-verbatim from the teacher's repeated trustee.SigKey.Verify calls in
// astris/validator.go. The scheduler puts it first in a trust.Multi
// chain, followed by an X509Verifier when a trust store is configured;
// which of the two checks a payload depends on the authority name the
// payload claims, not on the verification id.
type SchnorrVerifier struct {
	keys KeyResolver
}

func NewSchnorrVerifier(keys KeyResolver) *SchnorrVerifier {
	return &SchnorrVerifier{keys: keys}
}

func (s *SchnorrVerifier) Verify(canonical, signature []byte, authority string) (Result, error) {
	pk := s.keys.SigKeyFor(authority)
	if pk == nil {
		return UnknownAuthority, nil
	}
	if pk.System == nil {
		return Invalid, fmt.Errorf("authority %q has no encryption group bound to its key", authority)
	}
	var sig elgamal.Signature
	if err := sig.UnmarshalJSON(signature); err != nil {
		return Invalid, fmt.Errorf("decoding Schnorr signature for authority %q: %w", authority, err)
	}
	if err := pk.VerifySignature(&sig, canonical); err != nil {
		return Invalid, nil
	}
	return Valid, nil
}

var _ Verifier = (*SchnorrVerifier)(nil)
