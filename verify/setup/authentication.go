package setup

import (
	"fmt"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/trust"
	"github.com/thechriswalker/evverify/verify"
)

// KeyGenerationSignatures (02.01) checks, for every control component,
// that its key-generation payload's signature verifies against the
// claimed authenticating authority. Every mismatch becomes a Failure
// with the payload's location — no cross-payload state, per §4.4's
// Authentication shape.
func KeyGenerationSignatures(ctx *verify.Context) {
	sd, err := ctx.Dataset.Setup()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("setup"), err)
		return
	}
	for _, cc := range sd.ControlComponents {
		loc := anomaly.AtFile("setup").With(fmt.Sprintf("cc%d", cc.Index)).With("key-generation.json")
		kg, err := cc.KeyGeneration()
		if err != nil {
			ctx.AppendError(loc, err)
			continue
		}
		verifySignedPayload(ctx, loc, kg.CanonicalBytes, kg.Signature, kg.AuthenticatingAuthority)
	}
}

// ShuffleProofSignatures (02.02) checks the signature on every shuffle
// proof payload of every control component. Must check the entire set,
// not just the first mismatch.
func ShuffleProofSignatures(ctx *verify.Context) {
	sd, err := ctx.Dataset.Setup()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("setup"), err)
		return
	}
	for _, cc := range sd.ControlComponents {
		base := anomaly.AtFile("setup").With(fmt.Sprintf("cc%d", cc.Index)).With("shuffles")
		proofs, err := cc.ShuffleProofs()
		if err != nil {
			ctx.AppendError(base, err)
			continue
		}
		for i, p := range proofs {
			loc := base.AtIndex(i)
			verifySignedPayload(ctx, loc, p.CanonicalBytes, p.Signature, p.AuthenticatingAuthority)
		}
	}
}

type canonicalBytesFunc func() ([]byte, error)

func verifySignedPayload(ctx *verify.Context, loc anomaly.Location, canonical canonicalBytesFunc, signature []byte, authority string) {
	bytes, err := canonical()
	if err != nil {
		ctx.AppendError(loc, err)
		return
	}
	result, err := ctx.Trust.Verify(bytes, signature, authority)
	if err != nil {
		ctx.AppendError(loc, err)
		return
	}
	switch result {
	case trust.Valid:
		return
	case trust.UnknownAuthority:
		ctx.AppendError(loc, fmt.Errorf("unknown authenticating authority %q", authority))
	default:
		ctx.AppendFailure(loc, "signature from authority %q does not verify", authority)
	}
}
