package tally

import (
	"fmt"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/trust"
	"github.com/thechriswalker/evverify/verify"
)

// BallotSignatures (07.01) checks the signature on every cast ballot in
// every ballot box.
func BallotSignatures(ctx *verify.Context) {
	td, err := ctx.Dataset.Tally()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("tally"), err)
		return
	}
	for _, bb := range td.BallotBoxes {
		base := anomaly.AtFile("tally").With(bb.ID).With("ballots")
		i := 0
		for b, err := range bb.BallotsSeq() {
			if err != nil {
				ctx.AppendError(base.AtIndex(i), err)
				break
			}
			verifySigned(ctx, base.AtIndex(i), b.CanonicalBytes, b.Signature, b.AuthenticatingAuthority)
			i++
		}
	}
}

// PartialDecryptionSignatures (07.02) checks the signature on every
// control component's partial decryption payload for every ballot box.
func PartialDecryptionSignatures(ctx *verify.Context) {
	td, err := ctx.Dataset.Tally()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("tally"), err)
		return
	}
	for _, bb := range td.BallotBoxes {
		base := anomaly.AtFile("tally").With(bb.ID).With("decryptions")
		decs, err := bb.PartialDecryptions()
		if err != nil {
			ctx.AppendError(base, err)
			continue
		}
		for i, d := range decs {
			verifySigned(ctx, base.AtIndex(i), d.CanonicalBytes, d.Signature, d.AuthenticatingAuthority)
		}
	}
}

type canonicalBytesFunc func() ([]byte, error)

func verifySigned(ctx *verify.Context, loc anomaly.Location, canonical canonicalBytesFunc, signature []byte, authority string) {
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
