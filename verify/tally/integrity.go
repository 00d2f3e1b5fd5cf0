package tally

import (
	"fmt"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/crypto/elgamal"
	"github.com/thechriswalker/evverify/verify"
)

// PartialDecryptionProofs (09.01) verifies, for every control component
// and every ballot box, the Chaum-Pedersen proof of correct partial
// decryption of each cast ballot. Parallelizes over the per-box share
// count (§4.4: "parallelization over i is mandatory for large N").
func PartialDecryptionProofs(ctx *verify.Context) {
	cd, err := ctx.Dataset.Context()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("context"), err)
		return
	}
	td, err := ctx.Dataset.Tally()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("tally"), err)
		return
	}
	for _, bb := range td.BallotBoxes {
		ballots, err := bb.Ballots()
		if err != nil {
			ctx.AppendError(anomaly.AtFile("tally").With(bb.ID).With("ballots"), err)
			continue
		}
		decs, err := bb.PartialDecryptions()
		if err != nil {
			ctx.AppendError(anomaly.AtFile("tally").With(bb.ID).With("decryptions"), err)
			continue
		}
		for _, d := range decs {
			pk := cd.ComponentPublicKey(d.Content.ComponentIndex)
			base := anomaly.AtFile("tally").With(bb.ID).With("decryptions").With(fmt.Sprintf("cc%d", d.Content.ComponentIndex))
			if pk == nil {
				ctx.AppendError(base, fmt.Errorf("no announced encryption key for control component %d", d.Content.ComponentIndex))
				continue
			}
			shares, err := d.Content.DecodedShares()
			if err != nil {
				ctx.AppendError(base, err)
				continue
			}
			n := len(shares)
			if n > len(ballots) {
				n = len(ballots)
			}
			if n > len(d.Content.Proofs) {
				n = len(d.Content.Proofs)
			}
			ctx.ParallelFor(n, func(i int) anomaly.Location { return base.AtIndex(i) }, func(i int) error {
				ct := ballots[i].Content.EncryptedVote
				proof := d.Content.Proofs[i]
				if err := elgamal.VerifyPartialDecryptionProof(proof, pk, ct, shares[i]); err != nil {
					ctx.AppendFailure(base.AtIndex(i), "partial decryption proof for ballot %d in ballot box %s from control component %d does not verify: %v",
						i, bb.ID, d.Content.ComponentIndex, err)
				}
				return nil
			})
		}
	}
}
