package tally

import (
	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/dataset"
	"github.com/thechriswalker/evverify/verify"
)

// PartialDecryptionShareCounts (08.01) asserts every control component's
// partial decryption for a ballot box carries exactly one share per cast
// ballot — a missing or extra share means that component's decryption
// run did not cover the same ballot set as its peers.
func PartialDecryptionShareCounts(ctx *verify.Context) {
	td, err := ctx.Dataset.Tally()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("tally"), err)
		return
	}
	for _, bb := range td.BallotBoxes {
		base := anomaly.AtFile("tally").With(bb.ID)
		ballotCount, err := countBallots(bb)
		if err != nil {
			ctx.AppendError(base.With("ballots"), err)
			continue
		}
		decs, err := bb.PartialDecryptions()
		if err != nil {
			ctx.AppendError(base.With("decryptions"), err)
			continue
		}
		for _, d := range decs {
			loc := base.With("decryptions").With(d.Content.BallotBoxID)
			if len(d.Content.Shares) != ballotCount {
				ctx.AppendFailure(loc, "control component %d submitted %d decryption shares for ballot box %s, expected %d",
					d.Content.ComponentIndex, len(d.Content.Shares), bb.ID, ballotCount)
			}
			if len(d.Content.Proofs) != len(d.Content.Shares) {
				ctx.AppendFailure(loc, "control component %d submitted %d proofs for %d shares in ballot box %s",
					d.Content.ComponentIndex, len(d.Content.Proofs), len(d.Content.Shares), bb.ID)
			}
		}
	}
}

// countBallots streams a ballot box's ballots just to count them, rather
// than pulling PartialDecryptionShareCounts's share-count comparison
// through the memoizing, fully-decoded dataset.BallotBoxDir.Ballots.
func countBallots(bb *dataset.BallotBoxDir) (int, error) {
	n := 0
	for _, err := range bb.BallotsSeq() {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}
