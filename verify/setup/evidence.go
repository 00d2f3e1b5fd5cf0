package setup

import (
	"fmt"
	"sort"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/crypto/mixnet"
	"github.com/thechriswalker/evverify/verify"
)

// ShuffleProofsVerify (05.01) verifies every control component's shuffle
// proof using crypto/mixnet. Parallelizes over the proof count per
// component (§4.4: "parallelization over i is mandatory for large N").
// Every failing position inside a proof produces one Failure naming the
// ballot box and the position index.
func ShuffleProofsVerify(ctx *verify.Context) {
	cd, err := ctx.Dataset.Context()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("context"), err)
		return
	}
	sys := cd.Config.EncryptionGroup
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
		ctx.ParallelFor(len(proofs), func(i int) anomaly.Location { return base.AtIndex(i) }, func(i int) error {
			shuffle, err := proofs[i].Content.Proof()
			if err != nil {
				return err
			}
			loc := base.AtIndex(i).With(shuffle.BallotBoxID)
			failing := mixnet.Verify(sys, shuffle)
			if len(failing) == 1 && failing[0] == -1 {
				return fmt.Errorf("ballot box %s: proof has mismatched commitment/bridging/response lengths", shuffle.BallotBoxID)
			}
			for _, pos := range failing {
				ctx.AppendFailure(loc.AtIndex(pos), "shuffle proof for ballot box %s fails at position %d", shuffle.BallotBoxID, pos)
			}
			return nil
		})
	}
}

// ShuffleProofSetAgreement (05.02) asserts every control component
// produced a shuffle proof for the same set of ballot boxes — a missing
// or extra proof from one component is evidence of a mixing step that
// was skipped or improperly attributed.
func ShuffleProofSetAgreement(ctx *verify.Context) {
	sd, err := ctx.Dataset.Setup()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("setup"), err)
		return
	}
	var reference []string
	var referenceFrom int
	for _, cc := range sd.ControlComponents {
		proofs, err := cc.ShuffleProofs()
		loc := anomaly.AtFile("setup").With(fmt.Sprintf("cc%d", cc.Index)).With("shuffles")
		if err != nil {
			ctx.AppendError(loc, err)
			continue
		}
		ids := make([]string, len(proofs))
		for i, p := range proofs {
			ids[i] = p.Content.BallotBoxID
		}
		sort.Strings(ids)
		if reference == nil {
			reference, referenceFrom = ids, cc.Index
			continue
		}
		if !equalStrings(ids, reference) {
			ctx.AppendFailure(loc, "control component %d's shuffled ballot box set %v disagrees with control component %d's %v",
				cc.Index, ids, referenceFrom, reference)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
