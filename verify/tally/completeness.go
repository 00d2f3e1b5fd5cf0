// Package tally holds the concrete verification bodies for the Tally
// phase (06.xx Completeness, 07.xx Authentication, 08.xx Consistency,
// 09.xx Integrity plus the VerifyECH0222 semantic check), one file per
// category matching the shapes of spec §4.4. There is no 10.xx Evidence
// body: those ids are registered NotImplemented.
package tally

import (
	"sort"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/verify"
)

// BallotBoxesPresent (06.01) asserts every ballot box the election event
// context expects (via its verification-card-set contexts) has a
// corresponding tally/ subfolder, and that no unexpected folder exists.
func BallotBoxesPresent(ctx *verify.Context) {
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
	expected := uniqueSorted(cd.EventContext.BallotBoxIDs())
	actual := make([]string, len(td.BallotBoxes))
	for i, bb := range td.BallotBoxes {
		actual[i] = bb.ID
	}
	actual = uniqueSorted(actual)

	loc := anomaly.AtFile("tally")
	for _, id := range expected {
		if !contains(actual, id) {
			ctx.AppendFailure(loc.With(id), "expected ballot box %s has no tally/ subfolder", id)
		}
	}
	for _, id := range actual {
		if !contains(expected, id) {
			ctx.AppendFailure(loc.With(id), "ballot box %s has a tally/ subfolder but is not referenced by any verification-card-set context", id)
		}
	}
}

// ControlComponentDecryptionsComplete (06.02) asserts every ballot box
// has a partial decryption payload from every control component declared
// in the election configuration.
func ControlComponentDecryptionsComplete(ctx *verify.Context) {
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
		loc := anomaly.AtFile("tally").With(bb.ID).With("decryptions")
		decs, err := bb.PartialDecryptions()
		if err != nil {
			ctx.AppendError(loc, err)
			continue
		}
		seen := make(map[int]bool, len(decs))
		for _, d := range decs {
			seen[d.Content.ComponentIndex] = true
		}
		for i := 1; i <= cd.Config.ControlComponentCount; i++ {
			if !seen[i] {
				ctx.AppendFailure(loc, "ballot box %s is missing a partial decryption from control component %d", bb.ID, i)
			}
		}
	}
}

func uniqueSorted(ss []string) []string {
	set := make(map[string]bool, len(ss))
	for _, s := range ss {
		set[s] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func contains(ss []string, v string) bool {
	i := sort.SearchStrings(ss, v)
	return i < len(ss) && ss[i] == v
}
