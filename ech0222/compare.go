package ech0222

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/thechriswalker/evverify/anomaly"
)

const verificationID = "09.05"

// Compare performs the order-independent-on-sets / order-sensitive-on-
// lists diff of §4.6: counting circles, votations and elections are
// compared as sets keyed by identifier, and within a matched set the cast
// ballots themselves are compared as a multiset of canonical signatures
// rather than positionally, since the calculated tree and the imported
// XML document have no reason to enumerate ballots in the same order even
// when they describe the same underlying votes. A canonical ballot
// signature encodes its ballotPosition list in declared order, so a
// reordering of positions *within* one ballot is still detected.
// reportingBody and extension are out of scope for this comparator
// entirely (they never appear in RawData) so they are implicitly
// excluded. Emits one Failure per differing identifier or voting-card
// total, and one Failure per votation or election whose cast ballots
// differ (listing every differing ballot pattern in its message), located
// by counting circle and votation/election and field.
func Compare(calculated, imported *RawData) []anomaly.Anomaly {
	var out []anomaly.Anomaly
	loc := anomaly.AtFile("ech0222")

	if calculated.ContestIdentification != imported.ContestIdentification {
		out = append(out, anomaly.NewFailure(verificationID, loc.With("contestIdentification"),
			"calculated contestIdentification %q does not match imported %q",
			calculated.ContestIdentification, imported.ContestIdentification))
	}

	calcByID := indexCircles(calculated.CountingCircles)
	impByID := indexCircles(imported.CountingCircles)

	for _, id := range sortedUnion(calcByID, impByID) {
		ccLoc := loc.With(id)
		calc, inCalc := calcByID[id]
		imp, inImp := impByID[id]
		switch {
		case inCalc && !inImp:
			out = append(out, anomaly.NewFailure(verificationID, ccLoc, "counting circle %s present in calculated, absent in imported", id))
		case !inCalc && inImp:
			out = append(out, anomaly.NewFailure(verificationID, ccLoc, "counting circle %s present in imported, absent in calculated", id))
		default:
			out = append(out, compareCircle(ccLoc, calc, imp)...)
		}
	}
	return out
}

func indexCircles(ccs []CountingCircle) map[string]CountingCircle {
	m := make(map[string]CountingCircle, len(ccs))
	for _, cc := range ccs {
		m[cc.CountingCircleIdentification] = cc
	}
	return m
}

// sortedUnion returns the sorted union of two maps' keys, regardless of
// what they're keyed to — used everywhere in this package that two
// independently-produced documents need to be walked key by key.
func sortedUnion[T any](a, b map[string]T) []string {
	set := make(map[string]bool, len(a)+len(b))
	for k := range a {
		set[k] = true
	}
	for k := range b {
		set[k] = true
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func compareCircle(loc anomaly.Location, calc, imp CountingCircle) []anomaly.Anomaly {
	var out []anomaly.Anomaly
	vcLoc := loc.With("votingCardsInformation")
	if calc.VotingCardsInformation.ValidTotal != imp.VotingCardsInformation.ValidTotal {
		out = append(out, anomaly.NewFailure(verificationID, vcLoc.With("countOfReceivedValidVotingCardsTotal"),
			"calculated %d does not match imported %d", calc.VotingCardsInformation.ValidTotal, imp.VotingCardsInformation.ValidTotal))
	}
	if calc.VotingCardsInformation.InvalidTotal != imp.VotingCardsInformation.InvalidTotal {
		out = append(out, anomaly.NewFailure(verificationID, vcLoc.With("countOfReceivedInvalidVotingCardsTotal"),
			"calculated %d does not match imported %d", calc.VotingCardsInformation.InvalidTotal, imp.VotingCardsInformation.InvalidTotal))
	}

	out = append(out, compareVotes(loc, calc.Votes, imp.Votes)...)
	out = append(out, compareElectionGroups(loc, calc.ElectionGroupBallots, imp.ElectionGroupBallots)...)
	return out
}

// ballotSignature canonicalizes one cast ballot's answers into a sortable
// string keyed by question, so that two ballots with the same answers
// compare equal regardless of the order VotesCasted happened to be built
// or parsed in.
func ballotSignature(b BallotRawData) string {
	casted := make([]string, len(b.VotesCasted))
	for i, vc := range b.VotesCasted {
		casted[i] = vc.QuestionID + "=" + vc.AnswerID
	}
	sort.Strings(casted)
	return strings.Join(casted, ",")
}

func signatureHistogram[T any](items []T, signature func(T) string) map[string]int {
	h := make(map[string]int, len(items))
	for _, item := range items {
		h[signature(item)]++
	}
	return h
}

// compareHistograms reports a single Failure under parent/field listing
// every canonical signature whose occurrence count differs between calc
// and imp. Equal occurrence counts on both sides, even under different
// orderings of the underlying slices, produce no anomaly.
func compareHistograms(parent anomaly.Location, field string, calc, imp map[string]int) []anomaly.Anomaly {
	var diffs []string
	for _, sig := range sortedUnion(calc, imp) {
		if calc[sig] == imp[sig] {
			continue
		}
		diffs = append(diffs, fmt.Sprintf("%q: calculated %d, imported %d", sig, calc[sig], imp[sig]))
	}
	if len(diffs) == 0 {
		return nil
	}
	return []anomaly.Anomaly{anomaly.NewFailure(verificationID, parent.With(field),
		"ballot pattern counts differ: %s", strings.Join(diffs, "; "))}
}

func compareVotes(loc anomaly.Location, calc, imp []VoteRawData) []anomaly.Anomaly {
	var out []anomaly.Anomaly
	calcByID := make(map[string]VoteRawData, len(calc))
	for _, v := range calc {
		calcByID[v.VoteIdentification] = v
	}
	impByID := make(map[string]VoteRawData, len(imp))
	for _, v := range imp {
		impByID[v.VoteIdentification] = v
	}

	for _, id := range sortedUnion(calcByID, impByID) {
		voteLoc := loc.With(id)
		cv, inCalc := calcByID[id]
		iv, inImp := impByID[id]
		switch {
		case inCalc && !inImp:
			out = append(out, anomaly.NewFailure(verificationID, voteLoc, "votation %s present in calculated, absent in imported", id))
		case !inCalc && inImp:
			out = append(out, anomaly.NewFailure(verificationID, voteLoc, "votation %s present in imported, absent in calculated", id))
		default:
			calcHist := signatureHistogram(cv.Ballots, ballotSignature)
			impHist := signatureHistogram(iv.Ballots, ballotSignature)
			out = append(out, compareHistograms(voteLoc, "ballotRawData", calcHist, impHist)...)
		}
	}
	return out
}

// electionBallotSignature canonicalizes one cast ballot's election answer:
// the resolved list, the unchanged-ballot flag and the full, order-
// sensitive sequence of marked positions.
func electionBallotSignature(e ElectionRawData) string {
	var b strings.Builder
	b.WriteString(formatOptional(e.ListIdentification))
	b.WriteString("|unchanged=")
	b.WriteString(strconv.FormatBool(e.IsUnchangedBallot))
	for _, p := range e.BallotPosition {
		b.WriteByte('|')
		b.WriteString(positionSignature(p))
	}
	return b.String()
}

func positionSignature(p BallotPosition) string {
	switch p.Kind {
	case PositionWriteIn:
		return "writeIn:" + p.WriteInText
	case PositionCandidate:
		return "candidate:" + p.CandidateIdentification + "/" + p.CandidateReferenceOnPosition
	default:
		return "empty"
	}
}

// groupElectionsByID flattens an election group's per-ballot data and
// groups it by ElectionIdentification: within one counting circle, every
// ballot cast contributes one ElectionRawData per election it covers.
func groupElectionsByID(egbs []ElectionGroupBallotRawData) map[string][]ElectionRawData {
	out := make(map[string][]ElectionRawData)
	for _, egb := range egbs {
		for _, e := range egb.Elections {
			out[e.ElectionIdentification] = append(out[e.ElectionIdentification], e)
		}
	}
	return out
}

func compareElectionGroups(loc anomaly.Location, calc, imp []ElectionGroupBallotRawData) []anomaly.Anomaly {
	var out []anomaly.Anomaly
	calcByID := groupElectionsByID(calc)
	impByID := groupElectionsByID(imp)

	for _, id := range sortedUnion(calcByID, impByID) {
		eLoc := loc.With(id)
		cList, inCalc := calcByID[id]
		iList, inImp := impByID[id]
		switch {
		case inCalc && !inImp:
			out = append(out, anomaly.NewFailure(verificationID, eLoc, "election %s present in calculated, absent in imported", id))
		case !inCalc && inImp:
			out = append(out, anomaly.NewFailure(verificationID, eLoc, "election %s present in imported, absent in calculated", id))
		default:
			calcHist := signatureHistogram(cList, electionBallotSignature)
			impHist := signatureHistogram(iList, electionBallotSignature)
			out = append(out, compareHistograms(eLoc, "ballotPosition", calcHist, impHist)...)
		}
	}
	return out
}

func formatOptional(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", *s)
}
