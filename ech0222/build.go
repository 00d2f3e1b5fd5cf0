package ech0222

import (
	"fmt"
	"strings"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/dataset"
)

// Build implements the construction algorithm of spec §4.6: starting from
// the event's contest identification, walk every ballot box, resolve its
// counting circle and relevant contests via its verification-card-set
// context and authorization, and accumulate voting-card counts, vote
// answers and election ballots into the calculated RawData tree.
//
// Decoded-option encoding (an Open Question resolution, recorded in
// DESIGN.md): a votation ballot's DecodedOptions is
// "<voteIdentification>|" followed by a "|"-joined sequence of
// (questionId, answerId) token pairs — splitting "around |" per pair,
// per §4.6. An election ballot's DecodedOptions is
// "<electionId>|<token>|<token>|...", where the second token is a list
// identification if it names a declared list (making a listRawData
// selection) and otherwise starts the ballotPosition sequence directly;
// each subsequent token is "empty", the election's declared write-in
// marker (consuming the next entry of "|"-joined DecodedWriteIns), or a
// candidate identification.
func Build(ctxData *dataset.ContextData, td *dataset.TallyData) (*RawData, []anomaly.Anomaly) {
	var anomalies []anomaly.Anomaly
	raw := &RawData{ContestIdentification: ctxData.Config.ContestIdentification}

	for _, bb := range td.BallotBoxes {
		vcsCtx := ctxData.EventContext.ContextForBallotBox(bb.ID)
		loc := anomaly.AtFile("tally").With(bb.ID)
		if vcsCtx == nil {
			anomalies = append(anomalies, anomaly.NewError("09.05", loc, fmt.Errorf("no verification-card-set context for ballot box %s", bb.ID)))
			continue
		}
		auth := ctxData.EventContext.AuthorizationByID(vcsCtx.AuthorizationID())
		if auth == nil {
			anomalies = append(anomalies, anomaly.NewError("09.05", loc, fmt.Errorf("no authorization %q for ballot box %s", vcsCtx.AuthorizationID(), bb.ID)))
			continue
		}
		ballots, err := bb.Ballots()
		if err != nil {
			anomalies = append(anomalies, anomaly.NewError("09.05", loc.With("ballots"), err))
			continue
		}
		cc := raw.circleOrCreate(auth.CountingCircle())
		cc.VotingCardsInformation.ValidTotal += len(ballots)

		for _, domain := range auth.RelevantDomains() {
			if votation := ctxData.EventContext.VotationByDomain(domain); votation != nil {
				buildVotes(cc, votation, ballots)
				continue
			}
			if group := ctxData.EventContext.ElectionGroupByDomain(domain); group != nil {
				egb, errs := buildElectionGroup(group, ballots)
				anomalies = append(anomalies, errs...)
				if len(egb.Elections) > 0 {
					cc.ElectionGroupBallots = append(cc.ElectionGroupBallots, egb)
				}
			}
		}
	}

	// A VoteRawData with no ballots is schema-illegal; drop it (§4.6 step 3).
	for ci := range raw.CountingCircles {
		var kept []VoteRawData
		for _, v := range raw.CountingCircles[ci].Votes {
			if len(v.Ballots) > 0 {
				kept = append(kept, v)
			}
		}
		raw.CountingCircles[ci].Votes = kept
	}

	return raw, anomalies
}

func buildVotes(cc *CountingCircle, votation *dataset.VotationDefinition, ballots []*dataset.SignedPayload[dataset.BallotPayload]) {
	prefix := votation.VoteIdentification + "|"
	for _, b := range ballots {
		opts := b.Content.DecodedOptions
		if !strings.HasPrefix(opts, prefix) {
			continue
		}
		tokens := strings.Split(strings.TrimPrefix(opts, prefix), "|")
		var casted []VoteCasted
		for i := 0; i+1 < len(tokens); i += 2 {
			casted = append(casted, VoteCasted{QuestionID: tokens[i], AnswerID: tokens[i+1]})
		}
		if len(casted) == 0 {
			continue
		}
		v := cc.voteOrCreate(votation.VoteIdentification)
		v.Ballots = append(v.Ballots, BallotRawData{VotesCasted: casted})
	}
}

func buildElectionGroup(group *dataset.ElectionGroupDefinition, ballots []*dataset.SignedPayload[dataset.BallotPayload]) (ElectionGroupBallotRawData, []anomaly.Anomaly) {
	var egb ElectionGroupBallotRawData
	var anomalies []anomaly.Anomaly

	for _, election := range group.Elections {
		prefix := election.ElectionIdentification + "|"
		for _, b := range ballots {
			opts := b.Content.DecodedOptions
			if !strings.HasPrefix(opts, prefix) {
				continue
			}
			rd, err := buildElectionRawData(group, &election, opts, b.Content.DecodedWriteIns)
			if err != nil {
				loc := anomaly.AtFile("tally").With(b.Content.VerificationCardID)
				anomalies = append(anomalies, anomaly.NewError("09.05", loc, err))
				continue
			}
			egb.Elections = append(egb.Elections, *rd)
		}
	}
	return egb, anomalies
}

func buildElectionRawData(group *dataset.ElectionGroupDefinition, election *dataset.ElectionDefinition, decodedOptions, decodedWriteIns string) (*ElectionRawData, error) {
	tokens := strings.Split(decodedOptions, "|")
	if len(tokens) < 2 {
		return nil, fmt.Errorf("election %s: decoded options has no position tokens", election.ElectionIdentification)
	}
	rd := &ElectionRawData{ElectionIdentification: election.ElectionIdentification}

	positionTokens := tokens[1:]
	var list *dataset.ListDefinition
	if l := findList(group, tokens[1]); l != nil {
		list = l
		id := l.ListIdentification
		rd.ListIdentification = &id
		positionTokens = tokens[2:]
	}

	writeIns := strings.Split(decodedWriteIns, "|")
	writeInIdx := 0
	occurrences := map[string]int{}

	for _, tok := range positionTokens {
		switch {
		case tok == "" || tok == "empty":
			rd.BallotPosition = append(rd.BallotPosition, BallotPosition{Kind: PositionEmpty})
		case tok == election.WriteInPositionIdentification:
			var text string
			if writeInIdx < len(writeIns) {
				text = writeIns[writeInIdx]
				writeInIdx++
			}
			rd.BallotPosition = append(rd.BallotPosition, BallotPosition{Kind: PositionWriteIn, WriteInText: text})
		default:
			ref := resolveCandidateReference(list, tok, occurrences)
			rd.BallotPosition = append(rd.BallotPosition, BallotPosition{
				Kind:                         PositionCandidate,
				CandidateIdentification:      tok,
				CandidateReferenceOnPosition: ref,
			})
			occurrences[tok]++
		}
	}

	rd.IsUnchangedBallot = computeIsUnchangedBallot(list, rd.BallotPosition)
	return rd, nil
}

func findList(group *dataset.ElectionGroupDefinition, id string) *dataset.ListDefinition {
	for i := range group.Lists {
		if group.Lists[i].ListIdentification == id {
			return &group.Lists[i]
		}
	}
	return nil
}

// resolveCandidateReference implements §4.6's candidate resolution: look
// up the candidate's declared position on list by candidateIdentification.
// When the candidate is declared more than once (cumulation), the number
// of times it already appeared on this ballot (occurrences) selects among
// its declared positions in declaration order. Without a list, or when no
// declared position is left to match, the token itself is returned.
func resolveCandidateReference(list *dataset.ListDefinition, candidateID string, occurrences map[string]int) string {
	if list == nil {
		return candidateID
	}
	want := occurrences[candidateID]
	seen := 0
	for _, c := range list.Candidates {
		if c.CandidateIdentification != candidateID {
			continue
		}
		if seen == want {
			return c.CandidateReferenceOnPosition
		}
		seen++
	}
	return candidateID
}

// computeIsUnchangedBallot implements the three-way rule of §4.6: null
// list -> false; empty list -> all positions Empty; non-empty list ->
// candidates exactly match the list's candidates including accumulation
// and order.
func computeIsUnchangedBallot(list *dataset.ListDefinition, positions []BallotPosition) bool {
	if list == nil {
		return false
	}
	if len(list.Candidates) == 0 {
		for _, p := range positions {
			if p.Kind != PositionEmpty {
				return false
			}
		}
		return true
	}
	if len(positions) != len(list.Candidates) {
		return false
	}
	for i, c := range list.Candidates {
		p := positions[i]
		if p.Kind != PositionCandidate || p.CandidateIdentification != c.CandidateIdentification {
			return false
		}
	}
	return true
}
