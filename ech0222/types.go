// Package ech0222 is the semantic comparator (C6) for the Swiss eCH-0222
// result document: it builds a calculated RawData tree from the tally
// inputs and diffs it, field by field, against the imported document
// instead of re-emitting the XML byte-for-byte (§4.6).
package ech0222

// BallotPosition is one marked position on a ballot: either left blank,
// filled with a write-in, or naming a candidate at a resolved reference.
type BallotPositionKind int

const (
	PositionEmpty BallotPositionKind = iota
	PositionWriteIn
	PositionCandidate
)

type BallotPosition struct {
	Kind                         BallotPositionKind
	WriteInText                  string
	CandidateIdentification      string
	CandidateReferenceOnPosition string
}

func (p BallotPosition) Equal(o BallotPosition) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case PositionWriteIn:
		return p.WriteInText == o.WriteInText
	case PositionCandidate:
		return p.CandidateIdentification == o.CandidateIdentification &&
			p.CandidateReferenceOnPosition == o.CandidateReferenceOnPosition
	default:
		return true
	}
}

// VoteCasted is one answered question within a cast ballot for a votation.
type VoteCasted struct {
	QuestionID string
	AnswerID   string
}

// BallotRawData is one cast ballot's answers for a single votation.
type BallotRawData struct {
	VotesCasted []VoteCasted
}

// VoteRawData aggregates every ballot cast for one votation within a
// counting circle.
type VoteRawData struct {
	VoteIdentification string
	Ballots            []BallotRawData
}

// ElectionRawData is one cast ballot's answer for a single election
// within an election group.
type ElectionRawData struct {
	ElectionIdentification string
	ListIdentification     *string
	BallotPosition         []BallotPosition
	IsUnchangedBallot       bool
}

// ElectionGroupBallotRawData is one cast ballot's answers across every
// election in an election group.
type ElectionGroupBallotRawData struct {
	Elections []ElectionRawData
}

// VotingCardsInformation tallies received voting cards for a counting
// circle.
type VotingCardsInformation struct {
	ValidTotal   int
	InvalidTotal int
}

// CountingCircle is one administrative aggregation unit's contribution to
// the result document.
type CountingCircle struct {
	CountingCircleIdentification string
	VotingCardsInformation       VotingCardsInformation
	Votes                        []VoteRawData
	ElectionGroupBallots         []ElectionGroupBallotRawData
}

// RawData is the semantic root compared by Compare: the calculated tree
// built from tally inputs, or the imported tree parsed from the eCH-0222
// XML document.
type RawData struct {
	ContestIdentification string
	CountingCircles        []CountingCircle
}

func (r *RawData) circleByID(id string) *CountingCircle {
	for i := range r.CountingCircles {
		if r.CountingCircles[i].CountingCircleIdentification == id {
			return &r.CountingCircles[i]
		}
	}
	return nil
}

func (r *RawData) circleOrCreate(id string) *CountingCircle {
	if cc := r.circleByID(id); cc != nil {
		return cc
	}
	r.CountingCircles = append(r.CountingCircles, CountingCircle{CountingCircleIdentification: id})
	return &r.CountingCircles[len(r.CountingCircles)-1]
}

func (cc *CountingCircle) voteByID(voteID string) *VoteRawData {
	for i := range cc.Votes {
		if cc.Votes[i].VoteIdentification == voteID {
			return &cc.Votes[i]
		}
	}
	return nil
}

func (cc *CountingCircle) voteOrCreate(voteID string) *VoteRawData {
	if v := cc.voteByID(voteID); v != nil {
		return v
	}
	cc.Votes = append(cc.Votes, VoteRawData{VoteIdentification: voteID})
	return &cc.Votes[len(cc.Votes)-1]
}
