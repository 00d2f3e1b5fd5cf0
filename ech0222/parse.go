package ech0222

import (
	"encoding/xml"
	"fmt"
	"io"
)

// The following xml* types mirror the subset of the eCH-0222 1.2.0 schema
// this comparator cares about, decoded with the standard library's
// encoding/xml (see DESIGN.md).
type xmlDelivery struct {
	XMLName xml.Name     `xml:"delivery"`
	Contest xmlContest   `xml:"contest"`
}

type xmlContest struct {
	ContestIdentification string               `xml:"contestIdentification"`
	CountingCircles        []xmlCountingCircle  `xml:"countingCircleRawData"`
}

type xmlCountingCircle struct {
	CountingCircleIdentification string                      `xml:"countingCircleIdentification"`
	VotingCardsInformation       xmlVotingCardsInformation    `xml:"votingCardsInformation"`
	Votes                        []xmlVoteRawData             `xml:"voteRawData"`
	ElectionGroupBallots         []xmlElectionGroupBallotRawData `xml:"electionGroupBallotRawData"`
}

type xmlVotingCardsInformation struct {
	CountOfReceivedValidVotingCardsTotal   int `xml:"countOfReceivedValidVotingCardsTotal"`
	CountOfReceivedInvalidVotingCardsTotal int `xml:"countOfReceivedInvalidVotingCardsTotal"`
}

type xmlVoteRawData struct {
	VoteIdentification string              `xml:"voteIdentification"`
	Ballots            []xmlBallotRawData  `xml:"ballotRawData"`
}

type xmlBallotRawData struct {
	VotesCasted []xmlVoteCasted `xml:"voteCasted"`
}

type xmlVoteCasted struct {
	QuestionID string `xml:"questionIdentification"`
	AnswerID   string `xml:"answerIdentification"`
}

type xmlElectionGroupBallotRawData struct {
	Elections []xmlElectionRawData `xml:"electionRawData"`
}

type xmlElectionRawData struct {
	ElectionIdentification string                  `xml:"electionIdentification"`
	ListIdentification      *string                 `xml:"listIdentification"`
	BallotPositions         []xmlBallotPosition     `xml:"ballotPosition"`
	IsUnchangedBallot       bool                    `xml:"isUnchangedBallot"`
}

type xmlBallotPosition struct {
	Empty                        *struct{} `xml:"emptyPosition"`
	WriteInText                  *string   `xml:"writeInPosition"`
	CandidateIdentification      *string   `xml:"candidateIdentification"`
	CandidateReferenceOnPosition *string   `xml:"candidateReferenceOnPosition"`
}

// Parse reads the imported eCH-0222 results document into the same
// RawData tree Build produces, so Compare can diff them structurally
// rather than byte-for-byte.
func Parse(r io.Reader) (*RawData, error) {
	var doc xmlDelivery
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing eCH-0222 document: %w", err)
	}
	raw := &RawData{ContestIdentification: doc.Contest.ContestIdentification}
	for _, xcc := range doc.Contest.CountingCircles {
		cc := CountingCircle{
			CountingCircleIdentification: xcc.CountingCircleIdentification,
			VotingCardsInformation: VotingCardsInformation{
				ValidTotal:   xcc.VotingCardsInformation.CountOfReceivedValidVotingCardsTotal,
				InvalidTotal: xcc.VotingCardsInformation.CountOfReceivedInvalidVotingCardsTotal,
			},
		}
		for _, xv := range xcc.Votes {
			v := VoteRawData{VoteIdentification: xv.VoteIdentification}
			for _, xb := range xv.Ballots {
				var b BallotRawData
				for _, xvc := range xb.VotesCasted {
					b.VotesCasted = append(b.VotesCasted, VoteCasted{QuestionID: xvc.QuestionID, AnswerID: xvc.AnswerID})
				}
				v.Ballots = append(v.Ballots, b)
			}
			cc.Votes = append(cc.Votes, v)
		}
		for _, xegb := range xcc.ElectionGroupBallots {
			var egb ElectionGroupBallotRawData
			for _, xe := range xegb.Elections {
				e := ElectionRawData{
					ElectionIdentification: xe.ElectionIdentification,
					ListIdentification:      xe.ListIdentification,
					IsUnchangedBallot:       xe.IsUnchangedBallot,
				}
				for _, xp := range xe.BallotPositions {
					e.BallotPosition = append(e.BallotPosition, parseBallotPosition(xp))
				}
				egb.Elections = append(egb.Elections, e)
			}
			cc.ElectionGroupBallots = append(cc.ElectionGroupBallots, egb)
		}
		raw.CountingCircles = append(raw.CountingCircles, cc)
	}
	return raw, nil
}

func parseBallotPosition(xp xmlBallotPosition) BallotPosition {
	switch {
	case xp.WriteInText != nil:
		return BallotPosition{Kind: PositionWriteIn, WriteInText: *xp.WriteInText}
	case xp.CandidateIdentification != nil:
		p := BallotPosition{Kind: PositionCandidate, CandidateIdentification: *xp.CandidateIdentification}
		if xp.CandidateReferenceOnPosition != nil {
			p.CandidateReferenceOnPosition = *xp.CandidateReferenceOnPosition
		}
		return p
	default:
		return BallotPosition{Kind: PositionEmpty}
	}
}
