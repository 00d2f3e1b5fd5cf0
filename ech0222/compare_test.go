package ech0222

import "testing"

func TestCompareIdenticalTreesProducesNoAnomalies(t *testing.T) {
	raw := &RawData{
		ContestIdentification: "c1",
		CountingCircles: []CountingCircle{{
			CountingCircleIdentification: "cc1",
			VotingCardsInformation:       VotingCardsInformation{ValidTotal: 10, InvalidTotal: 1},
			Votes: []VoteRawData{{
				VoteIdentification: "v1",
				Ballots:            []BallotRawData{{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "yes"}}}},
			}},
		}},
	}
	calc := *raw
	imp := *raw
	if got := Compare(&calc, &imp); len(got) != 0 {
		t.Fatalf("expected no anomalies comparing a tree against itself, got %+v", got)
	}
}

func TestCompareDetectsContestIdentificationMismatch(t *testing.T) {
	calc := &RawData{ContestIdentification: "c1"}
	imp := &RawData{ContestIdentification: "c2"}
	got := Compare(calc, imp)
	if len(got) != 1 {
		t.Fatalf("expected exactly one anomaly, got %d", len(got))
	}
	if got[0].VerificationID != verificationID {
		t.Fatalf("expected verification id %s, got %s", verificationID, got[0].VerificationID)
	}
}

func TestCompareDetectsCountingCircleOnlyInOneSide(t *testing.T) {
	calc := &RawData{CountingCircles: []CountingCircle{{CountingCircleIdentification: "cc1"}}}
	imp := &RawData{}
	got := Compare(calc, imp)
	if len(got) != 1 {
		t.Fatalf("expected one anomaly for a counting circle missing on the imported side, got %d", len(got))
	}
}

func TestCompareDetectsVotingCardsMismatch(t *testing.T) {
	calc := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		VotingCardsInformation:       VotingCardsInformation{ValidTotal: 10},
	}}}
	imp := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		VotingCardsInformation:       VotingCardsInformation{ValidTotal: 9},
	}}}
	got := Compare(calc, imp)
	if len(got) != 1 {
		t.Fatalf("expected exactly one anomaly for the total mismatch, got %d: %+v", len(got), got)
	}
}

func TestCompareDetectsBallotPositionMismatchWithoutFurtherComparison(t *testing.T) {
	calc := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		ElectionGroupBallots: []ElectionGroupBallotRawData{{Elections: []ElectionRawData{{
			ElectionIdentification: "e1",
			BallotPosition:         []BallotPosition{{Kind: PositionEmpty}, {Kind: PositionEmpty}},
		}}}},
	}}}
	imp := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		ElectionGroupBallots: []ElectionGroupBallotRawData{{Elections: []ElectionRawData{{
			ElectionIdentification: "e1",
			BallotPosition:         []BallotPosition{{Kind: PositionEmpty}},
		}}}},
	}}}
	got := Compare(calc, imp)
	if len(got) != 1 {
		t.Fatalf("expected exactly one length-mismatch anomaly, not per-position diffs, got %d: %+v", len(got), got)
	}
}

func TestCompareToleratesElectionBallotsInADifferentOrder(t *testing.T) {
	calc := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		ElectionGroupBallots: []ElectionGroupBallotRawData{
			{Elections: []ElectionRawData{{ElectionIdentification: "e1", BallotPosition: []BallotPosition{{Kind: PositionCandidate, CandidateIdentification: "c1"}}}}},
			{Elections: []ElectionRawData{{ElectionIdentification: "e1", BallotPosition: []BallotPosition{{Kind: PositionCandidate, CandidateIdentification: "c2"}}}}},
		},
	}}}
	imp := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		ElectionGroupBallots: []ElectionGroupBallotRawData{
			{Elections: []ElectionRawData{{ElectionIdentification: "e1", BallotPosition: []BallotPosition{{Kind: PositionCandidate, CandidateIdentification: "c2"}}}}},
			{Elections: []ElectionRawData{{ElectionIdentification: "e1", BallotPosition: []BallotPosition{{Kind: PositionCandidate, CandidateIdentification: "c1"}}}}},
		},
	}}}
	if got := Compare(calc, imp); len(got) != 0 {
		t.Fatalf("expected the differently-ordered but identical ballot set to compare equal, got %+v", got)
	}
}

func TestCompareDetectsElectionBallotContentSwapWithEqualCounts(t *testing.T) {
	calc := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		ElectionGroupBallots: []ElectionGroupBallotRawData{
			{Elections: []ElectionRawData{{ElectionIdentification: "e1", BallotPosition: []BallotPosition{{Kind: PositionCandidate, CandidateIdentification: "c1"}}}}},
			{Elections: []ElectionRawData{{ElectionIdentification: "e1", BallotPosition: []BallotPosition{{Kind: PositionCandidate, CandidateIdentification: "c1"}}}}},
		},
	}}}
	imp := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		ElectionGroupBallots: []ElectionGroupBallotRawData{
			{Elections: []ElectionRawData{{ElectionIdentification: "e1", BallotPosition: []BallotPosition{{Kind: PositionCandidate, CandidateIdentification: "c1"}}}}},
			{Elections: []ElectionRawData{{ElectionIdentification: "e1", BallotPosition: []BallotPosition{{Kind: PositionCandidate, CandidateIdentification: "c2"}}}}},
		},
	}}}
	got := Compare(calc, imp)
	if len(got) != 1 {
		t.Fatalf("expected one anomaly for a candidate swapped between ballots despite equal ballot counts, got %d: %+v", len(got), got)
	}
}

func TestCompareTreatsVoteBallotsAsAnOrderIndependentMultiset(t *testing.T) {
	calc := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		Votes: []VoteRawData{{
			VoteIdentification: "v1",
			Ballots: []BallotRawData{
				{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "yes"}}},
				{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "no"}}},
			},
		}},
	}}}
	imp := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		Votes: []VoteRawData{{
			VoteIdentification: "v1",
			Ballots: []BallotRawData{
				{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "no"}}},
				{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "yes"}}},
			},
		}},
	}}}
	if got := Compare(calc, imp); len(got) != 0 {
		t.Fatalf("expected reordered but identical ballots to compare equal, got %+v", got)
	}
}

func TestCompareDetectsVoteAnswerSwapWithEqualBallotCount(t *testing.T) {
	calc := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		Votes: []VoteRawData{{
			VoteIdentification: "v1",
			Ballots: []BallotRawData{
				{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "yes"}}},
				{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "yes"}}},
			},
		}},
	}}}
	imp := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		Votes: []VoteRawData{{
			VoteIdentification: "v1",
			Ballots: []BallotRawData{
				{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "yes"}}},
				{VotesCasted: []VoteCasted{{QuestionID: "q1", AnswerID: "no"}}},
			},
		}},
	}}}
	got := Compare(calc, imp)
	if len(got) != 1 {
		t.Fatalf("expected one anomaly for an answer swapped between ballots despite equal ballot count, got %d: %+v", len(got), got)
	}
}

func TestCompareDetectsIsUnchangedBallotMismatch(t *testing.T) {
	calc := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		ElectionGroupBallots: []ElectionGroupBallotRawData{{Elections: []ElectionRawData{{
			ElectionIdentification: "e1",
			IsUnchangedBallot:      true,
		}}}},
	}}}
	imp := &RawData{CountingCircles: []CountingCircle{{
		CountingCircleIdentification: "cc1",
		ElectionGroupBallots: []ElectionGroupBallotRawData{{Elections: []ElectionRawData{{
			ElectionIdentification: "e1",
			IsUnchangedBallot:      false,
		}}}},
	}}}
	got := Compare(calc, imp)
	if len(got) != 1 {
		t.Fatalf("expected exactly one isUnchangedBallot anomaly, got %d: %+v", len(got), got)
	}
}
