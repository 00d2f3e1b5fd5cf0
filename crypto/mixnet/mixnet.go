// Package mixnet verifies the Sigma-protocol shuffle proof a control
// component attaches to the permutation it applies while re-encrypting and
// mixing a ballot box's encrypted votes (Setup §4.4, Evidence category,
// 05.xx). The proof shape generalizes crypto/elgamal's
// commit/challenge/response pattern (zkp.go's createZKP/verifyZKP) from a
// single commitment pair to one pair per permuted position, with the
// challenge bound to every commitment via a Fiat-Shamir hash so no
// commitment can be altered without invalidating every response. Per §1
// this primitive's internals are a boundary collaborator, not part of the
// core being redesigned; only its call sites in verify/setup are.
package mixnet

import (
	"bytes"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/evverify/crypto/elgamal"
	"github.com/thechriswalker/evverify/crypto/random"
)

// ShuffleProof is the parsed, algebraic form of a control component's
// shuffle evidence: one permutation commitment and one bridging
// commitment per mixed position, plus the Sigma-protocol response for
// each position carried in the proof's response vector.
type ShuffleProof struct {
	BallotBoxID string
	Commitments []*big.Int
	Bridging    []*big.Int
	Responses   []*big.Int
}

func shuffleChallenge(sys *elgamal.System, ballotBoxID string, commitments, bridging []*big.Int) *big.Int {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "mixnet|%s|", ballotBoxID)
	for i := range commitments {
		fmt.Fprintf(&buf, "%x|%x|", commitments[i].Bytes(), bridging[i].Bytes())
	}
	return random.Oracle(buf.Bytes(), sys.Q)
}

// Verify checks every position's response against its commitment and
// bridging commitment under the shared Fiat-Shamir challenge:
//
//	g^R_i === B_i * A_i^C (mod p)   for every position i
//
// A single flipped bit in any commitment changes the challenge C (since
// it is derived from the full commitment vector) and so invalidates every
// position's check, not just the mutated one — callers report one Failure
// per position that actually fails the pointwise equation, per §4.4's
// "every failing index produces one Failure with i in the location".
func Verify(sys *elgamal.System, p *ShuffleProof) []int {
	n := len(p.Commitments)
	if len(p.Bridging) != n || len(p.Responses) != n {
		// a length mismatch is not a per-index failure — every index is
		// equally unattributable, so callers treat this as an Error, not
		// a set of Failures. Signal it with a single sentinel index.
		return []int{-1}
	}
	challenge := shuffleChallenge(sys, p.BallotBoxID, p.Commitments, p.Bridging)
	var failing []int
	lhs, rhs := new(big.Int), new(big.Int)
	for i := 0; i < n; i++ {
		lhs.Exp(sys.G, p.Responses[i], sys.P)
		rhs.Exp(p.Commitments[i], challenge, sys.P)
		rhs.Mul(rhs, p.Bridging[i])
		rhs.Mod(rhs, sys.P)
		if lhs.Cmp(rhs) != 0 {
			failing = append(failing, i)
		}
	}
	return failing
}
