package mixnet

import (
	"strings"
	"testing"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/evverify/crypto/elgamal"
)

// testGroupHexP is the RFC 3526 Group 14 2048-bit safe prime: a fixed,
// well-known constant rather than a freshly generated one, the same
// "known parameters, not New()'d per test" approach crypto/elgamal's own
// tests take with their DH2048modp256 fixture. Using a cryptographically
// sized subgroup order avoids the Fiat-Shamir challenge landing on the
// same residue twice by chance, which a toy few-bit group could not
// reliably rule out.
const testGroupHexP = "" +
	"FFFFFFFF FFFFFFFF C90FDAA2 2168C234 C4C6628B 80DC1CD1 " +
	"29024E08 8A67CC74 020BBEA6 3B139B22 514A0879 8E3404DD " +
	"EF9519B3 CD3A431B 302B0A6D F25F1437 4FE1356D 6D51C245 " +
	"E485B576 625E7EC6 F44C42E9 A637ED6B 0BFF5CB6 F406B7ED " +
	"EE386BFB 5A899FA5 AE9F2411 7C4B1FE6 49286651 ECE45B3D " +
	"C2007CB8 A163BF05 98DA4836 1C55D39A 69163FA8 FD24CF5F " +
	"83655D23 DCA3AD96 1C62F356 208552BB 9ED52907 7096966D " +
	"670C354E 4ABC9804 F1746C08 CA18217C 32905E46 2E36CE3B " +
	"E39E772C 180E8603 9B2783A2 EC07A28F B5C55DF0 6F4C52C9 " +
	"DE2BCBF6 95581718 3995497C EA956AE5 15D22618 98FA0510 " +
	"15728E5A 8AACAA68 FFFFFFFF FFFFFFFF"

func testGroup() *elgamal.System {
	p, ok := new(big.Int).SetString(strings.Join(strings.Fields(testGroupHexP), ""), 16)
	if !ok {
		panic("bad test prime")
	}
	q := new(big.Int).Rsh(p, 1) // p = 2q+1 for a safe prime
	g := big.NewInt(4)          // 4 = 2^2 is a quadratic residue mod p, so it has order q
	return &elgamal.System{P: p, Q: q, G: g}
}

// validProof builds a ShuffleProof whose responses genuinely satisfy
// g^R_i = B_i * A_i^C (mod p) for the given secret/nonce pairs, so
// Verify is exercised against real Sigma-protocol arithmetic rather than
// fixture data that happens to be accepted.
func validProof(t *testing.T, sys *elgamal.System, ballotBoxID string, secrets, nonces []int64) *ShuffleProof {
	t.Helper()
	n := len(secrets)
	commitments := make([]*big.Int, n)
	bridging := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		commitments[i] = new(big.Int).Exp(sys.G, big.NewInt(secrets[i]), sys.P)
		bridging[i] = new(big.Int).Exp(sys.G, big.NewInt(nonces[i]), sys.P)
	}
	challenge := shuffleChallenge(sys, ballotBoxID, commitments, bridging)
	responses := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		r := new(big.Int).Mul(big.NewInt(secrets[i]), challenge)
		r.Add(r, big.NewInt(nonces[i]))
		r.Mod(r, sys.Q)
		responses[i] = r
	}
	return &ShuffleProof{
		BallotBoxID: ballotBoxID,
		Commitments: commitments,
		Bridging:    bridging,
		Responses:   responses,
	}
}

func TestVerifyAcceptsAValidProof(t *testing.T) {
	sys := testGroup()
	proof := validProof(t, sys, "bb-1", []int64{3, 5, 7}, []int64{2, 4, 6})
	if failing := Verify(sys, proof); len(failing) != 0 {
		t.Fatalf("expected no failing positions, got %v", failing)
	}
}

func TestVerifyReportsEveryTamperedPosition(t *testing.T) {
	sys := testGroup()
	proof := validProof(t, sys, "bb-1", []int64{3, 5, 7}, []int64{2, 4, 6})
	// tampering with one commitment changes the Fiat-Shamir challenge,
	// which invalidates every position's check, not just the mutated one.
	proof.Commitments[1] = new(big.Int).Exp(sys.G, big.NewInt(9), sys.P)

	failing := Verify(sys, proof)
	if len(failing) != len(proof.Commitments) {
		t.Fatalf("expected every position to fail once the challenge is disturbed, got %v", failing)
	}
}

func TestVerifyLengthMismatchIsASentinelNotAPerIndexFailure(t *testing.T) {
	sys := testGroup()
	proof := validProof(t, sys, "bb-1", []int64{3, 5}, []int64{2, 4})
	proof.Responses = proof.Responses[:1]

	failing := Verify(sys, proof)
	if len(failing) != 1 || failing[0] != -1 {
		t.Fatalf("expected the length-mismatch sentinel []int{-1}, got %v", failing)
	}
}

func TestChallengeDependsOnBallotBoxID(t *testing.T) {
	sys := testGroup()
	commitments := []*big.Int{big.NewInt(2)}
	bridging := []*big.Int{big.NewInt(3)}
	c1 := shuffleChallenge(sys, "bb-1", commitments, bridging)
	c2 := shuffleChallenge(sys, "bb-2", commitments, bridging)
	if c1.Cmp(c2) == 0 {
		t.Fatal("challenge must depend on the ballot box id, not just the commitment vectors")
	}
}
