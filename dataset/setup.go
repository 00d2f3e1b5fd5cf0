package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/evverify/crypto"
	"github.com/thechriswalker/evverify/crypto/elgamal"
	"github.com/thechriswalker/evverify/crypto/mixnet"
)

// KeyGenerationPayload is one control component's contribution to the
// distributed key-generation ceremony: its share of the encryption key,
// a proof of knowledge of the corresponding secret, and a Schnorr
// signature over the two. Modelled on the teacher's
// astris.PayloadTrusteeShares / TrusteeSetup, generalized from a
// threshold-trustee ceremony to a fixed control-component count.
type KeyGenerationPayload struct {
	ComponentIndex  int                       `json:"controlComponentIndex"`
	EncryptionGroup *elgamal.System           `json:"encryptionGroup"`
	EncryptionKey   *elgamal.PublicKey        `json:"encryptionKeyShare"`
	EncryptionPoK   *elgamal.ProofOfKnowledge `json:"encryptionKeyProof"`
}

// PublicKey returns the component's key share bound to its declared
// EncryptionGroup. elgamal.PublicKey's JSON form only carries Y (see
// crypto/elgamal/json.go); callers doing algebra or signature checks need
// the (P, Q, G) triple attached first.
func (k *KeyGenerationPayload) PublicKey() *elgamal.PublicKey {
	pk := &elgamal.PublicKey{System: k.EncryptionGroup, Y: k.EncryptionKey.Y}
	return pk
}

// ShuffleProofPayload is one control component's evidence that it
// correctly re-encrypted and permuted a ballot box's encrypted votes
// during the mixing phase (05.xx, Evidence). Grounded in the Sigma-protocol
// shape of crypto/elgamal.ZKP; the mixnet-specific commitment structure
// lives in crypto/mixnet.
type ShuffleProofPayload struct {
	BallotBoxID string   `json:"ballotBoxId"`
	Commitments []string `json:"permutationCommitments"`
	Bridging    []string `json:"bridgingCommitments"`
	Responses   []string `json:"mixProofResponses"`
}

// Proof converts the wire-format (base64url big-int strings, same
// convention as crypto.BigIntToJSON) representation into the algebraic
// form crypto/mixnet.Verify operates on.
func (p *ShuffleProofPayload) Proof() (*mixnet.ShuffleProof, error) {
	commitments, err := decodeBigInts(p.Commitments)
	if err != nil {
		return nil, fmt.Errorf("decoding permutation commitments: %w", err)
	}
	bridging, err := decodeBigInts(p.Bridging)
	if err != nil {
		return nil, fmt.Errorf("decoding bridging commitments: %w", err)
	}
	responses, err := decodeBigInts(p.Responses)
	if err != nil {
		return nil, fmt.Errorf("decoding proof responses: %w", err)
	}
	return &mixnet.ShuffleProof{
		BallotBoxID: p.BallotBoxID,
		Commitments: commitments,
		Bridging:    bridging,
		Responses:   responses,
	}, nil
}

func decodeBigInts(ss []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(ss))
	for i, s := range ss {
		v, err := crypto.BigIntFromJSON(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ControlComponentDir is the per-control-component subdirectory of
// setup/, e.g. setup/cc1/, setup/cc2/, .... Its contents are parsed lazily
// and independently of its siblings, so 02.xx/04.xx checks on one
// component never block on another.
type ControlComponentDir struct {
	Index int
	dir   string

	keyGen   slot[*SignedPayload[KeyGenerationPayload]]
	shuffles slot[[]*SignedPayload[ShuffleProofPayload]]
}

func (c *ControlComponentDir) KeyGeneration() (*SignedPayload[KeyGenerationPayload], error) {
	return c.keyGen.get(func() (*SignedPayload[KeyGenerationPayload], error) {
		return readSignedJSON[KeyGenerationPayload](filepath.Join(c.dir, "key-generation.json"))
	})
}

func (c *ControlComponentDir) ShuffleProofs() ([]*SignedPayload[ShuffleProofPayload], error) {
	return c.shuffles.get(func() ([]*SignedPayload[ShuffleProofPayload], error) {
		return readSignedJSONDir[ShuffleProofPayload](filepath.Join(c.dir, "shuffles"))
	})
}

// SetupData is the parsed contents of the setup/ sub-tree: one
// subdirectory per control component.
type SetupData struct {
	ControlComponents []*ControlComponentDir
}

func (s *SetupData) ComponentByIndex(i int) *ControlComponentDir {
	for _, c := range s.ControlComponents {
		if c.Index == i {
			return c
		}
	}
	return nil
}

// Setup returns the parsed setup/ sub-tree. Calling it on a Tally dataset
// is a programmer error reported as a plain error, not an anomaly —
// catalog.Build() only wires Setup verifications to run against Setup
// datasets, so this should never happen at runtime.
func (r *Root) Setup() (*SetupData, error) {
	if r.phase != PhaseSetup {
		return nil, fmt.Errorf("dataset at %q is not a Setup dataset", r.path)
	}
	return r.setup.get(func() (*SetupData, error) {
		return loadSetupData(r.setupPath())
	})
}

func loadSetupData(dir string) (*SetupData, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading setup directory: %w", err)
	}
	var ccs []*ControlComponentDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		idx, ok := parseComponentIndex(e.Name())
		if !ok {
			continue
		}
		ccs = append(ccs, &ControlComponentDir{Index: idx, dir: filepath.Join(dir, e.Name())})
	}
	sort.Slice(ccs, func(i, j int) bool { return ccs[i].Index < ccs[j].Index })
	return &SetupData{ControlComponents: ccs}, nil
}

// parseComponentIndex extracts N from a "ccN" directory name.
func parseComponentIndex(name string) (int, bool) {
	const prefix = "cc"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	n := 0
	for _, r := range name[len(prefix):] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
