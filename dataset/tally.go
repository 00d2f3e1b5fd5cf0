package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/evverify/crypto"
	"github.com/thechriswalker/evverify/crypto/elgamal"
)

// BallotPayload is one cast, encrypted ballot as recorded in a ballot box.
// DecodedOptions and DecodedWriteIns hold the plaintext options a voter
// selected — present once a ballot box has been through tally decryption,
// and "|"-delimited per the eCH-0222 raw-data encoding (§4.6) so a single
// field carries an arbitrary number of selections without a schema change
// per contest.
type BallotPayload struct {
	VerificationCardID string              `json:"verificationCardId"`
	EncryptedVote       *elgamal.CipherText `json:"encryptedVote"`
	DecodedOptions      string              `json:"decodedOptions"`
	DecodedWriteIns     string              `json:"decodedWriteIns"`
}

// PartialDecryptionPayload is one control component's decryption share
// for a ballot box: one partial decryption value (alpha^x_i) and one
// Chaum-Pedersen proof of correct partial decryption (09.xx, Integrity)
// per ballot, index-aligned with BallotBoxDir.Ballots(). Grounded in
// astris.PayloadPartialTally, generalized from a single decrypted tally
// to per-ballot shares, since the comparator needs per-ballot plaintexts
// rather than just a final sum.
type PartialDecryptionPayload struct {
	ComponentIndex int             `json:"controlComponentIndex"`
	BallotBoxID    string          `json:"ballotBoxId"`
	Shares         []string        `json:"decryptionShares"`
	Proofs         []*elgamal.ZKP  `json:"decryptionProofs"`
}

// DecodedShares converts the wire-format base64 big-int strings into the
// algebraic form elgamal.VerifyPartialDecryptionProof operates on.
func (p *PartialDecryptionPayload) DecodedShares() ([]*big.Int, error) {
	out := make([]*big.Int, len(p.Shares))
	for i, s := range p.Shares {
		v, err := crypto.BigIntFromJSON(s)
		if err != nil {
			return nil, fmt.Errorf("decoding decryption share %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// BallotBoxDir is one counted ballot box's subdirectory under tally/,
// containing the cast ballots and every control component's decryption
// contribution for it.
type BallotBoxDir struct {
	ID  string
	dir string

	ballots      slot[[]*SignedPayload[BallotPayload]]
	decryptions  slot[[]*SignedPayload[PartialDecryptionPayload]]
}

func (b *BallotBoxDir) Ballots() ([]*SignedPayload[BallotPayload], error) {
	return b.ballots.get(func() ([]*SignedPayload[BallotPayload], error) {
		return readSignedJSONDir[BallotPayload](filepath.Join(b.dir, "ballots"))
	})
}

// BallotsSeq streams this ballot box's cast ballots one at a time instead
// of decoding and retaining the whole box's verification-card-set table
// at once. Unlike Ballots it bypasses the memoizing slot deliberately:
// a verification that only needs a single pass over a box's ballots (a
// per-ballot signature check, say) should never force the whole box's
// decoded content to stay resident for the life of the Root just because
// it happened to ask first.
func (b *BallotBoxDir) BallotsSeq() func(yield func(*SignedPayload[BallotPayload], error) bool) {
	return readSignedJSONDirSeq[BallotPayload](filepath.Join(b.dir, "ballots"))
}

func (b *BallotBoxDir) PartialDecryptions() ([]*SignedPayload[PartialDecryptionPayload], error) {
	return b.decryptions.get(func() ([]*SignedPayload[PartialDecryptionPayload], error) {
		return readSignedJSONDir[PartialDecryptionPayload](filepath.Join(b.dir, "decryptions"))
	})
}

// TallyData is the parsed contents of the tally/ sub-tree: one
// subdirectory per ballot box plus the imported eCH-0222 results document
// that the calculated RawData (C6) is compared against.
type TallyData struct {
	BallotBoxes []*BallotBoxDir
	ech0222Path string
}

func (t *TallyData) BallotBoxByID(id string) *BallotBoxDir {
	for _, bb := range t.BallotBoxes {
		if bb.ID == id {
			return bb
		}
	}
	return nil
}

// ECH0222Reader opens the imported eCH-0222 results XML document for
// parsing by the ech0222 package. The dataset view only locates the file;
// parsing its schema is ech0222.Parse's job (C6), keeping the XML
// vocabulary out of the directory-schema layer.
func (t *TallyData) ECH0222Reader() (*os.File, error) {
	return os.Open(t.ech0222Path)
}

// Tally returns the parsed tally/ sub-tree. Calling it on a Setup dataset
// is a programmer error, mirroring Root.Setup.
func (r *Root) Tally() (*TallyData, error) {
	if r.phase != PhaseTally {
		return nil, fmt.Errorf("dataset at %q is not a Tally dataset", r.path)
	}
	return r.tally.get(func() (*TallyData, error) {
		return loadTallyData(r.tallyPath())
	})
}

// BallotBoxes returns a range-over-func iterator over the tally dataset's
// ballot boxes: `for bb := range it`. The box list itself (an ID and a
// directory path per box) is cheap to hold in full, but exposing it as an
// iterator rather than a slice keeps the entry point a verification
// reaches for honest about intent — stop early with a break and nothing
// downstream of the current box is touched. Combined with
// BallotBoxDir.BallotsSeq, a verification can walk every ballot box and
// every ballot in a large dataset without ever materializing more than
// one box's decoded ballots at a time.
func (r *Root) BallotBoxes() (func(yield func(*BallotBoxDir) bool), error) {
	t, err := r.Tally()
	if err != nil {
		return nil, err
	}
	return func(yield func(*BallotBoxDir) bool) {
		for _, bb := range t.BallotBoxes {
			if !yield(bb) {
				return
			}
		}
	}, nil
}

// ech0222FileGlob matches the fixed tally directory schema's results
// document name, `eCH-0222_*.xml` — the vendor zip names it per-contest,
// so the suffix varies but the `eCH-0222_` prefix and `.xml` extension do
// not.
const ech0222FileGlob = "eCH-0222_*.xml"

func loadTallyData(dir string) (*TallyData, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading tally directory: %w", err)
	}
	var boxes []*BallotBoxDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		boxes = append(boxes, &BallotBoxDir{ID: e.Name(), dir: filepath.Join(dir, e.Name())})
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].ID < boxes[j].ID })

	matches, err := filepath.Glob(filepath.Join(dir, ech0222FileGlob))
	if err != nil {
		return nil, fmt.Errorf("locating imported eCH-0222 document: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("locating imported eCH-0222 document: no file matching %q in %s", ech0222FileGlob, dir)
	}
	sort.Strings(matches)
	return &TallyData{BallotBoxes: boxes, ech0222Path: matches[0]}, nil
}
