package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thechriswalker/evverify/crypto/elgamal"
)

// like RFC3339, but without TZ info: the event runs on wall-clock time in a
// named zone, not a fixed offset, ported from the teacher's astris.TimeSpec.
const timeSpecFormat = `2006-01-02T15:04:05`

type TimeSpec string

func (ts TimeSpec) ToTime(zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(timeSpecFormat, string(ts), loc)
}

type TimeBounds struct {
	Opens  TimeSpec `json:"opens"`
	Closes TimeSpec `json:"closes"`
}

// ToAbsolute resolves both bounds against zone. A resolution error on
// either bound is swallowed into a zero time; callers doing consistency
// checks (03.xx) must treat a zero time as its own anomaly, not as "open
// forever".
func (tb *TimeBounds) ToAbsolute(zone string) (start, end time.Time) {
	start, _ = tb.Opens.ToTime(zone)
	end, _ = tb.Closes.ToTime(zone)
	return
}

type Timing struct {
	Timezone        string      `json:"timeZone"`
	KeyGeneration   *TimeBounds `json:"keyGeneration"`
	VoteCasting     *TimeBounds `json:"voteCasting"`
	TallyDecryption *TimeBounds `json:"tallyDecryption"`
}

// ElectionConfig is the event-wide configuration signed by the election
// administration: the contest identification, the cryptographic domain
// parameters, the canonical control-component count, the threshold and
// the event timing. The votation and election-group definitions are not
// part of it; they live in ElectionEventContext. Modelled on the teacher's
// astris.PayloadElectionSetup.
type ElectionConfig struct {
	ProtocolVersion     string          `json:"protocolVersion"`
	ContestIdentification string        `json:"contestIdentification"`
	EncryptionGroup     *elgamal.System `json:"encryptionGroup"`
	ControlComponentCount int           `json:"controlComponentCount"`
	Threshold           int             `json:"threshold"`
	Timing              *Timing         `json:"timing"`
}

// Authorization binds a verification-card-set alias to the counting
// circle it belongs to and the votations / election groups its ballots may
// contain answers for (§4.6 step 1: "the first domain of influence is the
// counting circle, the rest enumerate the relevant votations and election
// groups").
type Authorization struct {
	AuthorizationID    string   `json:"authorizationId"`
	DomainsOfInfluence []string `json:"domainsOfInfluence"`
}

func (a *Authorization) CountingCircle() string {
	if len(a.DomainsOfInfluence) == 0 {
		return ""
	}
	return a.DomainsOfInfluence[0]
}

func (a *Authorization) RelevantDomains() []string {
	if len(a.DomainsOfInfluence) <= 1 {
		return nil
	}
	return a.DomainsOfInfluence[1:]
}

// VerificationCardSetContext records which ballot box a verification card
// set's cards were cast into, and the alias ("vcs_<authorizationId>") that
// ties the set back to an Authorization.
type VerificationCardSetContext struct {
	Alias      string `json:"verificationCardSetAlias"`
	BallotBoxID string `json:"ballotBoxId"`
}

func (c *VerificationCardSetContext) AuthorizationID() string {
	const prefix = "vcs_"
	if len(c.Alias) > len(prefix) && c.Alias[:len(prefix)] == prefix {
		return c.Alias[len(prefix):]
	}
	return c.Alias
}

// VotationDefinition is one yes/no or multi-question vote contest, keyed
// by the domain of influence an Authorization lists as "relevant" so C6
// knows which ballot boxes may contain answers for it.
type VotationDefinition struct {
	VoteIdentification string `json:"voteIdentification"`
	DomainOfInfluence  string `json:"domainOfInfluence"`
}

// CandidateDefinition is one position on a list, in declaration order.
// AccumulationIndex is decoded from the payload but not read when
// resolving references: repeated appearances of the same candidate on a
// list (cumulation) are told apart positionally in declaration order
// (see ech0222.resolveCandidateReference).
type CandidateDefinition struct {
	CandidateIdentification     string `json:"candidateIdentification"`
	CandidateReferenceOnPosition string `json:"candidateReferenceOnPosition"`
	AccumulationIndex           int    `json:"accumulationIndex"`
}

// ListDefinition is one party list's declared candidate order, used both
// to resolve candidateReferenceOnPosition and to compute isUnchangedBallot.
type ListDefinition struct {
	ListIdentification string                 `json:"listIdentification"`
	Candidates         []CandidateDefinition  `json:"candidates"`
}

// ElectionDefinition is one election within an election group.
// WriteInPositionIdentification is the token that marks a ballot position
// as a write-in to be resolved against the ballot's decoded write-ins.
type ElectionDefinition struct {
	ElectionIdentification        string `json:"electionIdentification"`
	WriteInPositionIdentification string `json:"writeInPositionIdentification"`
}

// ElectionGroupDefinition is a set of elections sharing one domain of
// influence and one set of candidate lists (e.g. a proportional-election
// group with several seats contested on the same lists).
type ElectionGroupDefinition struct {
	DomainOfInfluence string               `json:"domainOfInfluence"`
	Elections         []ElectionDefinition `json:"elections"`
	Lists             []ListDefinition     `json:"lists"`
}

// ElectionEventContext is the event-wide cast of authorizations,
// verification-card-set contexts and contest definitions the eCH-0222
// comparator (C6) walks to resolve a ballot box to its counting circle
// and relevant contests.
type ElectionEventContext struct {
	Authorizations              []*Authorization               `json:"authorizations"`
	VerificationCardSetContexts []*VerificationCardSetContext   `json:"verificationCardSetContexts"`
	Votations                   []VotationDefinition            `json:"votations"`
	ElectionGroups              []ElectionGroupDefinition        `json:"electionGroups"`
}

// VotationByDomain resolves a relevant domain of influence to its
// votation definition, if any.
func (e *ElectionEventContext) VotationByDomain(domain string) *VotationDefinition {
	for i := range e.Votations {
		if e.Votations[i].DomainOfInfluence == domain {
			return &e.Votations[i]
		}
	}
	return nil
}

// ElectionGroupByDomain resolves a relevant domain of influence to its
// election group definition, if any.
func (e *ElectionEventContext) ElectionGroupByDomain(domain string) *ElectionGroupDefinition {
	for i := range e.ElectionGroups {
		if e.ElectionGroups[i].DomainOfInfluence == domain {
			return &e.ElectionGroups[i]
		}
	}
	return nil
}

func (e *ElectionEventContext) AuthorizationByID(id string) *Authorization {
	for _, a := range e.Authorizations {
		if a.AuthorizationID == id {
			return a
		}
	}
	return nil
}

func (e *ElectionEventContext) ContextForBallotBox(ballotBoxID string) *VerificationCardSetContext {
	for _, c := range e.VerificationCardSetContexts {
		if c.BallotBoxID == ballotBoxID {
			return c
		}
	}
	return nil
}

// BallotBoxIDs lists every ballot box referenced by a verification-card-set
// context, in declaration order, for 06.01's completeness check against
// what actually exists under tally/.
func (e *ElectionEventContext) BallotBoxIDs() []string {
	out := make([]string, 0, len(e.VerificationCardSetContexts))
	for _, c := range e.VerificationCardSetContexts {
		out = append(out, c.BallotBoxID)
	}
	return out
}

// AuthenticationKey is a signed announcement of the public verification
// key for one named authority (an election administration member or a
// control component), consumed by trust.Verifier to resolve
// authenticatingAuthority fields to keys (02.xx).
type AuthenticationKey struct {
	Authority string             `json:"authority"`
	SigKey    *elgamal.PublicKey `json:"verificationKey"`
}

// ControlComponentKey is the event-wide, phase-independent announcement
// of a control component's encryption key share, separate from the
// Setup-only key-generation payload (which additionally carries the
// proof of knowledge 04.01 verifies). Tally-phase integrity verifications
// (09.xx) need the key but never see the setup/ sub-tree, so the key is
// republished here where both phases' context/ can reach it.
type ControlComponentKey struct {
	ComponentIndex int                `json:"controlComponentIndex"`
	PublicKey      *elgamal.PublicKey `json:"encryptionKeyShare"`
}

// ContextData is the parsed contents of the context/ sub-tree, common to
// both a Setup and a Tally dataset.
type ContextData struct {
	Config                *ElectionConfig
	EventContext          *ElectionEventContext
	AuthenticationKeys    []*AuthenticationKey
	ControlComponentKeys  []*ControlComponentKey
}

// ComponentPublicKey resolves a control component's encryption key,
// bound to the event's encryption group, or nil if none was announced.
func (c *ContextData) ComponentPublicKey(index int) *elgamal.PublicKey {
	for _, k := range c.ControlComponentKeys {
		if k.ComponentIndex == index {
			return &elgamal.PublicKey{System: c.Config.EncryptionGroup, Y: k.PublicKey.Y}
		}
	}
	return nil
}

// SigKeyFor resolves a named authority's Schnorr verification key, bound
// to the event's encryption group, or nil if no key was announced for
// that authority. trust.SchnorrVerifier calls this to avoid every
// verification body re-walking AuthenticationKeys itself.
func (c *ContextData) SigKeyFor(authority string) *elgamal.PublicKey {
	for _, k := range c.AuthenticationKeys {
		if k.Authority == authority {
			return &elgamal.PublicKey{System: c.Config.EncryptionGroup, Y: k.SigKey.Y}
		}
	}
	return nil
}

const (
	fileElectionConfig   = "election-config.json"
	fileEventContext     = "event-context.json"
	fileAuthKeys         = "authentication-keys.json"
	fileComponentKeys    = "control-component-keys.json"
)

// Context returns the parsed context/ sub-tree, parsed and memoized once
// per Root regardless of how many verifications read it concurrently.
func (r *Root) Context() (*ContextData, error) {
	return r.context.get(func() (*ContextData, error) {
		return loadContextData(r.contextPath())
	})
}

func loadContextData(dir string) (*ContextData, error) {
	cfg, err := readJSON[ElectionConfig](filepath.Join(dir, fileElectionConfig))
	if err != nil {
		return nil, fmt.Errorf("loading election config: %w", err)
	}
	evc, err := readJSON[ElectionEventContext](filepath.Join(dir, fileEventContext))
	if err != nil {
		return nil, fmt.Errorf("loading event context: %w", err)
	}
	var keys []*AuthenticationKey
	if err := readJSONInto(filepath.Join(dir, fileAuthKeys), &keys); err != nil {
		return nil, fmt.Errorf("loading authentication keys: %w", err)
	}
	var ccKeys []*ControlComponentKey
	if err := readJSONInto(filepath.Join(dir, fileComponentKeys), &ccKeys); err != nil {
		return nil, fmt.Errorf("loading control component keys: %w", err)
	}
	return &ContextData{Config: cfg, EventContext: evc, AuthenticationKeys: keys, ControlComponentKeys: ccKeys}, nil
}

func readJSON[T any](path string) (*T, error) {
	var v T
	if err := readJSONInto(path, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func readJSONInto(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
