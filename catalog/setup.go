package catalog

import (
	"github.com/thechriswalker/evverify/verify"
	vsetup "github.com/thechriswalker/evverify/verify/setup"
)

var setupDescriptors = []Descriptor{
	{ID: "01.01", Name: "Context sub-tree present", Phase: PhaseSetup, Category: Completeness,
		Run: verify.Func(vsetup.ContextTreePresent)},
	{ID: "01.02", Name: "Control component artifacts present", Phase: PhaseSetup, Category: Completeness,
		Run: verify.Func(vsetup.ControlComponentsPresent)},
	{ID: "02.01", Name: "Key-generation payload signatures", Phase: PhaseSetup, Category: Authentication,
		Dependencies: []string{"01.02"}, Run: verify.Func(vsetup.KeyGenerationSignatures)},
	{ID: "02.02", Name: "Shuffle proof payload signatures", Phase: PhaseSetup, Category: Authentication,
		Dependencies: []string{"01.02"}, Run: verify.Func(vsetup.ShuffleProofSignatures)},
	{ID: "03.01", Name: "Encryption group agreement across control components", Phase: PhaseSetup, Category: Consistency,
		Dependencies: []string{"02.01"}, Run: verify.Func(vsetup.EncryptionGroupAgreement)},
	{ID: "03.02", Name: "Control component count matches configuration", Phase: PhaseSetup, Category: Consistency,
		Run: verify.Func(vsetup.ControlComponentCountMatches)},
	{ID: "04.01", Name: "Key-generation proofs of knowledge", Phase: PhaseSetup, Category: Integrity,
		Dependencies: []string{"02.01"}, Run: verify.Func(vsetup.KeyGenerationProofsOfKnowledge)},
	{ID: "05.01", Name: "Shuffle proofs verify", Phase: PhaseSetup, Category: Evidence,
		Dependencies: []string{"02.02"}, Run: verify.Func(vsetup.ShuffleProofsVerify)},
	{ID: "05.02", Name: "Shuffle proof ballot box set agreement", Phase: PhaseSetup, Category: Evidence,
		Dependencies: []string{"02.02"}, Run: verify.Func(vsetup.ShuffleProofSetAgreement)},
}
