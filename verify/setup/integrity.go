package setup

import (
	"fmt"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/verify"
)

// KeyGenerationProofsOfKnowledge (04.01) verifies, for every control
// component, the zero-knowledge proof of knowledge of the secret key
// corresponding to its published encryption key share.
func KeyGenerationProofsOfKnowledge(ctx *verify.Context) {
	sd, err := ctx.Dataset.Setup()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("setup"), err)
		return
	}
	for _, cc := range sd.ControlComponents {
		loc := anomaly.AtFile("setup").With(fmt.Sprintf("cc%d", cc.Index)).With("key-generation.json").With("encryptionKeyProof")
		kg, err := cc.KeyGeneration()
		if err != nil {
			ctx.AppendError(loc, err)
			continue
		}
		pk := kg.Content.PublicKey()
		if pk.System == nil {
			ctx.AppendError(loc, fmt.Errorf("control component %d key share has no encryption group bound", cc.Index))
			continue
		}
		if err := pk.VerifyProof(kg.Content.EncryptionPoK); err != nil {
			ctx.AppendFailure(loc, "proof of knowledge of secret key for control component %d does not verify: %v", cc.Index, err)
		}
	}
}
