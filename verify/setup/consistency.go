package setup

import (
	"fmt"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/verify"
)

// EncryptionGroupAgreement (03.01) asserts the primes p, q and generator
// g of the encryption group appear identically in every control
// component's setup payload. Checks the entire n-tuple and reports every
// deviating source, not just the first pair (§4.4's Consistency shape).
func EncryptionGroupAgreement(ctx *verify.Context) {
	sd, err := ctx.Dataset.Setup()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("setup"), err)
		return
	}
	var referenceP, referenceQ, referenceG string
	var referenceFrom int
	for _, cc := range sd.ControlComponents {
		loc := anomaly.AtFile("setup").With(fmt.Sprintf("cc%d", cc.Index)).With("key-generation.json").With("encryptionGroup")
		kg, err := cc.KeyGeneration()
		if err != nil {
			ctx.AppendError(loc, err)
			continue
		}
		group := kg.Content.EncryptionGroup
		if group == nil || group.P == nil || group.Q == nil || group.G == nil {
			ctx.AppendError(loc, fmt.Errorf("control component %d has no encryption group", cc.Index))
			continue
		}
		p, q, g := group.P.String(), group.Q.String(), group.G.String()
		if referenceP == "" {
			referenceP, referenceQ, referenceG, referenceFrom = p, q, g, cc.Index
			continue
		}
		if p != referenceP || q != referenceQ || g != referenceG {
			ctx.AppendFailure(loc, "encryption group (p=%s, q=%s, g=%s) disagrees with control component %d's (p=%s, q=%s, g=%s)",
				p, q, g, referenceFrom, referenceP, referenceQ, referenceG)
		}
	}
}

// ControlComponentCountMatches (03.02) asserts the number of control
// component folders present matches the count declared in the election
// configuration.
func ControlComponentCountMatches(ctx *verify.Context) {
	cd, err := ctx.Dataset.Context()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("context"), err)
		return
	}
	sd, err := ctx.Dataset.Setup()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("setup"), err)
		return
	}
	if len(sd.ControlComponents) != cd.Config.ControlComponentCount {
		ctx.AppendFailure(anomaly.AtFile("setup"), "found %d control components, election configuration declares %d",
			len(sd.ControlComponents), cd.Config.ControlComponentCount)
	}
}
