// Package setup holds the concrete verification bodies for the Setup
// phase (01.xx Completeness, 02.xx Authentication, 03.xx Consistency,
// 04.xx Integrity, 05.xx Evidence), one file per category matching the
// shapes of spec §4.4.
package setup

import (
	"fmt"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/verify"
)

// ContextTreePresent (01.01) asserts the context/ sub-tree parses: the
// election configuration, event context and authentication key list are
// all readable and schema-valid.
func ContextTreePresent(ctx *verify.Context) {
	if _, err := ctx.Dataset.Context(); err != nil {
		ctx.AppendError(anomaly.AtFile("context"), fmt.Errorf("context sub-tree incomplete: %w", err))
	}
}

// ControlComponentsPresent (01.02) asserts every control component
// declared by the election configuration has a corresponding setup/ccN/
// folder with a readable key-generation payload, and that its shuffle
// payloads parse. A missing shuffles/ directory reads as an empty one and
// is not reported.
func ControlComponentsPresent(ctx *verify.Context) {
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
	expected := cd.Config.ControlComponentCount
	loc := anomaly.AtFile("setup")
	if len(sd.ControlComponents) != expected {
		ctx.AppendFailure(loc, "expected %d control component folders, found %d", expected, len(sd.ControlComponents))
	}
	for i := 1; i <= expected; i++ {
		cc := sd.ComponentByIndex(i)
		ccLoc := loc.With(fmt.Sprintf("cc%d", i))
		if cc == nil {
			ctx.AppendFailure(ccLoc, "missing control component folder cc%d", i)
			continue
		}
		if _, err := cc.KeyGeneration(); err != nil {
			ctx.AppendError(ccLoc.With("key-generation.json"), err)
		}
		if _, err := cc.ShuffleProofs(); err != nil {
			ctx.AppendError(ccLoc.With("shuffles"), err)
		}
	}
}
