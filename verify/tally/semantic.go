package tally

import (
	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/ech0222"
	"github.com/thechriswalker/evverify/verify"
)

// VerifyECH0222 (09.05) delegates to the semantic comparator (C6):
// builds the calculated result document from the configuration and tally
// payloads, parses the imported eCH-0222 XML, and diffs the two trees.
func VerifyECH0222(ctx *verify.Context) {
	cd, err := ctx.Dataset.Context()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("context"), err)
		return
	}
	td, err := ctx.Dataset.Tally()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("tally"), err)
		return
	}
	calculated, buildErrors := ech0222.Build(cd, td)
	for _, a := range buildErrors {
		ctx.AppendError(a.Location, a.Cause)
	}

	f, err := td.ECH0222Reader()
	if err != nil {
		ctx.AppendError(anomaly.AtFile("ech0222"), err)
		return
	}
	defer f.Close()

	imported, err := ech0222.Parse(f)
	if err != nil {
		ctx.AppendError(anomaly.AtFile("ech0222"), err)
		return
	}

	for _, a := range ech0222.Compare(calculated, imported) {
		ctx.AppendFailure(a.Location, "%s", a.Message)
	}
}
