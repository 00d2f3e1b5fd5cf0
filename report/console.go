package report

import (
	"github.com/rs/zerolog"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/run"
)

// ConsoleSink logs every event through a zerolog.Logger, the same way the
// teacher logs block validation progress: one structured line per
// transition, one per anomaly, and a summary line on completion.
type ConsoleSink struct {
	log zerolog.Logger
}

func NewConsoleSink(log zerolog.Logger) *ConsoleSink {
	return &ConsoleSink{log: log}
}

func (c *ConsoleSink) OnStatusChange(id string, status catalog.Status) {
	c.log.Info().Str("id", id).Str("status", status.String()).Msg("verification status changed")
}

func (c *ConsoleSink) OnAnomaly(a anomaly.Anomaly) {
	ev := c.log.Warn()
	if a.Kind == anomaly.Error {
		ev = c.log.Error()
	}
	ev = ev.Str("id", a.VerificationID).Str("location", a.Location.String())
	if a.Cause != nil {
		ev = ev.Err(a.Cause)
	}
	ev.Msg(a.Message)
}

func (c *ConsoleSink) OnComplete(info *run.Information) {
	anomalies := info.Anomalies()
	c.log.Info().
		Str("run", info.ID.String()).
		Str("outcome", info.Outcome().String()).
		Int("anomalies", len(anomalies)).
		Dur("elapsed", info.EndedAt.Sub(info.StartedAt)).
		Msg("run complete")
}
