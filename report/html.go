package report

import (
	"html/template"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/skratchdot/open-golang/open"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/run"
)

// HTMLSink renders a completed run to a static summary page and, when
// requested, opens it in the system browser — the teacher's web UI
// collapsed to a single static file, since this verifier has no running
// server for a browser to talk to (§1 out-of-scope: no GUI, no network).
type HTMLSink struct {
	dir        string
	openOnDone bool
}

func NewHTMLSink(dir string, openOnDone bool) *HTMLSink {
	return &HTMLSink{dir: dir, openOnDone: openOnDone}
}

func (h *HTMLSink) OnStatusChange(string, catalog.Status) {}
func (h *HTMLSink) OnAnomaly(anomaly.Anomaly)              {}

var summaryTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Verification run {{ .ID }}</title>
  </head>
  <body>
    <h1>{{ .Outcome }}</h1>
    <p>root: {{ .Root }} &middot; phase: {{ .Phase }} &middot; elapsed: {{ .Elapsed }}</p>
    <table border="1" cellpadding="4">
      <tr><th>id</th><th>status</th></tr>
      {{ range $id, $status := .Statuses }}
      <tr><td>{{ $id }}</td><td>{{ $status }}</td></tr>
      {{ end }}
    </table>
    <h2>Anomalies</h2>
    <ul>
      {{ range .Anomalies }}
      <li><strong>{{ .Kind }}</strong> [{{ .VerificationID }}] {{ .Location }}: {{ .Message }}</li>
      {{ end }}
    </ul>
  </body>
</html>
`))

type summaryPage struct {
	ID        string
	Root      string
	Phase     string
	Outcome   string
	Elapsed   string
	Statuses  map[string]string
	Anomalies []anomaly.Anomaly
}

func (h *HTMLSink) OnComplete(info *run.Information) {
	statuses := make(map[string]string)
	for id, s := range info.Statuses() {
		statuses[id] = s.String()
	}
	page := summaryPage{
		ID:        info.ID.String(),
		Root:      info.Root,
		Phase:     info.Phase.String(),
		Outcome:   info.Outcome().String(),
		Elapsed:   info.EndedAt.Sub(info.StartedAt).String(),
		Statuses:  statuses,
		Anomalies: info.Anomalies(),
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		log.Warn().Err(err).Msg("failed to create report directory")
		return
	}
	path := filepath.Join(h.dir, info.ID.String()+".html")
	f, err := os.Create(path)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create summary page")
		return
	}
	defer f.Close()
	if err := summaryTemplate.Execute(f, page); err != nil {
		log.Warn().Err(err).Msg("failed to render summary page")
		return
	}
	if h.openOnDone {
		if err := open.Run(path); err != nil {
			log.Warn().Err(err).Msg("failed to open system browser")
		}
	}
}

var _ Sink = (*HTMLSink)(nil)
