package report

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/thechriswalker/evverify/anomaly"
	"github.com/thechriswalker/evverify/catalog"
	"github.com/thechriswalker/evverify/run"
)

// ErrRunMissing is returned from SQLiteHistory.Get for an unknown run id.
var ErrRunMissing = errors.New("run not found")

// SQLiteHistory persists completed runs, ported from the teacher's
// blockchain.SQLiteStorage: a single table, prepared statements per
// operation, opened once at construction. Unlike the teacher's block
// store the payload here is a JSON snapshot rather than a binary block,
// since a run.Information has no canonical wire encoding of its own to
// preserve.
type SQLiteHistory struct {
	mu sync.Mutex
	db *sql.DB
}

// record is the JSON shape persisted per run; run.Information keeps its
// fields unexported behind accessor methods, so history stores a flat
// snapshot instead of the struct itself.
type record struct {
	Root           string               `json:"root"`
	Phase          string               `json:"phase"`
	MaxConcurrency int                  `json:"maxConcurrency"`
	StartedAt      int64                `json:"startedAtUnixNano"`
	EndedAt        int64                `json:"endedAtUnixNano"`
	Outcome        string               `json:"outcome"`
	Statuses       map[string]string    `json:"statuses"`
	Anomalies      []anomaly.Anomaly    `json:"anomalies"`
	Progress       []run.ProgressEvent  `json:"progress"`
}

func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	stmt, err := db.Prepare(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT NOT NULL PRIMARY KEY,
			root TEXT NOT NULL,
			phase TEXT NOT NULL,
			outcome TEXT NOT NULL,
			started_at_unix_nano INTEGER NOT NULL,
			ended_at_unix_nano INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	if _, err = stmt.Exec(); err != nil {
		return nil, err
	}
	return &SQLiteHistory{db: db}, nil
}

func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

// OnStatusChange and OnAnomaly are no-ops: history only records the
// final, complete run, not the play-by-play a ConsoleSink cares about.
func (h *SQLiteHistory) OnStatusChange(string, catalog.Status) {}
func (h *SQLiteHistory) OnAnomaly(anomaly.Anomaly)             {}

func (h *SQLiteHistory) OnComplete(info *run.Information) {
	rec := toRecord(info)
	payload, err := json.Marshal(rec)
	if err != nil {
		// nothing sensible to do with a sink error at this boundary;
		// the run result itself is unaffected by history persistence.
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	stmt, err := h.db.Prepare(`
		INSERT OR REPLACE INTO runs (id, root, phase, outcome, started_at_unix_nano, ended_at_unix_nano, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return
	}
	defer stmt.Close()
	stmt.Exec(info.ID.String(), info.Root, info.Phase.String(), info.Outcome().String(),
		info.StartedAt.UnixNano(), info.EndedAt.UnixNano(), payload)
}

// Get loads a previously persisted run's JSON snapshot by its id string.
func (h *SQLiteHistory) Get(id string) (json.RawMessage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stmt, err := h.db.Prepare(`SELECT payload FROM runs WHERE id = ?`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	row := stmt.QueryRow(id)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunMissing
		}
		return nil, err
	}
	return payload, nil
}

func toRecord(info *run.Information) record {
	statuses := make(map[string]string)
	for id, s := range info.Statuses() {
		statuses[id] = s.String()
	}
	return record{
		Root:           info.Root,
		Phase:          info.Phase.String(),
		MaxConcurrency: info.MaxConcurrency,
		StartedAt:      info.StartedAt.UnixNano(),
		EndedAt:        info.EndedAt.UnixNano(),
		Outcome:        info.Outcome().String(),
		Statuses:       statuses,
		Anomalies:      info.Anomalies(),
		Progress:       info.Progress(),
	}
}

var _ Sink = (*SQLiteHistory)(nil)
