package coach

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	ended_at   TEXT,
	epochs     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS epochs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	epoch        INTEGER NOT NULL,
	metrics_json TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// HistoryStoreCallback persists the training log to SQLite: one row per
// run keyed by the history's run ID, one row per epoch. A warm-started
// session keeps its run ID, so continued epochs land in the same run.
// Database errors do not interrupt training; the first one is kept and
// available from Err.
type HistoryStoreCallback struct {
	db      *sql.DB
	lastErr error
}

// NewHistoryStore opens (creating if needed) a SQLite database at path
// and runs migrations.
func NewHistoryStore(path string) (*HistoryStoreCallback, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errorf("history store: open: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, errorf("history store: pragma: %v", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		return nil, errorf("history store: migrate: %v", err)
	}
	return &HistoryStoreCallback{db: db}, nil
}

// Close closes the underlying database.
func (s *HistoryStoreCallback) Close() error {
	return s.db.Close()
}

// Err returns the first database error seen during callbacks, nil if none.
func (s *HistoryStoreCallback) Err() error {
	return s.lastErr
}

func (s *HistoryStoreCallback) record(err error) {
	if err != nil && s.lastErr == nil {
		s.lastErr = err
	}
}

func (s *HistoryStoreCallback) OnInitialize() {}

func (s *HistoryStoreCallback) OnTrainBegin(h *History) {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO runs (run_id, started_at) VALUES (?, ?)`,
		h.RunID(), time.Now().UTC().Format(time.RFC3339),
	)
	s.record(err)
}

func (s *HistoryStoreCallback) OnEpochBegin(h *History) {}

func (s *HistoryStoreCallback) OnEpochEnd(h *History) bool {
	rec, ok := h.Latest()
	if !ok {
		return false
	}
	metrics, err := json.Marshal(rec.Metrics)
	if err != nil {
		s.record(err)
		return false
	}
	_, err = s.db.Exec(
		`INSERT INTO epochs (run_id, epoch, metrics_json, created_at) VALUES (?, ?, ?, ?)`,
		h.RunID(), rec.Epoch, string(metrics), time.Now().UTC().Format(time.RFC3339),
	)
	s.record(err)
	return false
}

func (s *HistoryStoreCallback) OnTrainEnd(h *History) {
	_, err := s.db.Exec(
		`UPDATE runs SET ended_at = ?, epochs = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339), h.Len(), h.RunID(),
	)
	s.record(err)
}

func (s *HistoryStoreCallback) Name() string { return "history_store" }

// LoadRun reads back the persisted records of one run, in epoch order.
func (s *HistoryStoreCallback) LoadRun(runID string) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT epoch, metrics_json FROM epochs WHERE run_id = ? ORDER BY epoch`,
		runID,
	)
	if err != nil {
		return nil, errorf("history store: query: %v", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var epoch int
		var metricsJSON string
		if err := rows.Scan(&epoch, &metricsJSON); err != nil {
			return nil, errorf("history store: scan: %v", err)
		}
		metrics := make(map[string]float64)
		if err := json.Unmarshal([]byte(metricsJSON), &metrics); err != nil {
			return nil, errorf("history store: decode: %v", err)
		}
		records = append(records, Record{Epoch: epoch, Metrics: metrics})
	}
	return records, rows.Err()
}

// Runs lists all persisted run IDs, oldest first.
func (s *HistoryStoreCallback) Runs() ([]string, error) {
	rows, err := s.db.Query(`SELECT run_id FROM runs ORDER BY started_at`)
	if err != nil {
		return nil, errorf("history store: query: %v", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errorf("history store: scan: %v", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
