package state

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a run or step does not exist.
var ErrNotFound = errors.New("not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	parent_id    TEXT,
	seed         INTEGER NOT NULL,
	config_yaml  TEXT NOT NULL,
	status       TEXT NOT NULL,
	steps        INTEGER NOT NULL DEFAULT 0,
	stop_step    INTEGER,
	created_at   TEXT NOT NULL,
	finished_at  TEXT,
	FOREIGN KEY (parent_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS run_steps (
	run_id        TEXT NOT NULL,
	step          INTEGER NOT NULL,
	prev_state    BLOB NOT NULL,
	state         BLOB NOT NULL,
	force         BLOB NOT NULL,
	goal_index    INTEGER NOT NULL,
	stop_counter  INTEGER NOT NULL,
	continue      INTEGER NOT NULL,
	created_at    TEXT NOT NULL,
	PRIMARY KEY (run_id, step),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS transition_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	step          INTEGER NOT NULL,
	from_goal     INTEGER NOT NULL,
	to_goal       INTEGER NOT NULL,
	rule          TEXT NOT NULL,
	cue           INTEGER NOT NULL,
	decision      TEXT NOT NULL,
	reason        TEXT,
	trace_json    TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store persists engine runs in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return newStore(db)
}

// newStore applies the pragmas and schema. db is closed on failure.
func newStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region create-run
// CreateRun inserts a new running run. parentID may be empty.
func (s *Store) CreateRun(parentID string, seed int64, configYAML string) (RunRecord, error) {
	rec := RunRecord{
		RunID:      uuid.New().String(),
		ParentID:   parentID,
		Seed:       seed,
		ConfigYAML: configYAML,
		Status:     StatusRunning,
		CreatedAt:  time.Now().UTC(),
	}

	var parentPtr interface{}
	if parentID != "" {
		parentPtr = parentID
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, parent_id, seed, config_yaml, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, parentPtr, seed, configYAML, rec.Status, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}
// #endregion create-run

// #region append-step
// AppendStep stores one step and updates the run summary atomically.
func (s *Store) AppendStep(rec StepRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO run_steps (run_id, step, prev_state, state, force, goal_index, stop_counter, continue, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Step, encodeVector(rec.PrevState), encodeVector(rec.State), encodeVector(rec.Force),
		rec.GoalIndex, rec.StopCounter, boolToInt(rec.Continue), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert step %d: %w", rec.Step, err)
	}

	_, err = tx.Exec(`UPDATE runs SET steps = ? WHERE run_id = ? AND steps < ?`, rec.Step, rec.RunID, rec.Step)
	if err != nil {
		return fmt.Errorf("update run steps: %w", err)
	}
	if !rec.Continue {
		_, err = tx.Exec(`UPDATE runs SET stop_step = ? WHERE run_id = ? AND stop_step IS NULL`, rec.Step, rec.RunID)
		if err != nil {
			return fmt.Errorf("update stop step: %w", err)
		}
	}

	return tx.Commit()
}
// #endregion append-step

// #region finish-run
// FinishRun marks a run completed or stopped.
func (s *Store) FinishRun(runID, status string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ? WHERE run_id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}
// #endregion finish-run

// #region get-run
const runColumns = `run_id, parent_id, seed, config_yaml, status, steps, stop_step, created_at, finished_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	var parentID, finishedStr sql.NullString
	var stopStep sql.NullInt64
	var createdStr string

	if err := row.Scan(&rec.RunID, &parentID, &rec.Seed, &rec.ConfigYAML, &rec.Status,
		&rec.Steps, &stopStep, &createdStr, &finishedStr); err != nil {
		return RunRecord{}, err
	}
	if parentID.Valid {
		rec.ParentID = parentID.String
	}
	if stopStep.Valid {
		rec.StopStep = int(stopStep.Int64)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if finishedStr.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedStr.String)
	}
	return rec, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	rec, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion list-runs

// #region list-steps
const stepColumns = `run_id, step, prev_state, state, force, goal_index, stop_counter, continue, created_at`

func scanStep(row scanner) (StepRecord, error) {
	var rec StepRecord
	var prevBlob, stateBlob, forceBlob []byte
	var cont int
	var createdStr string

	if err := row.Scan(&rec.RunID, &rec.Step, &prevBlob, &stateBlob, &forceBlob,
		&rec.GoalIndex, &rec.StopCounter, &cont, &createdStr); err != nil {
		return StepRecord{}, err
	}
	var err error
	if rec.PrevState, err = decodeVector(prevBlob); err != nil {
		return StepRecord{}, fmt.Errorf("prev_state: %w", err)
	}
	if rec.State, err = decodeVector(stateBlob); err != nil {
		return StepRecord{}, fmt.Errorf("state: %w", err)
	}
	if rec.Force, err = decodeVector(forceBlob); err != nil {
		return StepRecord{}, fmt.Errorf("force: %w", err)
	}
	rec.Continue = cont != 0
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// ListSteps returns every step of a run in order.
func (s *Store) ListSteps(runID string) ([]StepRecord, error) {
	rows, err := s.db.Query(`SELECT `+stepColumns+` FROM run_steps WHERE run_id = ? ORDER BY step ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		rec, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestStep returns the highest-numbered step of a run.
func (s *Store) LatestStep(runID string) (StepRecord, error) {
	rec, err := scanStep(s.db.QueryRow(
		`SELECT `+stepColumns+` FROM run_steps WHERE run_id = ? ORDER BY step DESC LIMIT 1`, runID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return StepRecord{}, fmt.Errorf("latest step of %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return StepRecord{}, fmt.Errorf("latest step of %s: %w", runID, err)
	}
	return rec, nil
}
// #endregion list-steps

// #region vector-encoding
func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("vector blob of %d bytes is not a float64 multiple", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
// #endregion vector-encoding
