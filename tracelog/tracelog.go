// Package tracelog persists and exports monitor traces so a presentation
// layer can store runs or ship them elsewhere. The canonical sink is a
// SQLite database; CSV and JSONL writers cover one-shot exports.
package tracelog

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/dlsim/logsim"
)

// A Store keeps simulation runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// A Run is one recorded simulation: the netlist that was executed and
// how many cycles were run.
type Run struct {
	ID        string
	Netlist   string
	Cycles    int
	CreatedAt time.Time
}

// Open opens (and if necessary creates) the store at path. Use ":memory:"
// for an in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open trace store")
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate trace store")
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		netlist TEXT NOT NULL,
		cycles INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		signal TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, signal, cycle),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id, signal);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores every monitored trace of sim under a fresh run ID and
// returns it.
func (s *Store) SaveRun(sim *logsim.Simulator) (string, error) {
	mons := sim.Monitors()
	if mons == nil {
		return "", errors.New("no circuit loaded")
	}
	runID := uuid.New().String()
	tx, err := s.db.Begin()
	if err != nil {
		return "", errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	cycles := sim.Network().Cycle()
	if _, err := tx.Exec(
		`INSERT INTO runs (id, netlist, cycles) VALUES (?, ?, ?)`,
		runID, sim.Netlist(), cycles,
	); err != nil {
		return "", errors.Wrap(err, "insert run")
	}
	ins, err := tx.Prepare(`INSERT INTO samples (run_id, signal, cycle, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "prepare samples")
	}
	defer ins.Close()
	for _, pt := range mons.Points() {
		name := sim.PointName(pt)
		for cycle, v := range mons.Trace(pt) {
			if _, err := ins.Exec(runID, name, cycle+1, v.String()); err != nil {
				return "", errors.Wrapf(err, "insert sample %s@%d", name, cycle+1)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit")
	}
	return runID, nil
}

// Run returns the stored run metadata for id.
func (s *Store) Run(id string) (*Run, error) {
	r := &Run{}
	err := s.db.QueryRow(
		`SELECT id, netlist, cycles, created_at FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Netlist, &r.Cycles, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query run")
	}
	return r, nil
}

// Trace returns the stored trace of one signal in a run, in cycle order.
func (s *Store) Trace(runID, signal string) ([]logsim.Signal, error) {
	rows, err := s.db.Query(
		`SELECT value FROM samples WHERE run_id = ? AND signal = ? ORDER BY cycle`,
		runID, signal,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query samples")
	}
	defer rows.Close()
	var trace []logsim.Signal
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan sample")
		}
		trace = append(trace, parseValue(v))
	}
	return trace, rows.Err()
}

// Signals returns the distinct signal names recorded in a run.
func (s *Store) Signals(runID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT signal FROM samples WHERE run_id = ? ORDER BY signal`, runID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query signals")
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, errors.Wrap(err, "scan signal")
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func parseValue(v string) logsim.Signal {
	switch v {
	case "0":
		return logsim.Low
	case "1":
		return logsim.High
	default:
		return logsim.Undefined
	}
}
