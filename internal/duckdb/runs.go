package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/multierr"

	"github.com/inodb/gibbs-motif/internal/gibbs"
)

// ErrRunNotFound is returned when a run ID is not in the history.
var ErrRunNotFound = errors.New("run not found")

// Run is one stored search.
type Run struct {
	ID        string
	CreatedAt time.Time
	Input     FileFingerprint
	Sequences int

	Seed       uint64
	Strategy   string
	KMin       int
	KMax       int
	TrialsPerK int
	Iterations int

	BestK        int
	BestScore    float64
	BestMotifs   []string
	WorstMotif   string
	Threshold    float64
	FailedTrials int
}

// NewRun describes a finished search and its rescan.
func NewRun(id string, input FileFingerprint, sequences int, opts gibbs.Options, res *gibbs.SearchResult, scan *gibbs.ScanResult) *Run {
	return &Run{
		ID:           id,
		CreatedAt:    time.Now().UTC(),
		Input:        input,
		Sequences:    sequences,
		Seed:         opts.Seed,
		Strategy:     string(opts.Strategy),
		KMin:         opts.KMin,
		KMax:         opts.KMax,
		TrialsPerK:   opts.TrialsPerK,
		Iterations:   opts.Iterations,
		BestK:        res.Best.K,
		BestScore:    res.Best.Score,
		BestMotifs:   res.Best.Motifs,
		WorstMotif:   scan.Threshold.Motif,
		Threshold:    scan.Threshold.Score,
		FailedTrials: res.Failed,
	}
}

// motif sets keep their absent entries as empty fields
func joinMotifs(motifs []string) string { return strings.Join(motifs, ",") }

func splitMotifs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// SaveRun stores a run together with its trial scores and hits. If the
// trials or hits cannot be stored, the run is removed again.
func (s *Store) SaveRun(run *Run, trials []gibbs.TrialResult, hits []gibbs.Hit) error {
	var modTime any
	if !run.Input.ModTime.IsZero() {
		modTime = run.Input.ModTime.UTC()
	}

	if _, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Input.Path, run.Input.Size, modTime, int64(run.Sequences),
		run.Seed, run.Strategy, int64(run.KMin), int64(run.KMax), int64(run.TrialsPerK), int64(run.Iterations),
		int64(run.BestK), run.BestScore, joinMotifs(run.BestMotifs), run.WorstMotif, run.Threshold,
		int64(run.FailedTrials),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := s.appendRows("trials", len(trials), func(a *goduckdb.Appender, i int) error {
		t := trials[i]
		return a.AppendRow(run.ID, int64(t.K), int64(t.Trial), t.Score, joinMotifs(t.Motifs))
	}); err != nil {
		return multierr.Append(fmt.Errorf("append trials: %w", err), s.DeleteRun(run.ID))
	}

	if err := s.appendRows("hits", len(hits), func(a *goduckdb.Appender, i int) error {
		h := hits[i]
		var closest any
		if h.ClosestStartCodon != nil {
			closest = int64(*h.ClosestStartCodon)
		}
		return a.AppendRow(run.ID, int64(h.SequenceIndex), int64(h.Strand), int64(h.Position),
			h.Score, h.Match, h.Window, closest)
	}); err != nil {
		return multierr.Append(fmt.Errorf("append hits: %w", err), s.DeleteRun(run.ID))
	}

	return nil
}

// appendRows batch-inserts n rows into table using the Appender API.
func (s *Store) appendRows(table string, n int, appendRow func(*goduckdb.Appender, int) error) error {
	if n == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for i := 0; i < n; i++ {
		if err := appendRow(appender, i); err != nil {
			return err
		}
	}

	return appender.Flush()
}

const runColumns = `run_id, created_at, input_path, input_size, input_modtime, sequences,
	seed, strategy, k_min, k_max, trials_per_k, iterations,
	best_k, best_score, best_motifs, worst_motif, threshold, failed_trials`

func scanRun(row interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		r       Run
		modTime sql.NullTime
		motifs  string
	)
	if err := row.Scan(
		&r.ID, &r.CreatedAt, &r.Input.Path, &r.Input.Size, &modTime, &r.Sequences,
		&r.Seed, &r.Strategy, &r.KMin, &r.KMax, &r.TrialsPerK, &r.Iterations,
		&r.BestK, &r.BestScore, &motifs, &r.WorstMotif, &r.Threshold, &r.FailedTrials,
	); err != nil {
		return nil, err
	}
	if modTime.Valid {
		r.Input.ModTime = modTime.Time
	}
	r.BestMotifs = splitMotifs(motifs)
	return &r, nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0 or less
// returns every run.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, run_id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LoadRun returns a single run by ID.
func (s *Store) LoadRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// LoadTrials returns the trial scores of a run in (k, trial) order.
func (s *Store) LoadTrials(runID string) ([]gibbs.TrialResult, error) {
	rows, err := s.db.Query(`SELECT k, trial, score, motifs FROM trials
		WHERE run_id = ? ORDER BY k, trial`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer rows.Close()

	var trials []gibbs.TrialResult
	for rows.Next() {
		var (
			t      gibbs.TrialResult
			motifs string
		)
		if err := rows.Scan(&t.K, &t.Trial, &t.Score, &motifs); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		t.Seq = len(trials)
		t.Motifs = splitMotifs(motifs)
		trials = append(trials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trials: %w", err)
	}
	return trials, nil
}

// LoadHits returns the hits of a run ordered by sequence, strand and position.
func (s *Store) LoadHits(runID string) ([]gibbs.Hit, error) {
	rows, err := s.db.Query(`SELECT sequence_index, strand, hit_position, score,
		match_seq, window_seq, closest_start_codon
		FROM hits WHERE run_id = ?
		ORDER BY sequence_index, strand, hit_position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query hits: %w", err)
	}
	defer rows.Close()

	var hits []gibbs.Hit
	for rows.Next() {
		var (
			h       gibbs.Hit
			strand  int
			closest sql.NullInt64
		)
		if err := rows.Scan(&h.SequenceIndex, &strand, &h.Position, &h.Score,
			&h.Match, &h.Window, &closest); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		h.Strand = gibbs.Strand(strand)
		if closest.Valid {
			pos := int(closest.Int64)
			h.ClosestStartCodon = &pos
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hits: %w", err)
	}
	return hits, nil
}

// DeleteRun removes a run and everything stored with it. A failure on one
// table does not stop the others from being cleared.
func (s *Store) DeleteRun(runID string) error {
	var errs error
	for _, table := range []string{"hits", "trials", "runs"} {
		if _, err := s.db.Exec(`DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete from %s: %w", table, err))
		}
	}
	return errs
}
