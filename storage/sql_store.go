// Package storage persists absorption systems and their ion column stores
// in SQLite.
package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
	"github.com/teranos/ionclm/ixgest/lls"
	"github.com/teranos/ionclm/logger"
)

// Query constants
const (
	SystemUpsertQuery = `
		INSERT INTO systems (name, ra, dec, zem, zabs, vlim_lo, vlim_hi, nhi, sig_nhi_lo, sig_nhi_hi, mh, ref, citation, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			ra = excluded.ra, dec = excluded.dec, zem = excluded.zem, zabs = excluded.zabs,
			vlim_lo = excluded.vlim_lo, vlim_hi = excluded.vlim_hi, nhi = excluded.nhi,
			sig_nhi_lo = excluded.sig_nhi_lo, sig_nhi_hi = excluded.sig_nhi_hi, mh = excluded.mh,
			ref = excluded.ref, citation = excluded.citation, updated_at = excluded.updated_at`

	SystemSelectColumns = `
		SELECT name, ra, dec, zem, zabs, vlim_lo, vlim_hi, nhi, sig_nhi_lo, sig_nhi_hi, mh, ref, citation
		FROM systems`

	ColumnsDeleteQuery = `
		DELETE FROM ion_columns WHERE system = ? AND citation = ?`

	ColumnInsertQuery = `
		INSERT INTO ion_columns (system, citation, z, stage, position, log_n, sigma, flag, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ColumnsSelectQuery = `
		SELECT citation, z, stage, log_n, sigma, flag, note
		FROM ion_columns WHERE system = ?
		ORDER BY citation, position`

	RunInsertQuery = `
		INSERT INTO ingest_runs (id, sources, dry_run, systems, excluded, ions, skipped, success, message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	RunSelectQuery = `
		SELECT id, sources, dry_run, systems, excluded, ions, skipped, success, message, started_at, finished_at
		FROM ingest_runs ORDER BY started_at DESC LIMIT ?`
)

// SQLStore keeps systems, their column stores and ingest runs.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore creates a store over an already migrated database.
func NewSQLStore(db *sql.DB, log *zap.SugaredLogger) *SQLStore {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SQLStore{db: db, logger: log}
}

// Citation is one publication's store for a system.
type Citation struct {
	Key   string
	Store *clm.Store
}

// System is a stored absorption system with every citation attached to it.
type System struct {
	Info      lls.SystemInfo
	Citations []Citation
}

// Citation returns the store attached under key.
func (s *System) Citation(key string) (*clm.Store, bool) {
	for _, c := range s.Citations {
		if c.Key == key {
			return c.Store, true
		}
	}
	return nil, false
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveSystem(ctx context.Context, ex execer, info lls.SystemInfo) error {
	var mh sql.NullFloat64
	if info.MH != nil {
		mh = sql.NullFloat64{Float64: *info.MH, Valid: true}
	}
	_, err := ex.ExecContext(ctx, SystemUpsertQuery,
		info.Name, info.RA, info.Dec, info.Zem, info.Zabs,
		info.VLim[0], info.VLim[1], info.NHI, info.SigNHI[0], info.SigNHI[1],
		mh, info.Ref, info.Citation, time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "save system %s", info.Name)
	}
	return nil
}

// SaveSystem inserts or updates the system row.
func (s *SQLStore) SaveSystem(ctx context.Context, info lls.SystemInfo) error {
	if info.Name == "" {
		return errors.New("system name is empty")
	}
	return saveSystem(ctx, s.db, info)
}

// SaveColumns replaces the store attached to system under citation.
func (s *SQLStore) SaveColumns(ctx context.Context, system, citation string, store *clm.Store) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", system)
	}
	if err := saveColumns(ctx, tx, system, citation, store); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit columns for %s", system)
	}
	return nil
}

func saveColumns(ctx context.Context, ex execer, system, citation string, store *clm.Store) error {
	if _, err := ex.ExecContext(ctx, ColumnsDeleteQuery, system, citation); err != nil {
		return errors.Wrapf(err, "clear %s/%s", system, citation)
	}
	for i, row := range store.Rows() {
		_, err := ex.ExecContext(ctx, ColumnInsertQuery,
			system, citation, row.Ion.Z, row.Ion.Stage, i,
			row.LogN, row.Sigma, int(row.Flag), int(store.Note(row.Ion)),
		)
		if err != nil {
			return errors.Wrapf(err, "insert %s for %s", row.Ion.Label(), system)
		}
	}
	return nil
}

// Attach writes info and store in one transaction.
func (s *SQLStore) Attach(ctx context.Context, info lls.SystemInfo, citation string, store *clm.Store) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", info.Name)
	}
	if err := saveSystem(ctx, tx, info); err != nil {
		tx.Rollback()
		return err
	}
	if err := saveColumns(ctx, tx, info.Name, citation, store); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit %s", info.Name)
	}
	s.logger.Debugw("Stored system",
		logger.FieldSystem, info.Name,
		logger.FieldCitation, citation,
		logger.FieldIons, store.Len())
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSystem(row scanner) (lls.SystemInfo, error) {
	var (
		info lls.SystemInfo
		mh   sql.NullFloat64
	)
	err := row.Scan(&info.Name, &info.RA, &info.Dec, &info.Zem, &info.Zabs,
		&info.VLim[0], &info.VLim[1], &info.NHI, &info.SigNHI[0], &info.SigNHI[1],
		&mh, &info.Ref, &info.Citation)
	if err != nil {
		return info, err
	}
	if mh.Valid {
		v := mh.Float64
		info.MH = &v
	}
	return info, nil
}

// ListSystems returns every stored system ordered by name.
func (s *SQLStore) ListSystems(ctx context.Context) ([]lls.SystemInfo, error) {
	rows, err := s.db.QueryContext(ctx, SystemSelectColumns+" ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "list systems")
	}
	defer rows.Close()

	var out []lls.SystemInfo
	for rows.Next() {
		info, err := scanSystem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan system")
		}
		out = append(out, info)
	}
	return out, errors.Wrap(rows.Err(), "list systems")
}

// LoadSystem returns the named system and its citations. An unknown name is
// a not-found error.
func (s *SQLStore) LoadSystem(ctx context.Context, name string) (*System, error) {
	info, err := scanSystem(s.db.QueryRowContext(ctx, SystemSelectColumns+" WHERE name = ?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithHint(errors.NewNotFoundError("system %s", name), "run 'ionclm systems' to list stored systems")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load system %s", name)
	}

	citations, err := s.loadColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	return &System{Info: info, Citations: citations}, nil
}

func (s *SQLStore) loadColumns(ctx context.Context, system string) ([]Citation, error) {
	rows, err := s.db.QueryContext(ctx, ColumnsSelectQuery, system)
	if err != nil {
		return nil, errors.Wrapf(err, "load columns for %s", system)
	}
	defer rows.Close()

	var (
		out      []Citation
		builder  *clm.Builder
		current  string
		finished = func() {
			if builder != nil {
				out = append(out, Citation{Key: current, Store: builder.Build()})
			}
		}
	)
	for rows.Next() {
		var (
			citation    string
			id          ion.ID
			logN, sigma float64
			flag, note  int
		)
		if err := rows.Scan(&citation, &id.Z, &id.Stage, &logN, &sigma, &flag, &note); err != nil {
			return nil, errors.Wrapf(err, "scan column for %s", system)
		}
		if builder == nil || citation != current {
			finished()
			builder = clm.NewBuilder()
			current = citation
		}
		row := clm.Row{Ion: id, Measurement: clm.Measurement{LogN: logN, Sigma: sigma, Flag: clm.Flag(flag)}}
		if err := builder.Add(row); err != nil {
			return nil, errors.Wrapf(err, "rebuild %s/%s", system, citation)
		}
		if note != 0 {
			if err := builder.Annotate(id, clm.Note(note)); err != nil {
				return nil, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "load columns for %s", system)
	}
	finished()
	return out, nil
}

// Run is one recorded ingest.
type Run struct {
	ID         string
	Sources    []string
	DryRun     bool
	Systems    int
	Excluded   int
	Ions       int
	Skipped    int
	Success    bool
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunID returns a fresh ingest run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewRun summarizes a processing result under id.
func NewRun(id string, sources []string, res *lls.ProcessingResult) Run {
	run := Run{
		ID:         id,
		Sources:    sources,
		DryRun:     res.DryRun,
		Systems:    res.Systems,
		Excluded:   res.Excluded,
		Ions:       res.Ions,
		Skipped:    res.Skipped,
		Success:    res.Success,
		Message:    res.Message,
		StartedAt:  res.StartTime,
		FinishedAt: res.EndTime,
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	return run
}

// RecordRun stores run. The ID must be a UUID.
func (s *SQLStore) RecordRun(ctx context.Context, run Run) error {
	if _, err := uuid.Parse(run.ID); err != nil {
		return errors.Wrapf(err, "run id %q", run.ID)
	}
	_, err := s.db.ExecContext(ctx, RunInsertQuery,
		run.ID, strings.Join(run.Sources, ","), run.DryRun,
		run.Systems, run.Excluded, run.Ions, run.Skipped,
		run.Success, run.Message, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "record run %s", run.ID)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (s *SQLStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, RunSelectQuery, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run     Run
			sources string
		)
		err := rows.Scan(&run.ID, &sources, &run.DryRun, &run.Systems, &run.Excluded,
			&run.Ions, &run.Skipped, &run.Success, &run.Message, &run.StartedAt, &run.FinishedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		if sources != "" {
			run.Sources = strings.Split(sources, ",")
		}
		out = append(out, run)
	}
	return out, errors.Wrap(rows.Err(), "list runs")
}
