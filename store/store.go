// Package store records placement runs in a SQL database. Every run gets an
// xid. The temperatures of a run are recorded through an akita hook, and the
// final block locations on request.
package store

import (
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/mattn/go-sqlite3"    // sqlite3 driver
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/fplace/anneal"
	"github.com/sarchlab/fplace/netlist"
	"github.com/sarchlab/fplace/placement"
	"github.com/sarchlab/fplace/stats"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR(32) PRIMARY KEY,
		name VARCHAR(255),
		seed BIGINT,
		started_at VARCHAR(40),
		finished_at VARCHAR(40),
		cost DOUBLE,
		bb_cost DOUBLE,
		timing_cost DOUBLE,
		cpd DOUBLE,
		num_temps INTEGER,
		total_moves BIGINT,
		digest VARCHAR(64)
	)`,
	`CREATE TABLE IF NOT EXISTS temperatures (
		run_id VARCHAR(32),
		iteration INTEGER,
		elapsed DOUBLE,
		temperature DOUBLE,
		av_cost DOUBLE,
		av_bb_cost DOUBLE,
		av_timing_cost DOUBLE,
		cpd DOUBLE,
		success_rate DOUBLE,
		std_dev DOUBLE,
		rlim DOUBLE,
		crit_exponent DOUBLE,
		total_moves BIGINT,
		alpha DOUBLE
	)`,
	`CREATE TABLE IF NOT EXISTS block_locations (
		run_id VARCHAR(32),
		block VARCHAR(255),
		x INTEGER,
		y INTEGER,
		sub_tile INTEGER,
		layer INTEGER
	)`,
}

// Recorder writes one run into the database.
type Recorder struct {
	db    *sql.DB
	runID xid.ID
	err   error
}

// NewRecorder opens the database with the given driver, sqlite3 or mysql,
// and creates the tables when they are missing.
func NewRecorder(driver, dsn string) (*Recorder, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s store", driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "connect to %s store", driver)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "create store tables")
		}
	}

	return &Recorder{db: db, runID: xid.New()}, nil
}

// RunID returns the id of the recorded run.
func (r *Recorder) RunID() string {
	return r.runID.String()
}

// DB returns the underlying database.
func (r *Recorder) DB() *sql.DB {
	return r.db
}

// StartRun inserts the run.
func (r *Recorder) StartRun(name string, seed int64) error {
	_, err := r.db.Exec(
		`INSERT INTO runs (id, name, seed, started_at) VALUES (?, ?, ?, ?)`,
		r.RunID(), name, seed, now())

	return errors.Wrap(err, "record run")
}

// Func implements sim.Hook. It records every temperature and the summary of
// the finished placement. The first failure is kept and later writes are
// skipped.
func (r *Recorder) Func(ctx sim.HookCtx) {
	if r.err != nil {
		return
	}

	switch ctx.Pos {
	case anneal.HookPosTemperature:
		r.fail(r.recordTemperature(ctx.Item.(stats.StatusRow)))
	case anneal.HookPosFinish:
		r.fail(r.recordSummary(ctx.Item.(anneal.Summary)))
	}
}

func (r *Recorder) fail(err error) {
	if err == nil {
		return
	}

	r.err = err
	slog.Warn("Store write failed", "Run", r.RunID(), "Error", err)
}

// Err returns the first write failure of the hook.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) recordTemperature(row stats.StatusRow) error {
	_, err := r.db.Exec(`INSERT INTO temperatures (
			run_id, iteration, elapsed, temperature, av_cost, av_bb_cost,
			av_timing_cost, cpd, success_rate, std_dev, rlim, crit_exponent,
			total_moves, alpha
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID(), row.Iteration, row.Elapsed, row.Temperature, row.AvCost,
		row.AvBBCost, row.AvTimingCost, row.CPD, row.SuccessRate, row.StdDev,
		row.Rlim, row.CritExponent, row.TotalMoves, row.Alpha)

	return errors.Wrap(err, "record temperature")
}

func (r *Recorder) recordSummary(s anneal.Summary) error {
	_, err := r.db.Exec(`UPDATE runs SET
			finished_at = ?, cost = ?, bb_cost = ?, timing_cost = ?, cpd = ?,
			num_temps = ?, total_moves = ?, digest = ?
		WHERE id = ?`,
		now(), s.Cost, s.BBCost, s.TimingCost, s.CPD, s.NumTemps,
		s.TotalMoves, s.Digest, r.RunID())

	return errors.Wrap(err, "record summary")
}

// RecordPlacement writes the location of every placed block in one
// transaction.
func (r *Recorder) RecordPlacement(st *placement.State) error {
	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "record placement")
	}

	stmt, err := tx.Prepare(`INSERT INTO block_locations
		(run_id, block, x, y, sub_tile, layer) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "record placement")
	}
	defer stmt.Close()

	nl := st.Netlist()
	for i := 0; i < nl.NumBlocks(); i++ {
		b := netlist.BlockID(i)
		if !st.IsPlaced(b) {
			continue
		}

		l := st.Location(b)
		_, err := stmt.Exec(r.RunID(), nl.Block(b).Name, l.X, l.Y, l.SubTile, l.Layer)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record location of %s", nl.Block(b).Name)
		}
	}

	return errors.Wrap(tx.Commit(), "record placement")
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
