package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"trashcvrp/internal/routeplan"
)

// Postgres is a RunStore backed by a `runs` table, selected when
// DATABASE_URL is set.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
	run_id        text PRIMARY KEY,
	input_hash    text NOT NULL,
	weights       jsonb NOT NULL,
	total_cost    double precision NOT NULL,
	vehicles_used int NOT NULL,
	unassigned    int NOT NULL,
	feasible      boolean NOT NULL,
	iterations    int NOT NULL,
	stopped       text NOT NULL,
	created_at    timestamptz NOT NULL
)`)
	return err
}

func (p *Postgres) SaveRun(ctx context.Context, rec RunRecord) error {
	w, err := json.Marshal(rec.Weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
INSERT INTO runs (run_id, input_hash, weights, total_cost, vehicles_used, unassigned, feasible, iterations, stopped, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (run_id) DO UPDATE SET
	total_cost=excluded.total_cost, vehicles_used=excluded.vehicles_used,
	unassigned=excluded.unassigned, feasible=excluded.feasible,
	iterations=excluded.iterations, stopped=excluded.stopped`,
		rec.RunID, rec.InputHash, w, rec.TotalCost, rec.VehiclesUsed, rec.Unassigned,
		rec.Feasible, rec.Iterations, rec.Stopped, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (p *Postgres) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := p.db.QueryRowContext(ctx, `
SELECT run_id, input_hash, weights, total_cost, vehicles_used, unassigned, feasible, iterations, stopped, created_at
FROM runs WHERE run_id=$1`, runID)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return rec, nil
}

func (p *Postgres) ListRuns(ctx context.Context, inputHash string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
SELECT run_id, input_hash, weights, total_cost, vehicles_used, unassigned, feasible, iterations, stopped, created_at
FROM runs WHERE input_hash=$1 ORDER BY created_at DESC LIMIT $2`, inputHash, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var rec RunRecord
	var w []byte
	if err := row.Scan(&rec.RunID, &rec.InputHash, &w, &rec.TotalCost, &rec.VehiclesUsed,
		&rec.Unassigned, &rec.Feasible, &rec.Iterations, &rec.Stopped, &rec.CreatedAt); err != nil {
		return RunRecord{}, err
	}
	var weights routeplan.Weights
	if err := json.Unmarshal(w, &weights); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal weights: %w", err)
	}
	rec.Weights = weights
	return rec, nil
}
