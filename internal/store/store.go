// Package store persists a summary of each solve run: the input that
// produced it, the weights used, and the resulting cost and feasibility.
// It exists so a fleet operator can compare successive runs against the
// same instance without re-parsing solver output by hand.
package store

import (
	"context"
	"errors"
	"time"

	"trashcvrp/internal/routeplan"
)

// RunRecord is one completed solve.
type RunRecord struct {
	RunID        string
	InputHash    string
	Weights      routeplan.Weights
	TotalCost    float64
	VehiclesUsed int
	Unassigned   int
	Feasible     bool
	Iterations   int
	Stopped      string
	CreatedAt    time.Time
}

// RunStore records and retrieves RunRecords.
type RunStore interface {
	SaveRun(ctx context.Context, rec RunRecord) error
	GetRun(ctx context.Context, runID string) (RunRecord, error)
	ListRuns(ctx context.Context, inputHash string, limit int) ([]RunRecord, error)
}

var ErrNotFound = errors.New("not found")
