// Package run wires together parsing, oracle selection, the constructive
// builder, the tabu search driver, and the fleet optimizer into a single
// end-to-end solve, and optionally persists a summary of the result.
package run

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"trashcvrp/internal/builder"
	"trashcvrp/internal/config"
	"trashcvrp/internal/fleet"
	"trashcvrp/internal/model"
	"trashcvrp/internal/monitor"
	"trashcvrp/internal/observe"
	"trashcvrp/internal/oracle"
	"trashcvrp/internal/parse"
	"trashcvrp/internal/routeplan"
	"trashcvrp/internal/solution"
	"trashcvrp/internal/store"
	"trashcvrp/internal/tabu"
)

// Result is everything a caller needs to report or persist a solve.
type Result struct {
	RunID      string
	InputHash  string
	Instance   *parse.Instance
	Solution   *solution.Solution
	Iterations int
	Stopped    string
}

// Options controls how one Solve call assembles its oracle and reports
// progress.
type Options struct {
	Config  config.Config
	Obs     observe.Observer
	Monitor *monitor.Server // optional; nil disables progress broadcast
}

// Solve loads the instance at basePath, runs the constructive builder,
// tabu search, and fleet optimizer in sequence, and returns the best
// solution found.
func Solve(ctx context.Context, basePath string, opts Options) (Result, error) {
	obs := opts.Obs
	if obs == nil {
		obs = observe.Noop{}
	}

	instance, err := parse.LoadInstance(basePath)
	if err != nil {
		return Result{}, err
	}

	oc, err := buildOracle(instance, opts.Config)
	if err != nil {
		return Result{}, err
	}

	deadline, cancel := context.WithTimeout(ctx, opts.Config.TimeBudget)
	defer cancel()

	buildOutcome := builder.RunAll(deadline, instance.Vehicles, instance.Catalog, oc, opts.Config.Weights, opts.Config.Seed, obs)
	obs.Printf("run: builder strategy %d selected, cost=%.2f", buildOutcome.Strategy, buildOutcome.Cost)

	tabuObs := obs
	if opts.Monitor != nil {
		tabuObs = &observe.StdObserver{OnIteration: opts.Monitor.OnIteration}
	}

	driver := tabu.New(instance.Catalog, opts.Config, tabuObs)
	tabuResult := driver.Solve(deadline, buildOutcome.Solution)
	obs.Printf("run: tabu stopped=%s iterations=%d best_cost=%.2f",
		tabuResult.Stopped, tabuResult.Iterations, tabuResult.Best.TotalCost(opts.Config.Weights))

	final := fleet.Reduce(deadline, tabuResult.Best, instance.Catalog, opts.Config.Weights, opts.Config.FleetReductionSlack, obs)

	inputHash := hashInstance(instance)
	return Result{
		RunID:      deriveRunID(inputHash, opts.Config.Seed),
		InputHash:  inputHash,
		Instance:   instance,
		Solution:   final,
		Iterations: tabuResult.Iterations,
		Stopped:    tabuResult.Stopped,
	}, nil
}

// runIDNamespace roots the deterministic run id derivation; any fixed UUID
// works here since it only serves to separate this domain from uuid.NewSHA1's
// other callers.
var runIDNamespace = uuid.MustParse("d2719b8e-7f0a-4e0a-9c8b-9e3b7a4a2f10")

// deriveRunID computes a stable UUID v5 from the input fingerprint and seed,
// so two solves of the same input under the same seed report the same run
// id and the --machine output stays byte-identical across runs.
func deriveRunID(inputHash string, seed int64) string {
	return uuid.NewSHA1(runIDNamespace, []byte(fmt.Sprintf("%s:%d", inputHash, seed))).String()
}

// Persist saves res into st as a RunRecord.
func Persist(ctx context.Context, st store.RunStore, res Result, w routeplan.Weights) error {
	rec := store.RunRecord{
		RunID:        res.RunID,
		InputHash:    res.InputHash,
		Weights:      w,
		TotalCost:    res.Solution.TotalCost(w),
		VehiclesUsed: res.Solution.NumVehiclesUsed(),
		Unassigned:   len(res.Solution.Unassigned),
		Feasible:     res.Solution.IsFeasible(),
		Iterations:   res.Iterations,
		Stopped:      res.Stopped,
		CreatedAt:    time.Now().UTC(),
	}
	return st.SaveRun(ctx, rec)
}

// NewStore selects a Postgres-backed RunStore when cfg.DatabaseURL is set,
// falling back to an in-memory one otherwise.
func NewStore(cfg config.Config) (store.RunStore, error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), nil
	}
	return store.NewPostgres(cfg.DatabaseURL)
}

func buildOracle(instance *parse.Instance, cfg config.Config) (oracle.CostOracle, error) {
	var oc oracle.CostOracle
	if cfg.OSRMBaseURL != "" {
		lookup := func(id int) (float64, float64, bool) {
			n, ok := instance.Catalog.Get(id)
			if !ok {
				return 0, 0, false
			}
			return n.X, n.Y, true
		}
		oc = oracle.NewOSRMOracle(cfg.OSRMBaseURL, lookup)
		oc = oracle.NewInstrumentedOracle(oc)
		oc = oracle.NewRateLimitedOracle(oc, 20, 5)
	} else {
		oc = oracle.NewInstrumentedOracle(oracle.NewMatrixOracle(instance.Edges))
	}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		oc = oracle.NewRedisCache(oc, rdb, 30*time.Minute)
	}
	return oc, nil
}

// hashInstance fingerprints an instance's node set and vehicle list so
// repeated runs against the same input can be grouped in the RunStore.
func hashInstance(instance *parse.Instance) string {
	h := sha256.New()
	for _, id := range append(append(append([]int{}, instance.Catalog.Containers()...), instance.Catalog.Dumps()...), instance.Catalog.Depots()...) {
		n, _ := instance.Catalog.Get(id)
		fmt.Fprintf(h, "n:%d:%.4f:%.4f:%.2f:%.2f:%.2f:%.2f:%d\n", n.ID, n.X, n.Y, n.Opens, n.Closes, n.Service, n.Demand, n.Kind)
	}
	for _, v := range instance.Vehicles {
		fmt.Fprintf(h, "v:%s\n", vehicleKey(v))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func vehicleKey(v model.Vehicle) string {
	return fmt.Sprintf("%d:%d:%d:%d:%.2f:%d:%.2f:%.2f",
		v.VID, v.StartDepotID, v.DumpID, v.EndDepotID, v.Capacity, v.MaxTrips, v.ShiftStart, v.ShiftEnd)
}
