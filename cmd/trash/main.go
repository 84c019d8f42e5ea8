// Command trash solves a capacitated vehicle routing problem with time
// windows, multiple trips, and intermediate dump facilities from a set of
// whitespace-delimited input files, and reports the resulting routes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"trashcvrp/internal/buildinfo"
	"trashcvrp/internal/config"
	"trashcvrp/internal/monitor"
	"trashcvrp/internal/observe"
	"trashcvrp/internal/output"
	"trashcvrp/internal/parse"
	"trashcvrp/internal/run"
)

func main() {
	os.Exit(mainImpl())
}

func mainImpl() int {
	var (
		configPath = flag.String("config", "", "optional YAML file overlaying weights and tuning parameters")
		serveAddr  = flag.String("serve", "", "if set, serve live progress (/progress) and metrics (/metrics) on this address")
		seed       = flag.Int64("seed", 0, "override the builder's random seed (0 keeps the configured default)")
		timeBudget = flag.Duration("time-budget", 0, "override the search wall-clock budget (0 keeps the configured default)")
		machine    = flag.Bool("machine", false, "emit the machine-readable per-visit record stream instead of the text report")
		showVer    = flag.Bool("version", false, "print build info and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <base_path>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVer {
		info := buildinfo.Info()
		fmt.Printf("trash %s (commit %s, built %s)\n", info["version"], info["commit"], info["builtAt"])
		return 0
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return 1
	}
	basePath := flag.Arg(0)

	cfg, err := config.LoadYAML(config.Defaults(), *configPath)
	if err != nil {
		log.Printf("trash: %v", err)
		return 1
	}
	cfg = config.FromEnv(cfg)
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *timeBudget != 0 {
		cfg.TimeBudget = *timeBudget
	}

	obs := &observe.StdObserver{}
	opts := run.Options{Config: cfg, Obs: obs}

	var mon *monitor.Server
	if *serveAddr != "" {
		mon = monitor.NewServer()
		opts.Monitor = mon
		go func() {
			log.Printf("trash: serving progress and metrics on %s", *serveAddr)
			if err := mon.ListenAndServe(*serveAddr); err != nil {
				log.Printf("trash: monitor server: %v", err)
			}
		}()
	}

	res, err := run.Solve(context.Background(), basePath, opts)
	if err != nil {
		log.Printf("trash: %v", err)
		return exitCodeFor(err)
	}

	st, err := run.NewStore(cfg)
	if err != nil {
		log.Printf("trash: %v", err)
		return 1
	}
	if err := run.Persist(context.Background(), st, res, cfg.Weights); err != nil {
		log.Printf("trash: failed to persist run: %v", err)
	}

	if *machine {
		err = output.WriteMachine(os.Stdout, res.Solution, res.RunID)
	} else {
		err = output.WriteText(os.Stdout, res.Solution, cfg.Weights)
	}
	if err != nil {
		log.Printf("trash: %v", err)
		return 1
	}
	if err := writeSolutionReport(basePath, res, cfg); err != nil {
		log.Printf("trash: failed to write solution report: %v", err)
	}

	return exitCodeForResult(res)
}

// exitCodeForResult maps a completed solve to its exit code per spec §6:
// 3 for an infeasible instance (no feasible solution — some container
// stayed unassigned, or a route violates a hard constraint), 4 when that
// infeasibility is specifically due to the search running out of time,
// 0 otherwise.
func exitCodeForResult(res run.Result) int {
	feasible := res.Solution.IsFeasible() && len(res.Solution.Unassigned) == 0
	if feasible {
		return 0
	}
	if res.Stopped == "timeout" {
		return 4
	}
	return 3
}

// writeSolutionReport writes the text report to <base_path>.solution.txt,
// mirroring the save-file the original always produced next to its input.
func writeSolutionReport(basePath string, res run.Result, cfg config.Config) error {
	f, err := os.Create(basePath + ".solution.txt")
	if err != nil {
		return err
	}
	defer f.Close()
	return output.WriteText(f, res.Solution, cfg.Weights)
}

// exitCodeFor maps a Solve failure to its exit code per spec §6: 2 for
// any input validation error — malformed fields, an unknown cross-
// referenced id, or an inconsistent value such as opens > closes or
// shift_start > shift_end — covering all three parse.Kind values, since
// spec §6 draws no distinction between them.
func exitCodeFor(err error) int {
	var perr *parse.Error
	if errors.As(err, &perr) {
		return 2
	}
	return 1
}
