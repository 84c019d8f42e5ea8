// Package parse implements the four whitespace-separated input file
// formats and the cross-file reference validation that assembles them
// into a Node Catalog and Vehicle list. Every malformed line or bad
// cross-reference is fatal, per the InputFormat/Reference/Inconsistency
// error kinds — unlike the leniency of the original this was distilled
// from, which logged a warning and skipped the line.
package parse

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"trashcvrp/internal/catalog"
	"trashcvrp/internal/model"
)

type rawOtherLoc struct {
	ID     int
	X, Y   float64
	Opens  float64
	Closes float64
}

// Instance is everything LoadInstance assembles from one base path.
type Instance struct {
	Catalog  *catalog.Catalog
	Vehicles []model.Vehicle
	Edges    map[[2]int]float64
}

// LoadInstance reads <base>.containers.txt, <base>.otherlocs.txt,
// <base>.vehicles.txt, and <base>.dmatrix-time.txt, validates every
// cross-reference, and returns an assembled Instance.
func LoadInstance(basePath string) (*Instance, error) {
	containers, err := parseContainers(basePath + ".containers.txt")
	if err != nil {
		return nil, err
	}
	otherlocs, err := parseOtherLocs(basePath + ".otherlocs.txt")
	if err != nil {
		return nil, err
	}
	vehicles, err := parseVehicles(basePath + ".vehicles.txt")
	if err != nil {
		return nil, err
	}
	edges, err := parseMatrix(basePath + ".dmatrix-time.txt")
	if err != nil {
		return nil, err
	}

	otherFile := basePath + ".otherlocs.txt"
	vehicleFile := basePath + ".vehicles.txt"

	otherByID := make(map[int]rawOtherLoc, len(otherlocs))
	for _, o := range otherlocs {
		otherByID[o.ID] = o
	}

	dumpRole := make(map[int]bool)
	depotRole := make(map[int]bool)
	for _, v := range vehicles {
		dumpRole[v.DumpID] = true
		depotRole[v.StartDepotID] = true
		depotRole[v.EndDepotID] = true
	}

	for _, v := range vehicles {
		for _, id := range []int{v.StartDepotID, v.DumpID, v.EndDepotID} {
			if _, ok := otherByID[id]; !ok {
				return nil, newError(Reference, vehicleFile, 0,
					"vehicle %d references unknown location id %d", v.VID, id)
			}
		}
	}

	nodes := make([]model.Node, 0, len(containers)+len(otherlocs))
	nodes = append(nodes, containers...)
	for _, o := range otherlocs {
		kind := model.Depot
		if dumpRole[o.ID] {
			// A node id may serve as both Dump and Depot; Dump takes
			// priority since interior positions need the cargo-reset
			// behavior, while the Route Model treats a route's first
			// and last position as structurally a depot regardless of
			// the underlying node's Kind.
			kind = model.Dump
		} else if !depotRole[o.ID] {
			return nil, newError(Reference, otherFile, 0,
				"location id %d is never referenced as a dump, start, or end", o.ID)
		}
		nodes = append(nodes, model.Node{
			ID: o.ID, X: o.X, Y: o.Y, Opens: o.Opens, Closes: o.Closes, Service: 0, Demand: 0, Kind: kind,
		})
	}

	cat, err := catalog.New(nodes)
	if err != nil {
		return nil, err
	}

	return &Instance{Catalog: cat, Vehicles: vehicles, Edges: edges}, nil
}

func parseContainers(path string) ([]model.Node, error) {
	var out []model.Node
	err := scanFile(path, func(lineNo int, fields []string) error {
		if len(fields) != 8 {
			return newError(InputFormat, path, lineNo, "expected 8 fields, got %d", len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad id: %v", err)
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad x: %v", err)
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad y: %v", err)
		}
		opens, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad opens: %v", err)
		}
		closes, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad closes: %v", err)
		}
		service, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad service: %v", err)
		}
		demand, err := strconv.ParseFloat(fields[6], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad demand: %v", err)
		}
		if _, err := strconv.Atoi(fields[7]); err != nil {
			return newError(InputFormat, path, lineNo, "bad street_id: %v", err)
		}
		if opens > closes {
			return newError(Inconsistency, path, lineNo, "container %d: opens (%.2f) > closes (%.2f)", id, opens, closes)
		}
		if demand <= 0 {
			return newError(Inconsistency, path, lineNo, "container %d: demand must be > 0, got %.2f", id, demand)
		}
		out = append(out, model.Node{
			ID: id, X: x, Y: y, Opens: opens, Closes: closes, Service: service, Demand: demand, Kind: model.Container,
		})
		return nil
	})
	return out, err
}

func parseOtherLocs(path string) ([]rawOtherLoc, error) {
	var out []rawOtherLoc
	err := scanFile(path, func(lineNo int, fields []string) error {
		if len(fields) != 5 {
			return newError(InputFormat, path, lineNo, "expected 5 fields, got %d", len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad id: %v", err)
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad x: %v", err)
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad y: %v", err)
		}
		opens, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad opens: %v", err)
		}
		closes, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad closes: %v", err)
		}
		if opens > closes {
			return newError(Inconsistency, path, lineNo, "location %d: opens (%.2f) > closes (%.2f)", id, opens, closes)
		}
		out = append(out, rawOtherLoc{ID: id, X: x, Y: y, Opens: opens, Closes: closes})
		return nil
	})
	return out, err
}

func parseVehicles(path string) ([]model.Vehicle, error) {
	var out []model.Vehicle
	err := scanFile(path, func(lineNo int, fields []string) error {
		if len(fields) != 8 {
			return newError(InputFormat, path, lineNo, "expected 8 fields, got %d", len(fields))
		}
		ints := make([]int, 0, 4)
		for i, name := range []string{"vid", "start_id", "dump_id", "end_id"} {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				return newError(InputFormat, path, lineNo, "bad %s: %v", name, err)
			}
			ints = append(ints, v)
		}
		capacity, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad capacity: %v", err)
		}
		maxTrips, err := strconv.Atoi(fields[5])
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad max_trips: %v", err)
		}
		shiftStart, err := strconv.ParseFloat(fields[6], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad shift_start: %v", err)
		}
		shiftEnd, err := strconv.ParseFloat(fields[7], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad shift_end: %v", err)
		}
		if capacity <= 0 {
			return newError(Inconsistency, path, lineNo, "vehicle %d: capacity must be > 0, got %.2f", ints[0], capacity)
		}
		if shiftStart > shiftEnd {
			return newError(Inconsistency, path, lineNo, "vehicle %d: shift_start (%.2f) > shift_end (%.2f)", ints[0], shiftStart, shiftEnd)
		}
		if maxTrips < 1 {
			return newError(Inconsistency, path, lineNo, "vehicle %d: max_trips must be >= 1, got %d", ints[0], maxTrips)
		}
		out = append(out, model.Vehicle{
			VID: ints[0], StartDepotID: ints[1], DumpID: ints[2], EndDepotID: ints[3],
			Capacity: capacity, MaxTrips: maxTrips, ShiftStart: shiftStart, ShiftEnd: shiftEnd,
		})
		return nil
	})
	return out, err
}

func parseMatrix(path string) (map[[2]int]float64, error) {
	edges := make(map[[2]int]float64)
	err := scanFile(path, func(lineNo int, fields []string) error {
		if len(fields) != 3 {
			return newError(InputFormat, path, lineNo, "expected 3 fields, got %d", len(fields))
		}
		from, err := strconv.Atoi(fields[0])
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad from_id: %v", err)
		}
		to, err := strconv.Atoi(fields[1])
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad to_id: %v", err)
		}
		cost, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return newError(InputFormat, path, lineNo, "bad cost: %v", err)
		}
		edges[[2]int{from, to}] = cost
		return nil
	})
	return edges, err
}

// scanFile reads path line by line, skipping blank lines and #-comments,
// and calls fn with the 1-based line number and whitespace-split fields.
// Any error fn returns aborts the scan immediately.
func scanFile(path string, fn func(lineNo int, fields []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(lineNo, strings.Fields(line)); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
