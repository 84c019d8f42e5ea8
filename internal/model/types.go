// Package model holds the flattened, arena-friendly domain records shared
// by every other package: Node and Vehicle. Neither type owns a reference
// to another domain object — everything downstream refers to nodes and
// vehicles by integer id and resolves them through a catalog.
package model

import "fmt"

// Kind tags a Node's role. There is deliberately no inheritance here:
// Container, Dump, and Depot are three values of one flat type, not three
// structs in a hierarchy.
type Kind int

const (
	Container Kind = iota
	Dump
	Depot
)

func (k Kind) String() string {
	switch k {
	case Container:
		return "container"
	case Dump:
		return "dump"
	case Depot:
		return "depot"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is an immutable location: a container, a dump, or a depot.
// Coordinates are used by the nearest-sweep, angular-sweep, and
// farthest-from-dump builder strategies and by the OSRM oracle's
// coordinate lookup; the Route Model never consults them.
type Node struct {
	ID      int
	X, Y    float64
	Opens   float64 // minutes from midnight
	Closes  float64 // minutes from midnight
	Service float64 // minutes
	Demand  float64 // capacity units; 0 for dumps/depots
	Kind    Kind
}

// Validate checks the invariants a single Node must satisfy.
func (n Node) Validate() error {
	if n.Opens > n.Closes {
		return fmt.Errorf("node %d: opens (%.2f) > closes (%.2f)", n.ID, n.Opens, n.Closes)
	}
	switch n.Kind {
	case Container:
		if n.Demand <= 0 {
			return fmt.Errorf("node %d: container demand must be > 0, got %.2f", n.ID, n.Demand)
		}
	case Dump, Depot:
		if n.Demand != 0 {
			return fmt.Errorf("node %d: %s demand must be 0, got %.2f", n.ID, n.Kind, n.Demand)
		}
	default:
		return fmt.Errorf("node %d: unknown kind %d", n.ID, int(n.Kind))
	}
	return nil
}

// Vehicle is an immutable per-vehicle configuration.
type Vehicle struct {
	VID          int
	StartDepotID int
	DumpID       int
	EndDepotID   int
	Capacity     float64
	MaxTrips     int
	ShiftStart   float64 // minutes from midnight
	ShiftEnd     float64 // minutes from midnight
}

// Validate checks the invariants a single Vehicle must satisfy.
func (v Vehicle) Validate() error {
	if v.ShiftStart > v.ShiftEnd {
		return fmt.Errorf("vehicle %d: shift_start (%.2f) > shift_end (%.2f)", v.VID, v.ShiftStart, v.ShiftEnd)
	}
	if v.Capacity <= 0 {
		return fmt.Errorf("vehicle %d: capacity must be > 0, got %.2f", v.VID, v.Capacity)
	}
	if v.MaxTrips < 1 {
		return fmt.Errorf("vehicle %d: max_trips must be >= 1, got %d", v.VID, v.MaxTrips)
	}
	return nil
}
