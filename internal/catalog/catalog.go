// Package catalog implements the Node Catalog: an immutable, id-keyed
// registry of every Node built once from parsed input and shared
// read-only by every downstream package.
package catalog

import (
	"fmt"
	"sort"

	"trashcvrp/internal/model"
)

// Catalog is immutable after New returns. It never changes underneath
// callers, so it can be shared across goroutines without locking.
type Catalog struct {
	nodes      map[int]model.Node
	containers []int
	dumps      []int
	depots     []int
}

// New builds a Catalog from a flat slice of nodes, validating each one and
// rejecting duplicate ids.
func New(nodes []model.Node) (*Catalog, error) {
	c := &Catalog{nodes: make(map[int]model.Node, len(nodes))}
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("build catalog: %w", err)
		}
		if _, dup := c.nodes[n.ID]; dup {
			return nil, fmt.Errorf("build catalog: duplicate node id %d", n.ID)
		}
		c.nodes[n.ID] = n
		switch n.Kind {
		case model.Container:
			c.containers = append(c.containers, n.ID)
		case model.Dump:
			c.dumps = append(c.dumps, n.ID)
		case model.Depot:
			c.depots = append(c.depots, n.ID)
		}
	}
	sort.Ints(c.containers)
	sort.Ints(c.dumps)
	sort.Ints(c.depots)
	return c, nil
}

// Get resolves an id to its Node. ok is false for unknown ids.
func (c *Catalog) Get(id int) (model.Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// MustGet panics on an unknown id; only used where the caller has already
// validated the id came from a Route sequence built against this Catalog.
func (c *Catalog) MustGet(id int) model.Node {
	n, ok := c.nodes[id]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown node id %d", id))
	}
	return n
}

// Containers returns the sorted ids of every Container node.
func (c *Catalog) Containers() []int { return c.containers }

// Dumps returns the sorted ids of every Dump node.
func (c *Catalog) Dumps() []int { return c.dumps }

// Depots returns the sorted ids of every Depot node.
func (c *Catalog) Depots() []int { return c.depots }

// Len returns the total number of nodes in the catalog.
func (c *Catalog) Len() int { return len(c.nodes) }
