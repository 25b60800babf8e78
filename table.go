package main

import (
	"sort"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// NodeID is a unique identifier used to differentiate routers.
type NodeID int

func (n NodeID) String() string {
	return strconv.Itoa(int(n))
}

const (
	// CoordinatorID is the reserved bus address of the coordinator.
	CoordinatorID NodeID = 999

	// maxNodeID bounds router identifiers read from a topology file.
	maxNodeID NodeID = 100

	// MaxRouters caps the number of distinct routers in a single run.
	MaxRouters = 100

	// maxCost caps total path costs; a relaxation past it is dropped.
	maxCost = 1 << 30
)

// RoutingEntry is the best known path to a single destination.
type RoutingEntry struct {
	// Cost is the total distance along the best known path.
	Cost int

	// NextHop is the neighbor to forward through to reach the destination.
	NextHop NodeID
}

// RoutingTable maps destinations to their best known routing entries. A
// table always contains the owning router's self entry with cost 0.
type RoutingTable map[NodeID]RoutingEntry

// newRoutingTable creates a table holding only the self entry.
func newRoutingTable(self NodeID) RoutingTable {
	return RoutingTable{self: {Cost: 0, NextHop: self}}
}

// destinations returns the table's destinations in ascending order.
func (t RoutingTable) destinations() []NodeID {
	dsts := make([]NodeID, 0, len(t))
	for dst := range t {
		dsts = append(dsts, dst)
	}
	sort.Slice(dsts, func(i, j int) bool {
		return dsts[i] < dsts[j]
	})
	return dsts
}

// fold installs a direct edge to a neighbor, keeping any cheaper route that
// is already known. The stored next hop for a direct neighbor is the
// neighbor itself. Reports whether the table changed.
func (t RoutingTable) fold(neighbor NodeID, cost int) bool {
	e, in := t[neighbor]
	if in && e.Cost <= cost {
		return false
	}
	t[neighbor] = RoutingEntry{Cost: cost, NextHop: neighbor}
	return true
}

// resolveNextHop walks the table from via by following next hops until it
// reaches a direct neighbor terminus, a node whose next hop is itself. The
// walk is capped at the table size to defend against transient cycles.
func (t RoutingTable) resolveNextHop(via NodeID) (NodeID, bool) {
	cur := via
	for i := 0; i <= len(t); i++ {
		e, in := t[cur]
		if !in {
			return 0, false
		}
		if e.NextHop == cur {
			return cur, true
		}
		cur = e.NextHop
	}
	return 0, false
}

// relax folds a neighbor's advertised table into t with the Bellman-Ford
// step. Destinations are visited in ascending order; a candidate path is
// admitted only when strictly cheaper than the current entry. Destinations
// whose next hop cannot be resolved are dropped and counted. Reports
// whether the table changed.
//
// The caller must hold an entry for src; its absence is a logic error.
func (t RoutingTable) relax(self, src NodeID, adv RoutingTable) (changed bool, dropped int, err error) {
	via, in := t[src]
	if !in {
		return false, 0, errors.Errorf("no entry for advertising neighbor %d", src)
	}

	for _, dst := range adv.destinations() {
		if dst == self {
			continue
		}

		candidate := via.Cost + adv[dst].Cost
		if candidate > maxCost {
			continue
		}
		if e, in := t[dst]; in && e.Cost <= candidate {
			continue
		}

		hop, ok := t.resolveNextHop(src)
		if !ok {
			dropped++
			continue
		}

		t[dst] = RoutingEntry{Cost: candidate, NextHop: hop}
		changed = true
	}

	return changed, dropped, nil
}

// checkInvariants verifies the structural table invariants: the self entry
// is present with cost 0, costs are within range, and every next hop is
// either the destination itself or a known neighbor.
func (t RoutingTable) checkInvariants(self NodeID, neighbors mapset.Set[NodeID]) error {
	e, in := t[self]
	if !in {
		return errors.Errorf("router %d lost its self entry", self)
	}
	if e.Cost != 0 || e.NextHop != self {
		return errors.Errorf("router %d has corrupt self entry %+v", self, e)
	}

	for dst, e := range t {
		if e.Cost < 0 || e.Cost > maxCost {
			return errors.Errorf("cost to %d out of range: %d", dst, e.Cost)
		}
		if e.NextHop == dst {
			continue
		}
		if !neighbors.Contains(e.NextHop) {
			return errors.Errorf("next hop %d for destination %d is not a neighbor", e.NextHop, dst)
		}
		if hop, in := t[e.NextHop]; in && hop.Cost > e.Cost {
			return errors.Errorf("next hop %d costs %d, more than destination %d at %d", e.NextHop, hop.Cost, dst, e.Cost)
		}
	}
	return nil
}

// sortedNodeIDs returns the set's members in ascending order.
func sortedNodeIDs(s mapset.Set[NodeID]) []NodeID {
	ids := s.ToSlice()
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}
