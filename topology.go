package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Edge is one undirected weighted link read from a topology file.
type Edge struct {
	U, V NodeID
	Cost int
}

func (e Edge) String() string {
	return fmt.Sprintf("%d %d %d", e.U, e.V, e.Cost)
}

// ErrParseTopology reports a malformed topology entry.
type ErrParseTopology struct {
	msg string
}

func (e ErrParseTopology) Error() string {
	return fmt.Sprintf("parse topology: %s", e.msg)
}

// parseTopology reads whitespace-separated 'u v cost' triples. The reader
// is newline-and-space tolerant: any whitespace separates tokens. Duplicate
// triples are kept; the routers filter them through the fold's cost test.
func parseTopology(in io.Reader) ([]Edge, error) {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)

	var (
		edges  []Edge
		triple [3]int
		have   int
	)
	for sc.Scan() {
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, ErrParseTopology{msg: fmt.Sprintf("not an integer: '%s'", sc.Text())}
		}
		triple[have] = v
		have++
		if have < 3 {
			continue
		}
		have = 0

		edge, err := newEdge(triple[0], triple[1], triple[2])
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read topology")
	}
	if have != 0 {
		return nil, ErrParseTopology{msg: "truncated triple at end of input"}
	}

	return edges, nil
}

func newEdge(u, v, cost int) (Edge, error) {
	for _, id := range [2]int{u, v} {
		if id < 0 || NodeID(id) > maxNodeID {
			return Edge{}, ErrParseTopology{msg: fmt.Sprintf("router id out of range [0, %d]: %d", maxNodeID, id)}
		}
	}
	if u == v {
		return Edge{}, ErrParseTopology{msg: fmt.Sprintf("self-loop on router %d", u)}
	}
	if cost < 0 || cost > maxCost {
		return Edge{}, ErrParseTopology{msg: fmt.Sprintf("edge cost out of range: %d", cost)}
	}

	return Edge{U: NodeID(u), V: NodeID(v), Cost: cost}, nil
}
