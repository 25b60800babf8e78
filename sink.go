package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// tableSink writes final routing tables under a dedicated directory, one
// file per router named by its id. A router that exits abnormally leaves no
// file behind, so a partial run is visible from the directory contents.
type tableSink struct {
	dir string
}

// newTableSink creates the output directory fresh, deleting any prior
// contents so repeated runs produce identical trees.
func newTableSink(dir string) (*tableSink, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.Wrap(err, "clear output directory")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errors.Wrap(err, "create output directory")
	}
	return &tableSink{dir: dir}, nil
}

// write emits one router's final table as <dir>/<id>.txt with destinations
// in ascending order.
func (s *tableSink) write(id NodeID, t RoutingTable) error {
	var b strings.Builder
	fmt.Fprintf(&b, "router %d routing table:\n\n", id)
	for _, dst := range t.destinations() {
		e := t[dst]
		fmt.Fprintf(&b, "destination: %d\tcost: %d\tnext hop: %d\n", dst, e.Cost, e.NextHop)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%d.txt", id))
	if err := os.WriteFile(path, []byte(b.String()), 0640); err != nil {
		return errors.Wrapf(err, "write table for router %d", id)
	}
	return nil
}
