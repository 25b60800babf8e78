package main

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// routerState tracks where a router is in its lifecycle.
type routerState int

const (
	// seeding is the initial state: the router only folds INIT edges.
	seeding routerState = iota

	// converging is the exchange phase entered on the first WAKE.
	converging

	// draining is the transient state after TERMINATE, before exit.
	draining
)

// Router simulates one node of the network. It owns a routing table and a
// mailbox, reacts to bus messages, and re-advertises its table to its
// neighbors whenever the table changes.
type Router struct {
	id   NodeID
	bus  *bus
	sink *tableSink
	log  *zap.SugaredLogger

	table     RoutingTable
	neighbors mapset.Set[NodeID]
	state     routerState

	// pollInterval is the sleep between mailbox drains.
	pollInterval time.Duration

	// updateInterval gates the periodic re-advertisement while converging.
	updateInterval time.Duration

	// lastBroadcast is when the table was last advertised to the neighbors.
	lastBroadcast time.Time

	// dirty marks table changes that have not been advertised yet.
	dirty bool
}

// newRouter creates a router for id. The router owns no mailbox until Run.
func newRouter(id NodeID, b *bus, sink *tableSink, cfg Config, log *zap.Logger) *Router {
	return &Router{
		id:             id,
		bus:            b,
		sink:           sink,
		log:            log.Sugar().Named("router").With("id", int(id)),
		table:          newRoutingTable(id),
		neighbors:      mapset.NewThreadUnsafeSet[NodeID](),
		state:          seeding,
		pollInterval:   cfg.PollInterval,
		updateInterval: cfg.UpdateInterval,
	}
}

// Run drives the router until it is terminated over the bus. Each loop
// iteration consumes at most one message, relaxes the table, possibly fans
// out updates, and sleeps until the next tick. All mailbox reads are
// non-blocking. The context is a crash backstop only; TERMINATE is the sole
// orderly cancellation signal.
func (r *Router) Run(ctx context.Context) error {
	r.bus.create(r.id)
	defer r.bus.destroy(r.id)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "router %d interrupted", r.id)
		case <-ticker.C:
		}

		if msg, in := r.bus.tryDequeue(r.id); in {
			done, err := r.handle(msg)
			if err != nil {
				return errors.Wrapf(err, "router %d", r.id)
			}
			if done {
				return nil
			}
		}

		if r.state == converging && time.Since(r.lastBroadcast) >= r.updateInterval {
			r.broadcast()
		}
	}
}

// handle demultiplexes one message. It reports done once the router has
// drained and emitted its final table.
func (r *Router) handle(msg Message) (done bool, err error) {
	switch msg.Kind {
	case Init:
		r.handleInit(msg)
	case Wake:
		r.handleWake()
	case Update:
		if err := r.handleUpdate(msg); err != nil {
			return false, err
		}
	case Terminate:
		return true, r.drain()
	default:
		r.log.Debugw("ignoring unexpected message", "kind", msg.Kind.String(), "src", int(msg.Src))
	}
	return false, nil
}

// handleInit folds a direct-edge fragment into the table and neighbor set.
// Late INITs after WAKE fold the same way; the periodic re-advertisement
// carries any resulting change.
func (r *Router) handleInit(msg Message) {
	frag, errs := decodeTable(msg.Payload)
	for _, err := range errs {
		r.log.Warnw("skipping malformed init entry", "err", err)
	}

	for _, neighbor := range frag.destinations() {
		r.neighbors.Add(neighbor)
		if r.table.fold(neighbor, frag[neighbor].Cost) {
			r.log.Debugw("installed direct edge", "neighbor", int(neighbor), "cost", frag[neighbor].Cost)
		}
	}
}

// handleWake ends the seeding phase and triggers the first broadcast.
func (r *Router) handleWake() {
	if r.state != seeding {
		r.log.Debugw("already awake")
		return
	}
	r.state = converging
	r.log.Debugw("awake", "neighbors", r.neighbors.Cardinality())
	r.broadcast()
}

// handleUpdate runs the relaxation against a neighbor's advertised table.
// If the table changed while converging, the router advertises it to every
// neighbor and notifies the coordinator with one REFRESH.
func (r *Router) handleUpdate(msg Message) error {
	adv, errs := decodeTable(msg.Payload)
	for _, err := range errs {
		r.log.Warnw("skipping malformed update entry", "err", err, "src", int(msg.Src))
	}

	changed, dropped, err := r.table.relax(r.id, msg.Src, adv)
	if err != nil {
		return err
	}
	if dropped > 0 {
		r.log.Debugw("dropped unresolvable destinations", "count", dropped, "src", int(msg.Src))
	}
	if changed {
		r.dirty = true
	}

	if r.dirty && r.state == converging {
		r.broadcast()
		r.refresh()
		r.dirty = false
	}
	return nil
}

// broadcast advertises the full current table to every neighbor. A full
// neighbor mailbox drops that one delivery; the periodic re-advertisement
// covers it.
func (r *Router) broadcast() {
	payload, err := encodeTable(r.table)
	if err != nil {
		r.log.Warnw("table does not fit payload budget, skipping broadcast", "err", err)
		r.lastBroadcast = time.Now()
		return
	}

	for _, neighbor := range sortedNodeIDs(r.neighbors) {
		err := r.bus.enqueue(neighbor, Message{Kind: Update, Src: r.id, Payload: payload})
		switch {
		case errors.Is(err, errMailboxFull):
			r.log.Debugw("neighbor mailbox full, dropping update", "neighbor", int(neighbor))
		case err != nil:
			r.log.Warnw("cannot reach neighbor", "neighbor", int(neighbor), "err", err)
		}
	}
	r.lastBroadcast = time.Now()
	r.dirty = false
}

// refresh sends one empty REFRESH to the coordinator as evidence of
// activity. REFRESH is advisory; a failed delivery is only logged.
func (r *Router) refresh() {
	if err := r.bus.enqueue(CoordinatorID, Message{Kind: Refresh, Src: r.id}); err != nil {
		r.log.Debugw("cannot refresh coordinator", "err", err)
	}
}

// drain emits the final table and leaves the run.
func (r *Router) drain() error {
	r.state = draining

	if err := r.table.checkInvariants(r.id, r.neighbors); err != nil {
		return errors.Wrap(err, "final table invariant violated")
	}
	if err := r.sink.write(r.id, r.table); err != nil {
		return err
	}
	r.log.Debugw("terminated", "destinations", len(r.table))
	return nil
}
