package main

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config collects a run's tunable timings and limits.
type Config struct {
	// OutputDir receives one final routing table file per router.
	OutputDir string

	// MailboxDepth bounds each mailbox's pending message count.
	MailboxDepth int

	// PollInterval is the routers' sleep between mailbox drains.
	PollInterval time.Duration

	// UpdateInterval gates the routers' periodic re-advertisement.
	UpdateInterval time.Duration

	// QuiesceTimeout is the silence window after which the coordinator
	// declares convergence. Must exceed twice the update interval: periodic
	// re-advertisements send no REFRESH of their own, so the window has to
	// outlast them for a change they carry to be reported before it closes.
	QuiesceTimeout time.Duration

	// DetectInterval is the coordinator's sleep between mailbox drains
	// while detecting quiescence.
	DetectInterval time.Duration
}

func defaultConfig() Config {
	return Config{
		OutputDir:      "routing_table",
		MailboxDepth:   64,
		PollInterval:   10 * time.Millisecond,
		UpdateInterval: 500 * time.Millisecond,
		QuiesceTimeout: 2000 * time.Millisecond,
		DetectInterval: 100 * time.Millisecond,
	}
}

func (c Config) validate() error {
	if c.MailboxDepth < 1 {
		return errors.Errorf("mailbox depth must be positive, got %d", c.MailboxDepth)
	}
	if c.QuiesceTimeout <= 2*c.UpdateInterval {
		return errors.Errorf("quiesce timeout %s must exceed twice the update interval %s", c.QuiesceTimeout, c.UpdateInterval)
	}
	return nil
}

// sendRetries bounds the coordinator's internal retrying of a full mailbox
// before the enqueue is surfaced as failed.
const sendRetries = 100

// Coordinator launches one router per distinct node in the topology, seeds
// the routers with their direct edges, and drives the run to quiescence.
type Coordinator struct {
	cfg    Config
	bus    *bus
	logger *zap.Logger
	log    *zap.SugaredLogger
}

// NewCoordinator creates a coordinator for one run.
func NewCoordinator(cfg Config, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		bus:    newBus(cfg.MailboxDepth),
		logger: logger,
		log:    logger.Sugar().Named("coordinator"),
	}
}

// Run executes a full simulation over the given topology: spawn, seed,
// wake, detect quiescence, terminate, reap. It returns a non-nil error if
// the topology is unusable or any router exited abnormally.
func (c *Coordinator) Run(ctx context.Context, topology io.Reader) error {
	if err := c.cfg.validate(); err != nil {
		return err
	}

	edges, err := parseTopology(topology)
	if err != nil {
		return err
	}

	sink, err := newTableSink(c.cfg.OutputDir)
	if err != nil {
		return err
	}

	c.bus.create(CoordinatorID)
	defer c.bus.destroy(CoordinatorID)

	g, gctx := errgroup.WithContext(ctx)

	var spawned []NodeID
	known := make(map[NodeID]bool)
	spawn := func(id NodeID) error {
		if known[id] {
			return nil
		}
		if len(spawned) >= MaxRouters {
			return errors.Errorf("topology exceeds %d distinct routers", MaxRouters)
		}
		known[id] = true
		spawned = append(spawned, id)

		// Create the mailbox up front so seeding cannot race the router's
		// own idempotent create.
		c.bus.create(id)

		r := newRouter(id, c.bus, sink, c.cfg, c.logger)
		g.Go(func() error {
			return r.Run(gctx)
		})
		c.log.Debugw("spawned router", "id", int(id))
		return nil
	}

	seedErr := func() error {
		for _, edge := range edges {
			if err := spawn(edge.U); err != nil {
				return err
			}
			if err := spawn(edge.V); err != nil {
				return err
			}
			if err := c.seed(edge.U, edge.V, edge.Cost); err != nil {
				return err
			}
			if err := c.seed(edge.V, edge.U, edge.Cost); err != nil {
				return err
			}
		}
		return nil
	}()

	if seedErr == nil {
		for _, id := range spawned {
			if seedErr = c.send(id, Message{Kind: Wake, Src: CoordinatorID}); seedErr != nil {
				break
			}
		}
	}

	if seedErr == nil {
		c.log.Infow("network awake", "routers", len(spawned), "edges", len(edges))
		c.detectQuiescence(gctx)
		c.log.Infow("quiescence detected", "window", c.cfg.QuiesceTimeout.String())
	} else {
		c.log.Errorw("aborting run", "err", seedErr)
	}

	for _, id := range spawned {
		if err := c.send(id, Message{Kind: Terminate, Src: CoordinatorID}); err != nil {
			c.log.Warnw("cannot terminate router", "id", int(id), "err", err)
		}
	}

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "router exited abnormally")
	}
	if seedErr != nil {
		return seedErr
	}

	c.log.Infow("all routers reaped", "tables", len(spawned), "dir", c.cfg.OutputDir)
	return nil
}

// seed sends one INIT carrying the single direct edge {peer: (cost, peer)}.
func (c *Coordinator) seed(target, peer NodeID, cost int) error {
	payload, err := encodeTable(RoutingTable{peer: {Cost: cost, NextHop: peer}})
	if err != nil {
		return err
	}
	return c.send(target, Message{Kind: Init, Src: CoordinatorID, Payload: payload})
}

// send enqueues with bounded internal retrying on a transiently full
// mailbox. INIT, WAKE and TERMINATE must not be silently lost the way
// best-effort UPDATEs may be.
func (c *Coordinator) send(target NodeID, msg Message) error {
	for attempt := 0; attempt < sendRetries; attempt++ {
		err := c.bus.enqueue(target, msg)
		if !errors.Is(err, errMailboxFull) {
			return err
		}
		time.Sleep(c.cfg.PollInterval)
	}
	return errors.Wrapf(errMailboxFull, "%s to router %d", msg.Kind, target)
}

// detectQuiescence drains the coordinator's mailbox until a full silence
// window elapses with no traffic. Any received message, REFRESH or
// otherwise, is evidence of network activity and resets the window.
func (c *Coordinator) detectQuiescence(ctx context.Context) {
	quietSince := time.Now()
	for {
		for {
			msg, in := c.bus.tryDequeue(CoordinatorID)
			if !in {
				break
			}
			quietSince = time.Now()
			c.log.Debugw("network activity", "kind", msg.Kind.String(), "src", int(msg.Src))
		}

		if time.Since(quietSince) >= c.cfg.QuiesceTimeout {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.DetectInterval):
		}
	}
}
