package main

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	// errMailboxFull reports a transient enqueue failure on a full mailbox.
	errMailboxFull = errors.New("mailbox full")

	// errNoSuchMailbox reports an enqueue to a target without a mailbox.
	errNoSuchMailbox = errors.New("no such mailbox")
)

// bus is the in-process mailbox registry. Every router owns exactly one
// mailbox keyed by its NodeID; any party may enqueue, only the owner
// dequeues. A single buffered channel per mailbox preserves sender order to
// a given target.
type bus struct {
	mu    sync.RWMutex
	depth int
	boxes map[NodeID]chan Message
}

// newBus creates a bus whose mailboxes hold up to depth messages.
func newBus(depth int) *bus {
	return &bus{
		depth: depth,
		boxes: make(map[NodeID]chan Message),
	}
}

// create ensures a mailbox exists for id. Creation is idempotent; an
// existing mailbox and its pending messages are left untouched.
func (b *bus) create(id NodeID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, in := b.boxes[id]; in {
		return
	}
	b.boxes[id] = make(chan Message, b.depth)
}

// enqueue delivers msg to the target's mailbox without blocking. It returns
// errNoSuchMailbox when the target has no mailbox and errMailboxFull when
// the mailbox is at capacity.
func (b *bus) enqueue(target NodeID, msg Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	box, in := b.boxes[target]
	if !in {
		return errors.Wrapf(errNoSuchMailbox, "target %d", target)
	}

	select {
	case box <- msg:
		return nil
	default:
		return errors.Wrapf(errMailboxFull, "target %d", target)
	}
}

// tryDequeue removes the oldest pending message from the owner's mailbox.
// It never blocks; the second return is false when the mailbox is empty or
// does not exist.
func (b *bus) tryDequeue(owner NodeID) (Message, bool) {
	b.mu.RLock()
	box, in := b.boxes[owner]
	b.mu.RUnlock()
	if !in {
		return Message{}, false
	}

	select {
	case msg := <-box:
		return msg, true
	default:
		return Message{}, false
	}
}

// destroy removes the owner's mailbox, discarding any residual messages.
func (b *bus) destroy(owner NodeID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.boxes, owner)
}
