// Package notify delivers option change events to subscribers.
//
// The resolver publishes one event per changed default option whenever its
// base configuration is replaced, followed by a reload event. Events reach
// observers in publish order, either on the publishing goroutine or, with
// WithAsync, on a single delivery goroutine.
package notify

import (
	"sort"
	"sync"
)

// ChangeType is the kind of a change event.
type ChangeType int

const (
	// ChangeSet means an option was added or its value changed.
	ChangeSet ChangeType = iota

	// ChangeDelete means an option no longer has a default.
	ChangeDelete

	// ChangeReload means the base configuration was replaced.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change is a single change event.
type Change struct {
	// Path is the dotted option key. Empty for reload events.
	Path string

	Type ChangeType

	// OldValue is the previous value, nil when the option is new.
	OldValue any

	// NewValue is the current value, nil for deletes.
	NewValue any

	// Source names what triggered the change, such as "configure".
	Source string
}

// Observer receives change events.
type Observer func(change Change)

// Subscription is a registered observer.
type Subscription struct {
	id uint64
	n  *Notifier
}

// Unsubscribe removes the observer. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.n == nil {
		return
	}
	s.n.mu.Lock()
	delete(s.n.observers, s.id)
	s.n.mu.Unlock()
}

// Notifier fans change events out to observers.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64
	closed    bool

	// queue is non-nil in async mode.
	queue chan Change
	done  chan struct{}
	wg    sync.WaitGroup
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync delivers events from a background goroutine through a queue
// of the given size. Non-positive sizes keep delivery synchronous.
func WithAsync(size int) Option {
	return func(n *Notifier) {
		if size > 0 {
			n.queue = make(chan Change, size)
		}
	}
}

// New creates a Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]Observer),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}

	if n.queue != nil {
		n.wg.Add(1)
		go n.run()
	}
	return n
}

// Subscribe registers an observer for every change.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = observer
	return &Subscription{id: id, n: n}
}

// Notify publishes a change. Changes published after Close are dropped.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if n.queue == nil {
		n.deliver(change)
		return
	}
	select {
	case n.queue <- change:
	case <-n.done:
	}
}

// Close stops delivery after draining queued changes. It is idempotent.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

// deliver calls observers in subscription order, outside the lock so they
// may subscribe or publish themselves.
func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.observers))
	for id := range n.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id]
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.queue:
			n.deliver(change)
		case <-n.done:
			for {
				select {
				case change := <-n.queue:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}

// Batch collects changes and publishes them together.
type Batch struct {
	n       *Notifier
	changes []Change
}

// NewBatch starts an empty batch. A Batch is not safe for concurrent use.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{n: n}
}

// Set queues a set event.
func (b *Batch) Set(path string, oldValue, newValue any, source string) {
	b.changes = append(b.changes, Change{Path: path, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// Delete queues a delete event.
func (b *Batch) Delete(path string, oldValue any, source string) {
	b.changes = append(b.changes, Change{Path: path, Type: ChangeDelete, OldValue: oldValue, Source: source})
}

// Reload queues a reload event.
func (b *Batch) Reload(source string) {
	b.changes = append(b.changes, Change{Type: ChangeReload, Source: source})
}

// Len returns the number of queued changes.
func (b *Batch) Len() int {
	return len(b.changes)
}

// Commit publishes the queued changes in order and empties the batch.
func (b *Batch) Commit() {
	changes := b.changes
	b.changes = nil
	for _, change := range changes {
		b.n.Notify(change)
	}
}
