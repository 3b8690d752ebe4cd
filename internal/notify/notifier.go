// Package notify fans out robot events to registered handlers without ever
// blocking the publisher.
package notify

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/san-kum/robonav/internal/dynamo"
)

// Notifier maps subscription IDs to handlers. Publish only sets a pending
// bit per subscription and wakes its delivery goroutine, so a slow handler
// delays nobody but itself. Repeated events of one kind collapse into a
// single delivery; handlers pull current state instead of receiving it.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
	logger *zap.Logger

	published atomic.Uint64
}

func New(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		subs:   make(map[string]*Subscription),
		logger: logger,
	}
}

type Subscription struct {
	id      string
	handler dynamo.Handler
	logger  *zap.Logger

	pending atomic.Uint32
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
	cancel  func()

	delivered atomic.Uint64
}

func (s *Subscription) ID() string { return s.id }

// Delivered counts handler invocations so far.
func (s *Subscription) Delivered() uint64 { return s.delivered.Load() }

// Cancel unregisters the subscription and stops its delivery goroutine.
// Events still pending are dropped. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		close(s.done)
	})
}

// Subscribe registers h. It only receives events published after Subscribe
// returns.
func (n *Notifier) Subscribe(h dynamo.Handler) *Subscription {
	s := &Subscription{
		id:      uuid.NewString(),
		handler: h,
		logger:  n.logger,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.cancel = func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, s.id)
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		s.once.Do(func() { close(s.done) })
		return s
	}
	n.subs[s.id] = s
	n.mu.Unlock()

	go s.run()
	return s
}

// Publish queues e for every current subscriber and returns immediately.
func (n *Notifier) Publish(e dynamo.Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	n.published.Add(1)
	for _, s := range n.subs {
		s.pending.Or(1 << e)
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// Published counts Publish calls accepted so far.
func (n *Notifier) Published() uint64 { return n.published.Load() }

func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// Close cancels every subscription. Later Publish calls are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	subs := make([]*Subscription, 0, len(n.subs))
	for _, s := range n.subs {
		subs = append(subs, s)
	}
	n.mu.Unlock()

	for _, s := range subs {
		s.Cancel()
	}
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		bits := s.pending.Swap(0)
		for e := dynamo.Event(0); int(e) < dynamo.NumEvents; e++ {
			if bits&(1<<e) == 0 {
				continue
			}
			select {
			case <-s.done:
				return
			default:
			}
			s.deliver(e)
		}
	}
}

func (s *Subscription) deliver(e dynamo.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("observer panicked",
				zap.String("subscription", s.id),
				zap.Stringer("event", e),
				zap.Any("panic", r))
		}
	}()
	s.handler(e)
	s.delivered.Add(1)
}
