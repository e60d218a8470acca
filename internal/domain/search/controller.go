package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
)

// Fetcher performs the single network call behind a submission.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (aqi.Reading, error)
}

// Listener observes every state the controller publishes.
type Listener func(State)

// Controller owns the query lifecycle: it validates input, issues one fetch per
// submission and keeps the only copy of the current State.
//
// Every submission takes a sequence number. A response that resolves after a
// newer submission started is dropped, so older data never overwrites newer state.
// Listeners run outside the state lock, one notification at a time, and never
// observe an older state after a newer one. A listener must not call Submit.
type Controller struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	seq       uint64
	listeners map[int]Listener
	nextID    int
	version   uint64

	notifyMu  sync.Mutex
	published uint64
}

// NewController builds a controller in the Idle state.
func NewController(fetcher Fetcher, logger *slog.Logger) *Controller {
	return &Controller{
		fetcher:   fetcher,
		logger:    logger.With("component", "search.controller"),
		state:     Idle(),
		listeners: make(map[int]Listener),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a listener and returns a function removing it.
func (c *Controller) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Submit runs one query for the raw user input and returns the state held once
// it resolved. A submission superseded while in flight returns the newer state.
func (c *Controller) Submit(ctx context.Context, raw string) State {
	city := strings.TrimSpace(raw)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if city == "" {
		c.logger.Debug("rejected empty city")
		return c.transitionLocked(Failed(MessageFor(&ValidationError{Message: MessageEmptyCity})))
	}
	c.transitionLocked(Loading())

	reading, err := c.fetcher.Fetch(ctx, city)

	next := Succeeded(reading)
	if err != nil {
		c.logger.Warn("aqi query failed", "city", city, "error", err)
		next = Failed(MessageFor(err))
	}

	c.mu.Lock()
	if seq != c.seq {
		current := c.state
		c.mu.Unlock()
		c.logger.Debug("dropping stale response", "city", city, "seq", seq)
		return current
	}
	return c.transitionLocked(next)
}

// transitionLocked stores next, releases c.mu and notifies listeners.
func (c *Controller) transitionLocked(next State) State {
	c.state = next
	c.version++
	version := c.version
	listeners := make([]Listener, 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if l, ok := c.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if version < c.published {
		return next
	}
	c.published = version
	for _, l := range listeners {
		l(next)
	}
	return next
}
