package coordinator

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mklemme/fhs280-bridge/internal/hub"
	"github.com/mklemme/fhs280-bridge/internal/poll"
)

// Listener receives the outcome of every completed cycle: the current
// snapshot (the retained previous one on failure, possibly nil) and the
// cycle error, nil on success.
type Listener func(*poll.Snapshot, error)

// reconcileDelay is how long after a successful write the confirming
// refresh is scheduled.
const reconcileDelay = 2 * time.Second

// Coordinator owns the current snapshot. It runs a poll cycle on a timer
// and on demand, fans results out to listeners, and supports optimistic
// snapshot patches after register writes.
type Coordinator struct {
	hub      hub.Hub
	cycle    *poll.Cycle
	interval time.Duration
	delay    time.Duration

	mu        sync.Mutex
	current   *poll.Snapshot
	lastErr   error
	listeners []Listener

	refreshCh chan struct{}
}

func New(h hub.Hub, interval time.Duration) *Coordinator {
	return &Coordinator{
		hub:       h,
		cycle:     poll.New(h),
		interval:  interval,
		delay:     reconcileDelay,
		refreshCh: make(chan struct{}, 1),
	}
}

// AddListener registers a cycle-result callback. Not safe to call once
// Run has started.
func (c *Coordinator) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Snapshot returns the current snapshot, nil before the first successful
// poll.
func (c *Coordinator) Snapshot() *poll.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// LastError returns the error recorded by the most recent cycle, nil
// after a success.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// FirstRefresh runs the initial poll. With no prior snapshot to fall back
// on, a failure here is an initialization failure for the caller.
func (c *Coordinator) FirstRefresh() error {
	c.pollOnce()
	return c.LastError()
}

// Run polls on the configured interval until ctx is cancelled. Refresh
// requests interleave with timer ticks; cycles never overlap because both
// run on this goroutine.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.pollOnce()
		case <-c.refreshCh:
			c.pollOnce()
		}
	}
}

// Refresh requests an immediate out-of-band poll. Non-blocking; pending
// requests coalesce.
func (c *Coordinator) Refresh() {
	select {
	case c.refreshCh <- struct{}{}:
	default:
	}
}

// Write writes one holding register through the hub. On success the patch
// is merged into the current snapshot immediately so consumers see the
// change before the next real poll, and a reconcile refresh is scheduled;
// that refresh failing does not revert the patch.
func (c *Coordinator) Write(addr uint16, value int, patch map[string]interface{}) error {
	if err := c.hub.WriteRegister(addr, value); err != nil {
		return err
	}

	if len(patch) > 0 {
		c.applyPatch(patch)
	}

	time.AfterFunc(c.delay, c.Refresh)
	return nil
}

func (c *Coordinator) pollOnce() {
	snap, err := c.cycle.Run()

	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		log.WithError(err).Warn("poll cycle failed, keeping previous snapshot")
	} else {
		c.current = snap
		c.lastErr = nil
	}
	current := c.current
	c.mu.Unlock()

	c.notify(current, err)
}

// applyPatch replaces the current snapshot with a patched copy and
// notifies listeners so the optimistic values are published right away.
func (c *Coordinator) applyPatch(patch map[string]interface{}) {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	snap := c.current.Clone()
	for k, v := range patch {
		snap.Values[k] = v
	}
	c.current = snap
	c.mu.Unlock()

	c.notify(snap, nil)
}

func (c *Coordinator) notify(snap *poll.Snapshot, err error) {
	for _, l := range c.listeners {
		l(snap, err)
	}
}
