package notify

import (
	"sync"
	"time"
)

// DefaultClearDelay is how long an error stays visible without a newer one.
const DefaultClearDelay = 5 * time.Second

// Record is the user-facing error currently on display.
type Record struct {
	Message string
	Visible bool
}

// Timer is the subset of *time.Timer the Center relies on.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once adapted.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Center.
type Option func(*Center)

// WithClearDelay overrides DefaultClearDelay.
func WithClearDelay(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithAfterFunc replaces the scheduler used for auto-clear. Tests use it to
// fire clears deterministically.
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *Center) {
		if fn != nil {
			c.afterFunc = fn
		}
	}
}

// Center holds the single live error record and fans updates out to
// subscribers.
type Center struct {
	mu          sync.Mutex
	record      Record
	generation  uint64
	timer       Timer
	delay       time.Duration
	afterFunc   AfterFunc
	subscribers map[int]chan Record
	nextID      int
}

// New builds a Center with an empty record.
func New(opts ...Option) *Center {
	c := &Center{
		delay: DefaultClearDelay,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		subscribers: make(map[int]chan Record),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the record on display.
func (c *Center) Current() Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// SetError replaces the current record with message and schedules it to
// clear. A clear scheduled for an earlier error never removes this one.
func (c *Center) SetError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	gen := c.generation
	c.record = Record{Message: message, Visible: true}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.afterFunc(c.delay, func() { c.clear(gen) })

	c.publishLocked()
}

// Reset clears the record immediately.
func (c *Center) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.record = Record{}
	c.publishLocked()
}

// Subscribe returns a channel carrying every subsequent record and a cancel
// func that closes it. The channel holds at most one pending value; a slow
// reader always sees the newest record rather than a backlog.
func (c *Center) Subscribe() (<-chan Record, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan Record, 1)
	c.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

func (c *Center) clear(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	c.timer = nil
	c.record = Record{}
	c.publishLocked()
}

// publishLocked must be called with c.mu held.
func (c *Center) publishLocked() {
	rec := c.record
	for _, ch := range c.subscribers {
		select {
		case ch <- rec:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- rec
		}
	}
}
