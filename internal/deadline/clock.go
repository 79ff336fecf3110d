package deadline

import (
	"sync"
	"time"
)

// Clock supplies "now" to the engine. Handlers sample it once per render
// cycle so every computation in the cycle sees the same instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Used in tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Ticker invokes a callback with the current instant on a fixed interval.
// It models the continuous re-evaluation of "now" as an explicit
// subscription: Stop releases it and is safe to call once the loop is no
// longer wanted. No timer or goroutine survives Stop.
type Ticker struct {
	clock    Clock
	interval time.Duration
	fn       func(time.Time)
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTicker creates a stopped ticker; Start begins delivery.
func NewTicker(clock Clock, interval time.Duration, fn func(time.Time)) *Ticker {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Ticker{
		clock:    clock,
		interval: interval,
		fn:       fn,
		stopChan: make(chan struct{}),
	}
}

// Start begins the tick loop.
func (t *Ticker) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stopChan:
				return
			case <-ticker.C:
				t.fn(t.clock.Now())
			}
		}
	}()
}

// Stop ends the loop and waits for it to exit.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	t.wg.Wait()
}
