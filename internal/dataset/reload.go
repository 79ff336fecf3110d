package dataset

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Reloader runs continuous background reloads of the data directory.
type Reloader struct {
	loader   *Loader
	interval time.Duration
	log      zerolog.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewReloader creates a background reloader. An interval of zero disables it;
// Start becomes a no-op.
func NewReloader(loader *Loader, interval time.Duration, log zerolog.Logger) *Reloader {
	return &Reloader{
		loader:   loader,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start begins the reload loop.
func (r *Reloader) Start() {
	if r.interval <= 0 {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.stopChan:
				return
			case <-time.After(r.interval):
			}
			if err := r.loader.Load(); err != nil {
				// Keep serving the last-known snapshot.
				r.log.Error().Err(err).Msg("background reload failed")
			}
		}
	}()
}

// Stop stops the reloader gracefully.
func (r *Reloader) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}
