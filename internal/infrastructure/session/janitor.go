package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultSweepInterval = time.Minute

// Janitor periodically drops expired sessions from a MemoryStore.
type Janitor struct {
	store    *MemoryStore
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewJanitor creates a Janitor. If interval <= 0, defaultSweepInterval is used.
func NewJanitor(store *MemoryStore, interval time.Duration, log zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Janitor{store: store, interval: interval, now: time.Now, log: log}
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	go j.run(ctx)
}

func (j *Janitor) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() int {
	n := j.store.Sweep(j.now())
	if n > 0 {
		j.log.Debug().Int("removed", n).Int("remaining", j.store.Len()).Msg("expired sessions swept")
	}
	return n
}
