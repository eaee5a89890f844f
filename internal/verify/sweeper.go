package verify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// startupDelay is the one-time sweep shortly after boot, before the
	// regular cadence kicks in.
	startupDelay = 30 * time.Second
	// interCheckDelay spaces out DNS lookups within one sweep.
	interCheckDelay = time.Second
)

// Sweeper re-runs verification checks on a fixed cadence, independent of
// the HTTP server's lifecycle. Overlapping runs are skipped via a
// single-flight guard.
type Sweeper struct {
	svc        *Service
	interval   time.Duration
	startDelay time.Duration
	checkDelay time.Duration

	running sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewSweeper(svc *Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		svc:        svc,
		interval:   interval,
		startDelay: startupDelay,
		checkDelay: interCheckDelay,
	}
}

// Start launches the background loop: one sweep after the startup delay,
// then one per interval until Stop.
func (w *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.startDelay):
			w.runOnce(ctx)
		}

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

// Stop terminates the loop and waits for an in-flight sweep to return.
func (w *Sweeper) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Sweeper) runOnce(ctx context.Context) {
	if !w.running.TryLock() {
		slog.Warn("verification sweep still running, skipping tick")
		return
	}
	defer w.running.Unlock()
	w.svc.Sweep(ctx, w.checkDelay)
}
