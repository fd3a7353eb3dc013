package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clubvote/clubvote-go/internal/model"
)

// TallyWorker subscribes to engine change events and batches tally cache
// refreshes. If 50 votes settle for one race inside the batch window, the
// tally is recomputed once. Window changes are batched the same way so a
// results reveal finds a warm cache.
type TallyWorker struct {
	tally   *TallyService
	bus     *Bus
	batchMs time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[model.RaceKey]struct{} // races waiting for a refresh

	// onFlush, when set, observes each flush duration (metrics hook).
	onFlush func(d time.Duration)
}

// NewTallyWorker creates a tally refresh worker.
func NewTallyWorker(tally *TallyService, bus *Bus, log zerolog.Logger) *TallyWorker {
	return &TallyWorker{
		tally:   tally,
		bus:     bus,
		batchMs: 5 * time.Second,
		log:     log.With().Str("component", "tally-worker").Logger(),
		pending: make(map[model.RaceKey]struct{}),
	}
}

// SetFlushObserver registers a callback that receives each flush duration.
func (w *TallyWorker) SetFlushObserver(fn func(d time.Duration)) {
	w.onFlush = fn
}

// Start consumes bus events and processes refreshes in batched windows.
// Blocks until ctx is cancelled.
func (w *TallyWorker) Start(ctx context.Context) {
	w.log.Info().Dur("batch_window", w.batchMs).Msg("starting")

	events, cancel := w.bus.Subscribe(256)
	defer cancel()

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			switch evt.Kind {
			case EventVoteSettled, EventWindowChanged:
			default:
				continue
			}
			w.mu.Lock()
			w.pending[model.RaceKey{Club: evt.Club, Position: evt.Position}] = struct{}{}
			w.mu.Unlock()
		case <-ctx.Done():
			w.log.Info().Msg("stopping (context cancelled)")
			return
		}
	}
}

// flushLoop periodically drains the pending set and refreshes tallies.
func (w *TallyWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchMs)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.flush(context.Background())
			return
		}
	}
}

// flush drains the pending set and recomputes each dirty race's tally.
func (w *TallyWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	// Swap out the pending map
	batch := w.pending
	w.pending = make(map[model.RaceKey]struct{})
	w.mu.Unlock()

	start := time.Now()
	refreshed := 0
	for key := range batch {
		if err := w.tally.Refresh(ctx, key.Club, key.Position); err != nil {
			w.log.Warn().Err(err).Str("race", key.String()).Msg("refresh failed")
			continue
		}
		refreshed++
	}

	elapsed := time.Since(start)
	if w.onFlush != nil {
		w.onFlush(elapsed)
	}
	if refreshed > 0 {
		w.log.Debug().Int("races", refreshed).Dur("took", elapsed).Msg("batch refresh complete")
	}
}
