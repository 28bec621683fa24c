package service

import (
	"context"
	"time"

	"reservd/internal/reservations/repository"
	"reservd/pkg/config"
	"reservd/pkg/timegrid"
)

// Worker retires confirmed reservations whose window has elapsed.
// Completion is bookkeeping, not an availability change: the slot lies
// in the past, so no event is emitted.
type Worker struct {
	repo   repository.ReservationRepository
	cfg    *config.Config
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorker(repo repository.ReservationRepository, cfg *config.Config) *Worker {
	return &Worker{repo: repo, cfg: cfg}
}

// Start launches the sweep loop in the background.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		w.Run(ctx)
	}()
}

// Stop cancels the loop and waits for it to drain.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// Run sweeps every SweepInterval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	w.cfg.Log.Info("Completion sweeper started",
		"interval", w.cfg.SweepInterval,
		"grace", w.cfg.CompletionGrace,
	)

	for {
		select {
		case <-ctx.Done():
			w.cfg.Log.Info("Completion sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx, time.Now().UTC()); err != nil {
				w.cfg.Log.Error("Completion sweep failed", "error", err)
			}
		}
	}
}

// Sweep completes everything that ended at or before now minus the
// grace. Stored clocks carry no zone, so the cutoff is taken in UTC and
// the grace absorbs the offset of any resource zone.
func (w *Worker) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-w.cfg.CompletionGrace)
	cutoffDate := cutoff.Format(timegrid.DateLayout)
	cutoffTime := cutoff.Format(timegrid.ClockLayout)

	changed, err := w.repo.CompleteElapsed(ctx, cutoffDate, cutoffTime)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		w.cfg.Log.Info("Completed elapsed reservations", "count", changed, "cutoff", cutoffDate+" "+cutoffTime)
	}
	return changed, nil
}
