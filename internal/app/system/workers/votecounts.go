// internal/app/system/workers/votecounts.go
package workers

import (
	"context"
	"sync"
	"time"

	announcementstore "github.com/corkboardhq/corkboard/internal/app/store/announcements"
	votestore "github.com/corkboardhq/corkboard/internal/app/store/votes"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// VoteRecount is a background worker that reconciles the denormalized
// vote_count on announcements against the votes collection. Handlers adjust
// the counter inline on vote and withdraw; this sweep repairs any drift
// from crashed requests or concurrent deletes.
type VoteRecount struct {
	votes         *votestore.Store
	announcements *announcementstore.Store
	log           *zap.Logger
	interval      time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewVoteRecount creates a vote recount worker that sweeps every interval.
func NewVoteRecount(votes *votestore.Store, announcements *announcementstore.Store, logger *zap.Logger, interval time.Duration) *VoteRecount {
	return &VoteRecount{
		votes:         votes,
		announcements: announcements,
		log:           logger,
		interval:      interval,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background recount loop.
func (w *VoteRecount) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("vote recount worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *VoteRecount) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("vote recount worker stopped")
}

func (w *VoteRecount) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.recount()
		}
	}
}

func (w *VoteRecount) recount() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	actual, err := w.votes.AllTotals(ctx)
	if err != nil {
		w.log.Error("failed to aggregate vote totals", zap.Error(err))
		return
	}
	stored, err := w.announcements.CurrentVoteCounts(ctx)
	if err != nil {
		w.log.Error("failed to read stored vote counts", zap.Error(err))
		return
	}

	fixed := 0
	for id, want := range stored {
		got := actual[id]
		if got == want {
			continue
		}
		if err := w.announcements.SetVoteCount(ctx, id, got); err != nil {
			w.log.Error("failed to repair vote count",
				zap.String("announcement_id", id.Hex()),
				zap.Error(err))
			continue
		}
		fixed++
	}

	if fixed > 0 {
		w.log.Info("repaired drifted vote counts", zap.Int("count", fixed))
	}
}
