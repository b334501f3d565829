package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSweepInterval is how often the expiry sweep runs.
const DefaultSweepInterval = time.Hour

// Expirer expires stale invitations.
type Expirer interface {
	ExpireStale(ctx context.Context) (SweepResult, error)
}

// ExpirySweeper runs the invitation expiry sweep on a fixed interval.
type ExpirySweeper struct {
	expirer  Expirer
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewExpirySweeper runs one sweep synchronously and then starts a background
// goroutine sweeping every interval until Stop() is called.
func NewExpirySweeper(ctx context.Context, expirer Expirer, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	sweeperCtx, cancel := context.WithCancel(ctx)

	es := &ExpirySweeper{
		expirer:  expirer,
		interval: interval,
		ctx:      sweeperCtx,
		cancel:   cancel,
	}

	es.sweep()

	es.wg.Add(1)
	go es.sweepLoop()

	return es
}

// Stop cancels an in-flight sweep and waits for the loop to exit.
func (es *ExpirySweeper) Stop() {
	es.cancel()
	es.wg.Wait()
}

func (es *ExpirySweeper) sweepLoop() {
	defer es.wg.Done()

	ticker := time.NewTicker(es.interval)
	defer ticker.Stop()

	for {
		select {
		case <-es.ctx.Done():
			log.Info().Msg("Expiry sweeper stopped")
			return

		case <-ticker.C:
			es.sweep()
		}
	}
}

func (es *ExpirySweeper) sweep() {
	if _, err := es.expirer.ExpireStale(es.ctx); err != nil {
		log.Error().Err(err).Msg("Invitation expiry sweep failed")
	}
}
