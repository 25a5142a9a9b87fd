package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const sweepBatchSize = 100

// Sweeper periodically fails PENDING bookings whose hold has lapsed and
// releases their slots. Each booking is expired in its own transaction,
// so one failure never blocks the rest of the batch.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(svc *Service, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{svc: svc, interval: interval, log: log}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info().Dur("interval", s.interval).Msg("booking expiry sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("booking expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass and returns the number of bookings expired.
func (s *Sweeper) Sweep(ctx context.Context) int {
	due, err := s.svc.ListExpired(ctx, sweepBatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list expired bookings")
		return 0
	}
	expired := 0
	for _, b := range due {
		if err := s.svc.Expire(ctx, b.ID); err != nil {
			s.log.Error().Err(err).Str("booking_id", b.ID.String()).Msg("failed to expire booking")
			continue
		}
		expired++
	}
	if expired > 0 {
		s.log.Info().Int("expired", expired).Msg("expired overdue bookings")
	}
	return expired
}
