// Package monitoring hosts background upkeep for the service.
package monitoring

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/roomshare/roomshare-be/internal/otp"
	"github.com/roomshare/roomshare-be/internal/services"
)

// Sweeper periodically purges expired pending signups and expired
// password-reset tokens. Its schedule is a standard cron expression.
type Sweeper struct {
	pending  *otp.Cache
	users    services.UserServiceProvider
	schedule cron.Schedule
	done     chan bool
}

// NewSweeper creates a sweeper from a cron expression, e.g. "*/5 * * * *".
func NewSweeper(spec string, pending *otp.Cache, users services.UserServiceProvider) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid maintenance cron expression: %w", err)
	}
	return &Sweeper{
		pending:  pending,
		users:    users,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run executes the sweep loop until Stop is called.
func (s *Sweeper) Run() {
	log.Info().Msg("Starting maintenance sweeper")

	// Run once immediately on start.
	s.sweep()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping maintenance sweeper")
			return
		case <-timer.C:
			s.sweep()
		}
	}
}

// Stop halts the sweeper.
func (s *Sweeper) Stop() {
	s.done <- true
}

func (s *Sweeper) sweep() {
	purged := s.pending.PurgeExpired()
	cleared, err := s.users.ClearExpiredResetTokens(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to clear expired reset tokens")
		return
	}
	if purged > 0 || cleared > 0 {
		log.Info().Int("otp_purged", purged).Int64("reset_tokens_cleared", cleared).Msg("Maintenance sweep completed")
	}
}
