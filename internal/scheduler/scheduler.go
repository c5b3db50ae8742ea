// Package scheduler runs the daily expiration check.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	dom "ventas/internal/domain"

	"go.uber.org/zap"
)

// ExpiringLister yields the sales expiring today or tomorrow relative to the
// given date. Satisfied by service.SaleService.
type ExpiringLister interface {
	Expiring(ctx context.Context, today time.Time) ([]dom.Sale, error)
}

// Sender delivers one text alert. Satisfied by notify.Telegram.
type Sender interface {
	Send(ctx context.Context, text string)
}

// Scheduler fires once per day at a fixed wall-clock hour in a fixed zone
// and sends one reminder covering all sales expiring today or tomorrow.
// There is no "already notified" ledger: running the check twice on the same
// day re-sends the same reminder, which the manual test trigger relies on.
type Scheduler struct {
	sales  ExpiringLister
	sender Sender
	loc    *time.Location
	hour   int
	logger *zap.Logger

	now func() time.Time
}

// New returns a scheduler firing daily at the given hour in loc.
func New(sales ExpiringLister, sender Sender, loc *time.Location, hour int, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		sales:  sales,
		sender: sender,
		loc:    loc,
		hour:   hour,
		logger: logger,
		now:    time.Now,
	}
}

// Run blocks until ctx is cancelled, firing the expiration check at each
// scheduled time. A failed check is logged and abandoned; the next firing
// still happens.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := nextRun(s.now(), s.hour, s.loc)
		s.logger.Info("expiration check scheduled", zap.Time("next_run", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return
		case <-timer.C:
		}

		if err := s.CheckNow(ctx); err != nil {
			s.logger.Error("expiration check failed", zap.Error(err))
		}
	}
}

// CheckNow performs one expiration check immediately. Also the entry point
// of the manual test-alert route.
func (s *Scheduler) CheckNow(ctx context.Context) error {
	today := s.now().In(s.loc)
	expiring, err := s.sales.Expiring(ctx, today)
	if err != nil {
		return fmt.Errorf("query expiring sales: %w", err)
	}
	if len(expiring) == 0 {
		s.logger.Info("no expiring sales today")
		return nil
	}
	s.sender.Send(ctx, buildMessage(expiring))
	s.logger.Info("expiration reminder dispatched", zap.Int("sales", len(expiring)))
	return nil
}

// nextRun returns the next occurrence of hour:00 in loc strictly after now.
func nextRun(now time.Time, hour int, loc *time.Location) time.Time {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func buildMessage(sales []dom.Sale) string {
	var b strings.Builder
	b.WriteString("🔔 Recordatorio de vencimientos:")
	for _, s := range sales {
		b.WriteString(fmt.Sprintf("\n- %s (%s) vence el %s",
			s.Service, s.ClientName, s.EndDate.Format("2006-01-02")))
	}
	return b.String()
}
