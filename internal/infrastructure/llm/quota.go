package llm

import (
	"context"
	"errors"
	"sync"
	"time"

	"NatureDaily/internal/config"
)

// ErrQuotaExhausted is returned once the daily request budget is spent.
var ErrQuotaExhausted = errors.New("summarizer daily quota exhausted")

// QuotaLimiter spaces LLM calls to a per-minute rate and caps them per day.
// Counters live in memory and reset on restart.
type QuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time

	now func() time.Time
}

// NewQuotaLimiter builds a limiter; zero or negative values disable that limit.
func NewQuotaLimiter(cfg config.QuotaConfig) *QuotaLimiter {
	perDay := cfg.RequestsPerDay
	if perDay < 0 {
		perDay = 0
	}

	var interval time.Duration
	if cfg.RequestsPerMinute > 0 {
		interval = time.Minute / time.Duration(cfg.RequestsPerMinute)
	}

	return &QuotaLimiter{
		dailyLimit: perDay,
		interval:   interval,
		now:        time.Now,
	}
}

// Wait blocks until the next call is allowed and reserves it.
func (l *QuotaLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	for {
		l.mu.Lock()

		now := l.now().UTC()
		today := now.Format("2006-01-02")
		if l.dayKey != today {
			l.dayKey = today
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return ErrQuotaExhausted
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			delay = l.lastCall.Add(l.interval).Sub(now)
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return nil
		}

		l.mu.Unlock()
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
