package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"NatureDaily/internal/ports"
)

// DailyScheduler fires a job once a day at a wall-clock time in a fixed location.
// Jobs run one at a time on the scheduler goroutine.
type DailyScheduler struct {
	hour   int
	minute int
	loc    *time.Location
	logger *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses at as HH:MM.
func NewDailyScheduler(at string, loc *time.Location, log *slog.Logger) (*DailyScheduler, error) {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &DailyScheduler{
		hour:   hour,
		minute: minute,
		loc:    loc,
		logger: log,
		now:    time.Now,
		after:  time.After,
	}, nil
}

// ParseClock reads a 24h "HH:MM" string.
func ParseClock(at string) (int, int, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid daily time %q: %w", at, err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextRun returns the first hour:minute strictly after now, in now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// Start launches the loop; calling it again while running is a no-op.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.loop(ctx, job, d.stop, d.done)
	return nil
}

func (d *DailyScheduler) loop(ctx context.Context, job func(time.Time), stop, done chan struct{}) {
	defer close(done)
	for {
		now := d.now().In(d.loc)
		next := NextRun(now, d.hour, d.minute)
		if d.logger != nil {
			d.logger.Info("next run scheduled", "at", next.Format(time.RFC3339), "in", next.Sub(now).Round(time.Second))
		}

		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-d.after(next.Sub(now)):
			job(next)
		}
	}
}

// Stop halts the loop and waits for a running job to return, bounded by ctx.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
