package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"later today", time.Date(2025, 6, 27, 6, 59, 0, 0, shanghai), time.Date(2025, 6, 27, 7, 0, 0, 0, shanghai)},
		{"exactly now rolls over", time.Date(2025, 6, 27, 7, 0, 0, 0, shanghai), time.Date(2025, 6, 28, 7, 0, 0, 0, shanghai)},
		{"already passed", time.Date(2025, 6, 27, 20, 0, 0, 0, shanghai), time.Date(2025, 6, 28, 7, 0, 0, 0, shanghai)},
		{"month end", time.Date(2025, 6, 30, 8, 0, 0, 0, shanghai), time.Date(2025, 7, 1, 7, 0, 0, 0, shanghai)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.True(t, c.want.Equal(NextRun(c.now, 7, 0)))
		})
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("06:30")
	require.NoError(t, err)
	assert.Equal(t, 6, h)
	assert.Equal(t, 30, m)

	_, _, err = ParseClock("25:00")
	assert.Error(t, err)
	_, err = NewDailyScheduler("seven", time.UTC, nil)
	assert.Error(t, err)
}

func TestDailySchedulerRunsJobAtNextRun(t *testing.T) {
	s, err := NewDailyScheduler("07:00", time.UTC, nil)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Date(2025, 6, 27, 6, 0, 0, 0, time.UTC) }
	var waited []time.Duration
	s.after = func(d time.Duration) <-chan time.Time {
		waited = append(waited, d)
		ch := make(chan time.Time, 1)
		if len(waited) == 1 {
			ch <- time.Time{}
		}
		return ch
	}

	fired := make(chan time.Time, 1)
	require.NoError(t, s.Start(context.Background(), func(at time.Time) {
		select {
		case fired <- at:
		default:
		}
	}))

	select {
	case at := <-fired:
		assert.Equal(t, time.Date(2025, 6, 27, 7, 0, 0, 0, time.UTC), at)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not triggered")
	}
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, time.Hour, waited[0])
}

func TestDailySchedulerStopsOnContext(t *testing.T) {
	s, err := NewDailyScheduler("07:00", time.UTC, nil)
	require.NoError(t, err)
	s.after = func(time.Duration) <-chan time.Time { return make(chan time.Time) }

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx, func(time.Time) { t.Error("job must not run") }))
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.NoError(t, s.Stop(stopCtx))
}
