package usecase

import (
	"context"
	"time"

	"NatureDaily/internal/ports"
)

// DayProcessor is the part of Pipeline the scheduler drives.
type DayProcessor interface {
	ProcessDay(ctx context.Context, day time.Time) (Result, error)
}

// Scheduler wires the daily driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline DayProcessor
	onError  func(error)
}

// NewScheduler returns a helper to start/stop recurring jobs. onError may be nil.
func NewScheduler(driver ports.Scheduler, pipeline DayProcessor, onError func(error)) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, onError: onError}
}

// Start registers the pipeline with the provided scheduler. A failed run is
// reported and the next one still fires.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := s.pipeline.ProcessDay(ctx, trigger); err != nil && s.onError != nil {
			s.onError(err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
