package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/gowindow/internal/log"
	"github.com/i474232898/gowindow/internal/weather"
)

// LocationLister yields every saved location that should be kept fresh.
type LocationLister interface {
	All(ctx context.Context) ([]weather.Location, error)
}

// Refresher fetches and stores forecasts for a batch of locations.
type Refresher interface {
	Refresh(ctx context.Context, locs []weather.Location) map[string]error
}

// Scheduler periodically refreshes forecasts for saved locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	locations LocationLister
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(locations LocationLister, refresher Refresher, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		locations: locations,
		refresher: refresher,
		interval:  interval,
		timeout:   2 * time.Minute,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every saved location a single time.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	locs, err := s.locations.All(ctx)
	if err != nil {
		log.Errorw("scheduler: failed to list saved locations", "error", err)
		return
	}
	if len(locs) == 0 {
		log.Debugf("scheduler: no saved locations; nothing to refresh")
		return
	}

	log.Infow("scheduler: refreshing forecasts", "locations", len(locs))
	failures := s.refresher.Refresh(ctx, locs)
	log.Infow("scheduler: refresh complete", "locations", len(locs), "failed", len(failures))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
