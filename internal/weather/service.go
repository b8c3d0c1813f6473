package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/gowindow/internal/log"
)

// Options tunes the Service. Zero values fall back to defaults.
type Options struct {
	StaleThreshold time.Duration
	// DaylightBuffer widens the daylight window; nil means DefaultDaylightBuffer.
	DaylightBuffer *time.Duration
	Codes          *CodeTable
	Icons          *IconTable
	Recorder       Recorder
	Now            func() time.Time
}

// DayEntry is a classified day with its display label and icon.
type DayEntry struct {
	DayRecord
	QualityLabel string `json:"qualityLabel"`
	Icon         string `json:"icon"`
}

// HourEntry is a classified hour with its display label and icon.
type HourEntry struct {
	HourRecord
	QualityLabel string `json:"qualityLabel"`
	Icon         string `json:"icon"`
}

// DailyOutlook is the classified daily forecast for one location.
type DailyOutlook struct {
	Location   Location   `json:"location"`
	Activity   Activity   `json:"activity"`
	SnapshotID uuid.UUID  `json:"snapshotId"`
	FetchedAt  time.Time  `json:"fetchedAt"`
	Days       []DayEntry `json:"days"`
}

// HourlyOutlook is the classified hourly forecast for one location.
type HourlyOutlook struct {
	Location   Location    `json:"location"`
	Activity   Activity    `json:"activity"`
	SnapshotID uuid.UUID   `json:"snapshotId"`
	FetchedAt  time.Time   `json:"fetchedAt"`
	Hours      []HourEntry `json:"hours"`
}

// Service orchestrates fetching, snapshot reuse and classification.
type Service struct {
	store      Store
	provider   Provider
	aggregator *Aggregator
	classifier *Classifier
	icons      IconTable
	recorder   Recorder
	stale      time.Duration
	buffer     time.Duration
	now        func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, opts Options) *Service {
	codes := DefaultCodeTable()
	if opts.Codes != nil {
		codes = *opts.Codes
	}
	icons := DefaultIconTable()
	if opts.Icons != nil {
		icons = *opts.Icons
	}
	buffer := DefaultDaylightBuffer
	if opts.DaylightBuffer != nil {
		buffer = max(*opts.DaylightBuffer, 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:      store,
		provider:   provider,
		aggregator: NewAggregator(buffer),
		classifier: NewClassifier(codes),
		icons:      icons,
		recorder:   opts.Recorder,
		stale:      opts.StaleThreshold,
		buffer:     buffer,
		now:        now,
	}
}

// Daily returns the classified daily outlook for loc. Classification runs over
// the full series before compact filtering.
func (s *Service) Daily(ctx context.Context, loc Location, activity Activity, compact bool) (DailyOutlook, error) {
	snap, err := s.snapshot(ctx, loc, KindDaily)
	if err != nil {
		return DailyOutlook{}, err
	}

	days := s.ClassifyDaily(snap.Forecast)
	days = VisibleDays(days, compact)

	entries := make([]DayEntry, 0, len(days))
	for _, d := range days {
		s.count(activity, KindDaily, d.Quality)
		entries = append(entries, DayEntry{
			DayRecord:    d,
			QualityLabel: Label(d.Quality, activity),
			Icon:         s.icons.URL(d.WeatherCode, true),
		})
	}

	return DailyOutlook{
		Location:   loc,
		Activity:   activity,
		SnapshotID: snap.ID,
		FetchedAt:  snap.FetchedAt,
		Days:       entries,
	}, nil
}

// Hourly returns the classified hourly outlook for loc.
func (s *Service) Hourly(ctx context.Context, loc Location, activity Activity) (HourlyOutlook, error) {
	snap, err := s.snapshot(ctx, loc, KindHourly)
	if err != nil {
		return HourlyOutlook{}, err
	}

	hours := s.ClassifyHourly(snap.Forecast, activity)

	entries := make([]HourEntry, 0, len(hours))
	for _, h := range hours {
		s.count(activity, KindHourly, h.Quality)
		entries = append(entries, HourEntry{
			HourRecord:   h,
			QualityLabel: Label(h.Quality, activity),
			Icon:         s.icons.URL(h.WeatherCode, h.Daylight),
		})
	}

	return HourlyOutlook{
		Location:   loc,
		Activity:   activity,
		SnapshotID: snap.ID,
		FetchedAt:  snap.FetchedAt,
		Hours:      entries,
	}, nil
}

// ClassifyDaily runs aggregation, record building and daily classification
// over a raw forecast. It performs no I/O.
func (s *Service) ClassifyDaily(fc RawForecast) []DayRecord {
	agg := s.aggregator.Aggregate(fc.Daily, fc.Hourly)
	return s.classifier.ClassifyDays(BuildDays(agg, s.now()))
}

// ClassifyHourly builds and classifies hourly records for activity. Dog-walk
// forecasts are cut to the next 24 hours before classification.
func (s *Service) ClassifyHourly(fc RawForecast, activity Activity) []HourRecord {
	now := s.now()
	hours := BuildHours(fc.Hourly, fc.Daily, now, s.buffer)
	if activity == ActivityDogWalk {
		hours = WithinHorizon(hours, now, DogWalkHorizon)
	}
	return s.classifier.ClassifyHours(hours, activity)
}

// Refresh fetches both forecast shapes for every location. A failure for one
// location is logged and returned in the map; the others still proceed.
func (s *Service) Refresh(ctx context.Context, locs []Location) map[string]error {
	failures := make(map[string]error)
	for _, loc := range locs {
		if ctx.Err() != nil {
			failures[loc.Key()] = ctx.Err()
			continue
		}
		var errs []error
		for _, kind := range []Kind{KindDaily, KindHourly} {
			if _, err := s.fetch(ctx, loc, kind); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			err := errors.Join(errs...)
			log.Warnw("forecast refresh failed", "location", loc.Key(), "error", err)
			failures[loc.Key()] = err
		}
	}
	return failures
}

// Snapshots returns stored fetches for loc between from and to (inclusive).
func (s *Service) Snapshots(loc Location, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(loc, from, to)
}

func (s *Service) snapshot(ctx context.Context, loc Location, kind Kind) (Snapshot, error) {
	if s.stale > 0 {
		if snap, err := s.store.GetLatest(loc, kind); err == nil && s.now().Sub(snap.FetchedAt) < s.stale {
			log.Debugf("using cached %s forecast for %s (age %s)", kind, loc.Key(), s.now().Sub(snap.FetchedAt).Round(time.Second))
			return snap, nil
		}
	}
	return s.fetch(ctx, loc, kind)
}

func (s *Service) fetch(ctx context.Context, loc Location, kind Kind) (Snapshot, error) {
	if s.provider == nil {
		return Snapshot{}, errors.New("no forecast provider configured")
	}

	start := time.Now()
	var (
		fc  RawForecast
		err error
	)
	switch kind {
	case KindHourly:
		fc, err = s.provider.FetchHourly(ctx, loc)
	default:
		fc, err = s.provider.FetchDaily(ctx, loc)
	}
	if s.recorder != nil {
		s.recorder.ObserveFetch(s.provider.Name(), kind, time.Since(start), err)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch %s forecast for %s: %w", kind, loc.Key(), err)
	}

	snap := NewSnapshot(loc, kind, s.provider.Name(), s.now(), fc)
	s.store.SaveSnapshot(loc, snap)
	log.Debugw("stored forecast snapshot", "location", loc.Key(), "kind", kind, "id", snap.ID)
	return snap, nil
}

func (s *Service) count(activity Activity, kind Kind, q Quality) {
	if s.recorder != nil {
		s.recorder.CountQuality(activity, kind, q)
	}
}
