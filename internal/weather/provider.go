package weather

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two upstream fetch shapes.
type Kind string

const (
	KindDaily  Kind = "daily"
	KindHourly Kind = "hourly"
)

// Provider abstracts a forecast source (e.g. Open-Meteo).
// Daily fetches carry the full daily series plus hourly data covering every
// daily date; hourly fetches carry hourly data plus daily sunrise/sunset.
type Provider interface {
	Name() string
	FetchDaily(ctx context.Context, loc Location) (RawForecast, error)
	FetchHourly(ctx context.Context, loc Location) (RawForecast, error)
}

// Snapshot is one stored upstream fetch.
type Snapshot struct {
	ID        uuid.UUID   `json:"id"`
	Location  Location    `json:"location"`
	Kind      Kind        `json:"kind"`
	Provider  string      `json:"provider"`
	FetchedAt time.Time   `json:"fetchedAt"`
	Forecast  RawForecast `json:"forecast"`
}

// NewSnapshot stamps a freshly fetched forecast with an ID and fetch time.
func NewSnapshot(loc Location, kind Kind, provider string, fetchedAt time.Time, fc RawForecast) Snapshot {
	return Snapshot{
		ID:        uuid.New(),
		Location:  loc,
		Kind:      kind,
		Provider:  provider,
		FetchedAt: fetchedAt,
		Forecast:  fc,
	}
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot Snapshot)
	GetLatest(loc Location, kind Kind) (Snapshot, error)
	GetRange(loc Location, from, to time.Time) ([]Snapshot, error)
}

// Recorder receives pipeline measurements. A nil Recorder is allowed.
type Recorder interface {
	ObserveFetch(provider string, kind Kind, d time.Duration, err error)
	CountQuality(activity Activity, kind Kind, q Quality)
}
