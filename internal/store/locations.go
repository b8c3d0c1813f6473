package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/gowindow/internal/common"
	"github.com/i474232898/gowindow/internal/weather"
)

var (
	// ErrLocationExists is returned when a location within 0.01° is already saved.
	ErrLocationExists = errors.New("location already in list")
	// ErrTooManyLocations is returned when the per-activity limit is reached.
	ErrTooManyLocations = errors.New("maximum number of locations reached")
)

// savedLocation is the persisted form of a weather.Location in an activity list.
type savedLocation struct {
	ID        uint    `gorm:"primaryKey"`
	Activity  string  `gorm:"not null;uniqueIndex:idx_activity_slug"`
	Slug      string  `gorm:"not null;uniqueIndex:idx_activity_slug"`
	Position  int     `gorm:"not null"`
	Name      string  `gorm:"not null"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
	Timezone  string
	Label     string
	CreatedAt time.Time
}

func (savedLocation) TableName() string {
	return "saved_locations"
}

func (s savedLocation) toLocation() weather.Location {
	return weather.Location{
		Slug:      s.Slug,
		Name:      s.Name,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timezone:  s.Timezone,
		Label:     s.Label,
	}
}

// LocationRepository keeps an ordered list of saved locations per activity.
type LocationRepository struct {
	db           *gorm.DB
	maxLocations int
}

// OpenLocationRepository opens (and migrates) the SQLite database at path.
func OpenLocationRepository(path string, maxLocations int) (*LocationRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: NewGormLogger(200*time.Millisecond, logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open location database: %w", err)
	}
	return NewLocationRepository(db, maxLocations)
}

// NewLocationRepository wraps an existing gorm handle and migrates the schema.
func NewLocationRepository(db *gorm.DB, maxLocations int) (*LocationRepository, error) {
	if err := db.AutoMigrate(&savedLocation{}); err != nil {
		return nil, fmt.Errorf("migrate saved_locations: %w", err)
	}
	return &LocationRepository{db: db, maxLocations: maxLocations}, nil
}

// Close releases the underlying database connection.
func (r *LocationRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// List returns the locations saved for activity in display order.
func (r *LocationRepository) List(ctx context.Context, activity weather.Activity) ([]weather.Location, error) {
	var rows []savedLocation
	if err := r.db.WithContext(ctx).
		Where("activity = ?", string(activity)).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	locs := make([]weather.Location, 0, len(rows))
	for _, row := range rows {
		locs = append(locs, row.toLocation())
	}
	return locs, nil
}

// Get returns a single saved location.
func (r *LocationRepository) Get(ctx context.Context, activity weather.Activity, slug string) (weather.Location, error) {
	var row savedLocation
	err := r.db.WithContext(ctx).
		Where("activity = ? AND slug = ?", string(activity), slug).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return weather.Location{}, ErrNotFound
	}
	if err != nil {
		return weather.Location{}, fmt.Errorf("get location: %w", err)
	}
	return row.toLocation(), nil
}

// All returns every saved location across activities. Entries that need the
// same forecast (see weather.Location.Key) are returned once.
func (r *LocationRepository) All(ctx context.Context) ([]weather.Location, error) {
	var rows []savedLocation
	if err := r.db.WithContext(ctx).Order("activity, position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list all locations: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	locs := make([]weather.Location, 0, len(rows))
	for _, row := range rows {
		loc := row.toLocation()
		if _, ok := seen[loc.Key()]; ok {
			continue
		}
		seen[loc.Key()] = struct{}{}
		locs = append(locs, loc)
	}
	return locs, nil
}

// Add appends loc to the activity list. The slug is derived from the name when
// empty and made unique within the list.
func (r *LocationRepository) Add(ctx context.Context, activity weather.Activity, loc weather.Location) (weather.Location, error) {
	var saved savedLocation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []savedLocation
		if err := tx.Where("activity = ?", string(activity)).Order("position ASC").Find(&rows).Error; err != nil {
			return err
		}
		if r.maxLocations > 0 && len(rows) >= r.maxLocations {
			return ErrTooManyLocations
		}

		slugs := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			if common.SameSpot(row.Latitude, row.Longitude, loc.Latitude, loc.Longitude) {
				return ErrLocationExists
			}
			slugs[row.Slug] = struct{}{}
		}

		slug := loc.Slug
		if slug == "" {
			slug = common.Slugify(loc.Name)
		}
		if slug == "" {
			slug = "location"
		}
		base := slug
		for n := 2; ; n++ {
			if _, taken := slugs[slug]; !taken {
				break
			}
			slug = fmt.Sprintf("%s-%d", base, n)
		}

		saved = savedLocation{
			Activity:  string(activity),
			Slug:      slug,
			Position:  len(rows),
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Timezone:  loc.Timezone,
			Label:     loc.Label,
		}
		return tx.Create(&saved).Error
	})
	if err != nil {
		if errors.Is(err, ErrTooManyLocations) || errors.Is(err, ErrLocationExists) {
			return weather.Location{}, err
		}
		return weather.Location{}, fmt.Errorf("add location: %w", err)
	}
	return saved.toLocation(), nil
}

// Remove deletes a location and closes the gap in positions.
func (r *LocationRepository) Remove(ctx context.Context, activity weather.Activity, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("activity = ? AND slug = ?", string(activity), slug).Delete(&savedLocation{})
		if res.Error != nil {
			return fmt.Errorf("remove location: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return renumber(tx, activity)
	})
}

// Move swaps a location with its neighbour; direction is -1 (up) or +1 (down).
// Moving past either end is a no-op.
func (r *LocationRepository) Move(ctx context.Context, activity weather.Activity, slug string, direction int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []savedLocation
		if err := tx.Where("activity = ?", string(activity)).Order("position ASC").Find(&rows).Error; err != nil {
			return fmt.Errorf("move location: %w", err)
		}

		index := -1
		for i, row := range rows {
			if row.Slug == slug {
				index = i
				break
			}
		}
		if index < 0 {
			return ErrNotFound
		}

		target := index + direction
		if target < 0 || target >= len(rows) {
			return nil
		}

		if err := tx.Model(&savedLocation{}).Where("id = ?", rows[index].ID).Update("position", target).Error; err != nil {
			return fmt.Errorf("move location: %w", err)
		}
		if err := tx.Model(&savedLocation{}).Where("id = ?", rows[target].ID).Update("position", index).Error; err != nil {
			return fmt.Errorf("move location: %w", err)
		}
		return nil
	})
}

// Reset removes every location saved for activity.
func (r *LocationRepository) Reset(ctx context.Context, activity weather.Activity) error {
	if err := r.db.WithContext(ctx).Where("activity = ?", string(activity)).Delete(&savedLocation{}).Error; err != nil {
		return fmt.Errorf("reset locations: %w", err)
	}
	return nil
}

func renumber(tx *gorm.DB, activity weather.Activity) error {
	var rows []savedLocation
	if err := tx.Where("activity = ?", string(activity)).Order("position ASC").Find(&rows).Error; err != nil {
		return err
	}
	for i, row := range rows {
		if row.Position == i {
			continue
		}
		if err := tx.Model(&savedLocation{}).Where("id = ?", row.ID).Update("position", i).Error; err != nil {
			return err
		}
	}
	return nil
}
