package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/gowindow/internal/log"
	"github.com/i474232898/gowindow/internal/store"
	"github.com/i474232898/gowindow/internal/weather"
)

var validate = validator.New()

// LocationStore persists the per-activity location lists.
type LocationStore interface {
	List(ctx context.Context, activity weather.Activity) ([]weather.Location, error)
	Get(ctx context.Context, activity weather.Activity, slug string) (weather.Location, error)
	Add(ctx context.Context, activity weather.Activity, loc weather.Location) (weather.Location, error)
	Remove(ctx context.Context, activity weather.Activity, slug string) error
	Move(ctx context.Context, activity weather.Activity, slug string, direction int) error
	Reset(ctx context.Context, activity weather.Activity) error
}

// PlaceFinder resolves free-text queries into places.
type PlaceFinder interface {
	Search(ctx context.Context, query string) ([]weather.Place, error)
}

// TimezoneResolver looks up the IANA zone for a coordinate.
type TimezoneResolver interface {
	Timezone(ctx context.Context, lat, lon float64) (string, error)
}

// Deps are the collaborators the API needs. Places, Timezones and Gatherer may be nil.
type Deps struct {
	Service   *weather.Service
	Locations LocationStore
	Places    PlaceFinder
	Timezones TimezoneResolver
	Gatherer  prometheus.Gatherer
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "gowindow",
		})
	})

	if deps.Gatherer != nil {
		v1.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1.Get("/search", func(c *fiber.Ctx) error {
		if deps.Places == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "search is not configured")
		}
		var req searchQuery
		req.Query = strings.TrimSpace(c.Query("q"))
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "query parameter q must be at least 2 characters")
		}

		places, err := deps.Places.Search(c.UserContext(), req.Query)
		if err != nil {
			log.Warnw("place search failed", "query", req.Query, "error", err)
			return fiber.NewError(fiber.StatusBadGateway, "failed to search places")
		}
		if places == nil {
			places = []weather.Place{}
		}
		return c.JSON(fiber.Map{"results": places})
	})

	v1.Get("/suggestions", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"resorts": weather.SuggestedResorts})
	})

	act := v1.Group("/activities/:activity", activityParam)

	act.Get("/locations", func(c *fiber.Ctx) error {
		activity := activityFrom(c)
		locs, err := deps.Locations.List(c.UserContext(), activity)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{
			"activity":  activity,
			"locations": locs,
		})
	})

	act.Post("/locations", func(c *fiber.Ctx) error {
		activity := activityFrom(c)

		var req addLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.toLocation()
		if loc.Timezone == "" {
			loc.Timezone = resolveTimezone(c.UserContext(), deps.Timezones, loc)
		}

		saved, err := deps.Locations.Add(c.UserContext(), activity, loc)
		if err != nil {
			return storeError(err)
		}
		log.Infow("location added", "activity", activity, "slug", saved.Slug)
		return c.Status(fiber.StatusCreated).JSON(saved)
	})

	act.Delete("/locations", func(c *fiber.Ctx) error {
		if err := deps.Locations.Reset(c.UserContext(), activityFrom(c)); err != nil {
			return storeError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	act.Delete("/locations/:slug", func(c *fiber.Ctx) error {
		if err := deps.Locations.Remove(c.UserContext(), activityFrom(c), c.Params("slug")); err != nil {
			return storeError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	act.Post("/locations/:slug/move", func(c *fiber.Ctx) error {
		var req moveRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "direction must be -1 or 1")
		}

		activity := activityFrom(c)
		if err := deps.Locations.Move(c.UserContext(), activity, c.Params("slug"), req.Direction); err != nil {
			return storeError(err)
		}
		locs, err := deps.Locations.List(c.UserContext(), activity)
		if err != nil {
			return storeError(err)
		}
		return c.JSON(fiber.Map{
			"activity":  activity,
			"locations": locs,
		})
	})

	act.Get("/locations/:slug/daily", func(c *fiber.Ctx) error {
		activity := activityFrom(c)
		loc, err := deps.Locations.Get(c.UserContext(), activity, c.Params("slug"))
		if err != nil {
			return storeError(err)
		}

		outlook, err := deps.Service.Daily(c.UserContext(), loc, activity, c.QueryBool("compact", false))
		if err != nil {
			return forecastError(loc, err)
		}
		return c.JSON(outlook)
	})

	act.Get("/locations/:slug/hourly", func(c *fiber.Ctx) error {
		activity := activityFrom(c)
		loc, err := deps.Locations.Get(c.UserContext(), activity, c.Params("slug"))
		if err != nil {
			return storeError(err)
		}

		outlook, err := deps.Service.Hourly(c.UserContext(), loc, activity)
		if err != nil {
			return forecastError(loc, err)
		}
		return c.JSON(outlook)
	})

	act.Get("/locations/:slug/snapshots", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc, err := deps.Locations.Get(c.UserContext(), activityFrom(c), c.Params("slug"))
		if err != nil {
			return storeError(err)
		}

		snapshots, err := deps.Service.Snapshots(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no forecast snapshots for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch forecast snapshots")
		}

		return c.JSON(fiber.Map{
			"location":  loc,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})
}

const activityKey = "activity"

func activityParam(c *fiber.Ctx) error {
	activity, err := weather.ParseActivity(c.Params("activity"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	c.Locals(activityKey, activity)
	return c.Next()
}

func activityFrom(c *fiber.Ctx) weather.Activity {
	activity, _ := c.Locals(activityKey).(weather.Activity)
	return activity
}

func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "location not found")
	case errors.Is(err, store.ErrLocationExists):
		return fiber.NewError(fiber.StatusConflict, "Location already in list")
	case errors.Is(err, store.ErrTooManyLocations):
		return fiber.NewError(fiber.StatusConflict, "Maximum locations reached")
	default:
		log.Errorw("location store failure", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update locations")
	}
}

func forecastError(loc weather.Location, err error) error {
	log.Warnw("forecast unavailable", "location", loc.Key(), "error", err)
	return fiber.NewError(fiber.StatusBadGateway, "failed to fetch forecast data")
}

func resolveTimezone(ctx context.Context, tz TimezoneResolver, loc weather.Location) string {
	if tz == nil {
		return ""
	}
	zone, err := tz.Timezone(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		log.Warnw("timezone lookup failed", "lat", loc.Latitude, "lon", loc.Longitude, "error", err)
		return ""
	}
	return zone
}

type searchQuery struct {
	Query string `validate:"min=2"`
}

// addLocationRequest is the body of POST /locations.
type addLocationRequest struct {
	Name      string   `json:"name" validate:"required"`
	Latitude  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Timezone  string   `json:"timezone" validate:"omitempty,timezone"`
	Label     string   `json:"location"`
}

func (r addLocationRequest) toLocation() weather.Location {
	loc := weather.Location{
		Name:      strings.TrimSpace(r.Name),
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		Timezone:  r.Timezone,
		Label:     r.Label,
	}
	if loc.Label == "" {
		loc.Label = fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
	}
	return loc
}

type moveRequest struct {
	Direction int `json:"direction" validate:"oneof=-1 1"`
}

// historyQuery holds query parameters for the snapshots endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
