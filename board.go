package transit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"nycboard.dev/transit/feed"
	"nycboard.dev/transit/model"
)

var (
	// ErrStationNotFound means the station id matched no registry
	// entry, by id or alias.
	ErrStationNotFound = errors.New("station not found")

	// ErrInvalidRange means the requested minutes window is
	// malformed: negative bounds or min above max.
	ErrInvalidRange = errors.New("invalid minutes range")

	// ErrAllSourcesUnavailable means every stop fetch for the
	// station failed. Partial failures are absorbed instead.
	ErrAllSourcesUnavailable = errors.New("all upstream sources unavailable")
)

const (
	// DefaultFetchTimeout bounds each per-stop fetch so one stalled
	// upstream can't hold the whole board hostage.
	DefaultFetchTimeout = 15 * time.Second

	DefaultMinMinutes = 2
	DefaultMaxMinutes = 20
)

// FilterSpec selects and bounds the arrivals on a board.
type FilterSpec struct {
	// Station id or alias, resolved through the registry.
	StationID string

	// Inclusive window on minutes-until-arrival. Both must be
	// non-negative, and MinMinutes <= MaxMinutes.
	MinMinutes int
	MaxMinutes int

	// Optional route labels to keep. Empty means all routes.
	// Matched case-insensitively with whitespace trimmed.
	Routes []string

	// Optional cap on the number of arrivals returned, applied after
	// sorting. Zero means no cap.
	Limit int
}

// DefaultFilter returns a FilterSpec with the standard lookahead
// window.
func DefaultFilter(stationID string) FilterSpec {
	return FilterSpec{
		StationID:  stationID,
		MinMinutes: DefaultMinMinutes,
		MaxMinutes: DefaultMaxMinutes,
	}
}

// Aggregator assembles arrival boards by fanning out to the feed
// sources for every stop of a station and merging the results.
type Aggregator struct {
	registry *Registry
	sources  map[model.Agency]feed.Source

	// FetchTimeout bounds each individual stop fetch.
	FetchTimeout time.Duration

	// TimeNow is the clock for minute normalization. Overridable in
	// tests.
	TimeNow func() time.Time
}

func NewAggregator(registry *Registry, sources ...feed.Source) *Aggregator {
	byAgency := map[model.Agency]feed.Source{}
	for _, s := range sources {
		byAgency[s.Agency()] = s
	}

	return &Aggregator{
		registry:     registry,
		sources:      byAgency,
		FetchTimeout: DefaultFetchTimeout,
		TimeNow:      time.Now,
	}
}

// Aggregate builds the arrival board for one station.
//
// All stop fetches run concurrently and the merge waits for every one
// of them to settle. A failed fetch drops that stop's arrivals and is
// logged; only when every fetch fails does the call return
// ErrAllSourcesUnavailable. Minutes are computed against a single
// clock reading taken before the fan-out, so all arrivals on a board
// share one "now".
func (a *Aggregator) Aggregate(ctx context.Context, spec FilterSpec) (*model.Board, error) {
	if spec.MinMinutes < 0 || spec.MaxMinutes < 0 || spec.MinMinutes > spec.MaxMinutes {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, spec.MinMinutes, spec.MaxMinutes)
	}

	station, err := a.registry.Resolve(spec.StationID)
	if err != nil {
		return nil, err
	}

	now := a.TimeNow()

	type fetchResult struct {
		arrivals []model.RawArrival
		err      error
	}
	results := make([]fetchResult, len(station.Stops))

	var wg sync.WaitGroup
	for i, stop := range station.Stops {
		wg.Add(1)
		go func(i int, stop model.StopRef) {
			defer wg.Done()

			source, found := a.sources[stop.Agency]
			if !found {
				results[i].err = fmt.Errorf("%w: no source for agency %s", feed.ErrUnavailable, stop.Agency)
				return
			}

			fetchCtx, cancel := context.WithTimeout(ctx, a.FetchTimeout)
			defer cancel()

			results[i].arrivals, results[i].err = source.Arrivals(fetchCtx, stop)
		}(i, stop)
	}
	wg.Wait()

	selected := map[string]bool{}
	for _, route := range spec.Routes {
		selected[model.NormalizeRoute(route)] = true
	}

	// An arrival is one physical event per (agency, stop, route,
	// minute); predictions from overlapping feeds that land in the
	// same minute bucket collapse to the first seen.
	type eventKey struct {
		agency model.Agency
		stopID string
		route  string
		minute int
	}
	seen := map[eventKey]bool{}

	arrivals := []model.Arrival{}
	failed := 0

	for i, stop := range station.Stops {
		if results[i].err != nil {
			failed++
			log.Printf("board %s: stop %s: %v", station.ID, stop, results[i].err)
			continue
		}

		for _, raw := range results[i].arrivals {
			if raw.Predicted == 0 {
				continue
			}

			minutes := floorDiv(raw.Predicted-now.Unix(), 60)
			if minutes < 0 {
				// Already departed relative to the snapshot.
				continue
			}

			route := raw.Route
			if route == "" {
				route = model.UnknownRoute
			}

			key := eventKey{stop.Agency, stop.StopID, model.NormalizeRoute(route), minutes}
			if seen[key] {
				continue
			}
			seen[key] = true

			if minutes < spec.MinMinutes || minutes > spec.MaxMinutes {
				continue
			}
			if len(selected) > 0 && !selected[model.NormalizeRoute(route)] {
				continue
			}

			destination := raw.Headsign
			if destination == "" {
				destination = model.UnknownDestination
			}

			arrivals = append(arrivals, model.Arrival{
				Agency:      stop.Agency,
				Route:       route,
				Destination: destination,
				Minutes:     minutes,
				Stop:        stop,
			})
		}
	}

	if len(station.Stops) > 0 && failed == len(station.Stops) {
		return nil, fmt.Errorf("%w: station '%s'", ErrAllSourcesUnavailable, station.ID)
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		if arrivals[i].Minutes != arrivals[j].Minutes {
			return arrivals[i].Minutes < arrivals[j].Minutes
		}
		return arrivals[i].Route < arrivals[j].Route
	})

	if spec.Limit > 0 && len(arrivals) > spec.Limit {
		arrivals = arrivals[:spec.Limit]
	}

	return &model.Board{
		StationID:   station.ID,
		StationName: station.DisplayName,
		Timestamp:   now,
		Arrivals:    arrivals,
	}, nil
}

// Floor division, so that an arrival 59 seconds out is "0 minutes" and
// one 1 second in the past is negative rather than rounding to 0.
func floorDiv(a, b int64) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return int(q)
}
