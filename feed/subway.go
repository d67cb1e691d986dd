package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nycboard.dev/transit/downloader"
	"nycboard.dev/transit/model"
	"nycboard.dev/transit/parse"
)

// The subway operator publishes one GTFS Realtime feed per line group.
var defaultSubwayFeedURLs = map[string]string{
	"ace":     "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-ace",
	"bdfm":    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-bdfm",
	"g":       "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-g",
	"jz":      "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-jz",
	"nqrw":    "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-nqrw",
	"l":       "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-l",
	"1234567": "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs",
	"si":      "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2Fgtfs-si",
}

// Maps a route to the line-group feed that carries it.
var subwayRouteFeeds = map[string]string{
	"A": "ace", "C": "ace", "E": "ace",
	"B": "bdfm", "D": "bdfm", "F": "bdfm", "M": "bdfm",
	"G": "g",
	"J": "jz", "Z": "jz",
	"N": "nqrw", "Q": "nqrw", "R": "nqrw", "W": "nqrw",
	"L": "l",
	"1": "1234567", "2": "1234567", "3": "1234567", "4": "1234567",
	"5": "1234567", "6": "1234567", "7": "1234567",
	"SI": "si",
}

type SubwayConfig struct {
	// Overrides the published feed URLs. Keys are line-group names
	// matching StopRef.FeedGroup values in the station table.
	FeedURLs map[string]string

	// Extra HTTP headers, e.g. an API key.
	Headers map[string]string

	Timeout    time.Duration
	MaxSize    int
	Downloader downloader.Downloader
}

// Subway fetches arrivals from the subway operator's GTFS Realtime
// feeds. Stop ids carry a trailing direction letter in the feed
// ("L03N", "L03S"); the queried id is matched as a prefix, so a
// direction-agnostic platform id matches both directions while a
// direction-qualified id restricts to one.
type Subway struct {
	feedURLs map[string]string
	headers  map[string]string
	timeout  time.Duration
	maxSize  int
	dl       downloader.Downloader
}

func NewSubway(cfg SubwayConfig) *Subway {
	s := &Subway{
		feedURLs: cfg.FeedURLs,
		headers:  cfg.Headers,
		timeout:  cfg.Timeout,
		maxSize:  cfg.MaxSize,
		dl:       cfg.Downloader,
	}
	if s.feedURLs == nil {
		s.feedURLs = defaultSubwayFeedURLs
	}
	if s.timeout == 0 {
		s.timeout = DefaultTimeout
	}
	if s.maxSize == 0 {
		s.maxSize = DefaultMaxSize
	}
	if s.dl == nil {
		s.dl = downloader.NewMemoryDownloader()
	}
	return s
}

func (s *Subway) Agency() model.Agency {
	return model.AgencySubway
}

// FeedGroupForRoute returns the line-group feed carrying the given
// route, or "" if the route is unknown.
func FeedGroupForRoute(route string) string {
	return subwayRouteFeeds[strings.ToUpper(strings.TrimSpace(route))]
}

func (s *Subway) Arrivals(ctx context.Context, stop model.StopRef) ([]model.RawArrival, error) {
	groups := []string{}
	if stop.FeedGroup != "" {
		if _, found := s.feedURLs[stop.FeedGroup]; !found {
			return nil, fmt.Errorf("%w: unknown feed group %q", ErrUnavailable, stop.FeedGroup)
		}
		groups = append(groups, stop.FeedGroup)
	} else {
		// No group curated for this stop: scan every line group.
		for group := range s.feedURLs {
			groups = append(groups, group)
		}
	}

	arrivals := []model.RawArrival{}
	var lastErr error
	failed := 0

	for _, group := range groups {
		events, err := s.fetchGroup(ctx, group)
		if err != nil {
			failed++
			lastErr = err
			continue
		}

		for _, ev := range events {
			if !strings.HasPrefix(ev.StopID, stop.StopID) {
				continue
			}

			predicted := ev.Arrival
			if predicted == 0 {
				predicted = ev.Departure
			}
			if predicted == 0 {
				continue
			}

			route := ev.RouteID
			if route == "" {
				route = model.UnknownRoute
			}

			arrivals = append(arrivals, model.RawArrival{
				Agency:    model.AgencySubway,
				RouteID:   ev.RouteID,
				Route:     route,
				Headsign:  directionLabel(ev.StopID, ev.RouteID),
				Predicted: predicted,
			})
		}
	}

	// Scanning multiple groups tolerates individual feed outages,
	// but if nothing was reachable the stop is unavailable.
	if failed == len(groups) && len(groups) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}

	return arrivals, nil
}

func (s *Subway) fetchGroup(ctx context.Context, group string) ([]*parse.StopEvent, error) {
	body, err := s.dl.Get(ctx, s.feedURLs[group], s.headers, downloader.GetOptions{
		Timeout: s.timeout,
		MaxSize: s.maxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s feed: %w", group, err)
	}

	events, err := parse.DecodeTripUpdates(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s feed: %w", group, err)
	}

	return events, nil
}

// Subway stop ids end in N (uptown) or S (downtown). The headsign-ish
// label depends on the route family.
func directionLabel(stopID, routeID string) string {
	var north, south string
	switch routeID {
	case "1", "2", "3", "4", "5", "6", "7":
		north, south = "Uptown/Bronx", "Downtown/Brooklyn"
	case "A", "C", "E", "B", "D", "F", "M":
		north, south = "Uptown/Manhattan", "Downtown/Brooklyn"
	case "G", "L", "J", "Z":
		north, south = "Manhattan Bound", "Brooklyn/Queens"
	case "N", "Q", "R", "W":
		north, south = "Manhattan/Queens", "Brooklyn/Queens"
	default:
		north, south = "Northbound", "Southbound"
	}

	switch {
	case strings.HasSuffix(stopID, "N"):
		return north
	case strings.HasSuffix(stopID, "S"):
		return south
	}
	return ""
}
