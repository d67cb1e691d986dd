package feed

import (
	"context"
	"fmt"
	"time"

	"nycboard.dev/transit/downloader"
	"nycboard.dev/transit/model"
	"nycboard.dev/transit/parse"
)

const defaultPATHFeedURL = "https://path.transitdata.nyc/gtfsrt"

// PATH route ids are numeric; riders know the lines by color and
// endpoints.
var defaultPATHRouteNames = map[string]string{
	"859":  "Green (HOB-WTC)",
	"860":  "Red (NWK-WTC)",
	"861":  "Yellow (JSQ-33)",
	"862":  "Blue (JSQ-33 via HOB)",
	"1024": "Blue (JSQ-33 via HOB)",
}

type PATHConfig struct {
	FeedURL    string
	RouteNames map[string]string
	Headers    map[string]string
	Timeout    time.Duration
	MaxSize    int
	Downloader downloader.Downloader
}

// PATH fetches arrivals from the PATH GTFS Realtime feed. The whole
// system is published as a single feed; stop ids are numeric and carry
// no direction suffix, so matching is exact.
type PATH struct {
	feedURL    string
	routeNames map[string]string
	headers    map[string]string
	timeout    time.Duration
	maxSize    int
	dl         downloader.Downloader
}

func NewPATH(cfg PATHConfig) *PATH {
	p := &PATH{
		feedURL:    cfg.FeedURL,
		routeNames: cfg.RouteNames,
		headers:    cfg.Headers,
		timeout:    cfg.Timeout,
		maxSize:    cfg.MaxSize,
		dl:         cfg.Downloader,
	}
	if p.feedURL == "" {
		p.feedURL = defaultPATHFeedURL
	}
	if p.routeNames == nil {
		p.routeNames = defaultPATHRouteNames
	}
	if p.timeout == 0 {
		p.timeout = DefaultTimeout
	}
	if p.maxSize == 0 {
		p.maxSize = DefaultMaxSize
	}
	if p.dl == nil {
		p.dl = downloader.NewMemoryDownloader()
	}
	return p
}

func (p *PATH) Agency() model.Agency {
	return model.AgencyPATH
}

func (p *PATH) Arrivals(ctx context.Context, stop model.StopRef) ([]model.RawArrival, error) {
	body, err := p.dl.Get(ctx, p.feedURL, p.headers, downloader.GetOptions{
		Timeout: p.timeout,
		MaxSize: p.maxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching feed: %v", ErrUnavailable, err)
	}

	events, err := parse.DecodeTripUpdates(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding feed: %v", ErrUnavailable, err)
	}

	arrivals := []model.RawArrival{}
	for _, ev := range events {
		if ev.StopID != stop.StopID {
			continue
		}

		predicted := ev.Arrival
		if predicted == 0 {
			predicted = ev.Departure
		}
		if predicted == 0 {
			continue
		}

		route, found := p.routeNames[ev.RouteID]
		if !found {
			route = ev.RouteID
		}
		if route == "" {
			route = model.UnknownRoute
		}

		arrivals = append(arrivals, model.RawArrival{
			Agency:    model.AgencyPATH,
			RouteID:   ev.RouteID,
			Route:     route,
			Predicted: predicted,
		})
	}

	return arrivals, nil
}
