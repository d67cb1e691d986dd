package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"nycboard.dev/transit/downloader"
	"nycboard.dev/transit/model"
)

type TransitAPIConfig struct {
	// Departure-board endpoint, e.g.
	// https://transit.example.com/v8/departures
	BaseURL string

	APIKey     string
	Timeout    time.Duration
	MaxSize    int
	Downloader downloader.Downloader
}

// TransitAPI fetches arrivals from a third-party aggregator's JSON
// departure-board endpoint. Stop ids here are the aggregator's own
// station ids, produced offline by the table curation process.
type TransitAPI struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	maxSize int
	dl      downloader.Downloader
}

func NewTransitAPI(cfg TransitAPIConfig) *TransitAPI {
	t := &TransitAPI{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		maxSize: cfg.MaxSize,
		dl:      cfg.Downloader,
	}
	if t.timeout == 0 {
		t.timeout = DefaultTimeout
	}
	if t.maxSize == 0 {
		t.maxSize = DefaultMaxSize
	}
	if t.dl == nil {
		t.dl = downloader.NewMemoryDownloader()
	}
	return t
}

func (t *TransitAPI) Agency() model.Agency {
	return model.AgencyOther
}

// Wire format of the departure-board response.
type boardsResponse struct {
	Boards []struct {
		Departures []struct {
			Time      string `json:"time"`
			Transport struct {
				Name      string `json:"name"`
				ShortName string `json:"shortName"`
				Headsign  string `json:"headsign"`
			} `json:"transport"`
		} `json:"departures"`
	} `json:"boards"`
}

func (t *TransitAPI) Arrivals(ctx context.Context, stop model.StopRef) ([]model.RawArrival, error) {
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base URL: %v", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("ids", stop.StopID)
	if t.apiKey != "" {
		q.Set("apiKey", t.apiKey)
	}
	u.RawQuery = q.Encode()

	body, err := t.dl.Get(ctx, u.String(), nil, downloader.GetOptions{
		Timeout: t.timeout,
		MaxSize: t.maxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching departures: %v", ErrUnavailable, err)
	}

	resp := boardsResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding departures: %v", ErrUnavailable, err)
	}

	arrivals := []model.RawArrival{}
	for _, board := range resp.Boards {
		for _, dep := range board.Departures {
			if dep.Time == "" {
				// No prediction means the event is
				// undeliverable. Never default to "now".
				continue
			}

			// The timestamp carries its own UTC offset;
			// RFC 3339 parsing preserves it, and Unix()
			// is offset-independent, so differencing
			// against the aggregation snapshot is safe.
			when, err := time.Parse(time.RFC3339, dep.Time)
			if err != nil {
				continue
			}

			arrivals = append(arrivals, model.RawArrival{
				Agency:    model.AgencyOther,
				RouteID:   dep.Transport.Name,
				Route:     lineLabel(dep.Transport.Name, dep.Transport.ShortName, dep.Transport.Headsign),
				Headsign:  dep.Transport.Headsign,
				Predicted: when.Unix(),
			})
		}
	}

	return arrivals, nil
}

// Line label precedence: name, then shortName, then the first word of
// the headsign, then the unknown-route sentinel. Arrivals are never
// dropped for lacking a label.
func lineLabel(name, shortName, headsign string) string {
	if name != "" {
		return name
	}
	if shortName != "" {
		return shortName
	}
	if fields := strings.Fields(headsign); len(fields) > 0 {
		return fields[0]
	}
	return model.UnknownRoute
}
