package transit

import (
	"context"
	"errors"
	"sort"
)

// When a station has no curated route table, route availability is
// observed live over a wide window.
const routeScanWindowMinutes = 180

// AvailableRoutes returns the route labels serving a station, sorted
// ascending. The curated static table wins when present; otherwise the
// set is observed from live arrivals over a wide window, which makes
// the answer best effort: a route with no service in the window is
// absent, and a full upstream outage yields an empty set rather than
// an error.
func (a *Aggregator) AvailableRoutes(ctx context.Context, stationID string) ([]string, error) {
	if labels, found := a.registry.StaticRoutes(stationID); found {
		sort.Strings(labels)
		return labels, nil
	}

	board, err := a.Aggregate(ctx, FilterSpec{
		StationID:  stationID,
		MinMinutes: 0,
		MaxMinutes: routeScanWindowMinutes,
	})
	if err != nil {
		if errors.Is(err, ErrAllSourcesUnavailable) {
			return []string{}, nil
		}
		return nil, err
	}

	set := map[string]bool{}
	labels := []string{}
	for _, arrival := range board.Arrivals {
		if set[arrival.Route] {
			continue
		}
		set[arrival.Route] = true
		labels = append(labels, arrival.Route)
	}

	sort.Strings(labels)
	return labels, nil
}
