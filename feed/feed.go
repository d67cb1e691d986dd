package feed

// Feed source adapters. Each adapter knows how to fetch and decode one
// upstream's realtime data for a single native stop id.

import (
	"context"
	"errors"
	"time"

	"nycboard.dev/transit/model"
)

// ErrUnavailable indicates a transport-level failure: timeout, non-2xx
// response, or a payload that could not be decoded. Adapters wrap it
// so the aggregator can tell an upstream outage apart from a stop that
// simply has no data (which is an empty result, not an error).
var ErrUnavailable = errors.New("upstream unavailable")

// A Source fetches predicted arrivals for a single native stop.
//
// Implementations return an empty slice when the feed has no data for
// the stop, and an ErrUnavailable-wrapped error only on transport or
// decode failure. They must not cache results across calls.
type Source interface {
	Agency() model.Agency
	Arrivals(ctx context.Context, stop model.StopRef) ([]model.RawArrival, error)
}

const (
	DefaultTimeout = 15 * time.Second
	DefaultMaxSize = 4 << 20 // 4 MB
)
