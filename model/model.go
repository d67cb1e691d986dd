package model

import (
	"fmt"
	"strings"
	"time"
)

// Holds all external facing types and constants.

// Agency identifies the transit operator whose feed a stop id belongs
// to. Stop and route ids are only meaningful within their agency's
// namespace; equal id strings from different agencies never refer to
// the same platform.
type Agency int8

const (
	AgencySubway Agency = iota
	AgencyPATH
	AgencyOther
)

func (a Agency) String() string {
	switch a {
	case AgencySubway:
		return "SUBWAY"
	case AgencyPATH:
		return "PATH"
	case AgencyOther:
		return "OTHER"
	}
	return fmt.Sprintf("Agency(%d)", int8(a))
}

// ParseAgency maps the string form used in curated tables back to an
// Agency value.
func ParseAgency(s string) (Agency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUBWAY", "MTA":
		return AgencySubway, nil
	case "PATH":
		return AgencyPATH, nil
	case "OTHER":
		return AgencyOther, nil
	}
	return 0, fmt.Errorf("unknown agency %q", s)
}

// UnknownRoute is emitted when a feed provides no usable route
// identifier for an arrival. Arrivals are never dropped for lacking a
// route label.
const UnknownRoute = "N/A"

// UnknownDestination is substituted when a feed provides no headsign.
const UnknownDestination = "Unknown"

// StopRef identifies one platform/stop in one agency's namespace.
//
// StopID is the upstream feed's own identifier and is opaque to this
// module. Subway ids may carry a trailing direction letter ("L03N");
// querying the direction-agnostic prefix ("L03") matches both
// directions. FeedGroup is extra routing context for agencies that
// split their realtime data across several feeds (the subway publishes
// one feed per line group); it is blank for other agencies.
type StopRef struct {
	Agency    Agency
	StopID    string
	FeedGroup string
}

func (s StopRef) String() string {
	return s.Agency.String() + ":" + s.StopID
}

// StationEntry is a user-addressable station. A single entry may
// bundle stops from several agencies, modeling a physical transfer
// complex. Entries are curated data: built once from a static table,
// never mutated during a query.
type StationEntry struct {
	ID          string
	DisplayName string
	Aliases     []string
	Stops       []StopRef
}

// RawArrival is one predicted vehicle event as decoded from an
// upstream feed, before normalization. Predicted is a Unix timestamp
// in seconds; zero means the upstream omitted the prediction, and the
// event is undeliverable (it is dropped, never defaulted to "now").
type RawArrival struct {
	Agency    Agency
	RouteID   string
	Route     string
	Headsign  string
	Predicted int64
}

// Arrival is the normalized unit returned to callers. Minutes is
// always >= 0. Stop records which StopRef produced the arrival, for
// traceability.
type Arrival struct {
	Agency      Agency
	Route       string
	Destination string
	Minutes     int
	Stop        StopRef
}

// Board is the result of one aggregation call. Timestamp is the "now"
// snapshot all Minutes values were computed against.
type Board struct {
	StationID   string
	StationName string
	Timestamp   time.Time
	Arrivals    []Arrival
}

// NormalizeRoute maps a route label to its canonical comparison form.
// Route filtering and deduplication both use this form, so "a" and
// " A " select the same trains.
func NormalizeRoute(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
