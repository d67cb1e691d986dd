package storage

// Storage persists the curated station tables: which native stops make
// up each user-addressable station, and which route labels are known
// to serve it. The tables are produced offline and treated as
// read-mostly; a typical deployment writes them once (or on refresh)
// and reads them at startup to build a registry.

import (
	"nycboard.dev/transit/model"
)

type Storage interface {
	TableWriter

	// All station entries, ordered by station id.
	ListStations() ([]*model.StationEntry, error)

	// Route labels for every station that has a precomputed set,
	// keyed by station id. Stations absent from the map have no
	// static route data and callers fall back to live observation.
	RouteLabels() (map[string][]string, error)

	Close() error
}

// TableWriter is the subset of Storage the table parsers write
// through.
type TableWriter interface {
	// Writes a station entry. An existing entry with the same id is
	// replaced wholesale, stops and aliases included.
	WriteStation(station *model.StationEntry) error

	// Writes the precomputed route label set for a station,
	// replacing any existing set.
	WriteRouteLabels(stationID string, labels []string) error
}
