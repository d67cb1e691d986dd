package transit

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"nycboard.dev/transit/model"
	"nycboard.dev/transit/storage"
)

// Registry maps user-facing station identifiers to the native stops
// that make them up. The backing table is immutable once built;
// reloading swaps the whole table atomically, so a query in flight
// never observes a half-updated mapping.
type Registry struct {
	table atomic.Pointer[registryTable]
}

type registryTable struct {
	stations []*model.StationEntry
	byKey    map[string]*model.StationEntry
	routes   map[string][]string
}

// NewRegistry builds a registry from station entries and an optional
// precomputed station-to-routes table (keyed by station id).
func NewRegistry(stations []*model.StationEntry, routes map[string][]string) (*Registry, error) {
	r := &Registry{}
	if err := r.Swap(stations, routes); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRegistryFromStorage builds a registry from persisted curated
// tables.
func NewRegistryFromStorage(s storage.Storage) (*Registry, error) {
	r := &Registry{}
	if err := r.ReloadFromStorage(s); err != nil {
		return nil, err
	}
	return r, nil
}

// Swap atomically replaces the backing table. Station ids and aliases
// share one key namespace; a collision is a curation error.
func (r *Registry) Swap(stations []*model.StationEntry, routes map[string][]string) error {
	table := &registryTable{
		stations: append([]*model.StationEntry(nil), stations...),
		byKey:    map[string]*model.StationEntry{},
		routes:   map[string][]string{},
	}

	for _, station := range table.stations {
		keys := append([]string{station.ID}, station.Aliases...)
		for _, key := range keys {
			k := stationKey(key)
			if k == "" {
				return fmt.Errorf("station '%s': blank identifier", station.ID)
			}
			if other, found := table.byKey[k]; found && other != station {
				return fmt.Errorf("station key '%s' maps to both '%s' and '%s'", k, other.ID, station.ID)
			}
			table.byKey[k] = station
		}
	}

	for stationID, labels := range routes {
		if _, found := table.byKey[stationKey(stationID)]; !found {
			return fmt.Errorf("routes for unknown station '%s'", stationID)
		}
		table.routes[stationID] = append([]string(nil), labels...)
	}

	r.table.Store(table)
	return nil
}

// ReloadFromStorage rebuilds the table from storage and swaps it in.
func (r *Registry) ReloadFromStorage(s storage.Storage) error {
	stations, err := s.ListStations()
	if err != nil {
		return fmt.Errorf("listing stations: %w", err)
	}

	routes, err := s.RouteLabels()
	if err != nil {
		return fmt.Errorf("listing route labels: %w", err)
	}

	return r.Swap(stations, routes)
}

// Resolve looks a station up by id or alias.
func (r *Registry) Resolve(stationID string) (*model.StationEntry, error) {
	table := r.table.Load()
	if table == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrStationNotFound, stationID)
	}

	station, found := table.byKey[stationKey(stationID)]
	if !found {
		return nil, fmt.Errorf("%w: '%s'", ErrStationNotFound, stationID)
	}

	return station, nil
}

// Stations lists all entries, ordered by display name.
func (r *Registry) Stations() []*model.StationEntry {
	table := r.table.Load()
	if table == nil {
		return []*model.StationEntry{}
	}

	stations := append([]*model.StationEntry(nil), table.stations...)
	sort.Slice(stations, func(i, j int) bool {
		if stations[i].DisplayName != stations[j].DisplayName {
			return stations[i].DisplayName < stations[j].DisplayName
		}
		return stations[i].ID < stations[j].ID
	})

	return stations
}

// Search returns stations whose id, display name or alias contains the
// query (or vice versa), for populating a station picker. Matching is
// plain substring over normalized keys; results are in Stations()
// order.
func (r *Registry) Search(query string) []*model.StationEntry {
	q := stationKey(query)
	if q == "" {
		return []*model.StationEntry{}
	}

	matches := []*model.StationEntry{}
	for _, station := range r.Stations() {
		keys := append([]string{station.ID, station.DisplayName}, station.Aliases...)
		for _, key := range keys {
			k := stationKey(key)
			if strings.Contains(k, q) || strings.Contains(q, k) {
				matches = append(matches, station)
				break
			}
		}
	}

	return matches
}

// StaticRoutes returns the precomputed route label set for a station,
// if one exists. The bool reports whether the station has static route
// data at all; callers fall back to live observation when it doesn't.
func (r *Registry) StaticRoutes(stationID string) ([]string, bool) {
	table := r.table.Load()
	if table == nil {
		return nil, false
	}

	station, found := table.byKey[stationKey(stationID)]
	if !found {
		return nil, false
	}

	labels, found := table.routes[station.ID]
	if !found {
		return nil, false
	}

	return append([]string(nil), labels...), true
}

// Station ids and aliases are matched case-insensitively, with
// underscores treated as spaces (picker UIs slugify names that way).
func stationKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", " ")
}
