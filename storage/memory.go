package storage

import (
	"sort"

	"nycboard.dev/transit/model"
)

// In memory implementation of Storage below

type MemoryStorage struct {
	stations map[string]*model.StationEntry
	routes   map[string][]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		stations: map[string]*model.StationEntry{},
		routes:   map[string][]string{},
	}
}

func (s *MemoryStorage) WriteStation(station *model.StationEntry) error {
	cp := *station
	cp.Aliases = append([]string(nil), station.Aliases...)
	cp.Stops = append([]model.StopRef(nil), station.Stops...)
	s.stations[station.ID] = &cp
	return nil
}

func (s *MemoryStorage) WriteRouteLabels(stationID string, labels []string) error {
	s.routes[stationID] = append([]string(nil), labels...)
	return nil
}

func (s *MemoryStorage) ListStations() ([]*model.StationEntry, error) {
	stations := []*model.StationEntry{}
	for _, st := range s.stations {
		stations = append(stations, st)
	}
	sort.Slice(stations, func(i, j int) bool {
		return stations[i].ID < stations[j].ID
	})
	return stations, nil
}

func (s *MemoryStorage) RouteLabels() (map[string][]string, error) {
	routes := map[string][]string{}
	for stationID, labels := range s.routes {
		routes[stationID] = append([]string(nil), labels...)
	}
	return routes, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
