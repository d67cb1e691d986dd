package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"nycboard.dev/transit/storage"
)

type StationRouteCSV struct {
	StationID  string `csv:"station_id"`
	RouteLabel string `csv:"route_label"`
}

// Parses the precomputed station-to-routes table. Every station_id
// must also appear in the stations table.
func ParseStationRoutes(writer storage.TableWriter, data io.Reader, stationIDs map[string]bool) error {
	rows := []*StationRouteCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("unmarshaling station routes csv: %w", err)
	}

	labels := map[string][]string{}
	order := []string{}
	seen := map[string]bool{}

	for i, row := range rows {
		if row.StationID == "" {
			return errors.Errorf("row %d: empty station_id", i+1)
		}
		if row.RouteLabel == "" {
			return errors.Errorf("row %d: empty route_label for station '%s'", i+1, row.StationID)
		}
		if !stationIDs[row.StationID] {
			return errors.Errorf("row %d: route for unknown station '%s'", i+1, row.StationID)
		}

		key := row.StationID + "\x00" + row.RouteLabel
		if seen[key] {
			continue
		}
		seen[key] = true

		if _, found := labels[row.StationID]; !found {
			order = append(order, row.StationID)
		}
		labels[row.StationID] = append(labels[row.StationID], row.RouteLabel)
	}

	for _, stationID := range order {
		if err := writer.WriteRouteLabels(stationID, labels[stationID]); err != nil {
			return errors.Wrapf(err, "writing routes for station '%s'", stationID)
		}
	}

	return nil
}
