package parse

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"nycboard.dev/transit/model"
	"nycboard.dev/transit/storage"
)

type StationCSV struct {
	StationID   string `csv:"station_id"`
	StationName string `csv:"station_name"`
	Aliases     string `csv:"aliases"`
	Agency      string `csv:"agency"`
	StopID      string `csv:"stop_id"`
	FeedGroup   string `csv:"feed_group"`
}

// Parses the stations table. Rows sharing a station_id are merged into
// one StationEntry, with stops in row order. The display name is taken
// from the first row of a station; later rows may leave it blank.
// Aliases are pipe-separated and accumulated across rows.
func ParseStations(writer storage.TableWriter, data io.Reader) (map[string]bool, error) {
	rows := []*StationCSV{}
	if err := gocsv.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshaling stations csv: %w", err)
	}

	stationIDs := map[string]bool{}
	byID := map[string]*model.StationEntry{}
	order := []string{}
	seenStop := map[string]bool{}
	aliasSeen := map[string]map[string]bool{}

	for i, row := range rows {
		if row.StationID == "" {
			return nil, errors.Errorf("row %d: empty station_id", i+1)
		}
		if row.StopID == "" {
			return nil, errors.Errorf("row %d: empty stop_id for station '%s'", i+1, row.StationID)
		}

		agency, err := model.ParseAgency(row.Agency)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}

		station, found := byID[row.StationID]
		if !found {
			if row.StationName == "" {
				return nil, errors.Errorf("row %d: empty station_name for station '%s'", i+1, row.StationID)
			}
			station = &model.StationEntry{
				ID:          row.StationID,
				DisplayName: row.StationName,
			}
			byID[row.StationID] = station
			order = append(order, row.StationID)
			stationIDs[row.StationID] = true
			aliasSeen[row.StationID] = map[string]bool{}
		}

		stopKey := row.StationID + "\x00" + agency.String() + "\x00" + row.StopID
		if seenStop[stopKey] {
			return nil, errors.Errorf("row %d: repeated stop '%s' for station '%s'", i+1, row.StopID, row.StationID)
		}
		seenStop[stopKey] = true

		station.Stops = append(station.Stops, model.StopRef{
			Agency:    agency,
			StopID:    row.StopID,
			FeedGroup: row.FeedGroup,
		})

		for _, alias := range strings.Split(row.Aliases, "|") {
			alias = strings.TrimSpace(alias)
			if alias == "" || aliasSeen[row.StationID][alias] {
				continue
			}
			aliasSeen[row.StationID][alias] = true
			station.Aliases = append(station.Aliases, alias)
		}
	}

	for _, station := range byID {
		sort.Strings(station.Aliases)
	}

	for _, id := range order {
		if err := writer.WriteStation(byID[id]); err != nil {
			return nil, errors.Wrapf(err, "writing station '%s'", id)
		}
	}

	return stationIDs, nil
}
