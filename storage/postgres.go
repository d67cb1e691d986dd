package storage

import (
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/lib/pq"

	"nycboard.dev/transit/model"
)

type PSQLStorage struct {
	db *sql.DB
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the station tables are dropped on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`
DROP TABLE IF EXISTS station;
DROP TABLE IF EXISTS station_alias;
DROP TABLE IF EXISTS station_stop;
DROP TABLE IF EXISTS station_route;
`)
		if err != nil {
			return nil, fmt.Errorf("clearing db: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS station (
    id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    PRIMARY KEY (id)
);

CREATE TABLE IF NOT EXISTS station_alias (
    station_id TEXT NOT NULL,
    alias TEXT NOT NULL,
    PRIMARY KEY (station_id, alias)
);

CREATE TABLE IF NOT EXISTS station_stop (
    station_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    agency TEXT NOT NULL,
    stop_id TEXT NOT NULL,
    feed_group TEXT NOT NULL,
    PRIMARY KEY (station_id, position)
);

CREATE TABLE IF NOT EXISTS station_route (
    station_id TEXT NOT NULL,
    route_label TEXT NOT NULL,
    PRIMARY KEY (station_id, route_label)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating station tables: %w", err)
	}

	return &PSQLStorage{db: db}, nil
}

func (s *PSQLStorage) WriteStation(station *model.StationEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM station WHERE id = $1",
		"DELETE FROM station_alias WHERE station_id = $1",
		"DELETE FROM station_stop WHERE station_id = $1",
	} {
		if _, err := tx.Exec(q, station.ID); err != nil {
			return fmt.Errorf("clearing station %s: %w", station.ID, err)
		}
	}

	_, err = tx.Exec(
		"INSERT INTO station (id, display_name) VALUES ($1, $2)",
		station.ID, station.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("writing station %s: %w", station.ID, err)
	}

	for _, alias := range station.Aliases {
		_, err = tx.Exec(
			"INSERT INTO station_alias (station_id, alias) VALUES ($1, $2)",
			station.ID, alias,
		)
		if err != nil {
			return fmt.Errorf("writing alias %s: %w", alias, err)
		}
	}

	for i, stop := range station.Stops {
		_, err = tx.Exec(
			`INSERT INTO station_stop
    (station_id, position, agency, stop_id, feed_group)
VALUES ($1, $2, $3, $4, $5)`,
			station.ID, i, stop.Agency.String(), stop.StopID, stop.FeedGroup,
		)
		if err != nil {
			return fmt.Errorf("writing stop %s: %w", stop.StopID, err)
		}
	}

	return tx.Commit()
}

func (s *PSQLStorage) WriteRouteLabels(stationID string, labels []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM station_route WHERE station_id = $1", stationID); err != nil {
		return fmt.Errorf("clearing routes for %s: %w", stationID, err)
	}

	for _, label := range labels {
		_, err = tx.Exec(
			"INSERT INTO station_route (station_id, route_label) VALUES ($1, $2)",
			stationID, label,
		)
		if err != nil {
			return fmt.Errorf("writing route %s: %w", label, err)
		}
	}

	return tx.Commit()
}

func (s *PSQLStorage) ListStations() ([]*model.StationEntry, error) {
	rows, err := s.db.Query("SELECT id, display_name FROM station ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	stations := []*model.StationEntry{}
	byID := map[string]*model.StationEntry{}
	for rows.Next() {
		station := &model.StationEntry{}
		if err := rows.Scan(&station.ID, &station.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		stations = append(stations, station)
		byID[station.ID] = station
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stations: %w", err)
	}

	aliasRows, err := s.db.Query("SELECT station_id, alias FROM station_alias ORDER BY station_id, alias")
	if err != nil {
		return nil, fmt.Errorf("querying aliases: %w", err)
	}
	defer aliasRows.Close()

	for aliasRows.Next() {
		var stationID, alias string
		if err := aliasRows.Scan(&stationID, &alias); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}
		if station, found := byID[stationID]; found {
			station.Aliases = append(station.Aliases, alias)
		}
	}
	if err := aliasRows.Err(); err != nil {
		return nil, fmt.Errorf("reading aliases: %w", err)
	}

	stopRows, err := s.db.Query(`
SELECT station_id, agency, stop_id, feed_group
FROM station_stop
ORDER BY station_id, position`)
	if err != nil {
		return nil, fmt.Errorf("querying stops: %w", err)
	}
	defer stopRows.Close()

	for stopRows.Next() {
		var stationID, agency, stopID, feedGroup string
		if err := stopRows.Scan(&stationID, &agency, &stopID, &feedGroup); err != nil {
			return nil, fmt.Errorf("scanning stop: %w", err)
		}
		a, err := model.ParseAgency(agency)
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", stationID, err)
		}
		if station, found := byID[stationID]; found {
			station.Stops = append(station.Stops, model.StopRef{
				Agency:    a,
				StopID:    stopID,
				FeedGroup: feedGroup,
			})
		}
	}
	if err := stopRows.Err(); err != nil {
		return nil, fmt.Errorf("reading stops: %w", err)
	}

	return stations, nil
}

func (s *PSQLStorage) RouteLabels() (map[string][]string, error) {
	rows, err := s.db.Query("SELECT station_id, route_label FROM station_route ORDER BY station_id, route_label")
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	defer rows.Close()

	routes := map[string][]string{}
	for rows.Next() {
		var stationID, label string
		if err := rows.Scan(&stationID, &label); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		routes[stationID] = append(routes[stationID], label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading routes: %w", err)
	}

	for _, labels := range routes {
		sort.Strings(labels)
	}

	return routes, nil
}

func (s *PSQLStorage) Close() error {
	return s.db.Close()
}
