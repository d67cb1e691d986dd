package parse

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"nycboard.dev/transit/storage"
)

// Parses the curated station tables and writes them through the
// given writer.
//
// stations is required and holds one row per (station, native stop)
// pair. routes is optional (pass nil) and holds one row per (station,
// route label) pair; stations without route rows have no precomputed
// route set.
func ParseTables(writer storage.TableWriter, stations io.Reader, routes io.Reader) error {
	// LazyCSVReader required (at least) to survive sloppy use of
	// quotes. The BOM reader strips unicode BOMs if present.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	stationIDs, err := ParseStations(writer, stations)
	if err != nil {
		return fmt.Errorf("parsing stations: %w", err)
	}

	if routes != nil {
		if err := ParseStationRoutes(writer, routes, stationIDs); err != nil {
			return fmt.Errorf("parsing station routes: %w", err)
		}
	}

	return nil
}
