package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nycboard.dev/transit/model"
	"nycboard.dev/transit/storage"
)

func buildStorage(t *testing.T, backend string) storage.Storage {
	switch backend {
	case "memory":
		return storage.NewMemoryStorage()
	case "sqlite":
		s, err := storage.NewSQLiteStorage()
		require.NoError(t, err)
		return s
	}
	t.Fatalf("unknown backend %q", backend)
	return nil
}

func testStationRoundTrip(t *testing.T, backend string) {
	s := buildStorage(t, backend)
	defer s.Close()

	wtc := &model.StationEntry{
		ID:          "wtc",
		DisplayName: "World Trade Center",
		Aliases:     []string{"oculus", "world trade center"},
		Stops: []model.StopRef{
			{Agency: model.AgencySubway, StopID: "E01", FeedGroup: "ace"},
			{Agency: model.AgencyPATH, StopID: "26734"},
		},
	}
	bedford := &model.StationEntry{
		ID:          "bedford av",
		DisplayName: "Bedford Av",
		Stops: []model.StopRef{
			{Agency: model.AgencySubway, StopID: "L08", FeedGroup: "l"},
		},
	}

	require.NoError(t, s.WriteStation(wtc))
	require.NoError(t, s.WriteStation(bedford))

	stations, err := s.ListStations()
	require.NoError(t, err)

	// Ordered by id
	require.Len(t, stations, 2)
	assert.Equal(t, "bedford av", stations[0].ID)
	assert.Equal(t, "wtc", stations[1].ID)

	assert.Equal(t, "World Trade Center", stations[1].DisplayName)
	assert.Equal(t, []string{"oculus", "world trade center"}, stations[1].Aliases)
	assert.Equal(t, wtc.Stops, stations[1].Stops)
	assert.Equal(t, bedford.Stops, stations[0].Stops)
}

func testStationRewrite(t *testing.T, backend string) {
	s := buildStorage(t, backend)
	defer s.Close()

	require.NoError(t, s.WriteStation(&model.StationEntry{
		ID:          "wtc",
		DisplayName: "World Trade Center",
		Aliases:     []string{"oculus"},
		Stops: []model.StopRef{
			{Agency: model.AgencySubway, StopID: "E01", FeedGroup: "ace"},
			{Agency: model.AgencyPATH, StopID: "26734"},
		},
	}))

	// Rewriting a station replaces it wholesale.
	require.NoError(t, s.WriteStation(&model.StationEntry{
		ID:          "wtc",
		DisplayName: "WTC Complex",
		Stops: []model.StopRef{
			{Agency: model.AgencyPATH, StopID: "26734"},
		},
	}))

	stations, err := s.ListStations()
	require.NoError(t, err)

	require.Len(t, stations, 1)
	assert.Equal(t, "WTC Complex", stations[0].DisplayName)
	assert.Empty(t, stations[0].Aliases)
	require.Len(t, stations[0].Stops, 1)
	assert.Equal(t, "26734", stations[0].Stops[0].StopID)
}

func testRouteLabels(t *testing.T, backend string) {
	s := buildStorage(t, backend)
	defer s.Close()

	require.NoError(t, s.WriteRouteLabels("wtc", []string{"E", "A", "Red (NWK-WTC)"}))
	require.NoError(t, s.WriteRouteLabels("bedford av", []string{"L"}))

	routes, err := s.RouteLabels()
	require.NoError(t, err)

	require.Len(t, routes, 2)
	assert.ElementsMatch(t, []string{"A", "E", "Red (NWK-WTC)"}, routes["wtc"])
	assert.Equal(t, []string{"L"}, routes["bedford av"])

	// Replaced wholesale on rewrite
	require.NoError(t, s.WriteRouteLabels("wtc", []string{"E"}))
	routes, err = s.RouteLabels()
	require.NoError(t, err)
	assert.Equal(t, []string{"E"}, routes["wtc"])
}

func TestStorage(t *testing.T) {
	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend+"_RoundTrip", func(t *testing.T) {
			testStationRoundTrip(t, backend)
		})
		t.Run(backend+"_Rewrite", func(t *testing.T) {
			testStationRewrite(t, backend)
		})
		t.Run(backend+"_RouteLabels", func(t *testing.T) {
			testRouteLabels(t, backend)
		})
	}
}
