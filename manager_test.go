package transit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transit "nycboard.dev/transit"
	"nycboard.dev/transit/model"
	"nycboard.dev/transit/storage"
)

const stationsCSV = `station_id,station_name,aliases,agency,stop_id,feed_group
wtc,World Trade Center,oculus,SUBWAY,E01,ace
wtc,,world trade center,PATH,26734,
bedford av,Bedford Av,,MTA,L08,l
`

const routesCSV = `station_id,route_label
wtc,E
wtc,Red (NWK-WTC)
bedford av,L
`

func writeTemp(t *testing.T, name string, data string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestManagerLoadFiles(t *testing.T) {
	manager := transit.NewManager(storage.NewMemoryStorage())

	err := manager.LoadFiles(
		writeTemp(t, "stations.csv", stationsCSV),
		writeTemp(t, "routes.csv", routesCSV),
	)
	require.NoError(t, err)

	registry := manager.Registry()

	station, err := registry.Resolve("oculus")
	require.NoError(t, err)
	assert.Equal(t, "wtc", station.ID)
	require.Len(t, station.Stops, 2)
	assert.Equal(t, model.AgencySubway, station.Stops[0].Agency)
	assert.Equal(t, "ace", station.Stops[0].FeedGroup)
	assert.Equal(t, model.AgencyPATH, station.Stops[1].Agency)

	labels, found := registry.StaticRoutes("bedford av")
	require.True(t, found)
	assert.Equal(t, []string{"L"}, labels)
}

func TestManagerLoadFilesNoRoutes(t *testing.T) {
	manager := transit.NewManager(storage.NewMemoryStorage())

	err := manager.LoadFiles(writeTemp(t, "stations.csv", stationsCSV), "")
	require.NoError(t, err)

	_, found := manager.Registry().StaticRoutes("wtc")
	assert.False(t, found)
}

func TestManagerBadTableKeepsOldRegistry(t *testing.T) {
	manager := transit.NewManager(storage.NewMemoryStorage())

	require.NoError(t, manager.LoadFiles(writeTemp(t, "stations.csv", stationsCSV), ""))

	bad := `station_id,station_name,aliases,agency,stop_id,feed_group
hoboken,,,PATH,26727,
`
	err := manager.LoadFiles(writeTemp(t, "bad.csv", bad), "")
	require.Error(t, err)

	// The previous table still answers.
	_, err = manager.Registry().Resolve("wtc")
	assert.NoError(t, err)
}
