package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nycboard.dev/transit/feed"
	"nycboard.dev/transit/model"
)

const boardsJSON = `{
	"boards": [
		{
			"departures": [
				{
					"time": "2023-11-14T17:40:30-05:00",
					"transport": {"name": "126", "headsign": "Port Authority"}
				},
				{
					"time": "2023-11-14T22:42:00Z",
					"transport": {"shortName": "7", "headsign": "Hoboken"}
				},
				{
					"time": "",
					"transport": {"name": "dropped"}
				},
				{
					"time": "2023-11-14T17:44:00-05:00",
					"transport": {"headsign": "158 Bus Terminal"}
				},
				{
					"time": "2023-11-14T17:45:00-05:00",
					"transport": {}
				}
			]
		}
	]
}`

func TestTransitAPIArrivals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hoboken-terminal", r.URL.Query().Get("ids"))
		assert.Equal(t, "sekrit", r.URL.Query().Get("apiKey"))
		w.Write([]byte(boardsJSON))
	}))
	defer server.Close()

	api := feed.NewTransitAPI(feed.TransitAPIConfig{
		BaseURL: server.URL,
		APIKey:  "sekrit",
	})

	arrivals, err := api.Arrivals(context.Background(), model.StopRef{
		Agency: model.AgencyOther,
		StopID: "hoboken-terminal",
	})
	require.NoError(t, err)
	require.Len(t, arrivals, 4)

	// -05:00 offset preserved: 17:40:30 EST is 22:40:30 UTC.
	assert.Equal(t, int64(1700001630), arrivals[0].Predicted)
	assert.Equal(t, "126", arrivals[0].Route)
	assert.Equal(t, "Port Authority", arrivals[0].Headsign)

	// The Z-suffixed timestamp lands 90 seconds later.
	assert.Equal(t, int64(1700001720), arrivals[1].Predicted)
	assert.Equal(t, "7", arrivals[1].Route)

	// Label precedence falls back to the headsign's first word.
	assert.Equal(t, "158", arrivals[2].Route)

	// No label at all gets the unknown-route sentinel. The missing
	// headsign stays empty here; substitution happens downstream.
	assert.Equal(t, model.UnknownRoute, arrivals[3].Route)
	assert.Equal(t, "", arrivals[3].Headsign)
}

func TestTransitAPIUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	api := feed.NewTransitAPI(feed.TransitAPIConfig{BaseURL: server.URL})

	_, err := api.Arrivals(context.Background(), model.StopRef{
		Agency: model.AgencyOther,
		StopID: "hoboken-terminal",
	})
	assert.ErrorIs(t, err, feed.ErrUnavailable)
}

func TestTransitAPIGarbageJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>nope</html>"))
	}))
	defer server.Close()

	api := feed.NewTransitAPI(feed.TransitAPIConfig{BaseURL: server.URL})

	_, err := api.Arrivals(context.Background(), model.StopRef{
		Agency: model.AgencyOther,
		StopID: "hoboken-terminal",
	})
	assert.ErrorIs(t, err, feed.ErrUnavailable)
}
