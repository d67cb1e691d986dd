package feed_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nycboard.dev/transit/downloader"
	"nycboard.dev/transit/feed"
	"nycboard.dev/transit/model"
	"nycboard.dev/transit/testutil"
)

// fakeDownloader serves canned payloads per URL.
type fakeDownloader struct {
	payloads map[string][]byte
	errs     map[string]error
	gets     []string
}

func (d *fakeDownloader) Get(
	ctx context.Context,
	url string,
	headers map[string]string,
	options downloader.GetOptions,
) ([]byte, error) {
	d.gets = append(d.gets, url)
	if err := d.errs[url]; err != nil {
		return nil, err
	}
	body, found := d.payloads[url]
	if !found {
		return nil, fmt.Errorf("HTTP request failed: 404")
	}
	return body, nil
}

func lFeed(t *testing.T) []byte {
	return testutil.BuildTripUpdateFeed(t, []testutil.TripPrediction{
		{
			TripID:  "north",
			RouteID: "L",
			Stops: []testutil.StopPrediction{
				{StopID: "L08N", Arrival: 5000},
				{StopID: "L07N", Arrival: 5300},
			},
		},
		{
			TripID:  "south",
			RouteID: "L",
			Stops: []testutil.StopPrediction{
				{StopID: "L08S", Departure: 5100},
			},
		},
	})
}

func TestSubwayPrefixMatching(t *testing.T) {
	dl := &fakeDownloader{payloads: map[string][]byte{
		"https://rt.example.com/l": lFeed(t),
	}}

	subway := feed.NewSubway(feed.SubwayConfig{
		FeedURLs:   map[string]string{"l": "https://rt.example.com/l"},
		Downloader: dl,
	})

	// Direction-agnostic platform id matches both directions.
	arrivals, err := subway.Arrivals(context.Background(), model.StopRef{
		Agency:    model.AgencySubway,
		StopID:    "L08",
		FeedGroup: "l",
	})
	require.NoError(t, err)
	require.Len(t, arrivals, 2)

	assert.Equal(t, "L", arrivals[0].Route)
	assert.Equal(t, int64(5000), arrivals[0].Predicted)
	assert.Equal(t, "Manhattan Bound", arrivals[0].Headsign)

	// Departure stands in when arrival is missing.
	assert.Equal(t, int64(5100), arrivals[1].Predicted)
	assert.Equal(t, "Brooklyn/Queens", arrivals[1].Headsign)

	// Direction-qualified id restricts to one direction.
	arrivals, err = subway.Arrivals(context.Background(), model.StopRef{
		Agency:    model.AgencySubway,
		StopID:    "L08N",
		FeedGroup: "l",
	})
	require.NoError(t, err)
	require.Len(t, arrivals, 1)
	assert.Equal(t, "Manhattan Bound", arrivals[0].Headsign)
}

func TestSubwayFetchesOnlyCuratedGroup(t *testing.T) {
	dl := &fakeDownloader{payloads: map[string][]byte{
		"https://rt.example.com/l":   lFeed(t),
		"https://rt.example.com/ace": testutil.BuildTripUpdateFeed(t, nil),
	}}

	subway := feed.NewSubway(feed.SubwayConfig{
		FeedURLs: map[string]string{
			"l":   "https://rt.example.com/l",
			"ace": "https://rt.example.com/ace",
		},
		Downloader: dl,
	})

	_, err := subway.Arrivals(context.Background(), model.StopRef{
		Agency:    model.AgencySubway,
		StopID:    "L08",
		FeedGroup: "l",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://rt.example.com/l"}, dl.gets)
}

func TestSubwayScansAllGroupsWithoutCuration(t *testing.T) {
	dl := &fakeDownloader{
		payloads: map[string][]byte{
			"https://rt.example.com/l": lFeed(t),
		},
		errs: map[string]error{
			"https://rt.example.com/ace": errors.New("503"),
		},
	}

	subway := feed.NewSubway(feed.SubwayConfig{
		FeedURLs: map[string]string{
			"l":   "https://rt.example.com/l",
			"ace": "https://rt.example.com/ace",
		},
		Downloader: dl,
	})

	// One group down, the other still answers.
	arrivals, err := subway.Arrivals(context.Background(), model.StopRef{
		Agency: model.AgencySubway,
		StopID: "L08N",
	})
	require.NoError(t, err)
	assert.Len(t, arrivals, 1)
	assert.Len(t, dl.gets, 2)
}

func TestSubwayUnavailable(t *testing.T) {
	dl := &fakeDownloader{errs: map[string]error{
		"https://rt.example.com/l": errors.New("503"),
	}}

	subway := feed.NewSubway(feed.SubwayConfig{
		FeedURLs:   map[string]string{"l": "https://rt.example.com/l"},
		Downloader: dl,
	})

	_, err := subway.Arrivals(context.Background(), model.StopRef{
		Agency:    model.AgencySubway,
		StopID:    "L08",
		FeedGroup: "l",
	})
	assert.ErrorIs(t, err, feed.ErrUnavailable)

	// Unknown feed group is an upstream routing failure, not a panic.
	_, err = subway.Arrivals(context.Background(), model.StopRef{
		Agency:    model.AgencySubway,
		StopID:    "L08",
		FeedGroup: "z",
	})
	assert.ErrorIs(t, err, feed.ErrUnavailable)
}

func TestSubwayDirectionLabels(t *testing.T) {
	dl := &fakeDownloader{payloads: map[string][]byte{
		"https://rt.example.com/all": testutil.BuildTripUpdateFeed(t, []testutil.TripPrediction{
			{TripID: "t1", RouteID: "4", Stops: []testutil.StopPrediction{{StopID: "420N", Arrival: 100}}},
			{TripID: "t2", RouteID: "A", Stops: []testutil.StopPrediction{{StopID: "420S", Arrival: 200}}},
			{TripID: "t3", RouteID: "N", Stops: []testutil.StopPrediction{{StopID: "420N", Arrival: 300}}},
			{TripID: "t4", RouteID: "SI", Stops: []testutil.StopPrediction{{StopID: "420S", Arrival: 400}}},
			{TripID: "t5", RouteID: "7", Stops: []testutil.StopPrediction{{StopID: "420", Arrival: 500}}},
		}),
	}}

	subway := feed.NewSubway(feed.SubwayConfig{
		FeedURLs:   map[string]string{"all": "https://rt.example.com/all"},
		Downloader: dl,
	})

	arrivals, err := subway.Arrivals(context.Background(), model.StopRef{
		Agency:    model.AgencySubway,
		StopID:    "420",
		FeedGroup: "all",
	})
	require.NoError(t, err)
	require.Len(t, arrivals, 5)

	assert.Equal(t, "Uptown/Bronx", arrivals[0].Headsign)
	assert.Equal(t, "Downtown/Brooklyn", arrivals[1].Headsign)
	assert.Equal(t, "Manhattan/Queens", arrivals[2].Headsign)
	assert.Equal(t, "Southbound", arrivals[3].Headsign)
	assert.Equal(t, "", arrivals[4].Headsign)
}

func TestFeedGroupForRoute(t *testing.T) {
	assert.Equal(t, "ace", feed.FeedGroupForRoute("A"))
	assert.Equal(t, "1234567", feed.FeedGroupForRoute("6"))
	assert.Equal(t, "l", feed.FeedGroupForRoute(" l "))
	assert.Equal(t, "", feed.FeedGroupForRoute("PATH"))
}
