package parse

import (
	"fmt"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	proto "google.golang.org/protobuf/proto"
)

// StopEvent is one predicted stop of one trip, as carried by a GTFS
// Realtime trip update. Arrival and Departure are Unix timestamps in
// seconds; zero means the feed omitted that prediction.
type StopEvent struct {
	TripID    string
	RouteID   string
	StopID    string
	Arrival   int64
	Departure int64
}

// DecodeTripUpdates unmarshals a GTFS Realtime feed and flattens its
// trip updates into per-stop prediction events. Vehicle positions and
// alerts are ignored, as are canceled trips (their predictions no
// longer apply).
func DecodeTripUpdates(data []byte) ([]*StopEvent, error) {
	feed := &gtfsproto.FeedMessage{}
	if err := proto.Unmarshal(data, feed); err != nil {
		return nil, fmt.Errorf("unmarshaling protobuf: %w", err)
	}

	header := feed.GetHeader()
	version := header.GetGtfsRealtimeVersion()
	if version != "2.0" && version != "1.0" {
		return nil, fmt.Errorf("version %s not supported", version)
	}

	events := []*StopEvent{}

	for _, entity := range feed.GetEntity() {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil {
			continue
		}

		trip := tripUpdate.GetTrip()
		if trip.GetScheduleRelationship() == gtfsproto.TripDescriptor_CANCELED {
			continue
		}

		for _, update := range tripUpdate.GetStopTimeUpdate() {
			if update.GetScheduleRelationship() == gtfsproto.TripUpdate_StopTimeUpdate_SKIPPED {
				continue
			}

			events = append(events, &StopEvent{
				TripID:    trip.GetTripId(),
				RouteID:   trip.GetRouteId(),
				StopID:    update.GetStopId(),
				Arrival:   update.GetArrival().GetTime(),
				Departure: update.GetDeparture().GetTime(),
			})
		}
	}

	return events, nil
}
