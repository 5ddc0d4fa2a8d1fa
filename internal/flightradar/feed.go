package flightradar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// defaultPointRadiusM applies when a point search omits the radius.
const defaultPointRadiusM = 2000

// Flight is one aircraft from the live feed.
type Flight struct {
	ID              string    `json:"id"`
	ICAO24          string    `json:"icao24,omitempty"`
	Callsign        string    `json:"callsign,omitempty"`
	FlightNumber    string    `json:"flight_number,omitempty"`
	AirlineICAO     string    `json:"airline_icao,omitempty"`
	AircraftType    string    `json:"aircraft_type,omitempty"`
	Registration    string    `json:"registration,omitempty"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Heading         int       `json:"heading"`
	AltitudeFt      int       `json:"altitude_ft"`
	GroundSpeedKts  int       `json:"ground_speed_kts"`
	VerticalSpeed   int       `json:"vertical_speed"`
	Squawk          string    `json:"squawk,omitempty"`
	OriginIATA      string    `json:"origin_iata,omitempty"`
	DestinationIATA string    `json:"destination_iata,omitempty"`
	OnGround        bool      `json:"on_ground"`
	Timestamp       time.Time `json:"timestamp"`
}

// FlightQuery selects the search area, aircraft filters and page.
// Bounds wins over a centre point, which wins over a named zone,
// global scope otherwise.
type FlightQuery struct {
	Bounds       string
	Zone         string
	CenterLat    *float64
	CenterLon    *float64
	RadiusM      int
	Airline      string
	AircraftType string
	Limit        int
	Offset       int
}

// FeedFilters echoes the aircraft filters a query applied.
type FeedFilters struct {
	Airline      string `json:"airline,omitempty"`
	AircraftType string `json:"aircraft_type,omitempty"`
}

// FlightList is one page of the live feed.
type FlightList struct {
	RetrievedAt time.Time    `json:"retrieved_at"`
	Bounds      string       `json:"bounds,omitempty"`
	Notes       []string     `json:"notes,omitempty"`
	Filters     *FeedFilters `json:"filters,omitempty"`
	FullCount   int          `json:"full_count"`
	TotalFound  int          `json:"total_found"`
	Offset      int          `json:"offset"`
	Flights     []Flight     `json:"flights"`
}

// Flights fetches the live feed for the query's area, applies the
// airline and aircraft type filters and returns the requested page,
// ordered by flight id for stable pagination.
func (c *Client) Flights(ctx context.Context, q FlightQuery) (*FlightList, error) {
	if q.Limit <= 0 {
		return nil, errors.New("limit must be greater than zero")
	}
	if q.Limit > MaxFlightLimit {
		q.Limit = MaxFlightLimit
	}
	if q.Offset < 0 {
		return nil, errors.New("offset cannot be negative")
	}
	airline := strings.TrimSpace(q.Airline)
	aircraftType := strings.TrimSpace(q.AircraftType)

	bounds, notes, err := c.resolveBounds(ctx, q)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if bounds != "" {
		params.Set("bounds", bounds)
	}
	feedURL := c.feedURL
	if encoded := params.Encode(); encoded != "" {
		feedURL += "?" + encoded
	}

	var payload map[string]json.RawMessage
	if err := c.getJSON(ctx, feedURL, &payload); err != nil {
		return nil, err
	}

	list := &FlightList{
		RetrievedAt: time.Now().UTC(),
		Bounds:      bounds,
		Notes:       notes,
		Offset:      q.Offset,
	}
	if airline != "" || aircraftType != "" {
		list.Filters = &FeedFilters{Airline: airline, AircraftType: aircraftType}
	}
	if raw, ok := payload["full_count"]; ok {
		var count int
		if err := json.Unmarshal(raw, &count); err == nil {
			list.FullCount = count
		}
	}

	flights := make([]Flight, 0, len(payload))
	for key, raw := range payload {
		switch key {
		case "full_count", "version", "stats":
			continue
		}
		flight, ok := parseFeedEntry(key, raw)
		if !ok {
			continue
		}
		if airline != "" && !strings.EqualFold(flight.AirlineICAO, airline) {
			continue
		}
		if aircraftType != "" && !strings.EqualFold(flight.AircraftType, aircraftType) {
			continue
		}
		flights = append(flights, flight)
	}
	sort.Slice(flights, func(i, j int) bool { return flights[i].ID < flights[j].ID })

	list.TotalFound = len(flights)
	if q.Offset < len(flights) {
		end := q.Offset + q.Limit
		if end > len(flights) {
			end = len(flights)
		}
		list.Flights = flights[q.Offset:end]
	} else {
		list.Flights = []Flight{}
	}
	return list, nil
}

func (c *Client) resolveBounds(ctx context.Context, q FlightQuery) (string, []string, error) {
	var notes []string
	switch {
	case q.Bounds != "":
		return q.Bounds, nil, nil
	case q.CenterLat != nil && q.CenterLon != nil:
		radius := q.RadiusM
		if radius <= 0 {
			radius = defaultPointRadiusM
		}
		notes = append(notes, "bounds derived via center point")
		return boundsAroundPoint(*q.CenterLat, *q.CenterLon, radius), notes, nil
	case q.Zone != "":
		zb, err := c.zoneByName(ctx, q.Zone)
		if err != nil {
			return "", nil, err
		}
		if zb == nil {
			notes = append(notes, fmt.Sprintf("zone %q not recognised; fallback to global scope", q.Zone))
			return "", notes, nil
		}
		notes = append(notes, fmt.Sprintf("bounds derived from zone %q", q.Zone))
		return zb.boundsString(), notes, nil
	default:
		return "", nil, nil
	}
}

// parseFeedEntry decodes one feed row. Rows are positional arrays of
// mixed scalars, anything that is not such an array is skipped.
func parseFeedEntry(id string, raw json.RawMessage) (Flight, bool) {
	var fields []any
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) < 14 {
		return Flight{}, false
	}

	flight := Flight{
		ID:              id,
		ICAO24:          asString(fields, 0),
		Latitude:        asFloat(fields, 1),
		Longitude:       asFloat(fields, 2),
		Heading:         int(asFloat(fields, 3)),
		AltitudeFt:      int(asFloat(fields, 4)),
		GroundSpeedKts:  int(asFloat(fields, 5)),
		Squawk:          asString(fields, 6),
		AircraftType:    asString(fields, 8),
		Registration:    asString(fields, 9),
		OriginIATA:      asString(fields, 11),
		DestinationIATA: asString(fields, 12),
		FlightNumber:    asString(fields, 13),
		OnGround:        asFloat(fields, 14) != 0,
		VerticalSpeed:   int(asFloat(fields, 15)),
		Callsign:        asString(fields, 16),
		AirlineICAO:     asString(fields, 18),
	}
	if ts := asFloat(fields, 10); ts > 0 {
		flight.Timestamp = time.Unix(int64(ts), 0).UTC()
	}
	return flight, true
}

func asString(fields []any, i int) string {
	if i >= len(fields) {
		return ""
	}
	s, _ := fields[i].(string)
	return s
}

func asFloat(fields []any, i int) float64 {
	if i >= len(fields) {
		return 0
	}
	f, _ := fields[i].(float64)
	return f
}
