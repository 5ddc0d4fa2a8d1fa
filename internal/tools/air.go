package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ItsSpirax/Mumbai-Travel-Assistant/internal/flightradar"
)

// FlightTrackerInput defines the input schema for flight_tracker_lookup
type FlightTrackerInput struct {
	Bounds    string   `json:"bounds,omitempty" jsonschema_description:"Explicit bounds string: lat1,lat2,lon1,lon2"`
	Zone      string   `json:"zone,omitempty" jsonschema_description:"Named FlightRadar24 zone, e.g. asia or europe"`
	CenterLat *float64 `json:"center_lat,omitempty" jsonschema_description:"Centre latitude for a point search"`
	CenterLon *float64 `json:"center_lon,omitempty" jsonschema_description:"Centre longitude for a point search"`
	RadiusM   int      `json:"radius_m,omitempty" jsonschema_description:"Point search radius in metres (default: 2000)"`

	Airline      string `json:"airline,omitempty" jsonschema_description:"Filter by ICAO airline code, e.g. AIC for Air India"`
	AircraftType string `json:"aircraft_type,omitempty" jsonschema_description:"Filter by aircraft type code, e.g. B738 or A20N"`
	Limit        int    `json:"limit,omitempty" jsonschema_description:"Maximum flights to return (default: 25, max: 100)"`
	Offset       int    `json:"offset,omitempty" jsonschema_description:"Skip this many flights for pagination"`
}

// FlightTrackerOutput defines the output schema for flight_tracker_lookup
type FlightTrackerOutput struct {
	Flights *flightradar.FlightList `json:"flights"`
}

func (h *Handler) FlightTracker(ctx context.Context, req *mcp.CallToolRequest, input FlightTrackerInput) (*mcp.CallToolResult, FlightTrackerOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 25
	}

	list, err := h.flights.Flights(ctx, flightradar.FlightQuery{
		Bounds:       input.Bounds,
		Zone:         input.Zone,
		CenterLat:    input.CenterLat,
		CenterLon:    input.CenterLon,
		RadiusM:      input.RadiusM,
		Airline:      input.Airline,
		AircraftType: input.AircraftType,
		Limit:        limit,
		Offset:       input.Offset,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("flight lookup failed: %v", err)), FlightTrackerOutput{}, nil
	}

	text, ok := jsonResult(list)
	if !ok {
		return text, FlightTrackerOutput{}, nil
	}
	return text, FlightTrackerOutput{Flights: list}, nil
}

// AirportScheduleInput defines the input schema for airport_schedule_lookup
type AirportScheduleInput struct {
	Direction        string `json:"direction,omitempty" jsonschema_description:"Scope: both, arrivals, or departures (default: both)"`
	DeparturesLimit  int    `json:"departures_limit,omitempty" jsonschema_description:"Maximum departures to return (default: 20, max: 50)"`
	DeparturesOffset int    `json:"departures_offset,omitempty" jsonschema_description:"Skip this many departures for pagination"`
	ArrivalsLimit    int    `json:"arrivals_limit,omitempty" jsonschema_description:"Maximum arrivals to return (default: 20, max: 50)"`
	ArrivalsOffset   int    `json:"arrivals_offset,omitempty" jsonschema_description:"Skip this many arrivals for pagination"`
}

// AirportScheduleOutput defines the output schema for airport_schedule_lookup
type AirportScheduleOutput struct {
	Schedule *flightradar.AirportSchedule `json:"schedule"`
}

func (h *Handler) AirportSchedule(ctx context.Context, req *mcp.CallToolRequest, input AirportScheduleInput) (*mcp.CallToolResult, AirportScheduleOutput, error) {
	query := flightradar.ScheduleQuery{
		Direction:        flightradar.Direction(input.Direction),
		DeparturesLimit:  input.DeparturesLimit,
		DeparturesOffset: input.DeparturesOffset,
		ArrivalsLimit:    input.ArrivalsLimit,
		ArrivalsOffset:   input.ArrivalsOffset,
	}
	if query.DeparturesLimit == 0 {
		query.DeparturesLimit = 20
	}
	if query.ArrivalsLimit == 0 {
		query.ArrivalsLimit = 20
	}

	schedule, err := h.flights.AirportSchedule(ctx, query)
	if err != nil {
		return errorResult(fmt.Sprintf("airport schedule lookup failed: %v", err)), AirportScheduleOutput{}, nil
	}

	text, ok := jsonResult(schedule)
	if !ok {
		return text, AirportScheduleOutput{}, nil
	}
	return text, AirportScheduleOutput{Schedule: schedule}, nil
}
