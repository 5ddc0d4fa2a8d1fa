package flightradar

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"
)

// Direction scopes a schedule lookup.
type Direction string

const (
	DirectionBoth       Direction = "both"
	DirectionArrivals   Direction = "arrivals"
	DirectionDepartures Direction = "departures"
)

// Valid reports whether the direction is one of the accepted values.
func (d Direction) Valid() bool {
	switch d {
	case DirectionBoth, DirectionArrivals, DirectionDepartures:
		return true
	}
	return false
}

// MaxScheduleLimit caps one schedule section page.
const MaxScheduleLimit = 50

// AirportInfo describes the airport a schedule belongs to.
type AirportInfo struct {
	ICAO       string   `json:"icao,omitempty"`
	IATA       string   `json:"iata,omitempty"`
	Name       string   `json:"name,omitempty"`
	City       string   `json:"city,omitempty"`
	Country    string   `json:"country,omitempty"`
	Timezone   string   `json:"timezone,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	AltitudeFt *int     `json:"altitude_ft,omitempty"`
}

// ScheduleFlight is one arrival or departure row.
type ScheduleFlight struct {
	FlightNumber    string     `json:"flight_number,omitempty"`
	Callsign        string     `json:"callsign,omitempty"`
	Status          string     `json:"status,omitempty"`
	Airline         string     `json:"airline,omitempty"`
	AircraftModel   string     `json:"aircraft_model,omitempty"`
	Registration    string     `json:"registration,omitempty"`
	Counterpart     string     `json:"counterpart_airport,omitempty"`
	CounterpartIATA string     `json:"counterpart_iata,omitempty"`
	ScheduledTime   *time.Time `json:"scheduled_time,omitempty"`
	EstimatedTime   *time.Time `json:"estimated_time,omitempty"`
	DelayMinutes    *float64   `json:"delay_minutes,omitempty"`
}

// ScheduleSection is one paginated direction of the schedule.
type ScheduleSection struct {
	TotalAvailable int              `json:"total_available"`
	Offset         int              `json:"offset"`
	Limit          int              `json:"limit"`
	Returned       int              `json:"returned"`
	Flights        []ScheduleFlight `json:"flights"`
}

// ScheduleQuery selects the direction and pages of a schedule lookup.
type ScheduleQuery struct {
	Direction        Direction
	DeparturesLimit  int
	DeparturesOffset int
	ArrivalsLimit    int
	ArrivalsOffset   int
}

// AirportSchedule is the VABB schedule snapshot.
type AirportSchedule struct {
	RetrievedAt time.Time        `json:"retrieved_at"`
	Airport     AirportInfo      `json:"airport"`
	Departures  *ScheduleSection `json:"departures,omitempty"`
	Arrivals    *ScheduleSection `json:"arrivals,omitempty"`
}

type airportPayload struct {
	Result struct {
		Response struct {
			Airport struct {
				PluginData struct {
					Details struct {
						Name string `json:"name"`
						Code struct {
							IATA string `json:"iata"`
							ICAO string `json:"icao"`
						} `json:"code"`
						Position struct {
							Latitude  *float64 `json:"latitude"`
							Longitude *float64 `json:"longitude"`
							Altitude  *int     `json:"altitude"`
							Country   struct {
								Name string `json:"name"`
							} `json:"country"`
							Region struct {
								City string `json:"city"`
							} `json:"region"`
						} `json:"position"`
						Timezone struct {
							Name string `json:"name"`
						} `json:"timezone"`
					} `json:"details"`
					Schedule struct {
						Arrivals   scheduleData `json:"arrivals"`
						Departures scheduleData `json:"departures"`
					} `json:"schedule"`
				} `json:"pluginData"`
			} `json:"airport"`
		} `json:"response"`
	} `json:"result"`
}

type scheduleData struct {
	Data []struct {
		Flight scheduleFlightData `json:"flight"`
	} `json:"data"`
}

type scheduleFlightData struct {
	Identification struct {
		Number struct {
			Default string `json:"default"`
		} `json:"number"`
		Callsign string `json:"callsign"`
	} `json:"identification"`
	Status struct {
		Text string `json:"text"`
	} `json:"status"`
	Airline struct {
		Name string `json:"name"`
	} `json:"airline"`
	Aircraft struct {
		Model struct {
			Text string `json:"text"`
		} `json:"model"`
		Registration string `json:"registration"`
	} `json:"aircraft"`
	Airport struct {
		Origin      airportRefData `json:"origin"`
		Destination airportRefData `json:"destination"`
	} `json:"airport"`
	Time struct {
		Scheduled timePair `json:"scheduled"`
		Estimated timePair `json:"estimated"`
	} `json:"time"`
}

type airportRefData struct {
	Name string `json:"name"`
	Code struct {
		IATA string `json:"iata"`
	} `json:"code"`
}

type timePair struct {
	Departure *int64 `json:"departure"`
	Arrival   *int64 `json:"arrival"`
}

// AirportSchedule fetches the Mumbai airport schedule and returns the
// requested direction sections.
func (c *Client) AirportSchedule(ctx context.Context, q ScheduleQuery) (*AirportSchedule, error) {
	if q.Direction == "" {
		q.Direction = DirectionBoth
	}
	if !q.Direction.Valid() {
		return nil, fmt.Errorf("direction must be %q, %q or %q",
			DirectionBoth, DirectionArrivals, DirectionDepartures)
	}

	params := url.Values{"code": {MumbaiAirportICAO}}
	var payload airportPayload
	if err := c.getJSON(ctx, c.airportURL+"?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	plugin := payload.Result.Response.Airport.PluginData
	details := plugin.Details

	schedule := &AirportSchedule{
		RetrievedAt: time.Now().UTC(),
		Airport: AirportInfo{
			ICAO:       details.Code.ICAO,
			IATA:       details.Code.IATA,
			Name:       details.Name,
			City:       details.Position.Region.City,
			Country:    details.Position.Country.Name,
			Timezone:   details.Timezone.Name,
			Latitude:   details.Position.Latitude,
			Longitude:  details.Position.Longitude,
			AltitudeFt: details.Position.Altitude,
		},
	}
	if schedule.Airport.ICAO == "" {
		schedule.Airport.ICAO = MumbaiAirportICAO
	}

	if q.Direction == DirectionBoth || q.Direction == DirectionDepartures {
		section, err := buildScheduleSection(plugin.Schedule.Departures, DirectionDepartures, q.DeparturesLimit, q.DeparturesOffset)
		if err != nil {
			return nil, err
		}
		schedule.Departures = section
	}
	if q.Direction == DirectionBoth || q.Direction == DirectionArrivals {
		section, err := buildScheduleSection(plugin.Schedule.Arrivals, DirectionArrivals, q.ArrivalsLimit, q.ArrivalsOffset)
		if err != nil {
			return nil, err
		}
		schedule.Arrivals = section
	}
	return schedule, nil
}

func buildScheduleSection(data scheduleData, direction Direction, limit, offset int) (*ScheduleSection, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be greater than zero")
	}
	if limit > MaxScheduleLimit {
		limit = MaxScheduleLimit
	}
	if offset < 0 {
		return nil, errors.New("offset cannot be negative")
	}

	total := len(data.Data)
	section := &ScheduleSection{
		TotalAvailable: total,
		Offset:         offset,
		Limit:          limit,
		Flights:        []ScheduleFlight{},
	}
	if offset >= total {
		return section, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	for _, entry := range data.Data[offset:end] {
		section.Flights = append(section.Flights, serializeScheduleFlight(entry.Flight, direction))
	}
	section.Returned = len(section.Flights)
	return section, nil
}

func serializeScheduleFlight(f scheduleFlightData, direction Direction) ScheduleFlight {
	flight := ScheduleFlight{
		FlightNumber:  f.Identification.Number.Default,
		Callsign:      f.Identification.Callsign,
		Status:        f.Status.Text,
		Airline:       f.Airline.Name,
		AircraftModel: f.Aircraft.Model.Text,
		Registration:  f.Aircraft.Registration,
	}

	// Departures care about the destination and departure times,
	// arrivals the other way round.
	var counterpart airportRefData
	var scheduled, estimated *int64
	if direction == DirectionDepartures {
		counterpart = f.Airport.Destination
		scheduled = f.Time.Scheduled.Departure
		estimated = f.Time.Estimated.Departure
	} else {
		counterpart = f.Airport.Origin
		scheduled = f.Time.Scheduled.Arrival
		estimated = f.Time.Estimated.Arrival
	}
	flight.Counterpart = counterpart.Name
	flight.CounterpartIATA = counterpart.Code.IATA

	if scheduled != nil && *scheduled > 0 {
		t := time.Unix(*scheduled, 0).UTC()
		flight.ScheduledTime = &t
	}
	if estimated != nil && *estimated > 0 {
		t := time.Unix(*estimated, 0).UTC()
		flight.EstimatedTime = &t
	}
	if flight.ScheduledTime != nil && flight.EstimatedTime != nil {
		delay := math.Round(flight.EstimatedTime.Sub(*flight.ScheduledTime).Minutes()*100) / 100
		flight.DelayMinutes = &delay
	}
	return flight
}
