// Package ferry serves the Mumbai ferry and RoRo timetable from the
// static dataset shipped in the data directory.
package ferry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TripsFile is the dataset file name expected under the data directory.
const TripsFile = "ferry_trips.json"

// MaxLimit caps how many trips a single query may return.
const MaxLimit = 50

// DefaultLimit applies when a query does not specify a limit.
const DefaultLimit = 10

// Trip is one scheduled ferry or RoRo service. Departure times are
// pointers because some services run on demand and publish none.
type Trip struct {
	FromLocation              string  `json:"from_location"`
	ToLocation                string  `json:"to_location"`
	OriginFirstDeparture      *string `json:"origin_first_departure"`
	OriginLastDeparture       *string `json:"origin_last_departure"`
	DestinationFirstDeparture *string `json:"destination_first_departure"`
	DestinationLastDeparture  *string `json:"destination_last_departure"`
	Frequency                 string  `json:"frequency"`
	JourneyTime               string  `json:"journey_time"`
	Fare                      string  `json:"fare"`
	Availability              *string `json:"availability"`
	BikesAllowed              bool    `json:"bikes_allowed"`
	BikeDetails               *string `json:"bike_details"`
}

// Query narrows, orders and pages the timetable. Empty filter fields
// match everything; a nil AllowsBikes skips the bike filter entirely.
type Query struct {
	FromLocation string
	ToLocation   string
	AllowsBikes  *bool
	Availability string
	SortBy       string
	Limit        int
	Offset       int
}

// Metadata describes the page cut from the filtered timetable.
type Metadata struct {
	RetrievedAt time.Time `json:"retrieved_at"`
	Total       int       `json:"total"`
	Returned    int       `json:"returned"`
	Limit       int       `json:"limit"`
	Offset      int       `json:"offset"`
}

// Filters echoes the filters a query actually applied.
type Filters struct {
	FromLocation string `json:"from_location,omitempty"`
	ToLocation   string `json:"to_location,omitempty"`
	AllowsBikes  *bool  `json:"allows_bikes,omitempty"`
	Availability string `json:"availability,omitempty"`
	SortBy       string `json:"sort_by,omitempty"`
}

// Result is one page of matching trips with its metadata.
type Result struct {
	Metadata Metadata `json:"metadata"`
	Filters  Filters  `json:"filters"`
	Trips    []Trip   `json:"results"`
}

var sortFields = map[string]func(a, b Trip) bool{
	"from_location": func(a, b Trip) bool { return lowerLess(a.FromLocation, b.FromLocation) },
	"to_location":   func(a, b Trip) bool { return lowerLess(a.ToLocation, b.ToLocation) },
	"frequency":     func(a, b Trip) bool { return lowerLess(a.Frequency, b.Frequency) },
	"journey_time":  func(a, b Trip) bool { return lowerLess(a.JourneyTime, b.JourneyTime) },
}

func lowerLess(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

// SortFields lists the accepted values for Query.SortBy.
func SortFields() []string {
	fields := make([]string, 0, len(sortFields))
	for name := range sortFields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// Service answers timetable queries over the loaded trips.
type Service struct {
	trips []Trip
}

// NewService loads the timetable from dir.
func NewService(dir string) (*Service, error) {
	raw, err := os.ReadFile(filepath.Join(dir, TripsFile))
	if err != nil {
		return nil, fmt.Errorf("opening ferry timetable: %w", err)
	}
	var trips []Trip
	if err := json.Unmarshal(raw, &trips); err != nil {
		return nil, fmt.Errorf("parsing ferry timetable: %w", err)
	}
	if len(trips) == 0 {
		return nil, errors.New("ferry timetable is empty")
	}
	return &Service{trips: trips}, nil
}

// TripCount reports the size of the loaded timetable.
func (s *Service) TripCount() int { return len(s.trips) }

// Search filters the timetable by case-insensitive substring on the
// origin, destination and availability, optionally by bike carriage,
// then sorts and returns the requested page.
func (s *Service) Search(q Query) (*Result, error) {
	limit := q.Limit
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit < 0:
		return nil, errors.New("limit must be positive")
	case limit > MaxLimit:
		return nil, fmt.Errorf("limit must not exceed %d", MaxLimit)
	}
	if q.Offset < 0 {
		return nil, errors.New("offset cannot be negative")
	}

	var less func(a, b Trip) bool
	if q.SortBy != "" {
		var ok bool
		less, ok = sortFields[strings.ToLower(q.SortBy)]
		if !ok {
			return nil, fmt.Errorf("sort_by must be one of: %s", strings.Join(SortFields(), ", "))
		}
	}

	from := strings.ToLower(strings.TrimSpace(q.FromLocation))
	to := strings.ToLower(strings.TrimSpace(q.ToLocation))
	availability := strings.ToLower(strings.TrimSpace(q.Availability))

	matched := make([]Trip, 0, len(s.trips))
	for _, trip := range s.trips {
		if from != "" && !strings.Contains(strings.ToLower(trip.FromLocation), from) {
			continue
		}
		if to != "" && !strings.Contains(strings.ToLower(trip.ToLocation), to) {
			continue
		}
		if q.AllowsBikes != nil && trip.BikesAllowed != *q.AllowsBikes {
			continue
		}
		if availability != "" {
			if trip.Availability == nil || !strings.Contains(strings.ToLower(*trip.Availability), availability) {
				continue
			}
		}
		matched = append(matched, trip)
	}

	total := len(matched)
	if less != nil {
		sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	}

	page := []Trip{}
	if q.Offset < total {
		end := q.Offset + limit
		if end > total {
			end = total
		}
		page = matched[q.Offset:end]
	}

	return &Result{
		Metadata: Metadata{
			RetrievedAt: time.Now().UTC(),
			Total:       total,
			Returned:    len(page),
			Limit:       limit,
			Offset:      q.Offset,
		},
		Filters: Filters{
			FromLocation: q.FromLocation,
			ToLocation:   q.ToLocation,
			AllowsBikes:  q.AllowsBikes,
			Availability: q.Availability,
			SortBy:       q.SortBy,
		},
		Trips: page,
	}, nil
}
