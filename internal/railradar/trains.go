package railradar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// mumbaiEMUType is the train type tag the live map uses for Mumbai
// suburban services.
const mumbaiEMUType = "EMU - Mumbai"

// Train is the live position and status of one suburban service.
type Train struct {
	TrainNumber        string   `json:"train_number"`
	TrainName          string   `json:"train_name"`
	TrainType          string   `json:"train_type,omitempty"`
	CurrentStationName string   `json:"current_station_name,omitempty"`
	CurrentStationCode string   `json:"current_station_code,omitempty"`
	Speed              *float64 `json:"speed,omitempty"`
	DelayMinutes       *int     `json:"delay_minutes,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
}

// TrainFilter narrows the live map result. Name and station queries
// are case-insensitive substring matches, the number is exact.
type TrainFilter struct {
	TrainNumber         string `json:"train_number,omitempty"`
	TrainNameQuery      string `json:"train_name_query,omitempty"`
	CurrentStationQuery string `json:"current_station_query,omitempty"`
}

// TrainStatus is the filtered snapshot of live Mumbai EMU services.
type TrainStatus struct {
	RetrievedAt time.Time   `json:"retrieved_at"`
	Filter      TrainFilter `json:"filters_applied"`
	TotalFound  int         `json:"total_found"`
	Trains      []Train     `json:"trains"`
}

type liveMapPayload struct {
	Success bool `json:"success"`
	Data    []struct {
		TrainNumber        string   `json:"train_number"`
		TrainName          string   `json:"train_name"`
		Type               string   `json:"type"`
		CurrentStationName string   `json:"current_station_name"`
		CurrentStationCode string   `json:"current_station_code"`
		Speed              *float64 `json:"speed"`
		Delay              *int     `json:"delay"`
		Lat                *float64 `json:"lat"`
		Lon                *float64 `json:"lon"`
	} `json:"data"`
}

// LiveTrains fetches the live map and returns the Mumbai EMU services
// matching the filter.
func (c *Client) LiveTrains(ctx context.Context, filter TrainFilter) (*TrainStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.liveMapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building live map request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: live map returned %s", ErrUpstream, resp.Status)
	}

	var payload liveMapPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding live map response: %v", ErrUpstream, err)
	}
	if !payload.Success {
		return nil, fmt.Errorf("%w: live map did not report success", ErrUpstream)
	}

	nameQuery := strings.ToLower(filter.TrainNameQuery)
	stationQuery := strings.ToLower(filter.CurrentStationQuery)

	trains := make([]Train, 0, len(payload.Data))
	for _, item := range payload.Data {
		if item.Type != mumbaiEMUType {
			continue
		}
		if filter.TrainNumber != "" && item.TrainNumber != filter.TrainNumber {
			continue
		}
		if nameQuery != "" && !strings.Contains(strings.ToLower(item.TrainName), nameQuery) {
			continue
		}
		if stationQuery != "" && !strings.Contains(strings.ToLower(item.CurrentStationName), stationQuery) {
			continue
		}
		trains = append(trains, Train{
			TrainNumber:        item.TrainNumber,
			TrainName:          item.TrainName,
			TrainType:          item.Type,
			CurrentStationName: item.CurrentStationName,
			CurrentStationCode: item.CurrentStationCode,
			Speed:              item.Speed,
			DelayMinutes:       item.Delay,
			Latitude:           item.Lat,
			Longitude:          item.Lon,
		})
	}

	return &TrainStatus{
		RetrievedAt: time.Now().UTC(),
		Filter:      filter,
		TotalFound:  len(trains),
		Trains:      trains,
	}, nil
}
