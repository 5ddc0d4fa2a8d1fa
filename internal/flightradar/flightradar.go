// Package flightradar is a thin client for the public FlightRadar24
// feeds, scoped to what the travel assistant needs: live aircraft in a
// bounding box and the schedule of Mumbai's Chhatrapati Shivaji
// Maharaj International Airport (VABB).
package flightradar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// Default upstream endpoints.
const (
	DefaultFeedURL    = "https://data-live.flightradar24.com/zones/fcgi/feed.js"
	DefaultZonesURL   = "https://www.flightradar24.com/js/zones.js.php"
	DefaultAirportURL = "https://api.flightradar24.com/common/v1/airport.json"
)

// MumbaiAirportICAO is the airport every schedule lookup targets.
const MumbaiAirportICAO = "VABB"

// MaxFlightLimit caps a live feed page.
const MaxFlightLimit = 100

// ErrUpstream wraps failures talking to FlightRadar24.
var ErrUpstream = errors.New("flightradar request failed")

// Client talks to the FlightRadar24 public endpoints.
type Client struct {
	httpClient *http.Client
	feedURL    string
	zonesURL   string
	airportURL string
}

// NewClient wraps httpClient for FlightRadar24 lookups. A nil
// httpClient gets a dedicated client with a 30 second timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		feedURL:    DefaultFeedURL,
		zonesURL:   DefaultZonesURL,
		airportURL: DefaultAirportURL,
	}
}

// WithFeedURL overrides the live feed endpoint.
func (c *Client) WithFeedURL(url string) *Client {
	c.feedURL = url
	return c
}

// WithZonesURL overrides the zone directory endpoint.
func (c *Client) WithZonesURL(url string) *Client {
	c.zonesURL = url
	return c
}

// WithAirportURL overrides the airport schedule endpoint.
func (c *Client) WithAirportURL(url string) *Client {
	c.airportURL = url
	return c
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrUpstream, endpoint, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return nil
}

type zoneBounds struct {
	TLY float64 `json:"tl_y"`
	TLX float64 `json:"tl_x"`
	BRY float64 `json:"br_y"`
	BRX float64 `json:"br_x"`
}

func (z zoneBounds) boundsString() string {
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", z.TLY, z.BRY, z.TLX, z.BRX)
}

// zoneByName resolves a named FlightRadar24 zone case-insensitively.
// The directory mixes non-zone keys (a version marker) into the same
// object, so entries that do not decode as bounds are skipped.
func (c *Client) zoneByName(ctx context.Context, name string) (*zoneBounds, error) {
	var zones map[string]json.RawMessage
	if err := c.getJSON(ctx, c.zonesURL, &zones); err != nil {
		return nil, err
	}
	lower := strings.ToLower(name)
	for key, raw := range zones {
		if strings.ToLower(key) != lower {
			continue
		}
		var zb zoneBounds
		if err := json.Unmarshal(raw, &zb); err != nil {
			continue
		}
		return &zb, nil
	}
	return nil, nil
}

// boundsAroundPoint computes the feed bounds string for a circle of
// radiusM metres around a coordinate.
func boundsAroundPoint(lat, lon float64, radiusM int) string {
	const metresPerDegree = 111320.0
	r := float64(radiusM)
	dLat := r / metresPerDegree
	dLon := r / (metresPerDegree * math.Cos(lat*math.Pi/180))
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", lat+dLat, lat-dLat, lon-dLon, lon+dLon)
}
