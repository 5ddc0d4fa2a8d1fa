// Package railradar queries live Indian Railways data for Mumbai:
// station arrival boards from the RailRadar board feed and the live
// position map of suburban EMU services.
package railradar

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Default upstream endpoints.
const (
	DefaultBoardURL   = "https://railjournal.in/RailRadar/fetch_trains_at_stn.php"
	DefaultLiveMapURL = "https://railradar.in/api/v1/trains/live-map"
)

// ErrUnknownStation is returned when a station query does not resolve
// against the supported station directory.
var ErrUnknownStation = errors.New("unsupported station")

// ErrUpstream wraps failures talking to the upstream feeds.
var ErrUpstream = errors.New("upstream request failed")

// Station is one supported board station with its lookup aliases.
type Station struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// Stations is the directory of supported board stations.
var Stations = []Station{
	{Code: "DR", Name: "Dadar", Aliases: []string{"dadar", "dr"}},
	{Code: "MMCT", Name: "Mumbai Central", Aliases: []string{"mumbai central", "mmct"}},
	{Code: "CSMT", Name: "Chhatrapati Shivaji Maharaj Terminus", Aliases: []string{"csmt", "cst", "vt", "chhatrapati shivaji maharaj terminus"}},
	{Code: "BDTS", Name: "Bandra Terminus", Aliases: []string{"bandra terminus", "bdts"}},
	{Code: "LTT", Name: "Lokmanya Tilak Terminus", Aliases: []string{"ltt", "lokmanya tilak", "kalyan shilphata"}},
	{Code: "TNA", Name: "Thane", Aliases: []string{"thane", "tna"}},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]*Station {
	index := make(map[string]*Station)
	for i := range Stations {
		st := &Stations[i]
		index[strings.ToLower(st.Code)] = st
		index[strings.ToLower(st.Name)] = st
		for _, alias := range st.Aliases {
			index[strings.ToLower(alias)] = st
		}
	}
	return index
}

// ResolveStation matches a station code, name or alias
// case-insensitively against the directory.
func ResolveStation(station string) (*Station, error) {
	key := strings.ToLower(strings.TrimSpace(station))
	if key == "" {
		return nil, fmt.Errorf("%w: station must be provided", ErrUnknownStation)
	}
	if st, ok := aliasIndex[key]; ok {
		return st, nil
	}
	supported := make([]string, 0, len(Stations))
	for _, st := range Stations {
		supported = append(supported, fmt.Sprintf("%s (%s)", st.Name, st.Code))
	}
	sort.Strings(supported)
	return nil, fmt.Errorf("%w: %q, supported options: %s",
		ErrUnknownStation, station, strings.Join(supported, ", "))
}

// Client talks to the RailRadar feeds. The zero URLs fall back to the
// production endpoints, tests point them at local servers.
type Client struct {
	httpClient *http.Client
	boardURL   string
	liveMapURL string
}

// NewClient wraps httpClient for RailRadar lookups. A nil httpClient
// gets a dedicated client with a 30 second timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		boardURL:   DefaultBoardURL,
		liveMapURL: DefaultLiveMapURL,
	}
}

// WithBoardURL overrides the station board endpoint.
func (c *Client) WithBoardURL(url string) *Client {
	c.boardURL = url
	return c
}

// WithLiveMapURL overrides the live map endpoint.
func (c *Client) WithLiveMapURL(url string) *Client {
	c.liveMapURL = url
	return c
}
